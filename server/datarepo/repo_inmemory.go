package datarepo

import (
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/paths"
	"github.com/jrsteele09/learnpath-client/posts"
	"github.com/jrsteele09/learnpath-client/services/comment"
	"github.com/jrsteele09/learnpath-client/services/progress"
)

// InMemoryCollection is a thread-safe Collection. idOf points at the id
// field of a record so the collection can assign it.
type InMemoryCollection[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
	idOf  func(*T) *string
}

func NewInMemoryCollection[T any](idOf func(*T) *string) *InMemoryCollection[T] {
	return &InMemoryCollection[T]{
		items: make(map[string]T),
		idOf:  idOf,
	}
}

func (c *InMemoryCollection[T]) Insert(item T) (T, error) {
	id := uuid.New().String()
	*c.idOf(&item) = id

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = item
	c.order = append(c.order, id)
	return item, nil
}

func (c *InMemoryCollection[T]) Get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		var zero T
		return zero, apperrors.ErrNotFound
	}
	return item, nil
}

func (c *InMemoryCollection[T]) Update(id string, fn func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	item, ok := c.items[id]
	if !ok {
		return zero, apperrors.ErrNotFound
	}
	if err := fn(&item); err != nil {
		return zero, err
	}
	*c.idOf(&item) = id
	c.items[id] = item
	return item, nil
}

func (c *InMemoryCollection[T]) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(c.items, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (c *InMemoryCollection[T]) Find(match func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []T{}
	for _, id := range c.order {
		if item := c.items[id]; match == nil || match(item) {
			out = append(out, item)
		}
	}
	return out
}

// NewInMemoryRepos returns empty in-memory collections.
func NewInMemoryRepos() Repos {
	return Repos{
		Paths:    NewInMemoryCollection(func(p *paths.LearningPath) *string { return &p.ID }),
		Progress: NewInMemoryCollection(func(p *progress.Progress) *string { return &p.ID }),
		Comments: NewInMemoryCollection(func(c *comment.Comment) *string { return &c.ID }),
		Posts:    NewInMemoryCollection(func(p *posts.Post) *string { return &p.ID }),
	}
}
