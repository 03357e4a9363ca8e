package datarepo

import (
	"github.com/jrsteele09/learnpath-client/paths"
	"github.com/jrsteele09/learnpath-client/posts"
	"github.com/jrsteele09/learnpath-client/services/comment"
	"github.com/jrsteele09/learnpath-client/services/progress"
)

// Collection stores records of one kind keyed by id.
type Collection[T any] interface {
	// Insert assigns a new id and stores a copy of item
	Insert(item T) (T, error)
	Get(id string) (T, error)

	// Update applies fn to the stored record under the collection lock
	Update(id string, fn func(*T) error) (T, error)
	Delete(id string) error

	// Find returns matching records in insertion order
	Find(match func(T) bool) []T
}

// Repos groups the collections served by the development API.
type Repos struct {
	Paths    Collection[paths.LearningPath]
	Progress Collection[progress.Progress]
	Comments Collection[comment.Comment]
	Posts    Collection[posts.Post]
}
