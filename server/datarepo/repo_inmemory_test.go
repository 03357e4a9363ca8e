package datarepo_test

import (
	"errors"
	"testing"

	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/posts"
	"github.com/jrsteele09/learnpath-client/server/datarepo"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCollection(t *testing.T) {
	repos := datarepo.NewInMemoryRepos()
	c := repos.Posts

	first, err := c.Insert(posts.Post{ID: "ignored", Title: "first"})
	require.NoError(t, err)
	require.NotEqual(t, "ignored", first.ID)
	second, err := c.Insert(posts.Post{Title: "second"})
	require.NoError(t, err)

	got, err := c.Get(first.ID)
	require.NoError(t, err)
	require.Equal(t, "first", got.Title)

	updated, err := c.Update(second.ID, func(p *posts.Post) error {
		p.Likes++
		p.ID = "tampered"
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, updated.Likes)
	require.Equal(t, second.ID, updated.ID)

	boom := errors.New("boom")
	_, err = c.Update(second.ID, func(p *posts.Post) error {
		p.Likes = 100
		return boom
	})
	require.ErrorIs(t, err, boom)
	got, _ = c.Get(second.ID)
	require.Equal(t, 1, got.Likes)

	all := c.Find(nil)
	require.Equal(t, []string{"first", "second"}, []string{all[0].Title, all[1].Title})
	liked := c.Find(func(p posts.Post) bool { return p.Likes > 0 })
	require.Len(t, liked, 1)

	require.NoError(t, c.Delete(first.ID))
	require.ErrorIs(t, c.Delete(first.ID), apperrors.ErrNotFound)
	_, err = c.Get(first.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = c.Update("missing", func(*posts.Post) error { return nil })
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Len(t, c.Find(nil), 1)
}
