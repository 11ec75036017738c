// Package storetest - общий набор проверок для реализаций docstore.Store.
package storetest

import (
	"context"
	"testing"

	"fungarium/internal/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run прогоняет контракт Store на свежем хранилище, которое создаёт open.
func Run(t *testing.T, open func(t *testing.T) docstore.Store) {
	t.Helper()

	t.Run("upsert and get", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.Upsert(ctx, "things", "a", map[string]any{"name": "Amanita", "n": 3}))
		doc, err := s.GetOne(ctx, "things", "a")
		require.NoError(t, err)
		assert.Equal(t, "a", doc.ID)
		assert.Equal(t, "Amanita", doc.Body["name"])
		assert.Equal(t, 3.0, doc.Body["n"])

		require.NoError(t, s.Upsert(ctx, "things", "a", map[string]any{"name": "Boletus"}))
		doc, err = s.GetOne(ctx, "things", "a")
		require.NoError(t, err)
		assert.Equal(t, "Boletus", doc.Body["name"])
		_, has := doc.Body["n"]
		assert.False(t, has, "upsert replaces the whole body")
	})

	t.Run("missing document", func(t *testing.T) {
		s := open(t)
		_, err := s.GetOne(context.Background(), "things", "nope")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("get all keeps insertion order", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, s.Upsert(ctx, "things", id, map[string]any{"id": id}))
		}
		require.NoError(t, s.Upsert(ctx, "things", "a", map[string]any{"id": "a", "touched": true}))
		require.NoError(t, s.Upsert(ctx, "other", "z", map[string]any{}))

		docs, err := s.GetAll(ctx, "things")
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, ids(docs))

		empty, err := s.GetAll(ctx, "nothing-here")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("delete", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Upsert(ctx, "things", "a", map[string]any{"x": 1}))
		require.NoError(t, s.Delete(ctx, "things", "a"))
		_, err := s.GetOne(ctx, "things", "a")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
		assert.NoError(t, s.Delete(ctx, "things", "a"))
	})

	t.Run("query where", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Upsert(ctx, "things", "1", map[string]any{"genero": "Amanita", "d": 4.5, "adn": true}))
		require.NoError(t, s.Upsert(ctx, "things", "2", map[string]any{"genero": "Boletus", "d": 12, "adn": false}))
		require.NoError(t, s.Upsert(ctx, "things", "3", map[string]any{"genero": "Amanita"}))

		got, err := s.QueryWhere(ctx, "things", "genero", docstore.OpEq, "Amanita")
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "3"}, ids(got))

		got, err = s.QueryWhere(ctx, "things", "d", docstore.OpGte, 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"2"}, ids(got))

		got, err = s.QueryWhere(ctx, "things", "d", docstore.OpLt, 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, ids(got))

		got, err = s.QueryWhere(ctx, "things", "adn", docstore.OpEq, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, ids(got))

		got, err = s.QueryWhere(ctx, "things", "genero", docstore.OpNe, "Amanita")
		require.NoError(t, err)
		assert.Equal(t, []string{"2"}, ids(got))
	})
}

func ids(docs []docstore.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}
