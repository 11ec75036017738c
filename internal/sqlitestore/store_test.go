package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"fungarium/internal/docstore"
	"fungarium/internal/docstore/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "fungarium.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) docstore.Store { return openTemp(t) })
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fungarium.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, "specimens", "1", map[string]any{"codigo": "FG-001"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	doc, err := s.GetOne(ctx, "specimens", "1")
	require.NoError(t, err)
	assert.Equal(t, "FG-001", doc.Body["codigo"])
}

func TestJSONPath(t *testing.T) {
	assert.Equal(t, `$."dna_pass"`, jsonPath("dna_pass"))
	assert.Equal(t, `$."a\"b"`, jsonPath(`a"b`))
}
