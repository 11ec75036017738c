package reference

import (
	"os"
	"path/filepath"
	"testing"

	"fungarium/internal/field"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadEnumCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "habito.yaml", `
items:
  - {code: Gregario, name: Gregario, order: 2}
  - {code: Solitario, name: Solitario, order: 1}
`)
	writeFile(t, dir, "notes.txt", "ignored")

	cat, err := LoadEnumCatalog(dir)
	require.NoError(t, err)
	require.Contains(t, cat, "habito")
	assert.Equal(t, []string{"Solitario", "Gregario"}, cat["habito"].Options())

	empty, err := LoadEnumCatalog(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLoadFieldSeeds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `
category: molecular
fields:
  - key: DNA Pass
    label: DNA Pass
    type: boolean
  - label: Marcador
    type: enum
    enum: marcadores
    category: other
  - key: talla
    label: Talla
    type: number
    min: 0
    max: 10
    hidden: true
`)
	enums := map[string]EnumDirectory{"marcadores": {Items: []EnumItem{{Code: "ITS"}, {Code: "LSU"}}}}

	defs, err := LoadFieldSeeds(dir, enums)
	require.NoError(t, err)
	require.Len(t, defs, 3)

	assert.Equal(t, "dna_pass", defs[0].Key)
	assert.Equal(t, field.CategoryMolecular, defs[0].Category)
	assert.True(t, defs[0].Visible)

	assert.Equal(t, "marcador", defs[1].Key)
	assert.Equal(t, field.CategoryOther, defs[1].Category)
	assert.Equal(t, []string{"ITS", "LSU"}, defs[1].EnumOptions)

	assert.False(t, defs[2].Visible)
	require.NotNil(t, defs[2].Max)
	assert.Equal(t, 10.0, *defs[2].Max)
}

func TestLoadFieldSeeds_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown type":     "fields:\n  - {key: x, label: X, type: geo}\n",
		"unknown category": "category: nope\nfields:\n  - {key: x, label: X, type: string}\n",
		"missing enum":     "fields:\n  - {key: x, label: X, type: enum, enum: nope}\n",
		"no key or label":  "fields:\n  - {type: string}\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "f.yaml", content)
			_, err := LoadFieldSeeds(dir, nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadFieldSeeds_RepositoryCatalogue(t *testing.T) {
	enums, err := LoadEnumCatalog("../../reference/enums")
	require.NoError(t, err)
	defs, err := LoadFieldSeeds("../../reference/fields", enums)
	require.NoError(t, err)
	assert.NotEmpty(t, defs)
	for _, d := range defs {
		assert.Empty(t, field.Lint([]field.Definition{d}, nil), d.Key)
	}
}
