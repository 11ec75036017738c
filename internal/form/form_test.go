package form

import (
	"testing"
	"time"

	"fungarium/internal/field"
	"fungarium/internal/schema"
	"fungarium/internal/specimen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

var (
	numberDef = field.Definition{Key: "longitud_basidio", Label: "Longitud del basidio", Type: field.TypeNumber, Min: ptr(0), Max: ptr(200), Visible: true, Category: field.CategoryMeasurements}
	boolDef   = field.Definition{Key: "dna_pass", Label: "DNA Pass", Type: field.TypeBoolean, Description: "Secuencia aprobada", Visible: true, Category: field.CategoryMolecular}
	enumDef   = field.Definition{Key: "marcador", Label: "Marcador", Type: field.TypeEnum, EnumOptions: []string{"ITS", "LSU"}, Visible: true, Category: field.CategoryMolecular}
	dateDef   = field.Definition{Key: "fecha_secuenciacion", Label: "Fecha", Type: field.TypeDate, Visible: true, Category: field.CategoryMolecular}
	textDef   = field.Definition{Key: "lote", Label: "Lote", Type: field.TypeString, Visible: true, Category: field.CategoryOther}
)

func TestWidgetFor(t *testing.T) {
	assert.Equal(t, WidgetText, WidgetFor(textDef, Single))
	assert.Equal(t, WidgetNumber, WidgetFor(numberDef, Bulk))
	assert.Equal(t, WidgetCheckbox, WidgetFor(boolDef, Single))
	assert.Equal(t, WidgetTristate, WidgetFor(boolDef, Bulk))
	assert.Equal(t, WidgetSelect, WidgetFor(enumDef, Single))
	assert.Equal(t, WidgetDate, WidgetFor(dateDef, Single))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Single, m)
	m, err = ParseMode("BULK")
	require.NoError(t, err)
	assert.Equal(t, Bulk, m)
	_, err = ParseMode("grid")
	assert.Error(t, err)
}

func TestParse_EmptyInputs(t *testing.T) {
	v, err := Parse(numberDef, "  ", Single)
	require.NoError(t, err)
	assert.Nil(t, v, "empty number is absent, not zero")

	v, err = Parse(boolDef, "", Single)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	v, err = Parse(boolDef, "", Bulk)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = Parse(enumDef, "", Single)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = Parse(dateDef, "", Single)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = Parse(textDef, "", Single)
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestParse_Values(t *testing.T) {
	v, err := Parse(numberDef, "250", Single)
	require.NoError(t, err)
	assert.Equal(t, 250.0, v, "bounds are not enforced by the widget")
	assert.False(t, field.Validate(numberDef, v))

	v, err = Parse(boolDef, "on", Single)
	require.NoError(t, err)
	assert.Equal(t, true, v)
	v, err = Parse(boolDef, "false", Bulk)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	v, err = Parse(dateDef, "15/03/2024", Single)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), v)

	v, err = Parse(textDef, "  con espacios ", Single)
	require.NoError(t, err)
	assert.Equal(t, "  con espacios ", v)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(numberDef, "doce", Single)
	var fe *field.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, field.CodeTypeMismatch, fe.Code)
	assert.Equal(t, "longitud_basidio", fe.Field)

	_, err = Parse(boolDef, "quizá", Bulk)
	assert.ErrorAs(t, err, &fe)

	_, err = Parse(dateDef, "ayer", Single)
	assert.ErrorAs(t, err, &fe)
}

func TestParseForm(t *testing.T) {
	s := schema.Merge([]field.Definition{numberDef, boolDef})

	got, err := ParseForm(s, Single, map[string]string{
		"codigo":           "FG-1",
		"longitud_basidio": "",
		"dna_pass":         "1",
		"ajeno":            "x",
	})
	require.NoError(t, err)
	assert.Equal(t, "FG-1", got["codigo"])
	assert.Nil(t, got["longitud_basidio"])
	assert.Contains(t, got, "longitud_basidio")
	assert.Equal(t, true, got["dna_pass"])
	assert.NotContains(t, got, "ajeno")
	assert.NotContains(t, got, "genero", "absent text inputs are left alone")

	// снятый флажок не приходит в форме вовсе
	got, err = ParseForm(s, Single, map[string]string{"codigo": "FG-1"})
	require.NoError(t, err)
	assert.Equal(t, false, got["dna_pass"])
	assert.Equal(t, false, got["muestra_adn"])

	got, err = ParseForm(s, Bulk, map[string]string{"codigo": "FG-1"})
	require.NoError(t, err)
	assert.NotContains(t, got, "dna_pass", "tri-state stays unset")

	_, err = ParseForm(s, Single, map[string]string{"longitud_basidio": "x", "altitud": "y"})
	var errs field.Errors
	require.ErrorAs(t, err, &errs)
	assert.ElementsMatch(t, []string{"longitud_basidio", "altitud"}, errs.Fields())
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "Sí", Display(boolDef, true))
	assert.Equal(t, "No", Display(boolDef, field.Value{Type: field.TypeBoolean, Data: false}))
	assert.Equal(t, "05/03/2024", Display(dateDef, "2024-03-05"))
	assert.Equal(t, "05/03/2024", Display(dateDef, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "4.5", Display(numberDef, 4.50))
	assert.Equal(t, "12", Display(numberDef, "12.000"))
	assert.Equal(t, "ITS", Display(enumDef, "ITS"))
	assert.Equal(t, "", Display(numberDef, nil))
}

func TestControls_Single(t *testing.T) {
	s := schema.Merge([]field.Definition{numberDef, boolDef, enumDef})
	rec := &specimen.Record{Codigo: "FG-1"}
	rec.Set("dna_pass", field.Value{Type: field.TypeBoolean, Data: true})

	groups := Controls(s, Single, rec)
	require.Len(t, groups, len(s.Sections))
	assert.True(t, groups[0].Fixed)

	byKey := map[string]Control{}
	for _, g := range groups {
		for _, c := range g.Controls {
			byKey[c.Key] = c
		}
	}
	assert.Equal(t, "FG-1", byKey["codigo"].Value)
	assert.True(t, byKey["codigo"].Required)

	dna := byKey["dna_pass"]
	assert.Equal(t, WidgetCheckbox, dna.Widget)
	assert.Equal(t, "Secuencia aprobada", dna.CheckboxLabel)
	assert.Equal(t, true, dna.Value)
	assert.Equal(t, "Sí", dna.Display)
	assert.Nil(t, dna.Enabled)

	lb := byKey["longitud_basidio"]
	assert.Nil(t, lb.Value, "no value means no number, not zero")
	assert.Equal(t, 200.0, *lb.Max)

	assert.Equal(t, []string{"ITS", "LSU"}, byKey["marcador"].Options)
	assert.Equal(t, false, byKey["muestra_adn"].Value)
}

func TestControls_BulkStartsDisabled(t *testing.T) {
	s := schema.Merge([]field.Definition{boolDef})
	groups := Controls(s, Bulk, nil)
	for _, g := range groups {
		for _, c := range g.Controls {
			require.NotNil(t, c.Enabled, c.Key)
			assert.False(t, *c.Enabled)
			if c.Key == "dna_pass" {
				assert.Equal(t, WidgetTristate, c.Widget)
				assert.Nil(t, c.Value)
			}
		}
	}
}
