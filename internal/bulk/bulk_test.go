package bulk

import (
	"context"
	"errors"
	"testing"
	"time"

	"fungarium/internal/field"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefs = []field.Definition{
	{Key: "sustrato", Type: field.TypeString},
	{Key: "notas", Type: field.TypeString},
	{Key: "muestra_adn", Type: field.TypeBoolean},
	{Key: "talla", Label: "Talla", Type: field.TypeNumber, Min: ptr(0), Max: ptr(10)},
	{Key: "dna_pass", Type: field.TypeBoolean},
	{Key: "fecha_secuencia", Type: field.TypeDate},
}

var testDynamic = map[string]field.Definition{
	"talla":           testDefs[3],
	"dna_pass":        testDefs[4],
	"fecha_secuencia": testDefs[5],
}

func ptr(f float64) *float64 { return &f }

// recorder запоминает вызовы и отказывает для выбранных id.
type recorder struct {
	patched map[string]Patch
	deleted []string
	fail    map[string]bool
}

func newRecorder(fail ...string) *recorder {
	r := &recorder{patched: map[string]Patch{}, fail: map[string]bool{}}
	for _, id := range fail {
		r.fail[id] = true
	}
	return r
}

func (r *recorder) Patch(_ context.Context, id string, p Patch) error {
	if r.fail[id] {
		return errors.New("write rejected")
	}
	r.patched[id] = p
	return nil
}

func (r *recorder) Delete(_ context.Context, id string) error {
	if r.fail[id] {
		return errors.New("delete rejected")
	}
	r.deleted = append(r.deleted, id)
	return nil
}

func TestDraft_StateMachine(t *testing.T) {
	dr := NewDraft(testDefs)

	e, ok := dr.Entry("muestra_adn")
	require.True(t, ok)
	assert.False(t, e.Enabled)
	assert.Nil(t, e.Value, "booleans start unset")
	e, _ = dr.Entry("sustrato")
	assert.Equal(t, "", e.Value)

	assert.ErrorIs(t, dr.Set("sustrato", "Madera"), ErrDisabled)
	require.NoError(t, dr.Enable("sustrato"))
	require.NoError(t, dr.Set("sustrato", "Madera"))
	e, _ = dr.Entry("sustrato")
	assert.Equal(t, Entry{Value: "Madera", Enabled: true}, e)

	require.NoError(t, dr.Disable("sustrato"))
	e, _ = dr.Entry("sustrato")
	assert.Equal(t, Entry{Value: "", Enabled: false}, e)

	assert.ErrorIs(t, dr.Enable("nope"), ErrUnknownKey)
	assert.Equal(t, []string{"sustrato", "notas", "muestra_adn", "talla", "dna_pass", "fecha_secuencia"}, dr.Keys())
}

func TestPlanPatch_OnlyEnabledEntries(t *testing.T) {
	dr, err := FromEntries(testDefs, map[string]Entry{
		"sustrato": {Value: "Hojarasca", Enabled: true},
		"notas":    {Value: "", Enabled: true},
	})
	require.NoError(t, err)

	patch, err := PlanPatch(dr, testDynamic)
	require.NoError(t, err)
	assert.Equal(t, Patch{"sustrato": "Hojarasca"}, patch)

	ids := []string{"r1", "r2", "r3"}
	rec := newRecorder()
	out := Apply(context.Background(), rec, ids, patch)
	assert.True(t, out.OK())
	assert.Equal(t, ids, out.Succeeded)
	for _, id := range ids {
		assert.Equal(t, Patch{"sustrato": "Hojarasca"}, rec.patched[id])
	}
}

func TestPlanPatch_NeverIncludesDisabled(t *testing.T) {
	dr, err := FromEntries(testDefs, map[string]Entry{
		"sustrato":    {Value: "Suelo", Enabled: false},
		"muestra_adn": {Value: false, Enabled: true},
	})
	require.NoError(t, err)

	patch, err := PlanPatch(dr, testDynamic)
	require.NoError(t, err)
	assert.Equal(t, Patch{"muestra_adn": false}, patch, "false is a value, not empty")
	assert.NotContains(t, patch, "sustrato")
}

func TestPlanPatch_EmptyIsNoop(t *testing.T) {
	patch, err := PlanPatch(NewDraft(testDefs), testDynamic)
	assert.ErrorIs(t, err, ErrEmptyPatch)
	assert.Empty(t, patch)

	dr := NewDraft(testDefs)
	require.NoError(t, dr.Enable("dna_pass"))
	_, err = PlanPatch(dr, testDynamic)
	assert.ErrorIs(t, err, ErrEmptyPatch, "tri-state left unset")
}

func TestPlanPatch_ConvertsDynamicValues(t *testing.T) {
	dr, err := FromEntries(testDefs, map[string]Entry{
		"talla":           {Value: "7", Enabled: true},
		"dna_pass":        {Value: "true", Enabled: true},
		"fecha_secuencia": {Value: "2024-02-10", Enabled: true},
	})
	require.NoError(t, err)

	patch, err := PlanPatch(dr, testDynamic)
	require.NoError(t, err)
	assert.Equal(t, 7.0, patch["talla"])
	assert.Equal(t, true, patch["dna_pass"])
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), patch["fecha_secuencia"])
}

func TestPlanPatch_ValidatesDynamicValues(t *testing.T) {
	dr, err := FromEntries(testDefs, map[string]Entry{
		"talla":    {Value: "11", Enabled: true},
		"sustrato": {Value: "Suelo", Enabled: true},
	})
	require.NoError(t, err)

	_, err = PlanPatch(dr, testDynamic)
	var errs field.Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"talla"}, errs.Fields())
	assert.Equal(t, field.CodeOutOfRange, errs[0].Code)
}

func TestFromEntries_UnknownKey(t *testing.T) {
	_, err := FromEntries(testDefs, map[string]Entry{"ghost": {Value: "x", Enabled: true}})
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestFromEntries_EnabledCarryValues(t *testing.T) {
	dr, err := FromEntries(testDefs, map[string]Entry{
		"sustrato": {Value: "Hojarasca", Enabled: true},
		"notas":    {Value: "ignorado", Enabled: false},
		"dna_pass": {Value: false, Enabled: true},
	})
	require.NoError(t, err)

	e, ok := dr.Entry("sustrato")
	require.True(t, ok)
	assert.Equal(t, Entry{Value: "Hojarasca", Enabled: true}, e)

	e, _ = dr.Entry("notas")
	assert.Equal(t, Entry{Value: ""}, e, "disabled entries keep the initial value")

	e, _ = dr.Entry("dna_pass")
	assert.Equal(t, Entry{Value: false, Enabled: true}, e)
}

func TestApply_PartialFailureContinues(t *testing.T) {
	rec := newRecorder("r2")
	out := Apply(context.Background(), rec, []string{"r1", "r2", "r3"}, Patch{"notas": "revisado"})

	assert.False(t, out.OK())
	assert.Equal(t, []string{"r1", "r3"}, out.Succeeded)
	require.Len(t, out.Failed, 1)
	assert.Equal(t, "r2", out.Failed[0].ID)
	assert.Equal(t, "write rejected", out.Failed[0].Reason)
	assert.Contains(t, rec.patched, "r3")
}

func TestApply_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := Apply(ctx, newRecorder(), []string{"a", "b"}, Patch{"x": 1})
	assert.Empty(t, out.Succeeded)
	require.Len(t, out.Failed, 2)
	assert.ErrorIs(t, out.Failed[0].Err, context.Canceled)
}

func TestDelete_BestEffort(t *testing.T) {
	rec := newRecorder("b")
	out := Delete(context.Background(), rec, []string{"a", "b", "c"})
	assert.Equal(t, []string{"a", "c"}, out.Succeeded)
	assert.Equal(t, []string{"a", "c"}, rec.deleted)
	require.Len(t, out.Failed, 1)
	assert.Equal(t, "b", out.Failed[0].ID)
}
