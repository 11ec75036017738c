package field

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_EmptyIsNullForEveryType(t *testing.T) {
	for _, typ := range Types {
		f := Definition{Key: "x", Type: typ, EnumOptions: []string{"a"}}
		for _, empty := range []any{nil, ""} {
			got, err := Convert(f, empty)
			require.NoError(t, err)
			assert.Nil(t, got, "%s(%#v)", typ, empty)
		}
	}
}

func TestConvert_Number(t *testing.T) {
	f := Definition{Key: "n", Type: TypeNumber, Min: ptr(0), Max: ptr(10)}
	got, err := Convert(f, "7")
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)

	got, err = Convert(f, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	_, err = Convert(f, "siete")
	require.Error(t, err)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, CodeTypeMismatch, fe.Code)
}

func TestConvert_BooleanRoundTrip(t *testing.T) {
	f := Definition{Key: "b", Type: TypeBoolean}
	for _, b := range []bool{true, false} {
		first, err := Convert(f, b)
		require.NoError(t, err)
		again, err := Convert(f, Text(first))
		require.NoError(t, err)
		assert.Equal(t, b, again)
	}

	got, err := Convert(f, "TRUE")
	require.NoError(t, err)
	assert.Equal(t, false, got, "only the literal text true converts to true")
}

func TestConvert_TextAndEnum(t *testing.T) {
	s := Definition{Key: "s", Type: TypeString}
	got, err := Convert(s, 12.5)
	require.NoError(t, err)
	assert.Equal(t, "12.5", got)

	got, err = Convert(s, json.Number("4"))
	require.NoError(t, err)
	assert.Equal(t, "4", got)

	e := Definition{Key: "e", Type: TypeEnum, EnumOptions: []string{"true"}}
	got, err = Convert(e, true)
	require.NoError(t, err)
	assert.Equal(t, "true", got)
}

func TestConvert_Date(t *testing.T) {
	f := Definition{Key: "d", Type: TypeDate}
	want := time.Date(2023, 10, 5, 0, 0, 0, 0, time.UTC)

	got, err := Convert(f, "2023-10-05")
	require.NoError(t, err)
	assert.True(t, want.Equal(got.(time.Time)))

	got, err = Convert(f, want)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Convert(f, "not a date")
	assert.Error(t, err)
}

func TestBind(t *testing.T) {
	num := Definition{Key: "n", Type: TypeNumber}

	v := Bind(num, "42")
	assert.True(t, v.Typed())
	n, ok := v.Number()
	require.True(t, ok)
	assert.Equal(t, 42.0, n)

	// значение, которое не приводится, остаётся как есть
	v = Bind(num, "cuarenta")
	assert.False(t, v.Typed())
	assert.Equal(t, "cuarenta", v.Data)

	d := Bind(Definition{Key: "d", Type: TypeDate}, "2024-01-31")
	assert.Equal(t, "2024-01-31", d.Stored())
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-01-31"`, string(b))
}

func TestLint(t *testing.T) {
	defs := []Definition{
		{ID: "1", Key: "color", Type: TypeString},
		{ID: "2", Key: "color", Type: TypeString},
		{ID: "3", Key: "habito", Type: TypeEnum},
		{ID: "4", Key: "talla", Type: TypeNumber, Min: ptr(5), Max: ptr(1)},
		{ID: "5", Key: "notas", Type: TypeString},
	}
	issues := Lint(defs, func(k string) bool { return k == "notas" })

	codes := map[string]string{}
	for _, is := range issues {
		codes[is.ID] = is.Code
	}
	assert.Equal(t, map[string]string{
		"2": "key_duplicate",
		"3": "enum_without_options",
		"4": "bounds_inverted",
		"5": "key_shadowed",
	}, codes)
}
