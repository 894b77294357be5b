package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"reg": "CTRL", "field": "MODE", "bit": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"bit":3,"field":"MODE","reg":"CTRL"}`, string(got))
}

func TestMarshalCanonicalNested(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"any_of": []any{"CTRL", "STATUS"},
		"where":  map[string]any{"width": 32, "ro": false},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"any_of":["CTRL","STATUS"],"where":{"ro":false,"width":32}}`, string(got))
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	m := map[string]any{"a": 1, "b": []any{true, "x"}, "c": map[string]any{"z": 1, "y": 2}}
	first, err := MarshalCanonical(m)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(m)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestMarshalCanonicalEmptyAndNilMap(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))

	got, err = MarshalCanonical(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"expr": "a < b && c > 0"})
	require.NoError(t, err)
	assert.Equal(t, `{"expr":"a < b && c > 0"}`, string(got))
}

func TestMarshalCanonicalRejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"ratio": 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float")
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"missing": nil})
	assert.Error(t, err)
}
