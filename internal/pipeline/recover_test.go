package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec struct {
	A int    `json:"a"`
	B string `json:"b"`
}

func TestRecoverJSONArray_WellFormed(t *testing.T) {
	var out []rec
	err := recoverJSONArray(`[{"a":1,"b":"x"},{"a":2,"b":"y"}]`, &out)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, rec{A: 1, B: "x"}, out[0])
	assert.Equal(t, rec{A: 2, B: "y"}, out[1])
}

func TestRecoverJSONArray_Fenced(t *testing.T) {
	var out []rec
	err := recoverJSONArray("```json\n[{\"a\":1,\"b\":\"x\"}]\n```", &out)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestRecoverJSONArray_FencedNoLanguage(t *testing.T) {
	var out []rec
	err := recoverJSONArray("```\n[{\"a\":7,\"b\":\"z\"}]\n```", &out)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 7, out[0].A)
}

func TestRecoverJSONArray_LeadingProse(t *testing.T) {
	var out []rec
	err := recoverJSONArray(`Here are the results: [{"a":1,"b":"x"}]`, &out)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestRecoverJSONArray_TruncatedMidObject(t *testing.T) {
	// Truncated under the token ceiling: all complete leading objects
	// recover, the trailing partial one is dropped.
	var out []rec
	err := recoverJSONArray(`[{"a":1,"b":"x"},{"a":2,"b":"y"},{"a":3,"b":"tru`, &out)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 2, out[1].A)
}

func TestRecoverJSONArray_TruncatedAfterNestedObject(t *testing.T) {
	type nested struct {
		A map[string]int `json:"a"`
	}
	var out []nested
	err := recoverJSONArray(`[{"a":{"x":1}},{"a":{"y":2},"extra":"tru`, &out)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestRecoverJSONArray_NoArray(t *testing.T) {
	var out []rec
	err := recoverJSONArray(`the model refused to answer`, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedOutput))
}

func TestRecoverJSONArray_Unrepairable(t *testing.T) {
	var out []rec
	err := recoverJSONArray(`[not json at all`, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedOutput))
}

func TestRecoverJSONObject(t *testing.T) {
	var out rec
	require.NoError(t, recoverJSONObject(`{"a":5,"b":"q"}`, &out))
	assert.Equal(t, 5, out.A)

	out = rec{}
	require.NoError(t, recoverJSONObject("```json\n{\"a\":6,\"b\":\"w\"}\n```", &out))
	assert.Equal(t, 6, out.A)

	out = rec{}
	require.NoError(t, recoverJSONObject(`Sure! {"a":8,"b":"e"} Hope that helps.`, &out))
	assert.Equal(t, 8, out.A)

	err := recoverJSONObject(`no object here`, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedOutput))
}
