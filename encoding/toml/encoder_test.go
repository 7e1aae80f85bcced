package toml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weather struct {
	Location string `toml:"location"`
	Date     string `toml:"date"`
	Weather  string `toml:"weather"`
}

func TestEncoder(t *testing.T) {
	enc := NewEncoder()
	w := weather{Location: "Paris", Date: "2025-12-22", Weather: "26.3°C / 19°C, Sunny"}

	bs, err := enc.Marshal(w)
	require.NoError(t, err)
	exp := "location = \"Paris\"\ndate = \"2025-12-22\"\nweather = \"26.3°C / 19°C, Sunny\"\n"
	assert.Equal(t, exp, string(bs))

	var w2 weather
	require.NoError(t, enc.Unmarshal(bs, &w2))
	assert.Equal(t, w, w2)

	bs, err = enc.Marshal(&w)
	require.NoError(t, err)
	assert.Equal(t, exp, string(bs))

	bs, err = enc.Marshal(map[string]any{"location": "Paris"})
	require.NoError(t, err)
	assert.Equal(t, "location = \"Paris\"\n", string(bs))

	var nilPtr *weather
	for _, v := range []any{[]string{"a"}, "text", 42, nilPtr, nil} {
		_, err = enc.Marshal(v)
		require.Error(t, err, "%T", v)
		assert.Contains(t, err.Error(), "failed to encode TOML")
	}
}
