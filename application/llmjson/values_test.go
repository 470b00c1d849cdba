package llmjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrings(t *testing.T) {
	assert.Equal(t, []string{"one"}, Strings("one"))
	assert.Nil(t, Strings("  "))
	assert.Nil(t, Strings(nil))
	assert.Nil(t, Strings(42.0))
	assert.Equal(t, []string{"a", "3", "true"}, Strings([]any{"a", "", 3.0, true, nil}))
	assert.Equal(t, []string{`{"k":"v"}`}, Strings([]any{map[string]any{"k": "v"}}))
}

func TestStringList(t *testing.T) {
	got, ok := StringList([]any{"x"})
	assert.True(t, ok)
	assert.Equal(t, []string{"x"}, got)

	_, ok = StringList("x")
	assert.False(t, ok)
}

func TestInt(t *testing.T) {
	cases := []struct {
		in   any
		want int
		ok   bool
	}{
		{7.0, 7, true},
		{6.6, 7, true},
		{"8", 8, true},
		{" 9 /10", 9, true},
		{"seven", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, c := range cases {
		got, ok := Int(c.in)
		assert.Equal(t, c.ok, ok, "%v", c.in)
		assert.Equal(t, c.want, got, "%v", c.in)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(12, 0, 10))
	assert.Equal(t, 4, Clamp(4, 0, 10))
}
