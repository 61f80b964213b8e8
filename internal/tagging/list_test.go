package tagging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{"single", []string{"single"}},
		{"a, b", []string{"a", " b"}},
		{"a,,b", []string{"a", "", "b"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		l := Parse(tt.in)
		assert.False(t, l.IsNone())
		assert.Equal(t, tt.want, l.Normalize(), "Parse(%q)", tt.in)
	}
}

func TestTitles(t *testing.T) {
	l := Titles("b", "a", "b")
	assert.Equal(t, []string{"b", "a", "b"}, l.Normalize())
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, "b,a,b", l.String())

	empty := Titles()
	assert.False(t, empty.IsNone())
	assert.NotNil(t, empty.Normalize())
	assert.Empty(t, empty.Normalize())
}

func TestNone(t *testing.T) {
	var zero List
	assert.True(t, zero.IsNone())
	assert.True(t, None.IsNone())
	assert.Nil(t, None.Normalize())
	assert.Zero(t, None.Len())
}

func TestNormalize_DoesNotAlias(t *testing.T) {
	src := []string{"a", "b"}
	l := Titles(src...)
	out := l.Normalize()
	out[0] = "z"
	assert.Equal(t, []string{"a", "b"}, l.Normalize())
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := [][]string{
		{"a"},
		{"a", "b", "c"},
		{"b", "a", "b"},
		{"sci-fi", "film noir", "1970s"},
	}
	for _, in := range inputs {
		once := Titles(in...).Normalize()
		assert.Equal(t, once, Titles(once...).Normalize())
		assert.Equal(t, once, Parse(strings.Join(once, ",")).Normalize())

		parsed := Parse(strings.Join(in, ",")).Normalize()
		assert.Equal(t, parsed, Parse(strings.Join(parsed, ",")).Normalize())
	}
}
