package bean

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Compile-time check that every variant implements Value
	var _ Value = Null{}
	var _ Value = Int(42)
	var _ Value = Float(1.5)
	var _ Value = String("test")
	var _ Value = Bool(true)
	var _ Value = Bytes{0x01}
}

func TestFromAny(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"int64", int64(7), Int(7)},
		{"int", 7, Int(7)},
		{"uint8", uint8(3), Int(3)},
		{"float64", 2.5, Float(2.5)},
		{"bool", true, Bool(true)},
		{"string", "horror", String("horror")},
		{"bytes", []byte("ab"), Bytes("ab")},
		{"time", ts, String("2024-03-01T12:00:00Z")},
		{"already a value", String("x"), String("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.in)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "want %#v, got %#v", tt.want, got)
		})
	}
}

func TestFromAny_Unsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	assert.Error(t, err)

	_, err = FromAny(uint64(1 << 63))
	assert.Error(t, err)
}

func TestFromAny_CopiesBytes(t *testing.T) {
	src := []byte("abc")
	v, err := FromAny(src)
	require.NoError(t, err)

	src[0] = 'z'
	assert.Equal(t, Bytes("abc"), v)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Null{}, Null{}))
	assert.True(t, Equal(Int(1), Int(1)))
	assert.False(t, Equal(Int(1), Float(1)))
	assert.False(t, Equal(String("1"), Int(1)))
	assert.True(t, Equal(Bytes("a"), Bytes("a")))
	assert.False(t, Equal(Bytes("a"), String("a")))
}

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(Null{}))
	assert.Equal(t, "12", Text(Int(12)))
	assert.Equal(t, "0.25", Text(Float(0.25)))
	assert.Equal(t, "true", Text(Bool(true)))
	assert.Equal(t, "<3 bytes>", Text(Bytes("abc")))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "null", Kind(Null{}))
	assert.Equal(t, "integer", Kind(Int(1)))
	assert.Equal(t, "float", Kind(Float(1)))
	assert.Equal(t, "string", Kind(String("")))
	assert.Equal(t, "boolean", Kind(Bool(false)))
	assert.Equal(t, "binary", Kind(Bytes(nil)))
}

func TestAny(t *testing.T) {
	assert.Nil(t, Null{}.Any())
	assert.Equal(t, int64(3), Int(3).Any())
	assert.Equal(t, 1.5, Float(1.5).Any())
	assert.Equal(t, "s", String("s").Any())
	assert.Equal(t, true, Bool(true).Any())
	assert.Equal(t, []byte("b"), Bytes("b").Any())
}
