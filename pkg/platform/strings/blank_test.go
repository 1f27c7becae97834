package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBlank(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "empty", input: "", expected: true},
		{name: "whitespace only", input: " \t\n", expected: true},
		{name: "value", input: "EPJ-system", expected: false},
		{name: "padded value", input: "  EPJ  ", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsBlank(tt.input))
		})
	}
}

func TestIsBlankPtr(t *testing.T) {
	value := "Oslo"
	blank := "  "
	assert.True(t, IsBlankPtr(nil))
	assert.True(t, IsBlankPtr(&blank))
	assert.False(t, IsBlankPtr(&value))
}

func TestAllPresent(t *testing.T) {
	assert.True(t, AllPresent())
	assert.True(t, AllPresent("Storgata 1", "0150", "Oslo"))
	assert.False(t, AllPresent("Storgata 1", "", "Oslo"))
	assert.False(t, AllPresent("Storgata 1", "0150", "   "))
}

func TestTrimToPtr(t *testing.T) {
	assert.Nil(t, TrimToPtr(""))
	assert.Nil(t, TrimToPtr("   "))
	got := TrimToPtr("  Lege  ")
	if assert.NotNil(t, got) {
		assert.Equal(t, "Lege", *got)
	}
	assert.Equal(t, "Lege", Deref(got))
	assert.Equal(t, "", Deref(nil))
}
