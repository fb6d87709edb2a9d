package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	k := Default()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"a", "a", true},
		{"A", "a", true},
		{" A ", "a", true},
		{"KEY_A", "a", true},
		{"Escape", "esc", true},
		{"ctrl", "leftctrl", true},
		{"LeftCtrl", "leftctrl", true},
		{"F5", "f5", true},
		{" ", "space", true},
		{"Space", "space", true},
		{",", "comma", true},
		{"\\", "backslash", true},
		{"nosuchkey", "nosuchkey", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := k.Canonical(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeComposesUnicode(t *testing.T) {
	// "e" + combining acute folds to the same string as the precomposed form.
	assert.Equal(t, Normalize("\u00e9"), Normalize("e\u0301"))
}

func TestCodeNameRoundTrip(t *testing.T) {
	k := Default()
	for _, code := range k.Codes() {
		name, ok := k.Name(code)
		require.True(t, ok)
		back, ok := k.Code(name)
		require.True(t, ok)
		assert.Equal(t, code, back, name)
	}
}

func TestKnownCodes(t *testing.T) {
	k := Default()

	code, ok := k.Code("a")
	require.True(t, ok)
	assert.Equal(t, uint16(30), code)

	name, ok := k.Name(57)
	require.True(t, ok)
	assert.Equal(t, "space", name)

	_, ok = k.Name(0)
	assert.False(t, ok)
}

func TestNewKeepsFirstNamePerCode(t *testing.T) {
	k := New(map[string]uint16{"b": 1, "a": 1})
	name, ok := k.Name(1)
	require.True(t, ok)
	assert.Equal(t, "a", name)
	assert.Equal(t, []string{"a", "b"}, k.Names())
}
