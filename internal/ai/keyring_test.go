package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyring_Rotate(t *testing.T) {
	k := NewKeyring([]string{"key-a", "key-b", "key-c"})

	assert.Equal(t, 3, k.Len())
	assert.Equal(t, "key-a", k.Current())

	assert.Equal(t, "key-b", k.Rotate())
	assert.Equal(t, "key-c", k.Rotate())

	// Wraps back to the first key
	assert.Equal(t, "key-a", k.Rotate())
	assert.Equal(t, "key-a", k.Current())
}

func TestKeyring_Empty(t *testing.T) {
	k := NewKeyring(nil)

	assert.Equal(t, 0, k.Len())
	assert.Equal(t, "", k.Current())
	assert.Equal(t, "", k.Rotate())
}

func TestKeyring_SingleKey(t *testing.T) {
	k := NewKeyring([]string{"only"})

	assert.Equal(t, "only", k.Current())
	assert.Equal(t, "only", k.Rotate())
	assert.Equal(t, "only", k.Current())
}
