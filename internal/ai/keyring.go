package ai

import (
	"errors"
	"sync"
)

// ErrKeysExhausted is returned when every configured credential has been
// tried and all of them hit their quota.
var ErrKeysExhausted = errors.New("all API keys exhausted")

// ErrNoKeys is returned when the keyring was built without credentials.
var ErrNoKeys = errors.New("no API keys configured")

// Keyring holds an ordered set of API credentials and the index of the
// one currently in use. Rotation wraps around the list.
type Keyring struct {
	mu    sync.Mutex
	keys  []string
	index int
}

// NewKeyring creates a keyring over the given keys, starting at the first
func NewKeyring(keys []string) *Keyring {
	return &Keyring{keys: keys}
}

// Len returns the number of configured keys
func (k *Keyring) Len() int {
	return len(k.keys)
}

// Current returns the key currently in use
func (k *Keyring) Current() string {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.keys) == 0 {
		return ""
	}
	return k.keys[k.index]
}

// Rotate advances to the next key, wrapping modulo the key count, and
// returns it
func (k *Keyring) Rotate() string {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.keys) == 0 {
		return ""
	}
	k.index = (k.index + 1) % len(k.keys)
	return k.keys[k.index]
}
