// Package cardhash derives stable digests of card numbers so that full
// numbers never reach storage.
package cardhash

import (
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// Hasher turns a normalized card number into a digest.
type Hasher interface {
	Hash(card string) string
}

// Argon2Hasher is a deterministic argon2id digest keyed by a pepper.
type Argon2Hasher struct {
	pepper  []byte
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
}

// NewArgon2Hasher returns a hasher with parameters suitable for interactive use.
func NewArgon2Hasher(pepper string) *Argon2Hasher {
	return &Argon2Hasher{
		pepper:  []byte(pepper),
		time:    1,
		memory:  64 * 1024,
		threads: 2,
		keyLen:  32,
	}
}

// Hash returns the hex encoded digest. Equal cards give equal digests.
func (h *Argon2Hasher) Hash(card string) string {
	key := argon2.IDKey([]byte(card), h.pepper, h.time, h.memory, h.threads, h.keyLen)
	return hex.EncodeToString(key)
}
