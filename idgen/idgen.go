// Package idgen produces the identifiers used throughout notebox: long
// opaque hex ids for API-created notes and session tokens, and short
// human-typable ids for pastebin-style URLs.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	mrand "math/rand"

	"github.com/anhtu/notebox/interfaces"
)

const (
	shortAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// ShortIDLength is the length of pastebin-style note ids.
	ShortIDLength = 8

	// MaxShortIDAttempts caps collision retries before the request fails
	// with an exhaustion error instead of looping unboundedly.
	MaxShortIDAttempts = 20
)

// NoteID returns a cryptographically random 128-bit value as 32 lowercase
// hex characters.
func NoteID() string {
	return randomHex(16)
}

// SessionToken returns a cryptographically random 256-bit value as 64
// lowercase hex characters.
func SessionToken() string {
	return randomHex(32)
}

// ShortID returns n characters drawn uniformly from [A-Za-z]. Uniqueness is
// the caller's responsibility; use UniqueShortID against a live collection.
func ShortID(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = shortAlphabet[mrand.Intn(len(shortAlphabet))]
	}
	return string(b)
}

// UniqueShortID generates a short id for which exists reports false,
// retrying up to MaxShortIDAttempts times before giving up with
// interfaces.ErrIDSpaceExhausted.
func UniqueShortID(exists func(id string) bool) (string, error) {
	for i := 0; i < MaxShortIDAttempts; i++ {
		id := ShortID(ShortIDLength)
		if !exists(id) {
			return id, nil
		}
	}
	return "", interfaces.ErrIDSpaceExhausted
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}
