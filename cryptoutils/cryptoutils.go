// Package cryptoutils provides the password hashing and symmetric encryption
// primitives used by the editor's lock/unlock workflow.
//
// Passwords are never stored: a one-way SHA-256 hash is kept for
// verification, and the password itself is the key-derivation input for the
// content cipher. The server side only ever sees the hash and the opaque
// ciphertext blob.
package cryptoutils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// ErrDecryptFailed indicates the ciphertext could not be authenticated or
// decoded. With an authenticated cipher this is distinguishable from a wrong
// password only when the caller verifies the password hash first.
var ErrDecryptFailed = errors.New("decryption failed")

// HashPassword returns the lowercase hex SHA-256 digest of the password.
// Used for verification only, never for decryption.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Cipher is a pluggable key-derivation plus authenticated symmetric
// encryption capability. The same password that produced a ciphertext must
// recover the exact original plaintext.
type Cipher interface {
	Encrypt(plaintext, password string) (string, error)
	Decrypt(ciphertext, password string) (string, error)
}

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32
)

// AESCipher implements Cipher with an Argon2id-derived AES-256 key and GCM
// authenticated encryption. The produced blob is
// base64(salt || nonce || sealed).
type AESCipher struct{}

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, keySize)
}

// Encrypt seals plaintext under a key derived from password with a fresh
// random salt and nonce.
func (AESCipher) Encrypt(plaintext, password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	sealed := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)

	blob := make([]byte, 0, saltSize+nonceSize+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt reverses Encrypt. A malformed blob or an authentication failure
// returns ErrDecryptFailed.
func (AESCipher) Decrypt(ciphertext, password string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptFailed, err)
	}
	if len(blob) < saltSize+nonceSize {
		return "", fmt.Errorf("%w: blob too short", ErrDecryptFailed)
	}

	salt := blob[:saltSize]
	nonce := blob[saltSize : saltSize+nonceSize]
	sealed := blob[saltSize+nonceSize:]

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptFailed, err)
	}

	return string(plaintext), nil
}
