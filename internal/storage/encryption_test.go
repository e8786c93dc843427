package storage

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/btafoya/callrecorder/internal/recording"
)

func testKey() [32]byte {
	var key [32]byte
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	ctx, err := NewEncryptionContext(testKey(), "key-1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("hello, recording")},
		{"large ~1MiB", bytes.Repeat([]byte{0xAB}, 1<<20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, err := ctx.Encrypt(tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}
			if len(ciphertext) != len(tt.plaintext)+nonceSize+tagSize {
				t.Errorf("len(ciphertext) = %d, want %d", len(ciphertext), len(tt.plaintext)+nonceSize+tagSize)
			}

			plaintext, err := ctx.Decrypt(ciphertext)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if !bytes.Equal(plaintext, tt.plaintext) {
				t.Error("decrypted plaintext does not match original")
			}
		})
	}
}

func TestEncryptProducesFreshNonce(t *testing.T) {
	ctx, err := NewEncryptionContext(testKey(), "key-1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	plaintext := []byte("same plaintext every time")
	a, err := ctx.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := ctx.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same plaintext produced identical ciphertext (nonce reuse)")
	}
	if bytes.Equal(a[:nonceSize], b[:nonceSize]) {
		t.Error("two encryptions produced the same nonce")
	}
}

func TestDecryptDetectsTampering(t *testing.T) {
	ctx, err := NewEncryptionContext(testKey(), "key-1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ciphertext, err := ctx.Encrypt([]byte("sensitive call audio"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	tampered := append([]byte{}, ciphertext...)
	tampered[len(tampered)-1] ^= 0xFF

	if _, err := ctx.Decrypt(tampered); !errors.Is(err, recording.ErrDecryptionFailed) {
		t.Errorf("Decrypt(tampered) err = %v, want ErrDecryptionFailed", err)
	}
}

func TestDecryptRejectsShortBlob(t *testing.T) {
	ctx, err := NewEncryptionContext(testKey(), "key-1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := ctx.Decrypt(make([]byte, 10)); !errors.Is(err, recording.ErrInvalidCiphertext) {
		t.Errorf("Decrypt(short blob) err = %v, want ErrInvalidCiphertext", err)
	}
}

func TestFromHexValidatesLength(t *testing.T) {
	if _, err := FromHex("deadbeef", "key-1"); !errors.Is(err, recording.ErrInvalidKey) {
		t.Errorf("FromHex(too short) err = %v, want ErrInvalidKey", err)
	}
}

func TestFromHexValidatesEncoding(t *testing.T) {
	bad := strings.Repeat("zz", 32)
	if _, err := FromHex(bad, "key-1"); !errors.Is(err, recording.ErrInvalidKey) {
		t.Errorf("FromHex(invalid hex) err = %v, want ErrInvalidKey", err)
	}
}

func TestGenerateKeyIsAcceptedByFromHex(t *testing.T) {
	keyHex, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if len(keyHex) != 64 {
		t.Fatalf("len(GenerateKey()) = %d, want 64", len(keyHex))
	}

	ctx, err := FromHex(keyHex, "generated")
	if err != nil {
		t.Fatalf("FromHex(generated key): %v", err)
	}
	if ctx.KeyID() != "generated" {
		t.Errorf("KeyID() = %q, want %q", ctx.KeyID(), "generated")
	}
}

func TestKeyIDRoundTrips(t *testing.T) {
	ctx, err := NewEncryptionContext(testKey(), "rotation-42")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := ctx.KeyID(); got != "rotation-42" {
		t.Errorf("KeyID() = %q, want %q", got, "rotation-42")
	}
}
