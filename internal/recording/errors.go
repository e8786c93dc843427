// Package recording holds the error taxonomy shared by the recording
// pipeline: the WAV (internal/audio) and storage packages surface their
// failures through these types so callers can branch with
// errors.Is/errors.As instead of string matching. The codec, recorder,
// and mixer return no errors.
package recording

import (
	"errors"
	"fmt"
)

// Kind classifies a recording-pipeline failure.
type Kind string

const (
	KindInvalidKey         Kind = "invalid_key"
	KindInvalidCiphertext  Kind = "invalid_ciphertext"
	KindEncryptionFailed   Kind = "encryption_failed"
	KindDecryptionFailed   Kind = "decryption_failed"
	KindFileNotFound       Kind = "file_not_found"
	KindQuotaExceeded      Kind = "quota_exceeded"
	KindIO                 Kind = "io"
	KindInvalidWav         Kind = "invalid_wav"
	KindUnsupportedPayload Kind = "unsupported_payload"
)

// Sentinel errors for the kinds that carry no extra fields. Wrap these
// with fmt.Errorf("...: %w", ErrX) at the call site so errors.Is still
// matches while the message keeps local context.
var (
	ErrInvalidKey        = errors.New("invalid encryption key")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrFileNotFound      = errors.New("file not found")
	ErrIO                = errors.New("storage I/O error")
	ErrInvalidWav        = errors.New("invalid WAV data")
)

// UnsupportedPayloadError reports an RTP payload type the codec does not
// recognise. Nothing in the pipeline constructs it: the mixer turns an
// unrecognised payload type into one silent frame without producing an
// error value, so a mix never reports it.
type UnsupportedPayloadError struct {
	PayloadType uint8
}

func (e *UnsupportedPayloadError) Error() string {
	return fmt.Sprintf("unsupported RTP payload type %d", e.PayloadType)
}

// QuotaExceededError reports that an encrypted write would overflow the
// configured storage quota.
type QuotaExceededError struct {
	Requested int64
	Available int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: requested %d bytes, %d available", e.Requested, e.Available)
}

// KindOf returns the taxonomy kind for a well-known sentinel or typed error,
// or "" if err doesn't match anything in this package.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidKey):
		return KindInvalidKey
	case errors.Is(err, ErrInvalidCiphertext):
		return KindInvalidCiphertext
	case errors.Is(err, ErrEncryptionFailed):
		return KindEncryptionFailed
	case errors.Is(err, ErrDecryptionFailed):
		return KindDecryptionFailed
	case errors.Is(err, ErrFileNotFound):
		return KindFileNotFound
	case errors.Is(err, ErrIO):
		return KindIO
	case errors.Is(err, ErrInvalidWav):
		return KindInvalidWav
	}
	var quota *QuotaExceededError
	if errors.As(err, &quota) {
		return KindQuotaExceeded
	}
	var unsupported *UnsupportedPayloadError
	if errors.As(err, &unsupported) {
		return KindUnsupportedPayload
	}
	return ""
}
