// Package models defines the domain models for the call recorder
package models

import "time"

// Recording represents the metadata for a stored, encrypted call
// recording produced by the recording pipeline (pkg/sip/recording.go).
// The audio bytes live on disk under internal/storage, addressed by
// RelativePath; this row is only the pointer plus the attributes needed
// to fetch and decrypt it.
type Recording struct {
	ID           int64     `json:"id"`
	CallID       string    `json:"call_id"`
	RelativePath string    `json:"relative_path"`
	FileSize     int64     `json:"file_size"`
	KeyID        string    `json:"key_id"`
	MixMode      string    `json:"mix_mode"`
	SampleRate   uint32    `json:"sample_rate"`
	CreatedAt    time.Time `json:"created_at"`
}
