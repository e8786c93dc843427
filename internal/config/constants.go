// Package config provides configuration constants and settings for the
// call recorder
package config

import "time"

// Performance timeouts
const (
	CallSetupTimeout = 2 * time.Second
)

// API pagination defaults
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SIP Server defaults
const (
	DefaultSIPPort   = 5060
	DefaultHTTPPort  = 8080
	DefaultUserAgent = "callrecorder/1.0"
)

// Database paths
const (
	DefaultDataDir = "./data"
	DefaultDBFile  = "recorder.db"
	RecordingsDir  = "recordings"
)

// Call recording defaults
const (
	DefaultMaxStorageGB        = 100.0
	DefaultRetentionDays       = 90
	DefaultEncryptionKeyID     = "v1"
	DefaultRecordingMaxPackets = 0 // 0 means unbounded retention

	// RecordingSampleRate is the only sample rate the mixer assumes:
	// G.711 PCMU/PCMA are 8kHz-only, and this pipeline never resamples.
	RecordingSampleRate = 8000
)
