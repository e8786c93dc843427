package api

import (
	"github.com/btafoya/callrecorder/internal/config"
	"github.com/btafoya/callrecorder/internal/db"
	"github.com/btafoya/callrecorder/internal/storage"
	"github.com/btafoya/callrecorder/pkg/sip"
)

// Dependencies holds all dependencies for API handlers
type Dependencies struct {
	DB     *db.DB
	SIP    *sip.Server
	Config *config.Config
	// Storage is the recording pipeline's encrypted store, nil when
	// recording is disabled. RecordingHandler.Audio reads through it.
	Storage *storage.LocalStorage
}

// NewDependencies creates a new Dependencies instance
func NewDependencies(cfg *config.Config, database *db.DB, sipServer *sip.Server, store *storage.LocalStorage) *Dependencies {
	return &Dependencies{
		DB:      database,
		SIP:     sipServer,
		Config:  cfg,
		Storage: store,
	}
}
