package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/btafoya/callrecorder/internal/config"
	"github.com/btafoya/callrecorder/internal/db"
	"github.com/btafoya/callrecorder/internal/models"
	"github.com/btafoya/callrecorder/internal/recording"
	"github.com/go-chi/chi/v5"
)

// RecordingHandler serves read access to call recording metadata and the
// decrypted audio bytes. It never writes recordings itself — that
// happens inside pkg/sip/recording.go on call teardown.
type RecordingHandler struct {
	deps *Dependencies
}

// NewRecordingHandler creates a new RecordingHandler.
func NewRecordingHandler(deps *Dependencies) *RecordingHandler {
	return &RecordingHandler{deps: deps}
}

// RecordingResponse represents a recording in API responses.
type RecordingResponse struct {
	ID         int64  `json:"id"`
	CallID     string `json:"call_id"`
	FileSize   int64  `json:"file_size"`
	KeyID      string `json:"key_id"`
	MixMode    string `json:"mix_mode"`
	SampleRate uint32 `json:"sample_rate"`
	CreatedAt  string `json:"created_at"`
}

// List returns recordings, optionally filtered by call_id.
func (h *RecordingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit == 0 {
		limit = config.DefaultPageSize
	}
	if limit > config.MaxPageSize {
		limit = config.MaxPageSize
	}

	callID := r.URL.Query().Get("call_id")

	var recordings []*models.Recording
	var err error
	if callID != "" {
		recordings, err = h.deps.DB.Recordings.ListByCall(r.Context(), callID)
	} else {
		recordings, err = h.deps.DB.Recordings.List(r.Context(), limit, offset)
	}
	if err != nil {
		WriteInternalError(w)
		return
	}

	response := make([]*RecordingResponse, 0, len(recordings))
	for _, rec := range recordings {
		response = append(response, toRecordingResponse(rec))
	}

	WriteList(w, response, len(response), limit, offset)
}

// Get returns a single recording's metadata.
func (h *RecordingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteValidationError(w, "Invalid recording ID", nil)
		return
	}

	rec, err := h.deps.DB.Recordings.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrRecordingNotFound) {
			WriteNotFoundError(w, "Recording")
			return
		}
		WriteInternalError(w)
		return
	}

	WriteJSON(w, http.StatusOK, toRecordingResponse(rec))
}

// Audio streams the decrypted WAV bytes for a recording.
func (h *RecordingHandler) Audio(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteValidationError(w, "Invalid recording ID", nil)
		return
	}

	rec, err := h.deps.DB.Recordings.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrRecordingNotFound) {
			WriteNotFoundError(w, "Recording")
			return
		}
		WriteInternalError(w)
		return
	}

	if h.deps.Storage == nil {
		WriteInternalError(w)
		return
	}

	plaintext, err := h.deps.Storage.GetRecording(rec.RelativePath)
	if err != nil {
		if recording.KindOf(err) == recording.KindFileNotFound {
			WriteNotFoundError(w, "Recording audio")
			return
		}
		WriteInternalError(w)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(plaintext)))
	w.WriteHeader(http.StatusOK)
	w.Write(plaintext)
}

func toRecordingResponse(rec *models.Recording) *RecordingResponse {
	return &RecordingResponse{
		ID:         rec.ID,
		CallID:     rec.CallID,
		FileSize:   rec.FileSize,
		KeyID:      rec.KeyID,
		MixMode:    rec.MixMode,
		SampleRate: rec.SampleRate,
		CreatedAt:  rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
