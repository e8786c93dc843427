package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/btafoya/callrecorder/internal/models"
)

var ErrRecordingNotFound = errors.New("recording not found")

// RecordingRepository handles database operations for call recording
// metadata.
type RecordingRepository struct {
	db *sql.DB
}

// NewRecordingRepository creates a new RecordingRepository.
func NewRecordingRepository(db *sql.DB) *RecordingRepository {
	return &RecordingRepository{db: db}
}

// Create inserts a new recording row after a successful
// storage.StoreRecording call.
func (r *RecordingRepository) Create(ctx context.Context, rec *models.Recording) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO recordings (call_id, relative_path, file_size, key_id, mix_mode, sample_rate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, rec.CallID, rec.RelativePath, rec.FileSize, rec.KeyID, rec.MixMode, rec.SampleRate)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

// GetByID retrieves a recording by ID.
func (r *RecordingRepository) GetByID(ctx context.Context, id int64) (*models.Recording, error) {
	rec := &models.Recording{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, call_id, relative_path, file_size, key_id, mix_mode, sample_rate, created_at
		FROM recordings WHERE id = ?
	`, id).Scan(&rec.ID, &rec.CallID, &rec.RelativePath, &rec.FileSize, &rec.KeyID, &rec.MixMode, &rec.SampleRate, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRecordingNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a recording row (not the underlying file; callers
// delete the file via storage.LocalStorage.DeleteRecording first).
func (r *RecordingRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRecordingNotFound
	}
	return nil
}

// ListByCall returns all recordings for a given call ID, most recent first.
func (r *RecordingRepository) ListByCall(ctx context.Context, callID string) ([]*models.Recording, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, call_id, relative_path, file_size, key_id, mix_mode, sample_rate, created_at
		FROM recordings WHERE call_id = ? ORDER BY created_at DESC
	`, callID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecordings(rows)
}

// List returns recordings with pagination, most recent first.
func (r *RecordingRepository) List(ctx context.Context, limit, offset int) ([]*models.Recording, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, call_id, relative_path, file_size, key_id, mix_mode, sample_rate, created_at
		FROM recordings ORDER BY created_at DESC LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecordings(rows)
}

func scanRecordings(rows *sql.Rows) ([]*models.Recording, error) {
	var recs []*models.Recording
	for rows.Next() {
		rec := &models.Recording{}
		if err := rows.Scan(&rec.ID, &rec.CallID, &rec.RelativePath, &rec.FileSize, &rec.KeyID, &rec.MixMode, &rec.SampleRate, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
