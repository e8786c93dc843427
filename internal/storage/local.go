package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/btafoya/callrecorder/internal/recording"
)

// StoredRecording describes a successfully stored, encrypted recording.
type StoredRecording struct {
	RelativePath string
	FileSize     int64
	KeyID        string
}

// StorageInfo summarizes quota usage for the storage tree.
type StorageInfo struct {
	TotalFiles          int
	TotalSizeBytes      int64
	AvailableSpaceBytes int64
	QuotaBytes          int64
}

// clock lets tests control "now" without depending on wall time.
type clock func() time.Time

// LocalStorage is a date-partitioned, quota-bounded, encrypted-at-rest
// store for opaque byte blobs addressed by relative path. Quota
// accounting walks the tree on demand rather than caching a running
// total, so it self-heals after out-of-band edits; every check-then-write
// happens under mu so concurrent stores cannot jointly overshoot the
// quota.
type LocalStorage struct {
	mu         sync.Mutex
	baseDir    string
	quotaBytes int64
	enc        *EncryptionContext
	now        clock
}

// New creates a LocalStorage rooted at baseDir with the given quota in
// gigabytes and encryption context. It does not touch the filesystem;
// call Init to create baseDir.
func New(baseDir string, maxGB float64, enc *EncryptionContext) *LocalStorage {
	return &LocalStorage{
		baseDir:    baseDir,
		quotaBytes: int64(maxGB * (1 << 30)),
		enc:        enc,
		now:        time.Now,
	}
}

// Init creates baseDir if absent. Idempotent.
func (s *LocalStorage) Init() error {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("%w: create base dir: %v", recording.ErrIO, err)
	}
	return nil
}

// BasePath returns the storage root, for diagnostics.
func (s *LocalStorage) BasePath() string {
	return s.baseDir
}

// CheckQuota reports whether adding nBytes would stay within the
// configured quota, based on the current on-disk total.
func (s *LocalStorage) CheckQuota(nBytes int64) (bool, error) {
	total, _, err := s.walk()
	if err != nil {
		return false, err
	}
	return total+nBytes <= s.quotaBytes, nil
}

// StoreRecording encrypts plaintext, writes it atomically under
// baseDir/YYYY/MM/DD/<callID>_<unixMillis>.<ext> (UTC date at store time),
// and returns its stored location. Fails with a *recording.QuotaExceededError
// if the encrypted size would overflow the quota; the check and the write
// happen under the same lock so two concurrent stores that together fit
// both succeed, and two that don't cannot jointly overshoot it: whichever
// takes the lock second fails cleanly.
func (s *LocalStorage) StoreRecording(callID string, plaintext []byte, ext string) (StoredRecording, error) {
	ciphertext, err := s.enc.Encrypt(plaintext)
	if err != nil {
		return StoredRecording{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total, _, err := s.walk()
	if err != nil {
		return StoredRecording{}, err
	}
	available := s.quotaBytes - total
	if int64(len(ciphertext)) > available {
		if available < 0 {
			available = 0
		}
		return StoredRecording{}, &recording.QuotaExceededError{
			Requested: int64(len(ciphertext)),
			Available: available,
		}
	}

	now := s.now().UTC()
	relDir := filepath.Join(fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", now.Month()), fmt.Sprintf("%02d", now.Day()))
	fileName := fmt.Sprintf("%s_%d.%s", callID, now.UnixMilli(), ext)
	relPath := filepath.Join(relDir, fileName)
	absDir := filepath.Join(s.baseDir, relDir)
	absPath := filepath.Join(s.baseDir, relPath)

	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return StoredRecording{}, fmt.Errorf("%w: create date dir: %v", recording.ErrIO, err)
	}

	tmpPath := absPath + ".tmp"
	if err := os.WriteFile(tmpPath, ciphertext, 0o600); err != nil {
		return StoredRecording{}, fmt.Errorf("%w: write temp file: %v", recording.ErrIO, err)
	}
	if err := os.Rename(tmpPath, absPath); err != nil {
		os.Remove(tmpPath)
		return StoredRecording{}, fmt.Errorf("%w: rename into place: %v", recording.ErrIO, err)
	}

	return StoredRecording{
		RelativePath: relPath,
		FileSize:     int64(len(ciphertext)),
		KeyID:        s.enc.KeyID(),
	}, nil
}

// GetRecording reads and decrypts the blob at relativePath. Any path that
// does not resolve strictly beneath baseDir after normalization — a `..`
// segment, an absolute path — is treated as not-found, never read.
func (s *LocalStorage) GetRecording(relativePath string) ([]byte, error) {
	absPath, err := s.safeJoin(relativePath)
	if err != nil {
		return nil, err
	}

	ciphertext, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", recording.ErrFileNotFound, relativePath)
		}
		return nil, fmt.Errorf("%w: read %s: %v", recording.ErrIO, relativePath, err)
	}

	return s.enc.Decrypt(ciphertext)
}

// DeleteRecording removes the file at relativePath, then removes any
// newly-empty ancestor directory up to (but excluding) baseDir. Fails
// with ErrFileNotFound if the file is absent. Directory-cleanup failures
// are swallowed: they are neither returned nor logged, and the call still
// returns nil, since the primary delete has already committed.
func (s *LocalStorage) DeleteRecording(relativePath string) error {
	absPath, err := s.safeJoin(relativePath)
	if err != nil {
		return err
	}

	if err := os.Remove(absPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", recording.ErrFileNotFound, relativePath)
		}
		return fmt.Errorf("%w: remove %s: %v", recording.ErrIO, relativePath, err)
	}

	s.gcEmptyAncestors(filepath.Dir(absPath))
	return nil
}

// gcEmptyAncestors removes dir and any now-empty parent directories, up
// to but excluding baseDir. Errors are intentionally swallowed: the
// delete itself already succeeded, and stray empty directories are
// harmless.
func (s *LocalStorage) gcEmptyAncestors(dir string) {
	base := filepath.Clean(s.baseDir)
	for {
		dir = filepath.Clean(dir)
		if dir == base || !strings.HasPrefix(dir, base+string(filepath.Separator)) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// GetStorageInfo reports current usage and quota. If baseDir does not
// exist, it returns zeros rather than failing.
func (s *LocalStorage) GetStorageInfo() (StorageInfo, error) {
	if _, err := os.Stat(s.baseDir); os.IsNotExist(err) {
		return StorageInfo{QuotaBytes: s.quotaBytes}, nil
	}

	total, count, err := s.walk()
	if err != nil {
		return StorageInfo{}, err
	}

	available := s.quotaBytes - total
	if available < 0 {
		available = 0
	}

	return StorageInfo{
		TotalFiles:          count,
		TotalSizeBytes:      total,
		AvailableSpaceBytes: available,
		QuotaBytes:          s.quotaBytes,
	}, nil
}

// walk computes total size and file count under baseDir by walking the
// tree. ".tmp" siblings left behind by a crashed StoreRecording are
// ignored rather than counted toward quota usage.
func (s *LocalStorage) walk() (totalBytes int64, fileCount int, err error) {
	if _, statErr := os.Stat(s.baseDir); os.IsNotExist(statErr) {
		return 0, 0, nil
	}

	walkErr := filepath.Walk(s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".tmp") {
			return nil
		}
		totalBytes += info.Size()
		fileCount++
		return nil
	})
	if walkErr != nil {
		return 0, 0, fmt.Errorf("%w: walk storage tree: %v", recording.ErrIO, walkErr)
	}
	return totalBytes, fileCount, nil
}

// safeJoin resolves relativePath against baseDir and rejects anything
// that would escape it.
func (s *LocalStorage) safeJoin(relativePath string) (string, error) {
	if filepath.IsAbs(relativePath) {
		return "", fmt.Errorf("%w: %s", recording.ErrFileNotFound, relativePath)
	}

	base := filepath.Clean(s.baseDir)
	joined := filepath.Join(base, relativePath)
	if joined != base && !strings.HasPrefix(joined, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", recording.ErrFileNotFound, relativePath)
	}
	return joined, nil
}
