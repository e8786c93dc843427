package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"GOSIP_SIP_PORT", "GOSIP_HTTP_PORT", "GOSIP_DATA_DIR", "GOSIP_SIP_DOMAIN",
		"GOSIP_RECORDING_ENABLED", "GOSIP_DEBUG",
		"ENCRYPTION_KEY", "ENCRYPTION_KEY_ID", "MAX_STORAGE_GB", "DEFAULT_RETENTION_DAYS",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.SIPPort != DefaultSIPPort {
		t.Errorf("SIPPort = %d, want %d", cfg.SIPPort, DefaultSIPPort)
	}
	if cfg.HTTPPort != DefaultHTTPPort {
		t.Errorf("HTTPPort = %d, want %d", cfg.HTTPPort, DefaultHTTPPort)
	}
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, DefaultDataDir)
	}
	if !cfg.RecordingEnabled {
		t.Error("RecordingEnabled should default to true")
	}
	if cfg.EncryptionKeyID != DefaultEncryptionKeyID {
		t.Errorf("EncryptionKeyID = %q, want %q", cfg.EncryptionKeyID, DefaultEncryptionKeyID)
	}
	if cfg.MaxStorageGB != DefaultMaxStorageGB {
		t.Errorf("MaxStorageGB = %v, want %v", cfg.MaxStorageGB, DefaultMaxStorageGB)
	}
	if cfg.DefaultRetentionDays != DefaultRetentionDays {
		t.Errorf("DefaultRetentionDays = %d, want %d", cfg.DefaultRetentionDays, DefaultRetentionDays)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	os.Setenv("GOSIP_SIP_PORT", "5080")
	os.Setenv("GOSIP_HTTP_PORT", "9090")
	os.Setenv("GOSIP_RECORDING_ENABLED", "false")
	os.Setenv("MAX_STORAGE_GB", "12.5")
	defer func() {
		os.Unsetenv("GOSIP_SIP_PORT")
		os.Unsetenv("GOSIP_HTTP_PORT")
		os.Unsetenv("GOSIP_RECORDING_ENABLED")
		os.Unsetenv("MAX_STORAGE_GB")
	}()

	cfg := Load()

	if cfg.SIPPort != 5080 {
		t.Errorf("SIPPort = %d, want 5080", cfg.SIPPort)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d, want 9090", cfg.HTTPPort)
	}
	if cfg.RecordingEnabled {
		t.Error("RecordingEnabled should be false")
	}
	if cfg.MaxStorageGB != 12.5 {
		t.Errorf("MaxStorageGB = %v, want 12.5", cfg.MaxStorageGB)
	}
}

func TestRequireEncryptionKey(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireEncryptionKey(); err == nil {
		t.Error("RequireEncryptionKey should error when EncryptionKey is empty")
	}

	cfg.EncryptionKey = "deadbeef"
	if err := cfg.RequireEncryptionKey(); err != nil {
		t.Errorf("RequireEncryptionKey should not error when EncryptionKey is set: %v", err)
	}
}

func TestDBPathAndRecordingsPath(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/callrecorder-test"}

	if got, want := cfg.DBPath(), "/tmp/callrecorder-test/"+DefaultDBFile; got != want {
		t.Errorf("DBPath() = %q, want %q", got, want)
	}
	if got, want := cfg.RecordingsPath(), "/tmp/callrecorder-test/"+RecordingsDir; got != want {
		t.Errorf("RecordingsPath() = %q, want %q", got, want)
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := &Config{DataDir: t.TempDir() + "/nested"}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.DataDir, cfg.RecordingsPath()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%q should be a directory", dir)
		}
	}
}

func TestGetEnvBoolInvalidFallsBackToDefault(t *testing.T) {
	os.Setenv("TEST_BOOL_FLAG", "not-a-bool")
	defer os.Unsetenv("TEST_BOOL_FLAG")

	if got := getEnvBool("TEST_BOOL_FLAG", true); !got {
		t.Error("getEnvBool should fall back to default on invalid value")
	}
}

func TestGetEnvFloatInvalidFallsBackToDefault(t *testing.T) {
	os.Setenv("TEST_FLOAT_FLAG", "not-a-float")
	defer os.Unsetenv("TEST_FLOAT_FLAG")

	if got := getEnvFloat("TEST_FLOAT_FLAG", 42.0); got != 42.0 {
		t.Errorf("getEnvFloat should fall back to default on invalid value, got %v", got)
	}
}
