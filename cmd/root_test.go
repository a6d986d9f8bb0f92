package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcopiovanello/yt-fetch/server/config"
)

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("APP_CONVERT_TARGET_EXT", "opus")

	if err := loadConfig(filepath.Join(t.TempDir(), "missing.yml")); err != nil {
		t.Fatal(err)
	}

	cfg := config.Instance()
	if cfg.Server.Port != 3033 {
		t.Fatalf("unexpected port %d", cfg.Server.Port)
	}
	if cfg.Transfer.ChunkSize != 1<<20 {
		t.Fatalf("unexpected chunk size %d", cfg.Transfer.ChunkSize)
	}
	if cfg.Transfer.RequestTimeout != 30*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.Transfer.RequestTimeout)
	}
	if cfg.Convert.TargetExt != "opus" {
		t.Fatalf("env override ignored, got %q", cfg.Convert.TargetExt)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "server:\n  port: 8080\nconvert:\n  target_ext: flac\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := loadConfig(path); err != nil {
		t.Fatal(err)
	}

	cfg := config.Instance()
	if cfg.Server.Port != 8080 || cfg.Convert.TargetExt != "flac" {
		t.Fatalf("file values not applied: %+v", cfg.Server)
	}
	if cfg.Path() != path {
		t.Fatalf("config path not recorded: %s", cfg.Path())
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("transfer:\n  chunk_size: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := loadConfig(path); err == nil {
		t.Fatal("expected a validation error")
	}
}
