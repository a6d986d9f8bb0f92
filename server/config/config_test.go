package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func valid() *Config {
	return &Config{
		Paths: PathsConfig{
			DownloadPath:   "Downloads",
			DownloaderPath: "yt-dlp",
		},
		Transfer: TransferConfig{ChunkSize: 1 << 20, RequestTimeout: time.Minute},
		Convert:  ConvertConfig{TargetExt: "mp3", AutoConvertAudio: true},
	}
}

func TestValidate(t *testing.T) {
	if err := valid().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := valid()
	c.Transfer.ChunkSize = 0
	c.Convert.TargetExt = ".mp3"
	c.Authentication.RequireAuth = true

	err := c.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"chunk_size", "target_ext", "jwt_secret"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %s in %q", want, err)
		}
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yml")

	if err := valid().WriteDefault(path, false); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var got Config
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Paths.DownloadPath != "Downloads" || got.Convert.TargetExt != "mp3" || !got.Convert.AutoConvertAudio {
		t.Fatalf("unexpected round trip: %+v", got)
	}

	if err := valid().WriteDefault(path, false); err == nil {
		t.Fatal("expected an error when the file exists")
	}
	if err := valid().WriteDefault(path, true); err != nil {
		t.Fatal(err)
	}
}
