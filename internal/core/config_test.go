package core

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jo-hoe/gotransform/internal/backend/commands"
	"github.com/jo-hoe/gotransform/internal/backend/commandstructure"
	"github.com/jo-hoe/gotransform/internal/backend/database"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	return configPath
}

func TestLoadConfig_Success(t *testing.T) {
	configPath := writeConfig(t, `port: 9090
logLevel: debug
dateLayout: "2006-01-02"
database:
  type: sqlite
  connectionString: "photos.db"
upload:
  commands:
    - name: PixelScaleCommand
      maxWidth: 640
video:
  encoder: gif
  maxJobs: 3
`)

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Port != 9090 {
		t.Errorf("Expected port to be 9090, got %d", config.Port)
	}
	if config.Database.Type != "sqlite" || config.Database.ConnectionString != "photos.db" {
		t.Errorf("unexpected database config: %+v", config.Database)
	}
	if len(config.Upload.Commands) != 1 || config.Upload.Commands[0].Params["maxWidth"] != 640 {
		t.Errorf("unexpected upload commands: %+v", config.Upload.Commands)
	}
	if config.Video.Encoder != "gif" || config.Video.MaxJobs != 3 {
		t.Errorf("unexpected video config: %+v", config.Video)
	}
	// untouched keys fall back to defaults
	if config.Video.DefaultSecondsPerPhoto != defaultSecondsPerPhoto {
		t.Errorf("Expected default seconds per photo, got %v", config.Video.DefaultSecondsPerPhoto)
	}
	if config.ThumbnailWidth != defaultThumbnailWidth {
		t.Errorf("Expected default thumbnail width, got %d", config.ThumbnailWidth)
	}
	level, err := config.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v (%v)", level, err)
	}
}

func TestLoadConfig_FileNotFoundUsesDefaults(t *testing.T) {
	config, err := LoadConfig("/path/that/does/not/exist/config.yaml")
	if err != nil {
		t.Fatalf("Expected defaults for a missing file, got %v", err)
	}
	if config.Port != defaultPort || config.Database.Type != "memory" {
		t.Errorf("unexpected defaults: %+v", config)
	}
	if len(config.Upload.Commands) != 2 {
		t.Fatalf("Expected default upload pipeline of 2 commands, got %d", len(config.Upload.Commands))
	}
	if config.Upload.Commands[0].Name != "PngConverterCommand" || config.Upload.Commands[1].Name != "PixelScaleCommand" {
		t.Errorf("unexpected default upload pipeline: %+v", config.Upload.Commands)
	}
	if config.DateLayout != "02/01/2006" {
		t.Errorf("unexpected default date layout %q", config.DateLayout)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "invalid yaml", content: "port: [", wantErr: "failed to parse"},
		{name: "unknown database", content: "database:\n  type: mongo\n", wantErr: "unsupported database type"},
		{name: "unknown encoder", content: "video:\n  encoder: webm\n", wantErr: "unsupported video encoder"},
		{name: "bad log level", content: "logLevel: loud\n", wantErr: "invalid log level"},
		{name: "empty command name", content: "upload:\n  commands:\n    - maxWidth: 10\n", wantErr: "empty name"},
		{name: "duplicate command", content: "upload:\n  commands:\n    - name: PngConverterCommand\n    - name: PngConverterCommand\n", wantErr: "duplicate command name"},
		{name: "too long per photo", content: "video:\n  defaultSecondsPerPhoto: 600\n", wantErr: "defaultSecondsPerPhoto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if config != nil {
				t.Error("Expected config to be nil on error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_ShippedExample(t *testing.T) {
	config, err := LoadConfig(filepath.Join("..", "..", "config.yaml"))
	if err != nil {
		t.Fatalf("shipped config.yaml does not load: %v", err)
	}
	if config.Database.Type != database.TypeMemory {
		t.Errorf("shipped database type = %q, want %q", config.Database.Type, database.TypeMemory)
	}
	if _, err := commandstructure.NewCommandInvokerFromConfig(commandstructure.DefaultRegistry, config.Upload.Commands); err != nil {
		t.Errorf("shipped upload pipeline is invalid: %v", err)
	}
}

func TestDefaultConfig_UploadScalesByOrientation(t *testing.T) {
	params := DefaultConfig().Upload.Commands[1].Params
	if params["mode"] != commands.ScaleModeOrientation {
		t.Errorf("default PixelScaleCommand mode = %v, want %q", params["mode"], commands.ScaleModeOrientation)
	}
}
