package core

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/jo-hoe/gotransform/internal/backend/commands"
	"github.com/jo-hoe/gotransform/internal/backend/commandstructure"
	"github.com/jo-hoe/gotransform/internal/backend/database"
	"github.com/jo-hoe/gotransform/internal/backend/video"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort                  = 8080
	defaultThumbnailWidth        = 320
	defaultThumbnailCacheMB      = 64
	defaultSecondsPerPhoto       = 2.0
	defaultMaxJobs               = 10
	defaultUploadMaxWidth        = 800
	defaultUploadMaxHeight       = 600
	defaultFFmpegPath            = "ffmpeg"
	defaultLogLevel              = "info"
	maxConfiguredSecondsPerPhoto = 60.0
)

type Database struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
}

type Upload struct {
	Commands []commandstructure.CommandConfig `yaml:"commands"`
}

type Video struct {
	Encoder                string  `yaml:"encoder"`
	FFmpegPath             string  `yaml:"ffmpegPath"`
	DefaultSecondsPerPhoto float64 `yaml:"defaultSecondsPerPhoto"`
	MaxJobs                int     `yaml:"maxJobs"`
}

type ServiceConfig struct {
	Port             int      `yaml:"port"`
	LogLevel         string   `yaml:"logLevel"`
	LogFile          string   `yaml:"logFile"`
	DateLayout       string   `yaml:"dateLayout"`
	ThumbnailWidth   int      `yaml:"thumbnailWidth"`
	ThumbnailCacheMB int      `yaml:"thumbnailCacheMB"`
	Database         Database `yaml:"database"`
	Upload           Upload   `yaml:"upload"`
	Video            Video    `yaml:"video"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *ServiceConfig {
	config := &ServiceConfig{}
	config.applyDefaults()
	return config
}

// LoadConfig loads configuration from the specified YAML file.
// A missing file is not an error; defaults are used instead.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", configPath)
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config ServiceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}
	return &config, nil
}

func (c *ServiceConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.DateLayout == "" {
		c.DateLayout = video.DefaultDateLayout
	}
	if c.ThumbnailWidth == 0 {
		c.ThumbnailWidth = defaultThumbnailWidth
	}
	if c.ThumbnailCacheMB == 0 {
		c.ThumbnailCacheMB = defaultThumbnailCacheMB
	}
	if c.Database.Type == "" {
		c.Database.Type = database.TypeMemory
	}
	if c.Upload.Commands == nil {
		c.Upload.Commands = []commandstructure.CommandConfig{
			{Name: "PngConverterCommand", Params: map[string]any{}},
			{Name: "PixelScaleCommand", Params: map[string]any{
				"mode":      commands.ScaleModeOrientation,
				"maxWidth":  defaultUploadMaxWidth,
				"maxHeight": defaultUploadMaxHeight,
			}},
		}
	}
	if c.Video.Encoder == "" {
		c.Video.Encoder = video.EncoderFFmpeg
	}
	if c.Video.FFmpegPath == "" {
		c.Video.FFmpegPath = defaultFFmpegPath
	}
	if c.Video.DefaultSecondsPerPhoto == 0 {
		c.Video.DefaultSecondsPerPhoto = defaultSecondsPerPhoto
	}
	if c.Video.MaxJobs == 0 {
		c.Video.MaxJobs = defaultMaxJobs
	}
}

func (c *ServiceConfig) validate() error {
	switch c.Database.Type {
	case database.TypeMemory, database.TypeSQLite, database.TypeRedis:
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	switch c.Video.Encoder {
	case video.EncoderFFmpeg, video.EncoderGIF:
	default:
		return fmt.Errorf("unsupported video encoder: %s", c.Video.Encoder)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.ThumbnailWidth < 0 || c.ThumbnailCacheMB < 0 || c.Video.MaxJobs < 0 {
		return errors.New("thumbnailWidth, thumbnailCacheMB and video.maxJobs must not be negative")
	}
	if c.Video.DefaultSecondsPerPhoto < 0 || c.Video.DefaultSecondsPerPhoto > maxConfiguredSecondsPerPhoto {
		return fmt.Errorf("video.defaultSecondsPerPhoto must be between 0 and %v", maxConfiguredSecondsPerPhoto)
	}
	if err := validateCommands(c.Upload.Commands); err != nil {
		return fmt.Errorf("invalid upload command configuration: %w", err)
	}
	return nil
}

// SlogLevel parses LogLevel (debug, info, warn, error).
func (c *ServiceConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// validateCommands ensures all command configurations have required fields
func validateCommands(commands []commandstructure.CommandConfig) error {
	seenNames := make(map[string]bool)

	for i, cmd := range commands {
		if cmd.Name == "" {
			return fmt.Errorf("command at index %d has empty name", i)
		}
		if seenNames[cmd.Name] {
			return fmt.Errorf("duplicate command name: %s", cmd.Name)
		}
		seenNames[cmd.Name] = true
	}

	return nil
}
