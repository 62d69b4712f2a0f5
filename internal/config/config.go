package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir    string `toml:"work_dir"`
	LogDir     string `toml:"log_dir"`
	VoicesFile string `toml:"voices_file"`
}

// Transcription contains the speech-to-text endpoint settings and the
// windowing parameters for the transcription driver.
type Transcription struct {
	EndpointURL   string `toml:"endpoint_url"`
	BearerToken   string `toml:"bearer_token"`
	WindowSeconds int    `toml:"window_seconds"`
	MinWindowMs   int    `toml:"min_window_ms"`
}

// Translation contains the chat-completion translator settings and the chunk
// budget for the chunked translation driver.
type Translation struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	ChunkChars     int    `toml:"chunk_chars"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Synthesis contains speech synthesis provider credentials and the silence
// detection parameters used to map synthesized audio back onto segments.
type Synthesis struct {
	ElevenLabsAPIKey  string  `toml:"elevenlabs_api_key"`
	ElevenLabsModel   string  `toml:"elevenlabs_model"`
	AzureAPIKey       string  `toml:"azure_api_key"`
	AzureRegion       string  `toml:"azure_region"`
	PauseMs           int     `toml:"pause_ms"`
	MinSilenceMs      int     `toml:"min_silence_ms"`
	SilenceThresholdB float64 `toml:"silence_threshold_db"`
	PaddingMs         int     `toml:"padding_ms"`
}

// Overlay contains compositor tunables.
type Overlay struct {
	VolumeReductionDB  float64 `toml:"volume_reduction_db"`
	StretchToleranceMs int     `toml:"stretch_tolerance_ms"`
	MuteOriginal       bool    `toml:"mute_original"`
}

// Workflow contains queue processing intervals.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for redub.
//
// Configuration sections by subsystem:
//   - Paths: working and log directories, voice catalog location
//   - Transcription: whisper endpoint and windowing parameters
//   - Translation: chat-completion translator and chunk budget
//   - Synthesis: TTS provider credentials and silence detection tunables
//   - Overlay: compositor volume and stretch settings
//   - Workflow: queue polling intervals
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcription Transcription `toml:"transcription"`
	Translation   Translation   `toml:"translation"`
	Synthesis     Synthesis     `toml:"synthesis"`
	Overlay       Overlay       `toml:"overlay"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/redub/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/redub/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("redub.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for pipeline operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for audio processing.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.WorkDir, &c.Paths.LogDir, &c.Paths.VoicesFile} {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.Transcription.EndpointURL = strings.TrimSpace(c.Transcription.EndpointURL)
	c.Transcription.BearerToken = strings.TrimSpace(c.Transcription.BearerToken)
	c.Translation.APIKey = strings.TrimSpace(c.Translation.APIKey)
	c.Translation.BaseURL = strings.TrimSpace(c.Translation.BaseURL)
	c.Translation.Model = strings.TrimSpace(c.Translation.Model)
	c.Synthesis.ElevenLabsAPIKey = strings.TrimSpace(c.Synthesis.ElevenLabsAPIKey)
	c.Synthesis.AzureAPIKey = strings.TrimSpace(c.Synthesis.AzureAPIKey)
	c.Synthesis.AzureRegion = strings.TrimSpace(c.Synthesis.AzureRegion)
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
