// Package config loads the coordinator's YAML configuration and
// validates that the selected backends can actually run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Provider tags accepted by the recognizer and synthesizer selections.
const (
	RecognizerDeepgram   = "deepgram"
	RecognizerOpenAI     = "openai"
	RecognizerWhisperCPP = "whispercpp"

	SynthesizerDeepgram = "deepgram"

	CaptureSubprocess = "subprocess"
	CaptureMiniaudio  = "miniaudio"
	CapturePortAudio  = "portaudio"
)

type Config struct {
	// Identity overrides the terminal identity the session binds to.
	// Empty means derive it from the controlling terminal.
	Identity string `yaml:"identity"`
	// Port overrides the derived control port. Zero means derive it
	// from the identity.
	Port     int    `yaml:"port"`
	Language string `yaml:"language"`
	// InterruptionEnabled controls barge-in. Defaults to true.
	InterruptionEnabled *bool `yaml:"interruption_enabled"`

	Recognizer  RecognizerConfig  `yaml:"recognizer"`
	Synthesizer SynthesizerConfig `yaml:"synthesizer"`
	Audio       AudioConfig       `yaml:"audio"`
}

type RecognizerConfig struct {
	Provider string `yaml:"provider"`
	// WhisperBinary and WhisperModel configure the whispercpp provider.
	WhisperBinary string `yaml:"whisper_binary"`
	WhisperModel  string `yaml:"whisper_model"`
}

type SynthesizerConfig struct {
	Provider string `yaml:"provider"`
	Voice    string `yaml:"voice"`
}

type AudioConfig struct {
	CaptureBackend string `yaml:"capture_backend"`
	// Command overrides for the subprocess backends.
	CaptureCommand   []string `yaml:"capture_command"`
	PlayerCommand    []string `yaml:"player_command"`
	RawPlayerCommand []string `yaml:"raw_player_command"`
}

func Default() Config {
	return Config{
		Recognizer:  RecognizerConfig{Provider: RecognizerDeepgram},
		Synthesizer: SynthesizerConfig{Provider: SynthesizerDeepgram},
		Audio:       AudioConfig{CaptureBackend: CaptureSubprocess},
	}
}

// DefaultPath returns the conventional config location. The file is
// optional; a missing file means defaults.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "vox-core", "config.yaml")
	}
	return ""
}

// Load reads a config file and fills unset fields with defaults. An
// empty path loads the default location; a missing file is not an
// error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Recognizer.Provider == "" {
		c.Recognizer.Provider = RecognizerDeepgram
	}
	if c.Synthesizer.Provider == "" {
		c.Synthesizer.Provider = SynthesizerDeepgram
	}
	if c.Audio.CaptureBackend == "" {
		c.Audio.CaptureBackend = CaptureSubprocess
	}
}

// Interruption reports the effective barge-in setting.
func (c Config) Interruption() bool {
	if c.InterruptionEnabled == nil {
		return true
	}
	return *c.InterruptionEnabled
}

// Validate rejects configurations that cannot start: unknown provider
// tags and missing credentials for the selected cloud backends.
// Credentials live in the environment, never in the config file.
func (c Config) Validate() error {
	switch c.Recognizer.Provider {
	case RecognizerDeepgram:
		if os.Getenv("DEEPGRAM_API_KEY") == "" {
			return fmt.Errorf("recognizer %q requires DEEPGRAM_API_KEY to be set", c.Recognizer.Provider)
		}
	case RecognizerOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("recognizer %q requires OPENAI_API_KEY to be set", c.Recognizer.Provider)
		}
	case RecognizerWhisperCPP:
		// Availability of the binary and model is checked at runtime.
	default:
		return fmt.Errorf("unknown recognizer provider %q", c.Recognizer.Provider)
	}

	switch c.Synthesizer.Provider {
	case SynthesizerDeepgram:
		if os.Getenv("DEEPGRAM_API_KEY") == "" {
			return fmt.Errorf("synthesizer %q requires DEEPGRAM_API_KEY to be set", c.Synthesizer.Provider)
		}
	default:
		return fmt.Errorf("unknown synthesizer provider %q", c.Synthesizer.Provider)
	}

	switch c.Audio.CaptureBackend {
	case CaptureSubprocess, CaptureMiniaudio, CapturePortAudio:
	default:
		return fmt.Errorf("unknown capture backend %q", c.Audio.CaptureBackend)
	}

	return nil
}
