package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voxline/vox-core/internal/utils"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for a missing file, got error: %v", err)
	}

	if cfg.Recognizer.Provider != RecognizerDeepgram {
		t.Fatalf("expected default recognizer, got %q", cfg.Recognizer.Provider)
	}
	if cfg.Audio.CaptureBackend != CaptureSubprocess {
		t.Fatalf("expected default capture backend, got %q", cfg.Audio.CaptureBackend)
	}
	if !cfg.Interruption() {
		t.Fatal("expected interruption to default to enabled")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	path := writeConfig(t, `
port: 49400
language: hr
interruption_enabled: false
recognizer:
  provider: whispercpp
  whisper_binary: /opt/whisper/whisper-cli
  whisper_model: /opt/whisper/models/base.bin
synthesizer:
  voice: aura-2-orion-en
audio:
  capture_backend: miniaudio
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Port != 49400 {
		t.Fatalf("expected port override, got %d", cfg.Port)
	}
	if cfg.Language != "hr" {
		t.Fatalf("expected language hr, got %q", cfg.Language)
	}
	if cfg.Interruption() {
		t.Fatal("expected interruption to be disabled")
	}
	if cfg.Recognizer.Provider != RecognizerWhisperCPP {
		t.Fatalf("expected whispercpp recognizer, got %q", cfg.Recognizer.Provider)
	}
	if cfg.Recognizer.WhisperModel != "/opt/whisper/models/base.bin" {
		t.Fatalf("expected model path, got %q", cfg.Recognizer.WhisperModel)
	}
	// Unset sections still get defaults.
	if cfg.Synthesizer.Provider != SynthesizerDeepgram {
		t.Fatalf("expected default synthesizer, got %q", cfg.Synthesizer.Provider)
	}
	if cfg.Synthesizer.Voice != "aura-2-orion-en" {
		t.Fatalf("expected voice override, got %q", cfg.Synthesizer.Voice)
	}
}

func TestInterruptionExplicitValues(t *testing.T) {
	cfg := Default()

	cfg.InterruptionEnabled = utils.Ptr(false)
	if cfg.Interruption() {
		t.Fatal("expected interruption to be disabled")
	}

	cfg.InterruptionEnabled = utils.Ptr(true)
	if !cfg.Interruption() {
		t.Fatal("expected interruption to be enabled")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "recognizer: [not a mapping")

	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestValidateRequiresCredentials(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation to fail without credentials")
	}
	if !strings.Contains(err.Error(), "DEEPGRAM_API_KEY") {
		t.Fatalf("expected the missing variable to be named, got %v", err)
	}

	t.Setenv("DEEPGRAM_API_KEY", "token")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected validation to pass with credentials, got %v", err)
	}
}

func TestValidateRejectsUnknownProviders(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "token")

	cfg := Default()
	cfg.Recognizer.Provider = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown recognizer to be rejected")
	}

	cfg = Default()
	cfg.Audio.CaptureBackend = "gramophone"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown capture backend to be rejected")
	}
}

func TestWhisperCPPNeedsNoCredentials(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "token") // still needed by the synthesizer
	t.Setenv("OPENAI_API_KEY", "")

	cfg := Default()
	cfg.Recognizer.Provider = RecognizerWhisperCPP
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected whispercpp to validate without cloud credentials, got %v", err)
	}
}
