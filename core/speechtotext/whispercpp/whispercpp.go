// Package whispercpp invokes a local whisper.cpp binary over a temporary WAV
// file. The call is synchronous: the subprocess reads the file and prints the
// transcript on stdout.
package whispercpp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.opentelemetry.io/otel/codes"

	"github.com/voxline/vox-core/core/audio"
	"github.com/voxline/vox-core/core/speechtotext"
)

const defaultBinary = "whisper-cli"

type TranscriptionClient struct {
	binary    string
	modelPath string
}

type ClientOption func(*TranscriptionClient)

func WithBinary(binary string) ClientOption {
	return func(c *TranscriptionClient) {
		c.binary = binary
	}
}

func WithModelPath(modelPath string) ClientOption {
	return func(c *TranscriptionClient) {
		c.modelPath = modelPath
	}
}

func NewTranscriptionClient(opts ...ClientOption) *TranscriptionClient {
	client := &TranscriptionClient{binary: defaultBinary}
	for _, opt := range opts {
		opt(client)
	}

	return client
}

func (c *TranscriptionClient) IsAvailable() bool {
	if _, err := exec.LookPath(c.binary); err != nil {
		return false
	}
	if c.modelPath != "" {
		if _, err := os.Stat(c.modelPath); err != nil {
			return false
		}
	}

	return true
}

func (c *TranscriptionClient) Transcribe(ctx context.Context, pcm []byte, opts ...speechtotext.TranscriptionOption) (string, error) {
	ctx, span := tracer.Start(ctx, "whispercpp transcription")
	defer span.End()

	if !c.IsAvailable() {
		return "", fmt.Errorf("whisper binary %q or model not found: %w", c.binary, speechtotext.ErrUnavailable)
	}

	options := &speechtotext.TranscriptionOptions{EncodingInfo: audio.GetDefaultEncodingInfo()}
	for _, opt := range opts {
		opt(options)
	}

	wav, err := audio.EncodeWAV(pcm, options.EncodingInfo)
	if err != nil {
		return "", fmt.Errorf("failed to build wav container: %w", err)
	}

	tempFile, err := os.CreateTemp("", "vox-core-*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create temp wav file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(wav); err != nil {
		tempFile.Close()
		return "", fmt.Errorf("failed to write temp wav file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp wav file: %w", err)
	}

	args := []string{"-f", tempFile.Name(), "--no-prints", "--no-timestamps"}
	if c.modelPath != "" {
		args = append(args, "-m", c.modelPath)
	}
	if options.Language != "" {
		args = append(args, "--language", options.Language)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		err := fmt.Errorf("whisper subprocess failed: %w: %s", err, strings.TrimSpace(stderr.String()))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return strings.TrimSpace(stdout.String()), nil
}

func (c *TranscriptionClient) Close(context.Context) error {
	return nil
}
