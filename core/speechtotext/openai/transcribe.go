package openai

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"

	"github.com/voxline/vox-core/core/audio"
	"github.com/voxline/vox-core/core/speechtotext"
)

// TranscriptionClient uploads completed recordings to OpenAI's transcription
// endpoint.
type TranscriptionClient struct {
	apiKey string
	client openaisdk.Client
}

func NewTranscriptionClient() *TranscriptionClient {
	apiKey := os.Getenv("OPENAI_API_KEY")

	return &TranscriptionClient{
		apiKey: apiKey,
		client: openaisdk.NewClient(
			option.WithAPIKey(apiKey),
			option.WithHTTPClient(&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}),
		),
	}
}

func (c *TranscriptionClient) IsAvailable() bool {
	return c.apiKey != ""
}

func (c *TranscriptionClient) Transcribe(ctx context.Context, pcm []byte, opts ...speechtotext.TranscriptionOption) (string, error) {
	ctx, span := tracer.Start(ctx, "openai transcription")
	defer span.End()

	if !c.IsAvailable() {
		return "", fmt.Errorf("openai api key not found: %w", speechtotext.ErrUnavailable)
	}

	options := &speechtotext.TranscriptionOptions{EncodingInfo: audio.GetDefaultEncodingInfo()}
	for _, opt := range opts {
		opt(options)
	}

	wav, err := audio.EncodeWAV(pcm, options.EncodingInfo)
	if err != nil {
		return "", fmt.Errorf("failed to build wav container: %w", err)
	}

	params := openaisdk.AudioTranscriptionNewParams{
		File:  openaisdk.File(bytes.NewReader(wav), "recording.wav", "audio/wav"),
		Model: openaisdk.AudioModelWhisper1,
	}
	if options.Language != "" {
		params.Language = openaisdk.String(options.Language)
	}

	transcription, err := c.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("failed to transcribe audio with openai: %w", err)
	}

	return strings.TrimSpace(transcription.Text), nil
}

func (c *TranscriptionClient) Close(context.Context) error {
	return nil
}
