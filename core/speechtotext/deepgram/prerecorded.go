package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/rest/interfaces"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"

	"github.com/voxline/vox-core/core/audio"
	"github.com/voxline/vox-core/core/speechtotext"
)

const defaultListenURL = "https://api.deepgram.com/v1/listen"

// TranscriptionClient uploads completed recordings to Deepgram's pre-recorded
// listen endpoint.
type TranscriptionClient struct {
	apiKey    string
	listenURL string
	client    *http.Client
}

type ClientOption func(*TranscriptionClient)

// WithListenURL overrides the listen endpoint, primarily for tests.
func WithListenURL(listenURL string) ClientOption {
	return func(c *TranscriptionClient) {
		c.listenURL = listenURL
	}
}

func NewTranscriptionClient(opts ...ClientOption) *TranscriptionClient {
	apiKey := os.Getenv("DEEPGRAM_API_KEY")

	client := &TranscriptionClient{
		apiKey:    apiKey,
		listenURL: defaultListenURL,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(client)
	}

	return client
}

func (c *TranscriptionClient) IsAvailable() bool {
	return c.apiKey != ""
}

func (c *TranscriptionClient) Transcribe(ctx context.Context, pcm []byte, opts ...speechtotext.TranscriptionOption) (string, error) {
	ctx, span := tracer.Start(ctx, "deepgram prerecorded transcription")
	defer span.End()

	if !c.IsAvailable() {
		return "", fmt.Errorf("deepgram api key not found: %w", speechtotext.ErrUnavailable)
	}

	options := &speechtotext.TranscriptionOptions{EncodingInfo: audio.GetDefaultEncodingInfo()}
	for _, opt := range opts {
		opt(options)
	}

	wav, err := audio.EncodeWAV(pcm, options.EncodingInfo)
	if err != nil {
		return "", fmt.Errorf("failed to build wav container: %w", err)
	}

	listenURL, err := url.Parse(c.listenURL)
	if err != nil {
		return "", fmt.Errorf("invalid listen url: %w", err)
	}
	queryParams := listenURL.Query()
	queryParams.Set("model", "nova-3")
	queryParams.Set("smart_format", "true")
	if options.Language != "" {
		queryParams.Set("language", options.Language)
	}
	listenURL.RawQuery = queryParams.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, listenURL.String(), bytes.NewReader(wav))
	if err != nil {
		return "", fmt.Errorf("failed to build listen request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("failed to upload audio to deepgram: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("deepgram returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	var parsedResp listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsedResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal deepgram response: %w", err)
	}

	return extractTranscript(parsedResp), nil
}

func (c *TranscriptionClient) Close(context.Context) error {
	c.client.CloseIdleConnections()
	return nil
}

// listenResponse covers the slice of the pre-recorded response schema this
// client consumes; alternatives reuse the SDK's wire type.
type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []api.Alternative `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func extractTranscript(resp listenResponse) string {
	if len(resp.Results.Channels) == 0 {
		return ""
	}
	if len(resp.Results.Channels[0].Alternatives) == 0 {
		return ""
	}

	return strings.TrimSpace(resp.Results.Channels[0].Alternatives[0].Transcript)
}
