package control

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	session "github.com/voxline/vox-core/core"
	"github.com/voxline/vox-core/core/speechtotext"
)

type fakeCapturer struct {
	mu     sync.Mutex
	active bool
	pcm    []byte
}

func (c *fakeCapturer) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = true
	return nil
}

func (c *fakeCapturer) Stop() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	return c.pcm, nil
}

func (c *fakeCapturer) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

type fakeTranscriber struct {
	transcript string
}

func (f *fakeTranscriber) Transcribe(context.Context, []byte, ...speechtotext.TranscriptionOption) (string, error) {
	return f.transcript, nil
}

func (f *fakeTranscriber) IsAvailable() bool           { return true }
func (f *fakeTranscriber) Close(context.Context) error { return nil }

type fakeSpeaker struct {
	mu     sync.Mutex
	spoken []string
}

func (f *fakeSpeaker) Speak(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	return nil
}

func (f *fakeSpeaker) Stop() error                 { return nil }
func (f *fakeSpeaker) IsAvailable() bool           { return true }
func (f *fakeSpeaker) Close(context.Context) error { return nil }

func (f *fakeSpeaker) spokenTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

type fakePresenter struct {
	mu        sync.Mutex
	tty       string
	countdown []string
	ready     bool
}

func (p *fakePresenter) BindTTY(identity string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tty = identity
	return nil
}

func (p *fakePresenter) StartCountdown(preview string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.countdown = append(p.countdown, "start:"+preview)
}

func (p *fakePresenter) CancelCountdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.countdown = append(p.countdown, "cancel")
}

func (p *fakePresenter) CompleteCountdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.countdown = append(p.countdown, "send")
}

func (p *fakePresenter) ShowReady() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = true
}

func newTestServer(t *testing.T, opts ...session.SessionOption) (*httptest.Server, *session.SessionController) {
	t.Helper()

	controller := session.NewSessionController("test", opts...)
	t.Cleanup(controller.Close)

	server := httptest.NewServer(NewServer(controller, WithPort(1)).Handler())
	t.Cleanup(server.Close)
	return server, controller
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "text/plain", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeStatus(t *testing.T, resp *http.Response) statusResponse {
	t.Helper()
	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	return status
}

func TestPTTStartBeginsCapture(t *testing.T) {
	server, controller := newTestServer(t, session.WithCapturer(&fakeCapturer{}))

	resp := post(t, server.URL+"/ptt/start", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if controller.State() != session.StateListening {
		t.Fatalf("expected listening state, got %s", controller.State())
	}

	status := decodeStatus(t, get(t, server.URL+"/status"))
	if !status.CaptureActive {
		t.Fatal("expected status to report an active capture")
	}
	if status.State != session.StateListening {
		t.Fatalf("expected listening state in status, got %s", status.State)
	}
}

func TestWrongMethodIsRejected(t *testing.T) {
	server, _ := newTestServer(t)

	resp := get(t, server.URL+"/ptt/start")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestUnknownRouteIsRejected(t *testing.T) {
	server, _ := newTestServer(t)

	resp := get(t, server.URL+"/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestTranscriptionReadsAndClears(t *testing.T) {
	server, controller := newTestServer(t,
		session.WithCapturer(&fakeCapturer{pcm: []byte{1, 2, 3, 4}}),
		session.WithTranscriber(&fakeTranscriber{transcript: "turn on the lights"}),
	)

	post(t, server.URL+"/ptt/start", "")
	post(t, server.URL+"/ptt/stop", "")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !controller.Status().TranscriptPending {
		time.Sleep(5 * time.Millisecond)
	}

	resp := get(t, server.URL+"/transcription")
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "turn on the lights" {
		t.Fatalf("expected transcript, got %q", string(body))
	}

	resp = get(t, server.URL+"/transcription")
	body, _ = io.ReadAll(resp.Body)
	if string(body) != "" {
		t.Fatalf("expected second read to be empty, got %q", string(body))
	}
}

func TestSpeakEnqueues(t *testing.T) {
	speaker := &fakeSpeaker{}
	server, _ := newTestServer(t, session.WithSpeaker(speaker))

	resp := post(t, server.URL+"/speak", "hello there")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(speaker.spokenTexts()) == 0 {
		time.Sleep(5 * time.Millisecond)
	}

	spoken := speaker.spokenTexts()
	if len(spoken) != 1 || spoken[0] != "hello there" {
		t.Fatalf("expected the queued text to play, got %v", spoken)
	}
}

func TestPresenterHints(t *testing.T) {
	presenter := &fakePresenter{}
	controller := session.NewSessionController("test")
	t.Cleanup(controller.Close)

	server := httptest.NewServer(NewServer(controller, WithPort(1), WithPresenter(presenter)).Handler())
	t.Cleanup(server.Close)

	post(t, server.URL+"/tty", "/dev/pts/3")
	post(t, server.URL+"/countdown/start", "send this text")
	post(t, server.URL+"/countdown/cancel", "")
	post(t, server.URL+"/countdown/send", "")
	post(t, server.URL+"/state/ready", "")

	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	if presenter.tty != "/dev/pts/3" {
		t.Fatalf("expected tty binding, got %q", presenter.tty)
	}
	want := []string{"start:send this text", "cancel", "send"}
	if len(presenter.countdown) != len(want) {
		t.Fatalf("expected countdown hints %v, got %v", want, presenter.countdown)
	}
	for i := range want {
		if presenter.countdown[i] != want[i] {
			t.Fatalf("expected countdown hints %v, got %v", want, presenter.countdown)
		}
	}
	if !presenter.ready {
		t.Fatal("expected ready hint to reach the presenter")
	}

	if !controller.Status().Ready {
		t.Fatal("expected the session to be marked ready")
	}
}

func TestStatusReportsIdentityAndUptime(t *testing.T) {
	server, _ := newTestServer(t)

	status := decodeStatus(t, get(t, server.URL+"/status"))
	if status.Identity != "test" {
		t.Fatalf("expected identity test, got %q", status.Identity)
	}
	if status.UptimeSeconds < 0 {
		t.Fatalf("expected non-negative uptime, got %f", status.UptimeSeconds)
	}
	if status.State != session.StateIdle {
		t.Fatalf("expected idle state, got %s", status.State)
	}
}
