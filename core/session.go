// Package session implements the push-to-talk coordinator: a single
// state machine that owns audio capture, transcription, and the queued
// speech pipeline for one terminal-bound session.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/voxline/vox-core/core/audio"
	"github.com/voxline/vox-core/core/events"
	"github.com/voxline/vox-core/core/speechtotext"
	"github.com/voxline/vox-core/core/texttospeech"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SessionController coordinates one voice session. All commands are
// safe for concurrent use; state transitions are serialized internally.
type SessionController struct {
	identity     string
	encodingInfo audio.EncodingInfo
	language     string

	capturer    Capturer
	transcriber speechtotext.Transcriber
	speaker     texttospeech.Speaker
	callbacks   sessionCallbacks

	// cmdMu serializes capture commands end to end, including the
	// capturer start/stop they perform. mu guards the fields below and
	// is never held across a backend call.
	cmdMu sync.Mutex

	mu                  sync.Mutex
	state               VoiceState
	generation          uint64
	pending             []speechItem
	draining            bool
	interrupted         bool
	interruptionEnabled bool
	ready               bool
	closed              bool

	mailbox   transcriptMailbox
	startedAt time.Time

	closeOnce   sync.Once
	baseContext context.Context
}

// NewSessionController creates a controller bound to a terminal
// identity. Backends are wired through options; a controller without a
// transcriber or speaker still runs, reporting those pipelines as
// unavailable when exercised.
func NewSessionController(identity string, opts ...SessionOption) *SessionController {
	s := &SessionController{
		identity:            identity,
		encodingInfo:        audio.EncodingInfo{SampleRate: audio.DefaultSampleRate, Format: audio.EncodingLinear16},
		interruptionEnabled: true,
		state:               StateIdle,
		startedAt:           time.Now(),
		baseContext:         context.Background(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Identity returns the opaque terminal identity this session is bound to.
func (s *SessionController) Identity() string { return s.identity }

// State returns the current voice state.
func (s *SessionController) State() VoiceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetReady flags the session as ready for input. The flag is purely
// informational; it feeds the status report and the presenter.
func (s *SessionController) SetReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

// EmitCaptureLevel forwards one normalized level sample to observers.
// Samples arriving outside of an active capture are dropped. Intended
// to be wired as the capture backend's level callback.
func (s *SessionController) EmitCaptureLevel(level float64) {
	s.mu.Lock()
	listening := s.state == StateListening
	s.mu.Unlock()
	if !listening {
		return
	}

	s.emit(events.NewCaptureLevelEvent(level))
	if cb := s.callbacks.onCaptureLevel; cb != nil {
		cb(level)
	}
}

// Close shuts the session down: pending speech is discarded, playback
// and capture stop, and backends are released. Close is idempotent.
func (s *SessionController) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.pending = nil
		capturing := s.state == StateListening
		s.state = StateIdle
		s.mu.Unlock()

		if s.speaker != nil {
			if err := s.speaker.Stop(); err != nil {
				s.recordCloseError(fmt.Errorf("failed to stop playback: %w", err))
			}
			if err := s.speaker.Close(s.baseContext); err != nil {
				s.recordCloseError(fmt.Errorf("failed to close text-to-speech client: %w", err))
			}
		}

		if capturing && s.capturer != nil {
			if _, err := s.capturer.Stop(); err != nil {
				s.recordCloseError(fmt.Errorf("failed to stop capture: %w", err))
			}
		}

		if s.transcriber != nil {
			if err := s.transcriber.Close(s.baseContext); err != nil {
				s.recordCloseError(fmt.Errorf("failed to close speech-to-text client: %w", err))
			}
		}
	})
}

func (s *SessionController) recordCloseError(err error) {
	span := trace.SpanFromContext(s.baseContext)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.Error("session close error", "error", err)
}

func (s *SessionController) emit(event events.Event) {
	if cb := s.callbacks.onEvent; cb != nil {
		cb(event)
	}
}

func (s *SessionController) emitStateChanged(from, to VoiceState) {
	logger.Debug("voice state changed", "from", from, "to", to)
	s.emit(events.NewStateChangedEvent(from.String(), to.String()))
	if cb := s.callbacks.onStateChanged; cb != nil {
		cb(from, to)
	}
}

func (s *SessionController) emitTranscript(transcript string) {
	s.emit(events.NewTranscriptEvent(transcript))
	if cb := s.callbacks.onTranscript; cb != nil {
		cb(transcript)
	}
}

func (s *SessionController) emitSpeechStarted(text string) {
	s.emit(events.NewSpeechStartedEvent(text))
	if cb := s.callbacks.onSpeechStarted; cb != nil {
		cb(text)
	}
}

func (s *SessionController) emitSpeechEnded(text string, interrupted bool) {
	s.emit(events.NewSpeechEndedEvent(text, interrupted))
	if cb := s.callbacks.onSpeechEnded; cb != nil {
		cb(text, interrupted)
	}
}

func (s *SessionController) emitError(err error) {
	logger.Error("session pipeline error", "error", err)
	s.emit(events.NewErrorEvent(err))
	if cb := s.callbacks.onError; cb != nil {
		cb(err)
	}
}
