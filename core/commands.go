package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/voxline/vox-core/core/speechtotext"
	"go.opentelemetry.io/otel/codes"
)

// BeginCapture starts buffering microphone audio. Calling it while
// already listening is a no-op. While speech is playing it barges in
// when interruption is enabled; otherwise the gesture is dropped.
func (s *SessionController) BeginCapture(ctx context.Context) error {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	return s.beginCapture(ctx)
}

func (s *SessionController) beginCapture(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "begin capture")
	defer span.End()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}

	switch s.state {
	case StateListening:
		s.mu.Unlock()
		return nil
	case StateSpeaking:
		if !s.interruptionEnabled {
			s.mu.Unlock()
			logger.Debug("dropping capture gesture, interruption disabled")
			return nil
		}
		s.pending = nil
		s.interrupted = true
		s.mu.Unlock()

		s.stopSpeaker()

		s.mu.Lock()
	case StateProcessing:
		// A new gesture supersedes the in-flight transcription; the
		// generation bump below makes its result stale.
	}

	s.generation++
	generation := s.generation
	from := s.state
	s.state = StateListening
	s.mailbox.Clear()
	s.mu.Unlock()

	if err := s.startCapture(ctx); err != nil {
		s.mu.Lock()
		if s.generation == generation && s.state == StateListening {
			s.state = StateIdle
		}
		s.mu.Unlock()

		recordedErr := fmt.Errorf("failed to start capture: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		s.emitError(recordedErr)
		return recordedErr
	}

	s.emitStateChanged(from, StateListening)
	return nil
}

func (s *SessionController) startCapture(ctx context.Context) error {
	if s.capturer == nil {
		return fmt.Errorf("no capture backend configured")
	}
	return s.capturer.Start(ctx)
}

// EndCapture stops the active recording and hands the buffered audio to
// the recognizer. Calling it while not listening is a no-op: no buffer
// is produced and the state does not change.
func (s *SessionController) EndCapture(ctx context.Context) error {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	return s.endCapture(ctx)
}

func (s *SessionController) endCapture(ctx context.Context) error {
	_, span := tracer.Start(ctx, "end capture")
	defer span.End()

	s.mu.Lock()
	if s.state != StateListening {
		s.mu.Unlock()
		return nil
	}
	generation := s.generation
	s.state = StateProcessing
	s.mu.Unlock()

	s.emitStateChanged(StateListening, StateProcessing)

	pcm, err := s.capturer.Stop()
	if err != nil {
		s.settleProcessing(generation)

		recordedErr := fmt.Errorf("failed to stop capture: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		s.emitError(recordedErr)
		return recordedErr
	}

	// Transcription runs on the session's base context: the command's
	// request context ends when the HTTP handler returns.
	go s.transcribe(s.baseContext, generation, pcm)
	return nil
}

// ToggleCapture begins a capture when none is active and ends the
// active one otherwise.
func (s *SessionController) ToggleCapture(ctx context.Context) error {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	s.mu.Lock()
	listening := s.state == StateListening
	s.mu.Unlock()

	if listening {
		return s.endCapture(ctx)
	}
	return s.beginCapture(ctx)
}

// ReadTranscript returns the most recent unread transcript and clears
// the mailbox. An empty mailbox yields the empty string.
func (s *SessionController) ReadTranscript() string {
	return s.mailbox.Take()
}

func (s *SessionController) transcribe(ctx context.Context, generation uint64, pcm []byte) {
	ctx, span := tracer.Start(ctx, "transcribe recording")
	defer span.End()

	var transcript string
	var err error
	switch {
	case s.transcriber == nil || !s.transcriber.IsAvailable():
		err = fmt.Errorf("speech-to-text backend unavailable: %w", speechtotext.ErrUnavailable)
	case len(pcm) == 0:
		// An empty recording is equivalent to a no-op gesture.
	default:
		opts := []speechtotext.TranscriptionOption{speechtotext.WithEncodingInfo(s.encodingInfo)}
		if s.language != "" {
			opts = append(opts, speechtotext.WithLanguage(s.language))
		}
		transcript, err = s.transcriber.Transcribe(ctx, pcm, opts...)
		transcript = strings.TrimSpace(transcript)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		logger.Debug("dropping stale transcription result", "generation", generation)
		return
	}
	settled := false
	if s.state == StateProcessing {
		s.state = StateIdle
		settled = true
	}
	if err == nil && transcript != "" {
		s.mailbox.Put(transcript)
	}
	s.mu.Unlock()

	if err != nil {
		s.emitError(fmt.Errorf("transcription failed: %w", err))
	} else if transcript != "" {
		s.emitTranscript(transcript)
	}
	if settled {
		s.emitStateChanged(StateProcessing, StateIdle)
	}
}

// settleProcessing returns the state machine to idle after a failed
// recording, unless a newer gesture already took over.
func (s *SessionController) settleProcessing(generation uint64) {
	s.mu.Lock()
	settled := generation == s.generation && s.state == StateProcessing
	if settled {
		s.state = StateIdle
	}
	s.mu.Unlock()

	if settled {
		s.emitStateChanged(StateProcessing, StateIdle)
	}
}
