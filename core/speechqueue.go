package session

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/voxline/vox-core/core/texttospeech"
	"go.opentelemetry.io/otel/codes"
)

// speechItem is one queued utterance. Items are identified so observers
// can correlate started/ended notifications with queue submissions.
type speechItem struct {
	ID   string
	Text string
}

// Speak sanitizes text and appends it to the speech queue. The queue is
// strict FIFO: items play in submission order with no overlap. The
// returned ID identifies the queued item; a text that sanitizes to
// nothing is dropped and yields an empty ID.
func (s *SessionController) Speak(text string) string {
	text = texttospeech.Sanitize(text)
	if text == "" {
		return ""
	}

	item := speechItem{ID: uuid.NewString(), Text: text}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ""
	}
	s.pending = append(s.pending, item)
	queued := len(s.pending)
	if !s.draining {
		s.draining = true
		go s.drainSpeech()
	}
	s.mu.Unlock()

	logger.Debug("queued speech item", "id", item.ID, "queued", queued)
	return item.ID
}

// Interrupt discards all queued speech and stops the current playback.
// No further item begins until a new Speak call arrives.
func (s *SessionController) Interrupt() {
	s.mu.Lock()
	s.pending = nil
	if s.draining {
		s.interrupted = true
	}
	s.mu.Unlock()

	s.stopSpeaker()
}

// QueueLength reports how many items are waiting, not counting the one
// currently playing.
func (s *SessionController) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *SessionController) stopSpeaker() {
	if s.speaker == nil {
		return
	}
	if err := s.speaker.Stop(); err != nil {
		s.emitError(fmt.Errorf("failed to stop playback: %w", err))
	}
}

// drainSpeech plays queued items one at a time until the queue is
// empty. Exactly one drain goroutine runs at a time, guarded by the
// draining flag.
func (s *SessionController) drainSpeech() {
	for {
		s.mu.Lock()
		if s.closed || len(s.pending) == 0 {
			s.draining = false
			settled := s.state == StateSpeaking
			if settled {
				s.state = StateIdle
			}
			s.mu.Unlock()

			if settled {
				s.emitStateChanged(StateSpeaking, StateIdle)
			}
			return
		}

		item := s.pending[0]
		s.pending = s.pending[1:]
		// The speaking state is only claimed from idle: an active
		// capture keeps its state while playback runs alongside it.
		from := s.state
		claimed := s.state == StateIdle
		if claimed {
			s.state = StateSpeaking
		}
		s.mu.Unlock()

		if claimed {
			s.emitStateChanged(from, StateSpeaking)
		}

		s.playItem(item)
	}
}

func (s *SessionController) playItem(item speechItem) {
	ctx, span := tracer.Start(s.baseContext, "play speech item")
	defer span.End()

	s.emitSpeechStarted(item.Text)

	var err error
	if s.speaker == nil || !s.speaker.IsAvailable() {
		err = fmt.Errorf("text-to-speech backend unavailable: %w", texttospeech.ErrUnavailable)
	} else if speakErr := s.speaker.Speak(ctx, item.Text); speakErr != nil {
		err = fmt.Errorf("failed to speak queued item: %w", speakErr)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.emitError(err)
	}

	s.mu.Lock()
	interrupted := s.interrupted
	s.interrupted = false
	s.mu.Unlock()

	s.emitSpeechEnded(item.Text, interrupted)
}
