package session

import (
	"context"

	"github.com/voxline/vox-core/core/audio"
	"github.com/voxline/vox-core/core/events"
	"github.com/voxline/vox-core/core/speechtotext"
	"github.com/voxline/vox-core/core/texttospeech"
)

type SessionOption func(*SessionController)

// Capturer is the capture backend contract. Start begins buffering
// microphone audio, Stop returns everything buffered since Start, and
// Active reports whether a capture is in flight.
type Capturer interface {
	Start(ctx context.Context) error
	Stop() ([]byte, error)
	Active() bool
}

func WithCapturer(client Capturer) SessionOption {
	return func(s *SessionController) { s.capturer = client }
}

func WithTranscriber(client speechtotext.Transcriber) SessionOption {
	return func(s *SessionController) { s.transcriber = client }
}

func WithSpeaker(client texttospeech.Speaker) SessionOption {
	return func(s *SessionController) { s.speaker = client }
}

// WithInterruptionEnabled controls whether a capture gesture arriving
// while speech is playing barges in. When disabled, the gesture is
// dropped instead.
func WithInterruptionEnabled(enabled bool) SessionOption {
	return func(s *SessionController) { s.interruptionEnabled = enabled }
}

// WithEncodingInfo overrides the PCM encoding the capture backend
// produces. The zero value is ignored.
func WithEncodingInfo(encodingInfo audio.EncodingInfo) SessionOption {
	return func(s *SessionController) {
		if encodingInfo.IsZero() {
			return
		}
		s.encodingInfo = encodingInfo
	}
}

// WithLanguage sets the transcription language hint passed to the
// recognizer on every recording.
func WithLanguage(language string) SessionOption {
	return func(s *SessionController) { s.language = language }
}

type sessionCallbacks struct {
	onEvent         func(event events.Event)
	onStateChanged  func(from, to VoiceState)
	onTranscript    func(transcript string)
	onCaptureLevel  func(level float64)
	onSpeechStarted func(text string)
	onSpeechEnded   func(text string, interrupted bool)
	onError         func(err error)
}

// WithEventCallback registers a sink that receives every session event.
// It fires in addition to the targeted callbacks below.
func WithEventCallback(callback func(event events.Event)) SessionOption {
	return func(s *SessionController) { s.callbacks.onEvent = callback }
}

func WithStateChangedCallback(callback func(from, to VoiceState)) SessionOption {
	return func(s *SessionController) { s.callbacks.onStateChanged = callback }
}

func WithTranscriptCallback(callback func(transcript string)) SessionOption {
	return func(s *SessionController) { s.callbacks.onTranscript = callback }
}

// WithCaptureLevelCallback registers a callback for normalized level
// samples while a capture is active. It runs inline on the audio path
// and should not block.
func WithCaptureLevelCallback(callback func(level float64)) SessionOption {
	return func(s *SessionController) { s.callbacks.onCaptureLevel = callback }
}

func WithSpeechStartedCallback(callback func(text string)) SessionOption {
	return func(s *SessionController) { s.callbacks.onSpeechStarted = callback }
}

func WithSpeechEndedCallback(callback func(text string, interrupted bool)) SessionOption {
	return func(s *SessionController) { s.callbacks.onSpeechEnded = callback }
}

func WithErrorCallback(callback func(err error)) SessionOption {
	return func(s *SessionController) { s.callbacks.onError = callback }
}
