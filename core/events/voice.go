package events

const (
	KindStateChanged  Kind = "state-changed"
	KindCaptureLevel  Kind = "capture-level"
	KindTranscript    Kind = "transcript"
	KindSpeechStarted Kind = "speech-started"
	KindSpeechEnded   Kind = "speech-ended"
	KindError         Kind = "error"
)

// StateChangedEvent is emitted on every voice-state transition.
type StateChangedEvent struct {
	Base
	from string
	to   string
}

func (e StateChangedEvent) From() string { return e.from }
func (e StateChangedEvent) To() string   { return e.to }

func NewStateChangedEvent(from, to string) StateChangedEvent {
	return StateChangedEvent{Base: NewBase(KindStateChanged), from: from, to: to}
}

// CaptureLevelEvent carries one normalized RMS level sample while recording.
type CaptureLevelEvent struct {
	Base
	level float64
}

func (e CaptureLevelEvent) Level() float64 { return e.level }

func NewCaptureLevelEvent(level float64) CaptureLevelEvent {
	return CaptureLevelEvent{Base: NewBase(KindCaptureLevel), level: level}
}

// TranscriptEvent is emitted when a recording has been transcribed.
type TranscriptEvent struct {
	Base
	transcript string
}

func (e TranscriptEvent) String() string     { return e.transcript }
func (e TranscriptEvent) Transcript() string { return e.transcript }

func NewTranscriptEvent(transcript string) TranscriptEvent {
	return TranscriptEvent{Base: NewBase(KindTranscript), transcript: transcript}
}

// SpeechStartedEvent is emitted when the speech queue starts draining an item.
type SpeechStartedEvent struct {
	Base
	text string
}

func (e SpeechStartedEvent) Text() string { return e.text }

func NewSpeechStartedEvent(text string) SpeechStartedEvent {
	return SpeechStartedEvent{Base: NewBase(KindSpeechStarted), text: text}
}

// SpeechEndedEvent is emitted when an item has finished playing or was
// interrupted.
type SpeechEndedEvent struct {
	Base
	text        string
	interrupted bool
}

func (e SpeechEndedEvent) Text() string      { return e.text }
func (e SpeechEndedEvent) Interrupted() bool { return e.interrupted }

func NewSpeechEndedEvent(text string, interrupted bool) SpeechEndedEvent {
	return SpeechEndedEvent{Base: NewBase(KindSpeechEnded), text: text, interrupted: interrupted}
}

// ErrorEvent carries a recoverable pipeline error to observers.
type ErrorEvent struct {
	Base
	err error
}

func (e ErrorEvent) Err() error     { return e.err }
func (e ErrorEvent) String() string { return e.err.Error() }

func NewErrorEvent(err error) ErrorEvent {
	return ErrorEvent{Base: NewBase(KindError), err: err}
}
