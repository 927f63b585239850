package session

// VoiceState is the coordinator's public interaction state. Exactly one
// state is active at a time; all transitions go through the
// SessionController.
type VoiceState string

const (
	// StateIdle means no capture, transcription, or playback is running.
	StateIdle VoiceState = "idle"
	// StateListening means a capture is buffering microphone audio.
	StateListening VoiceState = "listening"
	// StateProcessing means a finished recording is being transcribed.
	StateProcessing VoiceState = "processing"
	// StateSpeaking means queued speech is being synthesized and played.
	StateSpeaking VoiceState = "speaking"
)

func (s VoiceState) String() string {
	return string(s)
}
