package texttospeech

import "github.com/voxline/vox-core/core/audio"

type SpeakerOptions struct {
	// SpeechStartedCallback is called when an utterance starts playing.
	SpeechStartedCallback func(text string)
	// SpeechEndedCallback is called when an utterance has finished playing
	// or was stopped.
	SpeechEndedCallback func(text string)

	Voice string

	EncodingInfo audio.EncodingInfo
}

type SpeakerOption func(*SpeakerOptions)

func WithSpeechStartedCallback(callback func(text string)) SpeakerOption {
	return func(o *SpeakerOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithSpeechEndedCallback(callback func(text string)) SpeakerOption {
	return func(o *SpeakerOptions) {
		o.SpeechEndedCallback = callback
	}
}

func WithVoice(voice string) SpeakerOption {
	return func(o *SpeakerOptions) {
		o.Voice = voice
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) SpeakerOption {
	return func(o *SpeakerOptions) {
		if encodingInfo.IsZero() {
			return
		}

		o.EncodingInfo = encodingInfo
	}
}
