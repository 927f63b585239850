package audio

const (
	DefaultSampleRate = 16000
	DefaultFormat     = "linear16"
)

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Format: encodingFormat(DefaultFormat)}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// SilenceValue is the byte that encodes a silent sample in the format.
// Padding with it keeps a truncated buffer from ending on a click.
func (e EncodingInfo) SilenceValue() byte {
	if e.Format == EncodingMulaw {
		return 0xFF
	}
	return 0
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

// IsCompressed reports whether the format has to go through an external
// decoder before it can be written to a raw PCM sink.
func (e encodingFormat) IsCompressed() bool {
	return e == EncodingMP3
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingLinear16 encodingFormat = "linear16"
	EncodingMP3      encodingFormat = "mp3"
)
