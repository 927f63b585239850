package portaudio

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/voxline/vox-core/core/audio/portaudio"

var logger = otelslog.NewLogger(scopeName)
