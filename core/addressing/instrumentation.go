package addressing

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/voxline/vox-core/core/addressing"

var logger = otelslog.NewLogger(scopeName)
