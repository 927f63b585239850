package control

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/voxline/vox-core/core/control"

var logger = otelslog.NewLogger(scopeName)
