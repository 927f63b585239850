package presenter

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/voxline/vox-core/core/presenter"

var logger = otelslog.NewLogger(scopeName)
