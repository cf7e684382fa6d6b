package encoding

import (
	"entiq/packages/common/logger"
)

var Log = logger.NewSource("ENCODING", logger.Default)
