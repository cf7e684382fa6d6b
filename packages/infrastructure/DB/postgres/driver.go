package postgres

import (
	"entiq/packages/common/logger"
	"entiq/packages/core/meta"
)

var dbLogger = logger.NewSource("POSTGRES", logger.Default)

type driver struct {
	*connector
	*seeker
	*repository
}

// NewDriver builds the relational adapter. Tables and foreign keys are
// derived from entity metadata on Connect.
func NewDriver(provider meta.Provider) *driver {
	con := &connector{provider: provider}

	return &driver{
		connector:  con,
		seeker:     &seeker{con},
		repository: &repository{con},
	}
}
