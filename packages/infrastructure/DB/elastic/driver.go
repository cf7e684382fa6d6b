package elastic

import (
	"entiq/packages/common/logger"
	"entiq/packages/core/meta"
)

var dbLogger = logger.NewSource("ELASTIC", logger.Default)

type driver struct {
	*connector
	*seeker
	*repository
}

// NewDriver builds the search adapter. One index per entity. The
// index narrows candidates with range queries, final filtering,
// ordering and pagination run through the shared evaluators so
// results match the other backends exactly.
func NewDriver(provider meta.Provider) *driver {
	con := &connector{provider: provider}

	d := &driver{
		connector:  con,
		seeker:     &seeker{con},
		repository: &repository{con: con},
	}

	d.repository.self = d

	return d
}
