package mongodb

import (
	"entiq/packages/common/logger"
	"entiq/packages/core/meta"
)

var dbLogger = logger.NewSource("MONGODB", logger.Default)

type driver struct {
	*connector
	*seeker
	*repository
}

// NewDriver builds the document adapter. One collection per entity,
// the record id doubles as the document _id.
func NewDriver(provider meta.Provider) *driver {
	con := &connector{provider: provider}

	d := &driver{
		connector:  con,
		seeker:     &seeker{con},
		repository: &repository{con: con},
	}

	// The synthetic cascade walks back through the full repository.
	d.repository.self = d

	return d
}
