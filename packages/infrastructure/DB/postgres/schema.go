package postgres

import (
	"strings"

	"entiq/packages/core/meta"
)

// Every entity maps to one table: the id as a real uuid primary key,
// the rest of the record in a jsonb payload. Reference fields are
// additionally mirrored into real uuid columns so deletes cascade
// through native foreign keys.

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(strings.ToLower(name), `"`, `""`) + `"`
}

// quoteName keeps the original case. Used for index names, the
// conflict mapper parses the field back out of them.
func quoteName(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func tableFor(entityName string) string {
	return quoteIdent(entityName)
}

// jsonKey renders a field name as a SQL string literal for jsonb
// operators. Field names come from validated metadata.
func jsonKey(field string) string {
	return "'" + strings.ReplaceAll(field, "'", "''") + "'"
}

// try_timestamptz swallows cast errors so that a malformed stored
// value degrades a single comparison instead of aborting the query.
const tryTimestampDDL = `
CREATE OR REPLACE FUNCTION try_timestamptz(txt text) RETURNS timestamptz AS $$
BEGIN
    RETURN txt::timestamptz;
EXCEPTION WHEN others THEN
    RETURN NULL;
END $$ LANGUAGE plpgsql IMMUTABLE;`

func (c *connector) ensureSchema() error {
	if err := c.exec("Installing helper functions", tryTimestampDDL); err != nil {
		return err
	}

	entities := c.provider.Entities()

	// Tables first, reference columns second. Split in two passes so
	// declaration order and reference cycles never matter.
	for _, ent := range entities {
		ddl := `CREATE TABLE IF NOT EXISTS ` + tableFor(ent.Name) + ` (
            id uuid PRIMARY KEY,
            payload jsonb NOT NULL,
            created_at TIMESTAMP NOT NULL DEFAULT NOW()
        );`

		if err := c.exec("Verifying that table "+tableFor(ent.Name)+" exists", ddl); err != nil {
			return err
		}
	}

	for _, ent := range entities {
		for _, fd := range ent.Fields {
			if fd.Ref == "" {
				continue
			}

			target, ok := c.provider.Entity(fd.Ref)
			if !ok {
				continue
			}

			ddl := `ALTER TABLE ` + tableFor(ent.Name) +
				` ADD COLUMN IF NOT EXISTS ` + quoteIdent(fd.Name) +
				` uuid REFERENCES ` + tableFor(target.Name) + `(id) ON DELETE CASCADE;`

			if err := c.exec(
				"Verifying reference "+ent.Name+"."+fd.Name+" -> "+target.Name,
				ddl,
			); err != nil {
				return err
			}
		}
	}

	return nil
}

// refFields lists the metadata fields mirrored into real columns.
func refFields(ent *meta.EntityDescriptor) []*meta.FieldDescriptor {
	var out []*meta.FieldDescriptor
	for i := range ent.Fields {
		if ent.Fields[i].Ref != "" {
			out = append(out, &ent.Fields[i])
		}
	}
	return out
}
