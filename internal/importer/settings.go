package importer

import (
	"context"

	"github.com/gotrs-io/cemigrate/internal/blesta"
	"github.com/gotrs-io/cemigrate/internal/fieldmap"
	"github.com/gotrs-io/cemigrate/internal/migration"
)

// importSettings translates the company wide Clientexec settings through the
// settings mapping table.
func (im *Importer) importSettings(ctx context.Context) (migration.Stats, error) {
	settings, err := im.loadSettings(ctx)
	if err != nil {
		return migration.Stats{}, err
	}
	scope := blesta.FieldScope{Table: blesta.CompanySettings, OwnerID: im.opts.CompanyID}
	n, err := im.tr.Write(ctx, im.dst, scope, im.tables.Settings, fieldmap.Record(settings))
	if err != nil {
		return migration.Stats{}, migration.Trace(err)
	}
	return migration.Stats{Imported: n}, nil
}
