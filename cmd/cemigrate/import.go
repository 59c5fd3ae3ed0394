package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gotrs-io/cemigrate/internal/blesta"
	"github.com/gotrs-io/cemigrate/internal/clientexec"
	"github.com/gotrs-io/cemigrate/internal/config"
	"github.com/gotrs-io/cemigrate/internal/fieldmap"
	"github.com/gotrs-io/cemigrate/internal/idmap"
	"github.com/gotrs-io/cemigrate/internal/importer"
	"github.com/gotrs-io/cemigrate/internal/metrics"
	"github.com/gotrs-io/cemigrate/internal/migration"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run every import step against the configured databases",
	Long: `Import runs the migration steps in dependency order. A failing step is
recorded and the run continues with the next one; the final report lists
every failure and the command exits non-zero when there was any.

With --debug the run stops at the first failure instead.`,
	RunE: runImport,
}

func loadTables(cfg *config.Config) (*fieldmap.Tables, error) {
	if cfg.Migration.MappingsFile == "" {
		return fieldmap.Default()
	}
	return fieldmap.LoadFile(cfg.Migration.MappingsFile)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig((*config.Config).Validate)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	tables, err := loadTables(cfg)
	if err != nil {
		return err
	}
	loc, err := cfg.Source.Location()
	if err != nil {
		return err
	}
	cipher, err := blesta.NewAESCipher(cfg.Destination.EncryptionKey)
	if err != nil {
		return err
	}

	conns, err := connect(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer conns.Close()

	ids := idmap.NewStore()
	im := importer.New(
		clientexec.NewReader(conns.source),
		blesta.NewStore(conns.destination, cipher),
		ids,
		tables,
		log,
		importer.Options{
			CompanyID:       cfg.Destination.CompanyID,
			DefaultCountry:  cfg.Destination.DefaultCountry,
			DefaultCurrency: cfg.Destination.DefaultCurrency,
			Language:        cfg.Destination.Language,
			Passphrase:      cfg.Legacy.Passphrase,
			Location:        loc,
		},
	)

	recorder := metrics.NewRecorder()
	driver := migration.NewDriver(im.Steps(), migration.Options{
		Debug:    cfg.Migration.Debug,
		DebugOut: cmd.ErrOrStderr(),
		Logger:   log,
		Metrics:  recorder,
	})
	report := driver.Run(cmd.Context())
	fmt.Fprint(cmd.OutOrStdout(), report.String())

	mapped := logrus.Fields{}
	for entity, n := range ids.Counts() {
		mapped[string(entity)] = n
	}
	log.WithFields(mapped).Info("ID mappings recorded")

	if path := cfg.Migration.MetricsFile; path != "" {
		if err := recorder.WriteTextfile(path); err != nil {
			log.WithError(err).Warn("Failed to write metrics file")
		}
	}
	return report.Err()
}
