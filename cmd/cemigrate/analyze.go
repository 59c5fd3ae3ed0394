package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gotrs-io/cemigrate/internal/blesta"
	"github.com/gotrs-io/cemigrate/internal/clientexec"
	"github.com/gotrs-io/cemigrate/internal/config"
	"github.com/gotrs-io/cemigrate/internal/database"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Count the records waiting in the Clientexec database",
	RunE:  runAnalyze,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compare source and destination record counts after an import",
	Long: `Validate counts records on both sides. Differences are expected where
records were skipped (staff, clients of unknown groups, orphaned invoices)
and are listed for review rather than treated as errors.`,
	RunE: runValidate,
}

// counter is the counting side of both ends.
type counter interface {
	Count(ctx context.Context, table string) (int64, error)
}

// comparisons pairs Clientexec tables with the Blesta tables they become.
var comparisons = []struct{ source, destination string }{
	{"taxrule", "taxes"},
	{"currency", "currencies"},
	{"invoice", "invoices"},
	{"invoiceentry", "invoice_lines"},
	{"invoicetransaction", "transactions"},
	{"package", "packages"},
	{"addon", "package_options"},
	{"domains", "services"},
	{"troubleticket_type", "support_departments"},
	{"troubleticket", "support_tickets"},
	{"troubleticket_log", "support_replies"},
	{"kb_categories", "support_kb_categories"},
	{"kb_articles", "support_kb_articles"},
	{"coupons", "coupons"},
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig((*config.Config).ValidateSource)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	db, err := openSource(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	return analyze(cmd.Context(), cmd.OutOrStdout(), clientexec.NewReader(db))
}

func analyze(ctx context.Context, out io.Writer, src counter) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS")
	for _, table := range clientexec.Tables {
		n, err := src.Count(ctx, table)
		if err != nil {
			if database.IsMissingTable(err) {
				fmt.Fprintf(w, "%s\tmissing\n", table)
				continue
			}
			return err
		}
		fmt.Fprintf(w, "%s\t%d\n", table, n)
	}
	return w.Flush()
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig((*config.Config).Validate)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	conns, err := connect(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer conns.Close()

	// counting never encrypts, so the store needs no cipher
	dst := blesta.NewStore(conns.destination, nil)
	_, err = compare(cmd.Context(), cmd.OutOrStdout(), clientexec.NewReader(conns.source), dst)
	return err
}

// compare prints both counts for every table pair and returns how many
// pairs differ.
func compare(ctx context.Context, out io.Writer, src, dst counter) (int, error) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CLIENTEXEC\tROWS\tBLESTA\tROWS\t")
	differ := 0
	for _, c := range comparisons {
		have, err := src.Count(ctx, c.source)
		if err != nil {
			return differ, err
		}
		got, err := dst.Count(ctx, c.destination)
		if err != nil {
			return differ, err
		}
		mark := ""
		if have != got {
			mark = "differs"
			differ++
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n", c.source, have, c.destination, got, mark)
	}
	if err := w.Flush(); err != nil {
		return differ, err
	}
	if differ > 0 {
		fmt.Fprintf(out, "\n⚠️  %d table(s) differ; skipped records are listed in the import log\n", differ)
	} else {
		fmt.Fprintln(out, "\n✅ All counts match")
	}
	return differ, nil
}
