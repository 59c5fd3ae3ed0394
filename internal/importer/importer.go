// Package importer holds the Clientexec to Blesta entity import steps.
package importer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gotrs-io/cemigrate/internal/blesta"
	"github.com/gotrs-io/cemigrate/internal/clientexec"
	"github.com/gotrs-io/cemigrate/internal/convert"
	"github.com/gotrs-io/cemigrate/internal/fieldmap"
	"github.com/gotrs-io/cemigrate/internal/idmap"
	"github.com/gotrs-io/cemigrate/internal/logger"
	"github.com/gotrs-io/cemigrate/internal/migration"
)

// Step names, in execution order
const (
	StepUsersGroups        = "users_groups"
	StepStaff              = "staff"
	StepClients            = "clients"
	StepClientNotes        = "client_notes"
	StepTaxes              = "taxes"
	StepCurrencies         = "currencies"
	StepInvoices           = "invoices"
	StepTransactions       = "transactions"
	StepModules            = "modules"
	StepPackages           = "packages"
	StepPackageOptions     = "package_options"
	StepServices           = "services"
	StepSupportDepartments = "support_departments"
	StepSupportTickets     = "support_tickets"
	StepKnowledgeBase      = "knowledge_base"
	StepCoupons            = "coupons"
	StepSettings           = "settings"
)

// Options carries the destination defaults and legacy secrets.
type Options struct {
	CompanyID       int64
	DefaultCountry  string
	DefaultCurrency string
	Language        string
	// Passphrase decrypts stored Clientexec cards. Cards are skipped when empty.
	Passphrase string
	// Location is the zone source timestamps were written in.
	Location *time.Location
	// Now stamps records that have no usable source date.
	Now func() time.Time
}

// Importer moves one Clientexec installation into one Blesta company.
type Importer struct {
	src    clientexec.Source
	dst    blesta.Destination
	ids    *idmap.Store
	tables *fieldmap.Tables
	tr     *fieldmap.Translator
	html   *convert.Sanitizer
	log    *logrus.Logger
	opts   Options

	users       []clientexec.User
	packages    []clientexec.Package
	settings    map[string]string
	catalog     map[int64]packageModule
	// source service id -> invoice lines billed for it
	serviceLines map[int64][]int64
	warnedCards bool
}

// New creates an importer. ids is shared with the driver so state survives
// between runs in the same process.
func New(src clientexec.Source, dst blesta.Destination, ids *idmap.Store, tables *fieldmap.Tables, log *logger.Logger, opts Options) *Importer {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Language == "" {
		opts.Language = "en_us"
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Importer{
		src:    src,
		dst:    dst,
		ids:    ids,
		tables: tables,
		tr:     fieldmap.NewTranslator(tables),
		html:   convert.NewSanitizer(),
		log:    log.Logger,
		opts:   opts,
	}
}

type guardedStep struct {
	migration.StepFunc
	guard func() (bool, string)
}

func (g guardedStep) Skip() (bool, string) { return g.guard() }

func step(name string, fn func(context.Context) (migration.Stats, error)) migration.Step {
	return migration.StepFunc{StepName: name, Fn: fn}
}

// Steps returns the import steps in dependency order, leaves first.
func (im *Importer) Steps() []migration.Step {
	return []migration.Step{
		step(StepUsersGroups, im.importGroups),
		step(StepStaff, im.importStaff),
		step(StepClients, im.importClients),
		step(StepClientNotes, im.importClientNotes),
		step(StepTaxes, im.importTaxes),
		step(StepCurrencies, im.importCurrencies),
		step(StepInvoices, im.importInvoices),
		step(StepTransactions, im.importTransactions),
		step(StepModules, im.importModules),
		guardedStep{
			StepFunc: migration.StepFunc{StepName: StepPackages, Fn: im.importPackages},
			guard:    im.packagesImported,
		},
		step(StepPackageOptions, im.importPackageOptions),
		step(StepServices, im.importServices),
		step(StepSupportDepartments, im.importDepartments),
		step(StepSupportTickets, im.importTickets),
		step(StepKnowledgeBase, im.importKnowledgeBase),
		step(StepCoupons, im.importCoupons),
		step(StepSettings, im.importSettings),
	}
}

func (im *Importer) packagesImported() (bool, string) {
	if im.ids.Has(idmap.Packages) {
		return true, "packages already imported"
	}
	return false, ""
}

// mapper is the id mapping view a step writes through: the shared store, or
// a staged batch inside a transaction.
type mapper interface {
	Put(entity idmap.Entity, remoteID string, localID int64) error
	Lookup(entity idmap.Entity, remoteID string) (int64, bool)
	LookupInt(entity idmap.Entity, remoteID int64) (int64, bool)
}

// inTx runs fn in one destination transaction. Mappings recorded by fn reach
// the shared store only after the commit succeeds.
func (im *Importer) inTx(ctx context.Context, fn func(dst blesta.Destination, ids mapper) (migration.Stats, error)) (migration.Stats, error) {
	batch := im.ids.Stage()
	var stats migration.Stats
	err := im.dst.WithTx(ctx, func(tx blesta.Destination) error {
		var err error
		stats, err = fn(tx, batch)
		return err
	})
	if err != nil {
		batch.Discard()
		return migration.Stats{}, err
	}
	staged := batch.Len()
	if err := batch.Commit(); err != nil {
		return stats, migration.Trace(err)
	}
	im.log.WithField("mappings", staged).Debug("Committed staged mappings")
	return stats, nil
}

func (im *Importer) stepLog(name string) *logrus.Entry {
	return im.log.WithField("step", name)
}

func (im *Importer) loadUsers(ctx context.Context) ([]clientexec.User, error) {
	if im.users == nil {
		users, err := im.src.Users(ctx)
		if err != nil {
			return nil, migration.Trace(err)
		}
		im.users = users
	}
	return im.users, nil
}

func (im *Importer) loadPackages(ctx context.Context) ([]clientexec.Package, error) {
	if im.packages == nil {
		pkgs, err := im.src.Packages(ctx)
		if err != nil {
			return nil, migration.Trace(err)
		}
		im.packages = pkgs
	}
	return im.packages, nil
}

func (im *Importer) loadSettings(ctx context.Context) (map[string]string, error) {
	if im.settings == nil {
		settings, err := im.src.Settings(ctx)
		if err != nil {
			return nil, migration.Trace(err)
		}
		im.settings = settings
	}
	return im.settings, nil
}

// clientCurrency returns the billing currency of a Clientexec user.
func (im *Importer) clientCurrency(remoteUserID int64) string {
	for _, u := range im.users {
		if u.ID == remoteUserID && u.Currency != "" {
			return normalizeCurrency(u.Currency, im.opts.DefaultCurrency)
		}
	}
	return im.opts.DefaultCurrency
}

func (im *Importer) date(value string) time.Time {
	return convert.ParseTimeOr(value, im.opts.Location, im.opts.Now().UTC())
}

func (im *Importer) datePtr(value string) *time.Time {
	return convert.ParseTime(value, im.opts.Location)
}

func optional(ids mapper, entity idmap.Entity, remoteID int64) *int64 {
	if remoteID == 0 {
		return nil
	}
	if id, ok := ids.LookupInt(entity, remoteID); ok {
		return &id
	}
	return nil
}
