package clientexec

import "context"

// Accounts reads groups and users.
type Accounts interface {
	Groups(ctx context.Context) ([]Group, error)
	Users(ctx context.Context) ([]User, error)
	ClientNotes(ctx context.Context) ([]ClientNote, error)
}

// Billing reads taxes, currencies, invoices and payments.
type Billing interface {
	TaxRules(ctx context.Context) ([]TaxRule, error)
	Currencies(ctx context.Context) ([]Currency, error)
	Invoices(ctx context.Context) ([]Invoice, error)
	InvoiceEntries(ctx context.Context, invoiceID int64) ([]InvoiceEntry, error)
	Transactions(ctx context.Context) ([]Transaction, error)
}

// Products reads servers, packages and addons.
type Products interface {
	Servers(ctx context.Context) ([]Server, error)
	ServerOptions(ctx context.Context, serverID int64) (map[string]string, error)
	PackageGroups(ctx context.Context) ([]PackageGroup, error)
	Packages(ctx context.Context) ([]Package, error)
	PackageVariables(ctx context.Context, packageID int64) (map[string]string, error)
	Addons(ctx context.Context) ([]Addon, error)
	AddonPrices(ctx context.Context, addonID int64) ([]AddonPrice, error)
	ProductAddons(ctx context.Context) ([]ProductAddon, error)
}

// Services reads ordered client packages.
type Services interface {
	Services(ctx context.Context) ([]Service, error)
	ServiceFields(ctx context.Context, serviceID int64) (map[string]string, error)
	ServiceAddons(ctx context.Context, serviceID int64) ([]ServiceAddon, error)
}

// Support reads the help desk and knowledge base.
type Support interface {
	Departments(ctx context.Context) ([]Department, error)
	Tickets(ctx context.Context) ([]Ticket, error)
	TicketLogs(ctx context.Context, ticketID int64) ([]TicketLog, error)
	KBCategories(ctx context.Context) ([]KBCategory, error)
	KBArticles(ctx context.Context) ([]KBArticle, error)
}

// Marketing reads coupons.
type Marketing interface {
	Coupons(ctx context.Context) ([]Coupon, error)
	CouponPackages(ctx context.Context, couponID int64) ([]int64, error)
}

// Settings reads the global setting table.
type Settings interface {
	Settings(ctx context.Context) (map[string]string, error)
}

// Source is the complete read side of a migration.
type Source interface {
	Accounts
	Billing
	Products
	Services
	Support
	Marketing
	Settings

	// Count returns the number of rows in one of the tables listed by Tables.
	Count(ctx context.Context, table string) (int64, error)
}

// Tables lists the source tables analyze and validate report on, keyed by
// entity family.
var Tables = []string{
	"groups", "users", "clients_notes", "taxrule", "currency", "invoice", "invoiceentry",
	"invoicetransaction", "server", "promotion", "package", "addon", "addon_prices", "domains",
	"troubleticket_type", "troubleticket", "troubleticket_log", "kb_categories", "kb_articles",
	"coupons", "setting",
}
