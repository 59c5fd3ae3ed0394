package clientexec

import (
	"context"
	"fmt"
	"slices"

	"github.com/jmoiron/sqlx"
)

// Reader implements Source with sqlx against a Clientexec schema.
type Reader struct {
	db sqlx.QueryerContext
}

// NewReader creates a reader over db
func NewReader(db sqlx.QueryerContext) *Reader {
	return &Reader{db: db}
}

var _ Source = (*Reader)(nil)

func selectAll[T any](ctx context.Context, db sqlx.QueryerContext, what, query string, args ...any) ([]T, error) {
	var out []T
	if err := sqlx.SelectContext(ctx, db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", what, err)
	}
	return out, nil
}

type keyValue struct {
	Key   string `db:"k"`
	Value string `db:"v"`
}

func selectMap(ctx context.Context, db sqlx.QueryerContext, what, query string, args ...any) (map[string]string, error) {
	rows, err := selectAll[keyValue](ctx, db, what, query, args...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, kv := range rows {
		out[kv.Key] = kv.Value
	}
	return out, nil
}

const groupsQuery = `SELECT id, name, COALESCE(description, '') AS description,
	COALESCE(groupcolor, '') AS groupcolor, isadmin
	FROM ` + "`groups`" + ` ORDER BY id`

// Groups returns every user group
func (r *Reader) Groups(ctx context.Context) ([]Group, error) {
	return selectAll[Group](ctx, r.db, "groups", groupsQuery)
}

const usersQuery = `SELECT id, groupid, COALESCE(firstname, '') AS firstname, COALESCE(lastname, '') AS lastname,
	email, COALESCE(password, '') AS password, COALESCE(organization, '') AS organization,
	COALESCE(address, '') AS address, COALESCE(city, '') AS city, COALESCE(state, '') AS state,
	COALESCE(zipcode, '') AS zipcode, COALESCE(country, '') AS country, COALESCE(phone, '') AS phone,
	status, taxable, COALESCE(currency, '') AS currency, COALESCE(dateactivated, '') AS dateactivated,
	COALESCE(data1, '') AS data1, COALESCE(data3, '') AS data3,
	COALESCE(ccmonth, '') AS ccmonth, COALESCE(ccyear, '') AS ccyear
	FROM users ORDER BY id`

// Users returns staff and client accounts
func (r *Reader) Users(ctx context.Context) ([]User, error) {
	return selectAll[User](ctx, r.db, "users", usersQuery)
}

const notesQuery = `SELECT id, target_id, COALESCE(admin_id, 0) AS admin_id, COALESCE(subject, '') AS subject,
	COALESCE(note, '') AS note, visible_client, COALESCE(date, '') AS date
	FROM clients_notes ORDER BY id`

// ClientNotes returns staff notes attached to clients
func (r *Reader) ClientNotes(ctx context.Context) ([]ClientNote, error) {
	return selectAll[ClientNote](ctx, r.db, "client notes", notesQuery)
}

const taxRulesQuery = `SELECT id, name, tax, level, COALESCE(countryiso, '') AS countryiso,
	COALESCE(state, '') AS state, compound
	FROM taxrule ORDER BY level, id`

// TaxRules returns tax rules, level 1 first
func (r *Reader) TaxRules(ctx context.Context) ([]TaxRule, error) {
	return selectAll[TaxRule](ctx, r.db, "tax rules", taxRulesQuery)
}

const currenciesQuery = `SELECT id, abrv, COALESCE(symbol, '') AS symbol, COALESCE(decimalssep, '.') AS decimalssep,
	COALESCE(thousandssep, ',') AS thousandssep, ` + "`precision`" + `, rate,
	COALESCE(alignment, 'left') AS alignment, enabled
	FROM currency ORDER BY id`

// Currencies returns configured currencies
func (r *Reader) Currencies(ctx context.Context) ([]Currency, error) {
	return selectAll[Currency](ctx, r.db, "currencies", currenciesQuery)
}

const invoicesQuery = `SELECT id, customerid, COALESCE(billdate, '') AS billdate, COALESCE(datedue, '') AS datedue,
	COALESCE(datepaid, '') AS datepaid, subtotal, amount, balance_due, status,
	COALESCE(taxname, '') AS taxname, COALESCE(currency, '') AS currency,
	COALESCE(note, '') AS note, COALESCE(pvtnotes, '') AS pvtnotes
	FROM invoice ORDER BY id`

// Invoices returns invoice headers
func (r *Reader) Invoices(ctx context.Context) ([]Invoice, error) {
	return selectAll[Invoice](ctx, r.db, "invoices", invoicesQuery)
}

const invoiceEntriesQuery = `SELECT id, invoiceid, COALESCE(description, '') AS description,
	COALESCE(detail, '') AS detail, price, quantity, taxable, COALESCE(appliestoid, 0) AS appliestoid
	FROM invoiceentry WHERE invoiceid = ? ORDER BY id`

// InvoiceEntries returns the lines of one invoice
func (r *Reader) InvoiceEntries(ctx context.Context, invoiceID int64) ([]InvoiceEntry, error) {
	return selectAll[InvoiceEntry](ctx, r.db, "invoice entries", invoiceEntriesQuery, invoiceID)
}

const transactionsQuery = `SELECT t.id, t.invoiceid, t.accepted, COALESCE(t.response, '') AS response,
	COALESCE(t.transactiondate, '') AS transactiondate, COALESCE(t.transactionid, '') AS transactionid,
	COALESCE(t.action, '') AS action, t.amount,
	COALESCE(i.customerid, 0) AS customerid, COALESCE(i.status, 0) AS invoice_status,
	COALESCE(i.currency, '') AS currency
	FROM invoicetransaction t LEFT JOIN invoice i ON i.id = t.invoiceid
	ORDER BY t.id`

// Transactions returns payment attempts with their invoice context
func (r *Reader) Transactions(ctx context.Context) ([]Transaction, error) {
	return selectAll[Transaction](ctx, r.db, "transactions", transactionsQuery)
}

const serversQuery = `SELECT id, name, COALESCE(hostname, '') AS hostname, COALESCE(sharedip, '') AS sharedip,
	COALESCE(plugin, '') AS plugin, COALESCE(maxaccounts, 0) AS maxaccounts
	FROM server ORDER BY id`

// Servers returns provisioning servers
func (r *Reader) Servers(ctx context.Context) ([]Server, error) {
	return selectAll[Server](ctx, r.db, "servers", serversQuery)
}

const serverOptionsQuery = `SELECT varname AS k, COALESCE(value, '') AS v FROM serverplugin WHERE serverid = ?`

// ServerOptions returns the panel plugin settings of one server
func (r *Reader) ServerOptions(ctx context.Context, serverID int64) (map[string]string, error) {
	return selectMap(ctx, r.db, "server options", serverOptionsQuery, serverID)
}

const packageGroupsQuery = `SELECT id, name, COALESCE(description, '') AS description, type
	FROM promotion ORDER BY id`

// PackageGroups returns product groups
func (r *Reader) PackageGroups(ctx context.Context) ([]PackageGroup, error) {
	return selectAll[PackageGroup](ctx, r.db, "package groups", packageGroupsQuery)
}

const packagesQuery = `SELECT p.id, p.planid, p.planname, COALESCE(p.description, '') AS description,
	COALESCE(p.pricing, '') AS pricing, p.taxable, p.showpackage,
	COALESCE((SELECT MIN(ps.server_id) FROM package_server ps WHERE ps.package_id = p.id), 0) AS server_id
	FROM package p ORDER BY p.id`

// Packages returns products with their serialized pricing
func (r *Reader) Packages(ctx context.Context) ([]Package, error) {
	return selectAll[Package](ctx, r.db, "packages", packagesQuery)
}

const packageVariablesQuery = `SELECT varname AS k, COALESCE(value, '') AS v FROM package_variable WHERE packageid = ?`

// PackageVariables returns the plugin variables of one package
func (r *Reader) PackageVariables(ctx context.Context, packageID int64) (map[string]string, error) {
	return selectMap(ctx, r.db, "package variables", packageVariablesQuery, packageID)
}

const addonsQuery = `SELECT id, name, COALESCE(description, '') AS description, COALESCE(plugin_var, '') AS plugin_var
	FROM addon ORDER BY id`

// Addons returns configurable product addons
func (r *Reader) Addons(ctx context.Context) ([]Addon, error) {
	return selectAll[Addon](ctx, r.db, "addons", addonsQuery)
}

const addonPricesQuery = `SELECT id, addon_id, COALESCE(detail, '') AS detail,
	COALESCE(plugin_var_value, '') AS plugin_var_value, COALESCE(pricing, '') AS pricing, sortorder
	FROM addon_prices WHERE addon_id = ? ORDER BY sortorder, id`

// AddonPrices returns the selectable values of one addon
func (r *Reader) AddonPrices(ctx context.Context, addonID int64) ([]AddonPrice, error) {
	return selectAll[AddonPrice](ctx, r.db, "addon prices", addonPricesQuery, addonID)
}

const productAddonsQuery = `SELECT product_id, addon_id, sortorder FROM product_addon ORDER BY product_id, sortorder`

// ProductAddons returns package to addon links
func (r *Reader) ProductAddons(ctx context.Context) ([]ProductAddon, error) {
	return selectAll[ProductAddon](ctx, r.db, "product addons", productAddonsQuery)
}

const servicesQuery = `SELECT d.id, d.CustomerID, d.Plan, d.status, COALESCE(d.dateActivated, '') AS dateActivated,
	COALESCE(d.nextbilldate, '') AS nextbilldate, d.paymentterm, d.use_custom_price,
	COALESCE(d.custom_price, 0) AS custom_price, COALESCE(u.currency, '') AS currency
	FROM domains d LEFT JOIN users u ON u.id = d.CustomerID
	ORDER BY d.id`

// Services returns client packages
func (r *Reader) Services(ctx context.Context) ([]Service, error) {
	return selectAll[Service](ctx, r.db, "services", servicesQuery)
}

const serviceFieldsQuery = `SELECT cf.name AS k, COALESCE(ocf.value, '') AS v
	FROM object_customField ocf JOIN customField cf ON cf.id = ocf.customFieldId
	WHERE ocf.objectid = ? AND cf.groupId = 2`

// ServiceFields returns the custom field values of one service
func (r *Reader) ServiceFields(ctx context.Context, serviceID int64) (map[string]string, error) {
	return selectMap(ctx, r.db, "service fields", serviceFieldsQuery, serviceID)
}

const serviceAddonsQuery = `SELECT appliestoid, addonid, addonpriceid, COALESCE(quantity, 1) AS quantity, paymentterm
	FROM recurringfee WHERE appliestoid = ? AND addonid > 0 ORDER BY id`

// ServiceAddons returns the addons billed with one service
func (r *Reader) ServiceAddons(ctx context.Context, serviceID int64) ([]ServiceAddon, error) {
	return selectAll[ServiceAddon](ctx, r.db, "service addons", serviceAddonsQuery, serviceID)
}

const departmentsQuery = `SELECT id, name, COALESCE(description, '') AS description, enabled
	FROM troubleticket_type ORDER BY id`

// Departments returns ticket types
func (r *Reader) Departments(ctx context.Context) ([]Department, error) {
	return selectAll[Department](ctx, r.db, "departments", departmentsQuery)
}

const ticketsQuery = `SELECT id, COALESCE(userid, 0) AS userid, COALESCE(assignedtoid, 0) AS assignedtoid,
	messagetype, COALESCE(domainid, 0) AS domainid, COALESCE(subject, '') AS subject,
	COALESCE(priority, '') AS priority, COALESCE(status, '') AS status,
	COALESCE(datesubmitted, '') AS datesubmitted, COALESCE(lastlog_datetime, '') AS lastlog_datetime,
	COALESCE(email, '') AS email
	FROM troubleticket ORDER BY id`

// Tickets returns support tickets
func (r *Reader) Tickets(ctx context.Context) ([]Ticket, error) {
	return selectAll[Ticket](ctx, r.db, "tickets", ticketsQuery)
}

const ticketLogsQuery = `SELECT id, troubleticketid, COALESCE(userid, 0) AS userid, logtype,
	COALESCE(message, '') AS message, COALESCE(mydatetime, '') AS mydatetime
	FROM troubleticket_log WHERE troubleticketid = ? ORDER BY mydatetime, id`

// TicketLogs returns the history of one ticket, oldest first
func (r *Reader) TicketLogs(ctx context.Context, ticketID int64) ([]TicketLog, error) {
	return selectAll[TicketLog](ctx, r.db, "ticket logs", ticketLogsQuery, ticketID)
}

const kbCategoriesQuery = `SELECT id, COALESCE(parent_id, 0) AS parent_id, name,
	COALESCE(description, '') AS description, access
	FROM kb_categories ORDER BY id`

// KBCategories returns knowledge base categories
func (r *Reader) KBCategories(ctx context.Context) ([]KBCategory, error) {
	return selectAll[KBCategory](ctx, r.db, "kb categories", kbCategoriesQuery)
}

const kbArticlesQuery = `SELECT id, categoryid, title, COALESCE(content, '') AS content, access,
	COALESCE(created, '') AS created, COALESCE(modified, '') AS modified,
	COALESCE(helpful, 0) AS helpful, COALESCE(nothelpful, 0) AS nothelpful
	FROM kb_articles ORDER BY id`

// KBArticles returns knowledge base articles
func (r *Reader) KBArticles(ctx context.Context) ([]KBArticle, error) {
	return selectAll[KBArticle](ctx, r.db, "kb articles", kbArticlesQuery)
}

const couponsQuery = `SELECT coupons_id, COALESCE(coupons_name, '') AS coupons_name, coupons_code,
	coupons_discount, COALESCE(coupons_quantity, 0) AS coupons_quantity, COALESCE(coupons_used, 0) AS coupons_used,
	COALESCE(coupons_start, '') AS coupons_start, COALESCE(coupons_expires, '') AS coupons_expires,
	coupons_recurring, coupons_archive
	FROM coupons ORDER BY coupons_id`

// Coupons returns promotion codes
func (r *Reader) Coupons(ctx context.Context) ([]Coupon, error) {
	return selectAll[Coupon](ctx, r.db, "coupons", couponsQuery)
}

const couponPackagesQuery = `SELECT package_id FROM coupons_packages WHERE coupon_id = ? ORDER BY package_id`

// CouponPackages returns the packages a coupon is limited to
func (r *Reader) CouponPackages(ctx context.Context, couponID int64) ([]int64, error) {
	var ids []int64
	if err := sqlx.SelectContext(ctx, r.db, &ids, couponPackagesQuery, couponID); err != nil {
		return nil, fmt.Errorf("failed to read coupon packages: %w", err)
	}
	return ids, nil
}

const settingsQuery = `SELECT name AS k, COALESCE(value, '') AS v FROM setting`

// Settings returns the global settings map
func (r *Reader) Settings(ctx context.Context) (map[string]string, error) {
	return selectMap(ctx, r.db, "settings", settingsQuery)
}

// Count returns the row count of a source table
func (r *Reader) Count(ctx context.Context, table string) (int64, error) {
	if !slices.Contains(Tables, table) {
		return 0, fmt.Errorf("table %q cannot be counted", table)
	}
	var n int64
	if err := sqlx.GetContext(ctx, r.db, &n, "SELECT COUNT(*) FROM `"+table+"`"); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
