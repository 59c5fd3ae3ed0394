package importer

import (
	"context"
	"slices"

	"github.com/go-sql-driver/mysql"

	"github.com/gotrs-io/cemigrate/internal/blesta"
	"github.com/gotrs-io/cemigrate/internal/clientexec"
)

// memSource is an in-memory Clientexec installation.
type memSource struct {
	groups         []clientexec.Group
	users          []clientexec.User
	notes          []clientexec.ClientNote
	taxRules       []clientexec.TaxRule
	currencies     []clientexec.Currency
	invoices       []clientexec.Invoice
	entries        map[int64][]clientexec.InvoiceEntry
	transactions   []clientexec.Transaction
	servers        []clientexec.Server
	serverOptions  map[int64]map[string]string
	packageGroups  []clientexec.PackageGroup
	packages       []clientexec.Package
	packageVars    map[int64]map[string]string
	addons         []clientexec.Addon
	addonPrices    map[int64][]clientexec.AddonPrice
	productAddons  []clientexec.ProductAddon
	services       []clientexec.Service
	serviceFields  map[int64]map[string]string
	serviceAddons  map[int64][]clientexec.ServiceAddon
	departments    []clientexec.Department
	tickets        []clientexec.Ticket
	ticketLogs     map[int64][]clientexec.TicketLog
	kbCategories   []clientexec.KBCategory
	kbArticles     []clientexec.KBArticle
	coupons        []clientexec.Coupon
	couponPackages map[int64][]int64
	settings       map[string]string
}

var _ clientexec.Source = (*memSource)(nil)

func (s *memSource) Groups(context.Context) ([]clientexec.Group, error) { return s.groups, nil }
func (s *memSource) Users(context.Context) ([]clientexec.User, error) { return s.users, nil }
func (s *memSource) TaxRules(context.Context) ([]clientexec.TaxRule, error) {
	return s.taxRules, nil
}
func (s *memSource) ClientNotes(context.Context) ([]clientexec.ClientNote, error) {
	return s.notes, nil
}
func (s *memSource) Currencies(context.Context) ([]clientexec.Currency, error) {
	return s.currencies, nil
}
func (s *memSource) Invoices(context.Context) ([]clientexec.Invoice, error) { return s.invoices, nil }
func (s *memSource) InvoiceEntries(_ context.Context, id int64) ([]clientexec.InvoiceEntry, error) {
	return s.entries[id], nil
}
func (s *memSource) Transactions(context.Context) ([]clientexec.Transaction, error) {
	return s.transactions, nil
}
func (s *memSource) Servers(context.Context) ([]clientexec.Server, error) { return s.servers, nil }
func (s *memSource) ServerOptions(_ context.Context, id int64) (map[string]string, error) {
	return s.serverOptions[id], nil
}
func (s *memSource) PackageGroups(context.Context) ([]clientexec.PackageGroup, error) {
	return s.packageGroups, nil
}
func (s *memSource) Packages(context.Context) ([]clientexec.Package, error) { return s.packages, nil }
func (s *memSource) PackageVariables(_ context.Context, id int64) (map[string]string, error) {
	return s.packageVars[id], nil
}
func (s *memSource) Addons(context.Context) ([]clientexec.Addon, error) { return s.addons, nil }
func (s *memSource) AddonPrices(_ context.Context, id int64) ([]clientexec.AddonPrice, error) {
	return s.addonPrices[id], nil
}
func (s *memSource) ProductAddons(context.Context) ([]clientexec.ProductAddon, error) {
	return s.productAddons, nil
}
func (s *memSource) Services(context.Context) ([]clientexec.Service, error) { return s.services, nil }
func (s *memSource) ServiceFields(_ context.Context, id int64) (map[string]string, error) {
	return s.serviceFields[id], nil
}
func (s *memSource) ServiceAddons(_ context.Context, id int64) ([]clientexec.ServiceAddon, error) {
	return s.serviceAddons[id], nil
}
func (s *memSource) Departments(context.Context) ([]clientexec.Department, error) {
	return s.departments, nil
}
func (s *memSource) Tickets(context.Context) ([]clientexec.Ticket, error) { return s.tickets, nil }
func (s *memSource) TicketLogs(_ context.Context, id int64) ([]clientexec.TicketLog, error) {
	return s.ticketLogs[id], nil
}
func (s *memSource) KBCategories(context.Context) ([]clientexec.KBCategory, error) {
	return s.kbCategories, nil
}
func (s *memSource) KBArticles(context.Context) ([]clientexec.KBArticle, error) {
	return s.kbArticles, nil
}
func (s *memSource) Coupons(context.Context) ([]clientexec.Coupon, error) { return s.coupons, nil }
func (s *memSource) CouponPackages(_ context.Context, id int64) ([]int64, error) {
	return s.couponPackages[id], nil
}
func (s *memSource) Settings(context.Context) (map[string]string, error) { return s.settings, nil }
func (s *memSource) Count(context.Context, string) (int64, error) { return 0, nil }

type fieldRow struct {
	scope blesta.FieldScope
	field blesta.Field
}

// memDest records every write. Rows are keyed by table name; WithTx restores
// a snapshot when fn fails.
type memDest struct {
	next       int64
	rows       map[string][]any
	fields     []fieldRow
	currencies []string
	inTx       bool
	failOn     string
}

var _ blesta.Destination = (*memDest)(nil)

func newMemDest() *memDest {
	return &memDest{rows: map[string][]any{}}
}

type failure string

func (f failure) Error() string { return "insert into " + string(f) + " failed" }

func (d *memDest) add(table string, row any) (int64, error) {
	if d.failOn == table {
		return 0, failure(table)
	}
	d.next++
	d.rows[table] = append(d.rows[table], row)
	return d.next, nil
}

func (d *memDest) exec(table string, row any) error {
	_, err := d.add(table, row)
	return err
}

func rowsOf[T any](d *memDest, table string) []T {
	var out []T
	for _, r := range d.rows[table] {
		out = append(out, r.(T))
	}
	return out
}

func (d *memDest) fieldsOf(scope blesta.FieldScope) map[string]blesta.Field {
	out := map[string]blesta.Field{}
	for _, f := range d.fields {
		if f.scope == scope {
			out[f.field.Key] = f.field
		}
	}
	return out
}

func (d *memDest) WithTx(_ context.Context, fn func(blesta.Destination) error) error {
	if d.inTx {
		return fn(d)
	}
	rows := make(map[string][]any, len(d.rows))
	for k, v := range d.rows {
		rows[k] = slices.Clone(v)
	}
	fields, currencies, next := slices.Clone(d.fields), slices.Clone(d.currencies), d.next

	d.inTx = true
	err := fn(d)
	d.inTx = false
	if err != nil {
		d.rows, d.fields, d.currencies, d.next = rows, fields, currencies, next
	}
	return err
}

type link struct{ A, B int64 }

type setting struct {
	ClientID   int64
	Key, Value string
}

type ordered struct {
	A, B  int64
	Order int
}

func (d *memDest) AddStaffGroup(_ context.Context, g blesta.StaffGroup) (int64, error) {
	return d.add("staff_groups", g)
}
func (d *memDest) AddClientGroup(_ context.Context, g blesta.ClientGroup) (int64, error) {
	return d.add("client_groups", g)
}
func (d *memDest) AddUser(_ context.Context, u blesta.User) (int64, error) { return d.add("users", u) }
func (d *memDest) AddStaff(_ context.Context, s blesta.Staff) (int64, error) {
	return d.add("staff", s)
}
func (d *memDest) AddStaffToGroup(_ context.Context, staffID, groupID int64) error {
	return d.exec("staff_group", link{staffID, groupID})
}
func (d *memDest) AddClient(_ context.Context, c blesta.Client) (int64, error) {
	return d.add("clients", c)
}
func (d *memDest) AddContact(_ context.Context, c blesta.Contact) (int64, error) {
	return d.add("contacts", c)
}
func (d *memDest) AddContactNumber(_ context.Context, n blesta.ContactNumber) error {
	return d.exec("contact_numbers", n)
}
func (d *memDest) AddClientSetting(_ context.Context, clientID int64, key, value string) error {
	return d.exec("client_settings", setting{clientID, key, value})
}
func (d *memDest) AddCreditCard(_ context.Context, cc blesta.CreditCard) (int64, error) {
	return d.add("accounts_cc", cc)
}
func (d *memDest) AddClientNote(_ context.Context, n blesta.ClientNote) (int64, error) {
	return d.add("client_notes", n)
}
func (d *memDest) AddTax(_ context.Context, t blesta.Tax) (int64, error) { return d.add("taxes", t) }
func (d *memDest) AddCurrency(_ context.Context, c blesta.Currency) error {
	if slices.Contains(d.currencies, c.Code) {
		return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '" + c.Code + "' for key 'PRIMARY'"}
	}
	d.currencies = append(d.currencies, c.Code)
	return d.exec("currencies", c)
}
func (d *memDest) AddInvoice(_ context.Context, inv blesta.Invoice) (int64, error) {
	return d.add("invoices", inv)
}
func (d *memDest) AddInvoiceLine(_ context.Context, l blesta.InvoiceLine) (int64, error) {
	return d.add("invoice_lines", l)
}
func (d *memDest) AddInvoiceLineTax(_ context.Context, lineID, taxID int64) error {
	return d.exec("invoice_line_taxes", link{lineID, taxID})
}
func (d *memDest) LinkInvoiceLine(_ context.Context, lineID, serviceID int64) error {
	return d.exec("invoice_line_services", link{lineID, serviceID})
}
func (d *memDest) AddTransaction(_ context.Context, t blesta.Transaction) (int64, error) {
	return d.add("transactions", t)
}
func (d *memDest) ApplyTransaction(_ context.Context, a blesta.TransactionApplied) error {
	return d.exec("transaction_applied", a)
}
func (d *memDest) AddModule(_ context.Context, m blesta.Module) (int64, error) {
	return d.add("modules", m)
}
func (d *memDest) AddModuleRow(_ context.Context, r blesta.ModuleRow) (int64, error) {
	return d.add("module_rows", r)
}
func (d *memDest) AddPackageGroup(_ context.Context, g blesta.PackageGroup) (int64, error) {
	return d.add("package_groups", g)
}
func (d *memDest) AddPackage(_ context.Context, p blesta.Package) (int64, error) {
	return d.add("packages", p)
}
func (d *memDest) AddPackageToGroup(_ context.Context, packageID, groupID int64, order int) error {
	return d.exec("package_group", ordered{packageID, groupID, order})
}
func (d *memDest) AddPricing(_ context.Context, p blesta.Pricing) (int64, error) {
	return d.add("pricings", p)
}
func (d *memDest) AddPackagePricing(_ context.Context, packageID, pricingID int64) (int64, error) {
	return d.add("package_pricing", link{packageID, pricingID})
}
func (d *memDest) AddPackageOption(_ context.Context, o blesta.PackageOption) (int64, error) {
	return d.add("package_options", o)
}
func (d *memDest) AddPackageOptionValue(_ context.Context, v blesta.PackageOptionValue) (int64, error) {
	return d.add("package_option_values", v)
}
func (d *memDest) AddPackageOptionPricing(_ context.Context, valueID, pricingID int64) (int64, error) {
	return d.add("package_option_pricing", link{valueID, pricingID})
}
func (d *memDest) AddPackageOptionGroup(_ context.Context, g blesta.PackageOptionGroup) (int64, error) {
	return d.add("package_option_groups", g)
}
func (d *memDest) AddOptionToGroup(_ context.Context, optionID, groupID int64, order int) error {
	return d.exec("package_option", ordered{optionID, groupID, order})
}
func (d *memDest) AddOptionGroupToPackage(_ context.Context, packageID, groupID int64) error {
	return d.exec("package_option_group", link{packageID, groupID})
}
func (d *memDest) AddService(_ context.Context, s blesta.Service) (int64, error) {
	return d.add("services", s)
}
func (d *memDest) AddServiceOption(_ context.Context, o blesta.ServiceOption) error {
	return d.exec("service_options", o)
}
func (d *memDest) AddDepartment(_ context.Context, dep blesta.Department) (int64, error) {
	return d.add("support_departments", dep)
}
func (d *memDest) AddTicket(_ context.Context, t blesta.Ticket) (int64, error) {
	return d.add("support_tickets", t)
}
func (d *memDest) AddReply(_ context.Context, r blesta.Reply) (int64, error) {
	return d.add("support_replies", r)
}
func (d *memDest) AddKBCategory(_ context.Context, c blesta.KBCategory) (int64, error) {
	return d.add("support_kb_categories", c)
}
func (d *memDest) AddKBArticle(_ context.Context, a blesta.KBArticle) (int64, error) {
	return d.add("support_kb_articles", a)
}
func (d *memDest) AddCoupon(_ context.Context, c blesta.Coupon) (int64, error) {
	return d.add("coupons", c)
}
func (d *memDest) AddCouponAmount(_ context.Context, a blesta.CouponAmount) error {
	return d.exec("coupon_amounts", a)
}
func (d *memDest) AddCouponPackage(_ context.Context, couponID, packageID int64) error {
	return d.exec("coupon_packages", link{couponID, packageID})
}
func (d *memDest) AddFields(_ context.Context, scope blesta.FieldScope, fields []blesta.Field) error {
	if d.failOn == scope.Table.String() {
		return failure(scope.Table.String())
	}
	for _, f := range fields {
		d.fields = append(d.fields, fieldRow{scope, f})
	}
	return nil
}
func (d *memDest) Count(_ context.Context, table string) (int64, error) {
	return int64(len(d.rows[table])), nil
}
