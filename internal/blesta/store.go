package blesta

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store implements Destination over a Blesta MySQL database.
type Store struct {
	db     *sqlx.DB
	ext    sqlx.ExtContext
	cipher Cipher
}

// NewStore creates a store writing through db. cipher encrypts fields and
// card data flagged for encryption.
func NewStore(db *sqlx.DB, cipher Cipher) *Store {
	return &Store{db: db, ext: db, cipher: cipher}
}

var _ Destination = (*Store)(nil)

// WithTx begins a transaction unless the store is already inside one, in
// which case fn joins it.
func (s *Store) WithTx(ctx context.Context, fn func(Destination) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&Store{ext: tx, cipher: s.cipher}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) insert(ctx context.Context, what, query string, arg any) (int64, error) {
	res, err := sqlx.NamedExecContext(ctx, s.ext, query, arg)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s: %w", what, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read %s id: %w", what, err)
	}
	return id, nil
}

func (s *Store) exec(ctx context.Context, what, query string, arg any) error {
	if _, err := sqlx.NamedExecContext(ctx, s.ext, query, arg); err != nil {
		return fmt.Errorf("failed to write %s: %w", what, err)
	}
	return nil
}

func (s *Store) encrypt(value string) (string, error) {
	if s.cipher == nil {
		return "", fmt.Errorf("no cipher configured for encrypted value")
	}
	return s.cipher.Encrypt(value)
}

// AddStaffGroup inserts a staff group
func (s *Store) AddStaffGroup(ctx context.Context, g StaffGroup) (int64, error) {
	return s.insert(ctx, "staff group", `INSERT INTO staff_groups (company_id, name) VALUES (:company_id, :name)`, g)
}

// AddClientGroup inserts a client group
func (s *Store) AddClientGroup(ctx context.Context, g ClientGroup) (int64, error) {
	return s.insert(ctx, "client group",
		`INSERT INTO client_groups (company_id, name, description, color) VALUES (:company_id, :name, :description, :color)`, g)
}

// AddUser inserts a login
func (s *Store) AddUser(ctx context.Context, u User) (int64, error) {
	return s.insert(ctx, "user",
		`INSERT INTO users (username, password, date_added) VALUES (:username, :password, :date_added)`, u)
}

// AddStaff inserts a staff member
func (s *Store) AddStaff(ctx context.Context, st Staff) (int64, error) {
	return s.insert(ctx, "staff",
		`INSERT INTO staff (user_id, first_name, last_name, email, status) VALUES (:user_id, :first_name, :last_name, :email, :status)`, st)
}

// AddStaffToGroup links staff to a staff group
func (s *Store) AddStaffToGroup(ctx context.Context, staffID, groupID int64) error {
	return s.exec(ctx, "staff group link",
		`INSERT INTO staff_group (staff_id, staff_group_id) VALUES (:staff_id, :staff_group_id)`,
		map[string]any{"staff_id": staffID, "staff_group_id": groupID})
}

// AddClient inserts a client
func (s *Store) AddClient(ctx context.Context, c Client) (int64, error) {
	return s.insert(ctx, "client", `INSERT INTO clients (id_format, id_value, user_id, client_group_id, status)
		VALUES (:id_format, :id_value, :user_id, :client_group_id, :status)`, c)
}

// AddContact inserts a contact
func (s *Store) AddContact(ctx context.Context, c Contact) (int64, error) {
	return s.insert(ctx, "contact", `INSERT INTO contacts (client_id, contact_type, first_name, last_name, company, email,
		address1, address2, city, state, zip, country, date_added)
		VALUES (:client_id, :contact_type, :first_name, :last_name, :company, :email,
		:address1, :address2, :city, :state, :zip, :country, :date_added)`, c)
}

// AddContactNumber inserts a phone number for a contact
func (s *Store) AddContactNumber(ctx context.Context, n ContactNumber) error {
	return s.exec(ctx, "contact number",
		`INSERT INTO contact_numbers (contact_id, number, type, location) VALUES (:contact_id, :number, :type, :location)`, n)
}

// AddClientSetting stores a per-client setting
func (s *Store) AddClientSetting(ctx context.Context, clientID int64, key, value string) error {
	return s.exec(ctx, "client setting",
		"INSERT INTO client_settings (client_id, `key`, value, encrypted) VALUES (:client_id, :key, :value, 0)",
		map[string]any{"client_id": clientID, "key": key, "value": value})
}

// AddCreditCard stores a card, encrypting number, expiration and last4
func (s *Store) AddCreditCard(ctx context.Context, cc CreditCard) (int64, error) {
	var err error
	if cc.Number, err = s.encrypt(cc.Number); err != nil {
		return 0, fmt.Errorf("failed to encrypt card number: %w", err)
	}
	if cc.Expiration, err = s.encrypt(cc.Expiration); err != nil {
		return 0, fmt.Errorf("failed to encrypt card expiration: %w", err)
	}
	if cc.Last4, err = s.encrypt(cc.Last4); err != nil {
		return 0, fmt.Errorf("failed to encrypt card last4: %w", err)
	}
	return s.insert(ctx, "credit card", `INSERT INTO accounts_cc (contact_id, first_name, last_name, address1, city, state,
		zip, country, number, expiration, last4, type, status)
		VALUES (:contact_id, :first_name, :last_name, :address1, :city, :state,
		:zip, :country, :number, :expiration, :last4, :type, :status)`, cc)
}

// AddClientNote inserts a client note
func (s *Store) AddClientNote(ctx context.Context, n ClientNote) (int64, error) {
	return s.insert(ctx, "client note", `INSERT INTO client_notes (client_id, staff_id, title, description, stickied, date_added, date_updated)
		VALUES (:client_id, :staff_id, :title, :description, :stickied, :date_added, :date_updated)`, n)
}

// AddTax inserts a tax rule
func (s *Store) AddTax(ctx context.Context, t Tax) (int64, error) {
	return s.insert(ctx, "tax", "INSERT INTO taxes (company_id, `level`, name, amount, type, country, state, status)"+
		" VALUES (:company_id, :level, :name, :amount, :type, :country, :state, :status)", t)
}

// AddCurrency inserts a currency (keyed by code, no generated id)
func (s *Store) AddCurrency(ctx context.Context, c Currency) error {
	return s.exec(ctx, "currency", "INSERT INTO currencies (code, company_id, format, `precision`, prefix, suffix, exchange_rate, exchange_updated)"+
		" VALUES (:code, :company_id, :format, :precision, :prefix, :suffix, :exchange_rate, :exchange_updated)", c)
}

// AddInvoice inserts an invoice header
func (s *Store) AddInvoice(ctx context.Context, inv Invoice) (int64, error) {
	return s.insert(ctx, "invoice", `INSERT INTO invoices (id_format, id_value, client_id, date_billed, date_due, date_closed,
		status, currency, subtotal, total, paid, note_public, note_private)
		VALUES (:id_format, :id_value, :client_id, :date_billed, :date_due, :date_closed,
		:status, :currency, :subtotal, :total, :paid, :note_public, :note_private)`, inv)
}

// AddInvoiceLine inserts an invoice line
func (s *Store) AddInvoiceLine(ctx context.Context, line InvoiceLine) (int64, error) {
	return s.insert(ctx, "invoice line", "INSERT INTO invoice_lines (invoice_id, service_id, description, qty, amount, `order`)"+
		" VALUES (:invoice_id, :service_id, :description, :qty, :amount, :order)", line)
}

// AddInvoiceLineTax applies a tax to an invoice line
func (s *Store) AddInvoiceLineTax(ctx context.Context, lineID, taxID int64) error {
	return s.exec(ctx, "invoice line tax",
		"INSERT INTO invoice_line_taxes (line_id, tax_id, `cascade`, subtract) VALUES (:line_id, :tax_id, 0, 0)",
		map[string]any{"line_id": lineID, "tax_id": taxID})
}

// LinkInvoiceLine sets the service an invoice line bills for
func (s *Store) LinkInvoiceLine(ctx context.Context, lineID, serviceID int64) error {
	return s.exec(ctx, "invoice line service",
		"UPDATE invoice_lines SET service_id = :service_id WHERE id = :id",
		map[string]any{"id": lineID, "service_id": serviceID})
}

// AddTransaction inserts a payment transaction
func (s *Store) AddTransaction(ctx context.Context, t Transaction) (int64, error) {
	return s.insert(ctx, "transaction", `INSERT INTO transactions (client_id, amount, currency, type, transaction_id,
		reference_id, message, status, date_added)
		VALUES (:client_id, :amount, :currency, :type, :transaction_id,
		:reference_id, :message, :status, :date_added)`, t)
}

// ApplyTransaction applies a transaction amount to an invoice
func (s *Store) ApplyTransaction(ctx context.Context, a TransactionApplied) error {
	return s.exec(ctx, "transaction applied", `INSERT INTO transaction_applied (transaction_id, invoice_id, amount, date)
		VALUES (:transaction_id, :invoice_id, :amount, :date)`, a)
}

// AddModule inserts an installed module
func (s *Store) AddModule(ctx context.Context, m Module) (int64, error) {
	return s.insert(ctx, "module",
		`INSERT INTO modules (company_id, name, class, version) VALUES (:company_id, :name, :class, :version)`, m)
}

// AddModuleRow inserts a module row
func (s *Store) AddModuleRow(ctx context.Context, r ModuleRow) (int64, error) {
	return s.insert(ctx, "module row", `INSERT INTO module_rows (module_id, status) VALUES (:module_id, :status)`, r)
}

// AddPackageGroup inserts a package group
func (s *Store) AddPackageGroup(ctx context.Context, g PackageGroup) (int64, error) {
	return s.insert(ctx, "package group",
		`INSERT INTO package_groups (company_id, name, type) VALUES (:company_id, :name, :type)`, g)
}

// AddPackage inserts a package with its name and description
func (s *Store) AddPackage(ctx context.Context, p Package) (int64, error) {
	id, err := s.insert(ctx, "package", `INSERT INTO packages (id_format, id_value, company_id, module_id, module_row, qty, taxable, status)
		VALUES (:id_format, :id_value, :company_id, :module_id, :module_row, :qty, :taxable, :status)`, p)
	if err != nil {
		return 0, err
	}
	row := map[string]any{"package_id": id, "lang": p.Lang, "name": p.Name, "description": p.Description}
	if err := s.exec(ctx, "package name",
		`INSERT INTO package_names (package_id, lang, name) VALUES (:package_id, :lang, :name)`, row); err != nil {
		return 0, err
	}
	if err := s.exec(ctx, "package description",
		`INSERT INTO package_descriptions (package_id, lang, html) VALUES (:package_id, :lang, :description)`, row); err != nil {
		return 0, err
	}
	return id, nil
}

// AddPackageToGroup places a package in a package group
func (s *Store) AddPackageToGroup(ctx context.Context, packageID, groupID int64, order int) error {
	return s.exec(ctx, "package group link",
		"INSERT INTO package_group (package_id, package_group_id, `order`) VALUES (:package_id, :package_group_id, :order)",
		map[string]any{"package_id": packageID, "package_group_id": groupID, "order": order})
}

// AddPricing inserts a pricing term
func (s *Store) AddPricing(ctx context.Context, p Pricing) (int64, error) {
	return s.insert(ctx, "pricing", `INSERT INTO pricings (company_id, term, period, price, setup_fee, currency)
		VALUES (:company_id, :term, :period, :price, :setup_fee, :currency)`, p)
}

// AddPackagePricing links a pricing to a package
func (s *Store) AddPackagePricing(ctx context.Context, packageID, pricingID int64) (int64, error) {
	return s.insert(ctx, "package pricing",
		`INSERT INTO package_pricing (package_id, pricing_id) VALUES (:package_id, :pricing_id)`,
		map[string]any{"package_id": packageID, "pricing_id": pricingID})
}

// AddPackageOption inserts a configurable option
func (s *Store) AddPackageOption(ctx context.Context, o PackageOption) (int64, error) {
	return s.insert(ctx, "package option", `INSERT INTO package_options (company_id, label, name, type, description, addable, editable)
		VALUES (:company_id, :label, :name, :type, :description, :addable, :editable)`, o)
}

// AddPackageOptionValue inserts a value of an option
func (s *Store) AddPackageOptionValue(ctx context.Context, v PackageOptionValue) (int64, error) {
	return s.insert(ctx, "package option value", "INSERT INTO package_option_values (option_id, name, value, `order`, status)"+
		" VALUES (:option_id, :name, :value, :order, :status)", v)
}

// AddPackageOptionPricing links a pricing to an option value
func (s *Store) AddPackageOptionPricing(ctx context.Context, valueID, pricingID int64) (int64, error) {
	return s.insert(ctx, "package option pricing",
		`INSERT INTO package_option_pricing (option_value_id, pricing_id) VALUES (:option_value_id, :pricing_id)`,
		map[string]any{"option_value_id": valueID, "pricing_id": pricingID})
}

// AddPackageOptionGroup inserts an option group
func (s *Store) AddPackageOptionGroup(ctx context.Context, g PackageOptionGroup) (int64, error) {
	return s.insert(ctx, "package option group",
		`INSERT INTO package_option_groups (company_id, name, description) VALUES (:company_id, :name, :description)`, g)
}

// AddOptionToGroup places an option in an option group
func (s *Store) AddOptionToGroup(ctx context.Context, optionID, groupID int64, order int) error {
	return s.exec(ctx, "package option group link",
		"INSERT INTO package_option_group (option_id, option_group_id, `order`) VALUES (:option_id, :option_group_id, :order)",
		map[string]any{"option_id": optionID, "option_group_id": groupID, "order": order})
}

// AddOptionGroupToPackage attaches an option group to a package
func (s *Store) AddOptionGroupToPackage(ctx context.Context, packageID, groupID int64) error {
	return s.exec(ctx, "package option link",
		`INSERT INTO package_option (package_id, option_group_id) VALUES (:package_id, :option_group_id)`,
		map[string]any{"package_id": packageID, "option_group_id": groupID})
}

// AddService inserts a client service
func (s *Store) AddService(ctx context.Context, svc Service) (int64, error) {
	return s.insert(ctx, "service", `INSERT INTO services (id_format, id_value, pricing_id, client_id, module_row_id, coupon_id,
		qty, override_price, override_currency, status, date_added, date_renews, date_suspended, date_canceled)
		VALUES (:id_format, :id_value, :pricing_id, :client_id, :module_row_id, :coupon_id,
		:qty, :override_price, :override_currency, :status, :date_added, :date_renews, :date_suspended, :date_canceled)`, svc)
}

// AddServiceOption attaches an option pricing to a service
func (s *Store) AddServiceOption(ctx context.Context, o ServiceOption) error {
	return s.exec(ctx, "service option",
		`INSERT INTO service_options (service_id, option_pricing_id, qty) VALUES (:service_id, :option_pricing_id, :qty)`, o)
}

// AddDepartment inserts a support department
func (s *Store) AddDepartment(ctx context.Context, d Department) (int64, error) {
	return s.insert(ctx, "support department", `INSERT INTO support_departments (company_id, name, description, email, method,
		default_priority, clients_only, status)
		VALUES (:company_id, :name, :description, :email, :method,
		:default_priority, :clients_only, :status)`, d)
}

// AddTicket inserts a support ticket
func (s *Store) AddTicket(ctx context.Context, t Ticket) (int64, error) {
	return s.insert(ctx, "support ticket", `INSERT INTO support_tickets (code, department_id, staff_id, service_id, client_id,
		email, summary, priority, status, date_added, date_updated, date_closed)
		VALUES (:code, :department_id, :staff_id, :service_id, :client_id,
		:email, :summary, :priority, :status, :date_added, :date_updated, :date_closed)`, t)
}

// AddReply inserts a ticket reply, note or log entry
func (s *Store) AddReply(ctx context.Context, r Reply) (int64, error) {
	return s.insert(ctx, "support reply", `INSERT INTO support_replies (ticket_id, staff_id, contact_id, type, details, date_added)
		VALUES (:ticket_id, :staff_id, :contact_id, :type, :details, :date_added)`, r)
}

// AddKBCategory inserts a knowledge base category
func (s *Store) AddKBCategory(ctx context.Context, c KBCategory) (int64, error) {
	return s.insert(ctx, "kb category", `INSERT INTO support_kb_categories (parent_id, company_id, name, description, access,
		date_created, date_updated)
		VALUES (:parent_id, :company_id, :name, :description, :access, :date_created, :date_updated)`, c)
}

// AddKBArticle inserts an article, its content and its category links
func (s *Store) AddKBArticle(ctx context.Context, a KBArticle) (int64, error) {
	id, err := s.insert(ctx, "kb article", `INSERT INTO support_kb_articles (company_id, access, up_votes, down_votes,
		date_created, date_updated)
		VALUES (:company_id, :access, :up_votes, :down_votes, :date_created, :date_updated)`, a)
	if err != nil {
		return 0, err
	}
	if err := s.exec(ctx, "kb article content", `INSERT INTO support_kb_article_content (article_id, lang, title, body, content_type)
		VALUES (:article_id, :lang, :title, :body, :content_type)`,
		map[string]any{"article_id": id, "lang": a.Lang, "title": a.Title, "body": a.Body, "content_type": a.ContentType}); err != nil {
		return 0, err
	}
	for _, cat := range a.CategoryIDs {
		if err := s.exec(ctx, "kb article category", `INSERT INTO support_kb_article_categories (article_id, category_id)
			VALUES (:article_id, :category_id)`, map[string]any{"article_id": id, "category_id": cat}); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// AddCoupon inserts a coupon
func (s *Store) AddCoupon(ctx context.Context, c Coupon) (int64, error) {
	return s.insert(ctx, "coupon", `INSERT INTO coupons (code, company_id, used_qty, max_qty, start_date, end_date, status,
		type, recurring, limit_recurring, apply_package_options)
		VALUES (:code, :company_id, :used_qty, :max_qty, :start_date, :end_date, :status,
		:type, :recurring, :limit_recurring, :apply_package_options)`, c)
}

// AddCouponAmount inserts a coupon discount for one currency
func (s *Store) AddCouponAmount(ctx context.Context, a CouponAmount) error {
	return s.exec(ctx, "coupon amount",
		`INSERT INTO coupon_amounts (coupon_id, currency, amount, type) VALUES (:coupon_id, :currency, :amount, :type)`, a)
}

// AddCouponPackage limits a coupon to a package
func (s *Store) AddCouponPackage(ctx context.Context, couponID, packageID int64) error {
	return s.exec(ctx, "coupon package",
		`INSERT INTO coupon_packages (coupon_id, package_id) VALUES (:coupon_id, :package_id)`,
		map[string]any{"coupon_id": couponID, "package_id": packageID})
}

// AddFields writes meta rows for scope. Values flagged Encrypted are
// encrypted here, after any serialization already applied by the caller.
func (s *Store) AddFields(ctx context.Context, scope FieldScope, fields []Field) error {
	query, err := fieldInsert(scope.Table)
	if err != nil {
		return err
	}
	for _, f := range fields {
		value := f.Value
		if f.Encrypted {
			if value, err = s.encrypt(value); err != nil {
				return fmt.Errorf("failed to encrypt %s.%s: %w", scope.Table, f.Key, err)
			}
		}
		row := fieldRow{OwnerID: scope.OwnerID, Key: f.Key, Value: value, Serialized: f.Serialized, Encrypted: f.Encrypted}
		if err := s.exec(ctx, scope.Table.String(), query, row); err != nil {
			return err
		}
	}
	return nil
}

var countable = map[string]bool{
	"clients": true, "contacts": true, "staff": true, "users": true, "taxes": true, "currencies": true,
	"invoices": true, "invoice_lines": true, "transactions": true, "transaction_applied": true,
	"modules": true, "module_rows": true, "packages": true, "package_options": true, "services": true,
	"service_fields": true, "support_departments": true, "support_tickets": true, "support_replies": true,
	"support_kb_categories": true, "support_kb_articles": true, "coupons": true, "client_notes": true,
}

// Count returns the row count of a known destination table.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	if !countable[table] {
		return 0, fmt.Errorf("table %q cannot be counted", table)
	}
	var n int64
	if err := sqlx.GetContext(ctx, s.ext, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
