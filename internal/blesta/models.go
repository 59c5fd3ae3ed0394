// Package blesta writes migrated records into a Blesta database.
package blesta

import "time"

// IDFormat is the id_format stored on records that keep their source id as
// id_value.
const IDFormat = "{num}"

// StaffGroup is a row of staff_groups
type StaffGroup struct {
	CompanyID int64  `db:"company_id"`
	Name      string `db:"name"`
}

// ClientGroup is a row of client_groups
type ClientGroup struct {
	CompanyID   int64  `db:"company_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Color       string `db:"color"`
}

// User is a login (users table), shared by staff and clients.
type User struct {
	Username  string    `db:"username"`
	Password  string    `db:"password"`
	DateAdded time.Time `db:"date_added"`
}

// Staff is a row of staff
type Staff struct {
	UserID    int64  `db:"user_id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
	Status    string `db:"status"`
}

// Client is a row of clients
type Client struct {
	IDFormat      string `db:"id_format"`
	IDValue       int64  `db:"id_value"`
	UserID        int64  `db:"user_id"`
	ClientGroupID int64  `db:"client_group_id"`
	Status        string `db:"status"`
}

// Contact is a row of contacts
type Contact struct {
	ClientID    int64     `db:"client_id"`
	ContactType string    `db:"contact_type"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	Company     string    `db:"company"`
	Email       string    `db:"email"`
	Address1    string    `db:"address1"`
	Address2    string    `db:"address2"`
	City        string    `db:"city"`
	State       string    `db:"state"`
	Zip         string    `db:"zip"`
	Country     string    `db:"country"`
	DateAdded   time.Time `db:"date_added"`
}

// ContactNumber is a row of contact_numbers
type ContactNumber struct {
	ContactID int64  `db:"contact_id"`
	Number    string `db:"number"`
	Type      string `db:"type"`
	Location  string `db:"location"`
}

// CreditCard is a row of accounts_cc. Number, Expiration and Last4 are
// plaintext here; the store encrypts them on write.
type CreditCard struct {
	ContactID  int64  `db:"contact_id"`
	FirstName  string `db:"first_name"`
	LastName   string `db:"last_name"`
	Address1   string `db:"address1"`
	City       string `db:"city"`
	State      string `db:"state"`
	Zip        string `db:"zip"`
	Country    string `db:"country"`
	Number     string `db:"number"`
	Expiration string `db:"expiration"`
	Last4      string `db:"last4"`
	Type       string `db:"type"`
	Status     string `db:"status"`
}

// ClientNote is a row of client_notes
type ClientNote struct {
	ClientID    int64     `db:"client_id"`
	StaffID     *int64    `db:"staff_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Stickied    bool      `db:"stickied"`
	DateAdded   time.Time `db:"date_added"`
	DateUpdated time.Time `db:"date_updated"`
}

// Tax is a row of taxes
type Tax struct {
	CompanyID int64  `db:"company_id"`
	Level     int    `db:"level"`
	Name      string `db:"name"`
	Amount    string `db:"amount"`
	Type      string `db:"type"`
	Country   string `db:"country"`
	State     string `db:"state"`
	Status    string `db:"status"`
}

// Currency is a row of currencies
type Currency struct {
	Code         string    `db:"code"`
	CompanyID    int64     `db:"company_id"`
	Format       string    `db:"format"`
	Precision    int       `db:"precision"`
	Prefix       string    `db:"prefix"`
	Suffix       string    `db:"suffix"`
	ExchangeRate string    `db:"exchange_rate"`
	Updated      time.Time `db:"exchange_updated"`
}

// Invoice is a row of invoices
type Invoice struct {
	IDFormat    string     `db:"id_format"`
	IDValue     int64      `db:"id_value"`
	ClientID    int64      `db:"client_id"`
	DateBilled  time.Time  `db:"date_billed"`
	DateDue     time.Time  `db:"date_due"`
	DateClosed  *time.Time `db:"date_closed"`
	Status      string     `db:"status"`
	Currency    string     `db:"currency"`
	Subtotal    string     `db:"subtotal"`
	Total       string     `db:"total"`
	Paid        string     `db:"paid"`
	NotePublic  string     `db:"note_public"`
	NotePrivate string     `db:"note_private"`
}

// InvoiceLine is a row of invoice_lines
type InvoiceLine struct {
	InvoiceID   int64  `db:"invoice_id"`
	ServiceID   *int64 `db:"service_id"`
	Description string `db:"description"`
	Qty         string `db:"qty"`
	Amount      string `db:"amount"`
	Order       int    `db:"order"`
}

// Transaction is a row of transactions
type Transaction struct {
	ClientID      int64     `db:"client_id"`
	Amount        string    `db:"amount"`
	Currency      string    `db:"currency"`
	Type          string    `db:"type"`
	TransactionID string    `db:"transaction_id"`
	ReferenceID   string    `db:"reference_id"`
	Message       string    `db:"message"`
	Status        string    `db:"status"`
	DateAdded     time.Time `db:"date_added"`
}

// TransactionApplied is a row of transaction_applied
type TransactionApplied struct {
	TransactionID int64     `db:"transaction_id"`
	InvoiceID     int64     `db:"invoice_id"`
	Amount        string    `db:"amount"`
	Date          time.Time `db:"date"`
}

// Module is a row of modules
type Module struct {
	CompanyID int64  `db:"company_id"`
	Name      string `db:"name"`
	Class     string `db:"class"`
	Version   string `db:"version"`
}

// ModuleRow is a row of module_rows; its meta is written with AddFields.
type ModuleRow struct {
	ModuleID int64  `db:"module_id"`
	Status   string `db:"status"`
}

// PackageGroup is a row of package_groups
type PackageGroup struct {
	CompanyID int64  `db:"company_id"`
	Name      string `db:"name"`
	Type      string `db:"type"`
}

// Package is a row of packages plus its name and description.
type Package struct {
	IDFormat    string `db:"id_format"`
	IDValue     int64  `db:"id_value"`
	CompanyID   int64  `db:"company_id"`
	ModuleID    *int64 `db:"module_id"`
	ModuleRow   *int64 `db:"module_row"`
	Qty         *int   `db:"qty"`
	Taxable     bool   `db:"taxable"`
	Status      string `db:"status"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Lang        string `db:"lang"`
}

// Pricing is a row of pricings
type Pricing struct {
	CompanyID int64  `db:"company_id"`
	Term      int    `db:"term"`
	Period    string `db:"period"`
	Price     string `db:"price"`
	SetupFee  string `db:"setup_fee"`
	Currency  string `db:"currency"`
}

// PackageOption is a row of package_options
type PackageOption struct {
	CompanyID   int64  `db:"company_id"`
	Label       string `db:"label"`
	Name        string `db:"name"`
	Type        string `db:"type"`
	Description string `db:"description"`
	Addable     bool   `db:"addable"`
	Editable    bool   `db:"editable"`
}

// PackageOptionValue is a row of package_option_values
type PackageOptionValue struct {
	OptionID int64  `db:"option_id"`
	Name     string `db:"name"`
	Value    string `db:"value"`
	Order    int    `db:"order"`
	Status   string `db:"status"`
}

// PackageOptionGroup is a row of package_option_groups
type PackageOptionGroup struct {
	CompanyID   int64  `db:"company_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

// Service is a row of services
type Service struct {
	IDFormat      string     `db:"id_format"`
	IDValue       int64      `db:"id_value"`
	PricingID     int64      `db:"pricing_id"`
	ClientID      int64      `db:"client_id"`
	ModuleRowID   *int64     `db:"module_row_id"`
	CouponID      *int64     `db:"coupon_id"`
	Qty           int        `db:"qty"`
	OverridePrice *string    `db:"override_price"`
	OverrideCurr  *string    `db:"override_currency"`
	Status        string     `db:"status"`
	DateAdded     time.Time  `db:"date_added"`
	DateRenews    *time.Time `db:"date_renews"`
	DateSuspended *time.Time `db:"date_suspended"`
	DateCanceled  *time.Time `db:"date_canceled"`
}

// ServiceOption is a row of service_options
type ServiceOption struct {
	ServiceID       int64 `db:"service_id"`
	OptionPricingID int64 `db:"option_pricing_id"`
	Qty             int   `db:"qty"`
}

// Department is a row of support_departments
type Department struct {
	CompanyID       int64  `db:"company_id"`
	Name            string `db:"name"`
	Description     string `db:"description"`
	Email           string `db:"email"`
	Method          string `db:"method"`
	DefaultPriority string `db:"default_priority"`
	ClientsOnly     bool   `db:"clients_only"`
	Status          string `db:"status"`
}

// Ticket is a row of support_tickets
type Ticket struct {
	Code         int64      `db:"code"`
	DepartmentID int64      `db:"department_id"`
	StaffID      *int64     `db:"staff_id"`
	ServiceID    *int64     `db:"service_id"`
	ClientID     *int64     `db:"client_id"`
	Email        string     `db:"email"`
	Summary      string     `db:"summary"`
	Priority     string     `db:"priority"`
	Status       string     `db:"status"`
	DateAdded    time.Time  `db:"date_added"`
	DateUpdated  time.Time  `db:"date_updated"`
	DateClosed   *time.Time `db:"date_closed"`
}

// Reply is a row of support_replies
type Reply struct {
	TicketID  int64     `db:"ticket_id"`
	StaffID   *int64    `db:"staff_id"`
	ContactID *int64    `db:"contact_id"`
	Type      string    `db:"type"`
	Details   string    `db:"details"`
	DateAdded time.Time `db:"date_added"`
}

// KBCategory is a row of support_kb_categories
type KBCategory struct {
	ParentID    *int64    `db:"parent_id"`
	CompanyID   int64     `db:"company_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Access      string    `db:"access"`
	DateCreated time.Time `db:"date_created"`
	DateUpdated time.Time `db:"date_updated"`
}

// KBArticle is a support_kb_articles row with its single language content
// and category links.
type KBArticle struct {
	CompanyID   int64     `db:"company_id"`
	Access      string    `db:"access"`
	UpVotes     int       `db:"up_votes"`
	DownVotes   int       `db:"down_votes"`
	DateCreated time.Time `db:"date_created"`
	DateUpdated time.Time `db:"date_updated"`
	Lang        string    `db:"lang"`
	Title       string    `db:"title"`
	Body        string    `db:"body"`
	ContentType string    `db:"content_type"`
	CategoryIDs []int64   `db:"-"`
}

// Coupon is a row of coupons
type Coupon struct {
	Code                string     `db:"code"`
	CompanyID           int64      `db:"company_id"`
	UsedQty             int        `db:"used_qty"`
	MaxQty              int        `db:"max_qty"`
	StartDate           *time.Time `db:"start_date"`
	EndDate             *time.Time `db:"end_date"`
	Status              string     `db:"status"`
	Type                string     `db:"type"`
	Recurring           bool       `db:"recurring"`
	LimitRecurring      bool       `db:"limit_recurring"`
	ApplyPackageOptions bool       `db:"apply_package_options"`
}

// CouponAmount is a row of coupon_amounts
type CouponAmount struct {
	CouponID int64  `db:"coupon_id"`
	Currency string `db:"currency"`
	Amount   string `db:"amount"`
	Type     string `db:"type"`
}
