// Package clientexec reads records from a Clientexec database. Every query is
// a plain SELECT; the connection is opened read-only.
package clientexec

// Dates and free text are kept as the raw column text. Conversion happens
// in the importer, which knows the source time zone.

// Group is a row of groups. Admin groups hold staff, the rest hold clients.
type Group struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Color       string `db:"groupcolor"`
	IsAdmin     bool   `db:"isadmin"`
}

// User is a row of users, covering both staff and clients. CardData and
// CardIV hold the legacy encrypted card number.
type User struct {
	ID            int64  `db:"id"`
	GroupID       int64  `db:"groupid"`
	FirstName     string `db:"firstname"`
	LastName      string `db:"lastname"`
	Email         string `db:"email"`
	Password      string `db:"password"`
	Organization  string `db:"organization"`
	Address       string `db:"address"`
	City          string `db:"city"`
	State         string `db:"state"`
	Zip           string `db:"zipcode"`
	Country       string `db:"country"`
	Phone         string `db:"phone"`
	Status        int    `db:"status"`
	Taxable       bool   `db:"taxable"`
	Currency      string `db:"currency"`
	DateActivated string `db:"dateactivated"`
	CardData      string `db:"data1"`
	CardIV        string `db:"data3"`
	CardMonth     string `db:"ccmonth"`
	CardYear      string `db:"ccyear"`
}

// ClientNote is a row of clients_notes
type ClientNote struct {
	ID       int64  `db:"id"`
	ClientID int64  `db:"target_id"`
	StaffID  int64  `db:"admin_id"`
	Subject  string `db:"subject"`
	Note     string `db:"note"`
	Visible  bool   `db:"visible_client"`
	Date     string `db:"date"`
}

// TaxRule is a row of taxrule
type TaxRule struct {
	ID       int64   `db:"id"`
	Name     string  `db:"name"`
	Rate     float64 `db:"tax"`
	Level    int     `db:"level"`
	Country  string  `db:"countryiso"`
	State    string  `db:"state"`
	Compound bool    `db:"compound"`
}

// Currency is a row of currency
type Currency struct {
	ID           int64   `db:"id"`
	Code         string  `db:"abrv"`
	Symbol       string  `db:"symbol"`
	DecimalSep   string  `db:"decimalssep"`
	ThousandsSep string  `db:"thousandssep"`
	Precision    int     `db:"precision"`
	Rate         float64 `db:"rate"`
	Alignment    string  `db:"alignment"`
	Enabled      bool    `db:"enabled"`
}

// Invoice is a row of invoice
type Invoice struct {
	ID          int64   `db:"id"`
	ClientID    int64   `db:"customerid"`
	BillDate    string  `db:"billdate"`
	DueDate     string  `db:"datedue"`
	DatePaid    string  `db:"datepaid"`
	Subtotal    float64 `db:"subtotal"`
	Amount      float64 `db:"amount"`
	BalanceDue  float64 `db:"balance_due"`
	Status      int     `db:"status"`
	TaxName     string  `db:"taxname"`
	Currency    string  `db:"currency"`
	Note        string  `db:"note"`
	PrivateNote string  `db:"pvtnotes"`
}

// InvoiceEntry is a row of invoiceentry
type InvoiceEntry struct {
	ID          int64   `db:"id"`
	InvoiceID   int64   `db:"invoiceid"`
	Description string  `db:"description"`
	Detail      string  `db:"detail"`
	Price       float64 `db:"price"`
	Quantity    float64 `db:"quantity"`
	Taxable     bool    `db:"taxable"`
	ServiceID   int64   `db:"appliestoid"`
}

// Transaction is a row of invoicetransaction joined with the owning
// invoice's client, status and currency.
type Transaction struct {
	ID            int64   `db:"id"`
	InvoiceID     int64   `db:"invoiceid"`
	Accepted      bool    `db:"accepted"`
	Response      string  `db:"response"`
	Date          string  `db:"transactiondate"`
	TransactionID string  `db:"transactionid"`
	Action        string  `db:"action"`
	Amount        float64 `db:"amount"`
	ClientID      int64   `db:"customerid"`
	InvoiceStatus int     `db:"invoice_status"`
	Currency      string  `db:"currency"`
}

// Server is a row of server. Plugin names the control panel.
type Server struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Hostname    string `db:"hostname"`
	SharedIP    string `db:"sharedip"`
	Plugin      string `db:"plugin"`
	MaxAccounts int    `db:"maxaccounts"`
}

// PackageGroup is a row of promotion
type PackageGroup struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Type        int    `db:"type"`
}

// Package is a row of package. Pricing is the PHP serialized price table;
// ServerID is the first server the package is bound to, or zero.
type Package struct {
	ID          int64  `db:"id"`
	GroupID     int64  `db:"planid"`
	Name        string `db:"planname"`
	Description string `db:"description"`
	Pricing     string `db:"pricing"`
	Taxable     bool   `db:"taxable"`
	Visible     bool   `db:"showpackage"`
	ServerID    int64  `db:"server_id"`
}

// Addon is a row of addon
type Addon struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	Description  string `db:"description"`
	PluginOption string `db:"plugin_var"`
}

// AddonPrice is a row of addon_prices, one selectable value of an addon.
type AddonPrice struct {
	ID      int64  `db:"id"`
	AddonID int64  `db:"addon_id"`
	Detail  string `db:"detail"`
	Value   string `db:"plugin_var_value"`
	Pricing string `db:"pricing"`
	Order   int    `db:"sortorder"`
}

// ProductAddon links a package to an addon.
type ProductAddon struct {
	PackageID int64 `db:"product_id"`
	AddonID   int64 `db:"addon_id"`
	Order     int   `db:"sortorder"`
}

// Service is a row of domains, a package a client ordered.
type Service struct {
	ID             int64   `db:"id"`
	ClientID       int64   `db:"CustomerID"`
	PackageID      int64   `db:"Plan"`
	Status         int     `db:"status"`
	DateActivated  string  `db:"dateActivated"`
	NextBillDate   string  `db:"nextbilldate"`
	PaymentTerm    int     `db:"paymentterm"`
	UseCustomPrice bool    `db:"use_custom_price"`
	CustomPrice    float64 `db:"custom_price"`
	Currency       string  `db:"currency"`
}

// ServiceAddon is a recurring addon charge attached to a service.
type ServiceAddon struct {
	ServiceID    int64 `db:"appliestoid"`
	AddonID      int64 `db:"addonid"`
	AddonPriceID int64 `db:"addonpriceid"`
	Quantity     int   `db:"quantity"`
	PaymentTerm  int   `db:"paymentterm"`
}

// Department is a row of troubleticket_type
type Department struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Enabled     bool   `db:"enabled"`
}

// Ticket is a row of troubleticket. ClientID and StaffID are user ids.
type Ticket struct {
	ID            int64  `db:"id"`
	ClientID      int64  `db:"userid"`
	StaffID       int64  `db:"assignedtoid"`
	DepartmentID  int64  `db:"messagetype"`
	ServiceID     int64  `db:"domainid"`
	Subject       string `db:"subject"`
	Priority      string `db:"priority"`
	Status        string `db:"status"`
	DateSubmitted string `db:"datesubmitted"`
	LastLog       string `db:"lastlog_datetime"`
	Email         string `db:"email"`
}

// TicketLog is a row of troubleticket_log
type TicketLog struct {
	ID       int64  `db:"id"`
	TicketID int64  `db:"troubleticketid"`
	UserID   int64  `db:"userid"`
	LogType  int    `db:"logtype"`
	Message  string `db:"message"`
	Date     string `db:"mydatetime"`
}

// KBCategory is a row of kb_categories
type KBCategory struct {
	ID          int64  `db:"id"`
	ParentID    int64  `db:"parent_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Access      int    `db:"access"`
}

// KBArticle is a row of kb_articles
type KBArticle struct {
	ID         int64  `db:"id"`
	CategoryID int64  `db:"categoryid"`
	Title      string `db:"title"`
	Content    string `db:"content"`
	Access     int    `db:"access"`
	Created    string `db:"created"`
	Modified   string `db:"modified"`
	Helpful    int    `db:"helpful"`
	NotHelpful int    `db:"nothelpful"`
}

// Coupon is a row of coupons
type Coupon struct {
	ID        int64   `db:"coupons_id"`
	Name      string  `db:"coupons_name"`
	Code      string  `db:"coupons_code"`
	Discount  float64 `db:"coupons_discount"`
	Quantity  int     `db:"coupons_quantity"`
	Used      int     `db:"coupons_used"`
	Start     string  `db:"coupons_start"`
	Expires   string  `db:"coupons_expires"`
	Recurring bool    `db:"coupons_recurring"`
	Archived  bool    `db:"coupons_archive"`
}
