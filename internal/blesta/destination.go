package blesta

import "context"

// Destination is the write side of a migration. Every Add method inserts
// one record and returns its auto-generated id where the table has one.
type Destination interface {
	// WithTx runs fn against a transactional view of the destination. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Destination) error) error

	AddStaffGroup(ctx context.Context, g StaffGroup) (int64, error)
	AddClientGroup(ctx context.Context, g ClientGroup) (int64, error)
	AddUser(ctx context.Context, u User) (int64, error)
	AddStaff(ctx context.Context, s Staff) (int64, error)
	AddStaffToGroup(ctx context.Context, staffID, groupID int64) error

	AddClient(ctx context.Context, c Client) (int64, error)
	AddContact(ctx context.Context, c Contact) (int64, error)
	AddContactNumber(ctx context.Context, n ContactNumber) error
	AddClientSetting(ctx context.Context, clientID int64, key, value string) error
	AddCreditCard(ctx context.Context, cc CreditCard) (int64, error)
	AddClientNote(ctx context.Context, n ClientNote) (int64, error)

	AddTax(ctx context.Context, t Tax) (int64, error)
	AddCurrency(ctx context.Context, c Currency) error

	AddInvoice(ctx context.Context, inv Invoice) (int64, error)
	AddInvoiceLine(ctx context.Context, line InvoiceLine) (int64, error)
	AddInvoiceLineTax(ctx context.Context, lineID, taxID int64) error
	// LinkInvoiceLine points an existing invoice line at the service it bills.
	LinkInvoiceLine(ctx context.Context, lineID, serviceID int64) error
	AddTransaction(ctx context.Context, t Transaction) (int64, error)
	ApplyTransaction(ctx context.Context, a TransactionApplied) error

	AddModule(ctx context.Context, m Module) (int64, error)
	AddModuleRow(ctx context.Context, r ModuleRow) (int64, error)

	AddPackageGroup(ctx context.Context, g PackageGroup) (int64, error)
	AddPackage(ctx context.Context, p Package) (int64, error)
	AddPackageToGroup(ctx context.Context, packageID, groupID int64, order int) error
	AddPricing(ctx context.Context, p Pricing) (int64, error)
	AddPackagePricing(ctx context.Context, packageID, pricingID int64) (int64, error)

	AddPackageOption(ctx context.Context, o PackageOption) (int64, error)
	AddPackageOptionValue(ctx context.Context, v PackageOptionValue) (int64, error)
	AddPackageOptionPricing(ctx context.Context, valueID, pricingID int64) (int64, error)
	AddPackageOptionGroup(ctx context.Context, g PackageOptionGroup) (int64, error)
	AddOptionToGroup(ctx context.Context, optionID, groupID int64, order int) error
	AddOptionGroupToPackage(ctx context.Context, packageID, groupID int64) error

	AddService(ctx context.Context, s Service) (int64, error)
	AddServiceOption(ctx context.Context, o ServiceOption) error

	AddDepartment(ctx context.Context, d Department) (int64, error)
	AddTicket(ctx context.Context, t Ticket) (int64, error)
	AddReply(ctx context.Context, r Reply) (int64, error)

	AddKBCategory(ctx context.Context, c KBCategory) (int64, error)
	AddKBArticle(ctx context.Context, a KBArticle) (int64, error)

	AddCoupon(ctx context.Context, c Coupon) (int64, error)
	AddCouponAmount(ctx context.Context, a CouponAmount) error
	AddCouponPackage(ctx context.Context, couponID, packageID int64) error

	// AddFields writes meta rows for scope, encrypting flagged values.
	AddFields(ctx context.Context, scope FieldScope, fields []Field) error

	// Count returns the number of rows in a destination table.
	Count(ctx context.Context, table string) (int64, error)
}
