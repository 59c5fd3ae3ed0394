package convert

import "strings"

// Clientexec invoice status codes.
const (
	InvoiceDraft         = -1
	InvoiceUnpaid        = 0
	InvoicePaid          = 1
	InvoiceVoid          = 2
	InvoiceRefunded      = 3
	InvoicePending       = 4
	InvoicePartiallyPaid = 5
	InvoiceCredited      = 6
)

// InvoiceStatus collapses a Clientexec invoice status into draft, void or
// active. Unpaid, paid, pending and partially paid invoices are all active.
func InvoiceStatus(code int) string {
	switch code {
	case InvoiceDraft:
		return "draft"
	case InvoiceVoid, InvoiceRefunded, InvoiceCredited:
		return "void"
	default:
		return "active"
	}
}

// InvoiceClosed reports whether an invoice carries a real payment date that
// should become the destination's closed date.
func InvoiceClosed(code int) bool {
	return code == InvoicePaid
}

// TransactionStatus maps a Clientexec invoice transaction to a destination
// status. Refund actions become "refunded" and rejected attempts "declined".
// An accepted payment on an invoice that was later refunded is voided so the
// client is not credited twice.
func TransactionStatus(accepted bool, action string, invoiceStatus int) string {
	if strings.EqualFold(strings.TrimSpace(action), "refund") {
		return "refunded"
	}
	if !accepted {
		return "declined"
	}
	if invoiceStatus == InvoiceRefunded {
		return "void"
	}
	return "approved"
}

var ticketStatuses = map[string]string{
	"-1": "closed",
	"0":  "open",
	"1":  "open",
	"2":  "in_progress",
	"3":  "awaiting_reply",
	"4":  "closed",
	"5":  "on_hold",
}

// TicketStatus maps a Clientexec ticket status code. Unknown codes are
// treated as open.
func TicketStatus(code string) string {
	if s, ok := ticketStatuses[strings.TrimSpace(code)]; ok {
		return s
	}
	return "open"
}

var ticketPriorities = map[string]string{
	"1": "high",
	"2": "medium",
	"3": "low",
}

// TicketPriority maps a Clientexec priority (1 high .. 3 low).
func TicketPriority(code string) string {
	if p, ok := ticketPriorities[strings.TrimSpace(code)]; ok {
		return p
	}
	return "medium"
}

var serviceStatuses = map[int]string{
	0: "pending",
	1: "active",
	2: "suspended",
	3: "canceled",
	4: "canceled",
	5: "canceled",
}

// ServiceStatus maps a Clientexec package status. Unknown values become
// pending so they show up for review.
func ServiceStatus(code int) string {
	if s, ok := serviceStatuses[code]; ok {
		return s
	}
	return "pending"
}

// ClientStatus maps a Clientexec user status (1 active, 0 pending, -1
// inactive, -2 fraud).
func ClientStatus(code int) string {
	switch code {
	case 1:
		return "active"
	case -1, -2, -3:
		return "inactive"
	default:
		return "active"
	}
}

// ReplyType maps a ticket log type to a destination reply type.
func ReplyType(logType int) string {
	switch logType {
	case 0:
		return "reply"
	case 1:
		return "note"
	default:
		return "log"
	}
}

// KBAccess maps Clientexec article/category visibility.
func KBAccess(access int) string {
	switch access {
	case 0:
		return "public"
	case 1:
		return "private"
	default:
		return "hidden"
	}
}
