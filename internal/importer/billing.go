package importer

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gotrs-io/cemigrate/internal/blesta"
	"github.com/gotrs-io/cemigrate/internal/convert"
	"github.com/gotrs-io/cemigrate/internal/database"
	"github.com/gotrs-io/cemigrate/internal/idmap"
	"github.com/gotrs-io/cemigrate/internal/migration"
)

// importTaxes copies tax rules. Besides the id mapping, the lower-cased
// name is mapped so invoices, which only carry the tax name, can find it.
func (im *Importer) importTaxes(ctx context.Context) (migration.Stats, error) {
	var stats migration.Stats
	rules, err := im.src.TaxRules(ctx)
	if err != nil {
		return stats, migration.Trace(err)
	}

	for _, r := range rules {
		level := r.Level
		if level < 1 {
			level = 1
		} else if level > 2 {
			level = 2
		}
		name := convert.DecodeText(r.Name)
		id, err := im.dst.AddTax(ctx, blesta.Tax{
			CompanyID: im.opts.CompanyID,
			Level:     level,
			Name:      name,
			Amount:    convert.Amount(r.Rate),
			Type:      "exclusive",
			Country:   strings.ToUpper(strings.TrimSpace(r.Country)),
			State:     strings.TrimSpace(r.State),
			Status:    "active",
		})
		if err != nil {
			return stats, migration.Trace(err)
		}
		if err := im.ids.Put(idmap.Taxes, idmap.Key(r.ID), id); err != nil {
			return stats, migration.Trace(err)
		}
		if err := im.ids.Put(idmap.TaxNames, strings.ToLower(name), id); err != nil && !errors.Is(err, idmap.ErrExists) {
			return stats, migration.Trace(err)
		}
		stats.Imported++
	}
	return stats, nil
}

// importCurrencies copies currencies. Codes the destination already has are
// counted as skipped.
func (im *Importer) importCurrencies(ctx context.Context) (migration.Stats, error) {
	var stats migration.Stats
	currencies, err := im.src.Currencies(ctx)
	if err != nil {
		return stats, migration.Trace(err)
	}
	log := im.stepLog(StepCurrencies)

	for _, c := range currencies {
		code := normalizeCurrency(c.Code, "")
		if code == "" {
			log.Warnf("Skipping currency %d with invalid code %q", c.ID, c.Code)
			stats.Skipped++
			continue
		}
		cur := blesta.Currency{
			Code:         code,
			CompanyID:    im.opts.CompanyID,
			Format:       convert.CurrencyFormat(c.ThousandsSep, c.DecimalSep, c.Precision),
			Precision:    c.Precision,
			ExchangeRate: strconv.FormatFloat(c.Rate, 'f', 6, 64),
			Updated:      im.opts.Now().UTC(),
		}
		if strings.EqualFold(c.Alignment, "right") {
			cur.Suffix = c.Symbol
		} else {
			cur.Prefix = c.Symbol
		}
		if err := im.dst.AddCurrency(ctx, cur); err != nil {
			if database.IsDuplicateKey(err) {
				log.Infof("Currency %s already exists", code)
				stats.Skipped++
				continue
			}
			return stats, migration.Trace(err)
		}
		stats.Imported++
	}
	return stats, nil
}

// importInvoices copies invoices with their lines and line taxes in one
// transaction. Invoices of unknown clients are skipped.
func (im *Importer) importInvoices(ctx context.Context) (migration.Stats, error) {
	invoices, err := im.src.Invoices(ctx)
	if err != nil {
		return migration.Stats{}, migration.Trace(err)
	}
	if _, err := im.loadUsers(ctx); err != nil {
		return migration.Stats{}, err
	}

	var awaiting map[int64][]int64
	stats, err := im.inTx(ctx, func(dst blesta.Destination, ids mapper) (migration.Stats, error) {
		var stats migration.Stats
		awaiting = map[int64][]int64{}
		for _, inv := range invoices {
			clientID, ok := ids.LookupInt(idmap.Clients, inv.ClientID)
			if !ok {
				stats.Skipped++
				continue
			}

			var closed *time.Time
			if convert.InvoiceClosed(inv.Status) {
				closed = im.datePtr(inv.DatePaid)
			}
			paid := inv.Amount - inv.BalanceDue
			if paid < 0 {
				paid = 0
			}
			currency := normalizeCurrency(inv.Currency, im.clientCurrency(inv.ClientID))

			invoiceID, err := dst.AddInvoice(ctx, blesta.Invoice{
				IDFormat:    blesta.IDFormat,
				IDValue:     inv.ID,
				ClientID:    clientID,
				DateBilled:  im.date(inv.BillDate),
				DateDue:     im.date(inv.DueDate),
				DateClosed:  closed,
				Status:      convert.InvoiceStatus(inv.Status),
				Currency:    currency,
				Subtotal:    convert.Amount(inv.Subtotal),
				Total:       convert.Amount(inv.Amount),
				Paid:        convert.Amount(paid),
				NotePublic:  convert.DecodeText(inv.Note),
				NotePrivate: convert.DecodeText(inv.PrivateNote),
			})
			if err != nil {
				return stats, migration.Trace(err)
			}

			entries, err := im.src.InvoiceEntries(ctx, inv.ID)
			if err != nil {
				return stats, migration.Trace(err)
			}
			taxID, taxed := ids.Lookup(idmap.TaxNames, strings.ToLower(convert.DecodeText(inv.TaxName)))
			for i, e := range entries {
				desc := convert.DecodeText(e.Description)
				if detail := convert.DecodeText(e.Detail); detail != "" && detail != desc {
					desc = strings.TrimSpace(desc + " - " + detail)
				}
				qty := e.Quantity
				if qty == 0 {
					qty = 1
				}
				lineID, err := dst.AddInvoiceLine(ctx, blesta.InvoiceLine{
					InvoiceID:   invoiceID,
					Description: desc,
					Qty:         convert.Amount(qty),
					Amount:      convert.Amount(e.Price),
					Order:       i,
				})
				if err != nil {
					return stats, migration.Trace(err)
				}
				if err := ids.Put(idmap.InvoiceLines, idmap.Key(e.ID), lineID); err != nil {
					return stats, migration.Trace(err)
				}
				if e.ServiceID > 0 {
					awaiting[e.ServiceID] = append(awaiting[e.ServiceID], lineID)
				}
				if e.Taxable && taxed {
					if err := dst.AddInvoiceLineTax(ctx, lineID, taxID); err != nil {
						return stats, migration.Trace(err)
					}
				}
			}

			if err := ids.Put(idmap.Invoices, idmap.Key(inv.ID), invoiceID); err != nil {
				return stats, migration.Trace(err)
			}
			stats.Imported++
		}
		return stats, nil
	})
	if err != nil {
		return stats, err
	}
	// services are imported later; they link these lines once they exist
	im.serviceLines = awaiting
	return stats, nil
}

// importTransactions copies payments in one transaction. Approved payments
// are applied to their invoice.
func (im *Importer) importTransactions(ctx context.Context) (migration.Stats, error) {
	txns, err := im.src.Transactions(ctx)
	if err != nil {
		return migration.Stats{}, migration.Trace(err)
	}
	if _, err := im.loadUsers(ctx); err != nil {
		return migration.Stats{}, err
	}

	return im.inTx(ctx, func(dst blesta.Destination, ids mapper) (migration.Stats, error) {
		var stats migration.Stats
		for _, t := range txns {
			invoiceID, ok := ids.LookupInt(idmap.Invoices, t.InvoiceID)
			if !ok {
				stats.Skipped++
				continue
			}
			clientID, ok := ids.LookupInt(idmap.Clients, t.ClientID)
			if !ok {
				stats.Skipped++
				continue
			}

			status := convert.TransactionStatus(t.Accepted, t.Action, t.InvoiceStatus)
			amount := convert.Amount(t.Amount)
			added := im.date(t.Date)
			id, err := dst.AddTransaction(ctx, blesta.Transaction{
				ClientID:      clientID,
				Amount:        amount,
				Currency:      normalizeCurrency(t.Currency, im.clientCurrency(t.ClientID)),
				Type:          "other",
				TransactionID: strings.TrimSpace(t.TransactionID),
				Message:       convert.DecodeText(t.Response),
				Status:        status,
				DateAdded:     added,
			})
			if err != nil {
				return stats, migration.Trace(err)
			}
			if status == "approved" {
				if err := dst.ApplyTransaction(ctx, blesta.TransactionApplied{
					TransactionID: id,
					InvoiceID:     invoiceID,
					Amount:        amount,
					Date:          added,
				}); err != nil {
					return stats, migration.Trace(err)
				}
			}
			if err := ids.Put(idmap.Transactions, idmap.Key(t.ID), id); err != nil {
				return stats, migration.Trace(err)
			}
			stats.Imported++
		}
		return stats, nil
	})
}
