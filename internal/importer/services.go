package importer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gotrs-io/cemigrate/internal/blesta"
	"github.com/gotrs-io/cemigrate/internal/convert"
	"github.com/gotrs-io/cemigrate/internal/fieldmap"
	"github.com/gotrs-io/cemigrate/internal/idmap"
	"github.com/gotrs-io/cemigrate/internal/migration"
)

// importServices copies client services with their module fields and
// addon selections. Services whose client, package or billing term was not
// imported are skipped.
func (im *Importer) importServices(ctx context.Context) (migration.Stats, error) {
	services, err := im.src.Services(ctx)
	if err != nil {
		return migration.Stats{}, migration.Trace(err)
	}
	catalog, err := im.resolveCatalog(ctx)
	if err != nil {
		return migration.Stats{}, err
	}
	if _, err := im.loadUsers(ctx); err != nil {
		return migration.Stats{}, err
	}
	log := im.stepLog(StepServices)

	return im.inTx(ctx, func(dst blesta.Destination, ids mapper) (migration.Stats, error) {
		var stats migration.Stats
		for _, s := range services {
			entry := log.WithField("service_id", s.ID)
			clientID, ok := ids.LookupInt(idmap.Clients, s.ClientID)
			if !ok {
				entry.Debug("Skipping service of unknown client")
				stats.Skipped++
				continue
			}
			pricingID, ok := ids.Lookup(idmap.Pricings, idmap.CompositeKey(s.PackageID, s.PaymentTerm))
			if !ok {
				entry.WithField("package_id", s.PackageID).Debug("Skipping service without imported package pricing")
				stats.Skipped++
				continue
			}

			pm, known := catalog[s.PackageID]
			svc := blesta.Service{
				IDFormat:   blesta.IDFormat,
				IDValue:    s.ID,
				PricingID:  pricingID,
				ClientID:   clientID,
				Qty:        1,
				Status:     convert.ServiceStatus(s.Status),
				DateAdded:  im.date(s.DateActivated),
				DateRenews: im.datePtr(s.NextBillDate),
			}
			if known && pm.RowKey != "" {
				if rowID, ok := ids.Lookup(idmap.ModuleRows, pm.RowKey); ok {
					svc.ModuleRowID = &rowID
				}
			}
			if s.UseCustomPrice {
				price := convert.Amount(s.CustomPrice)
				currency := normalizeCurrency(s.Currency, im.clientCurrency(s.ClientID))
				svc.OverridePrice = &price
				svc.OverrideCurr = &currency
			}
			switch now := im.opts.Now().UTC(); svc.Status {
			case "canceled":
				svc.DateCanceled = &now
			case "suspended":
				svc.DateSuspended = &now
			}

			serviceID, err := dst.AddService(ctx, svc)
			if err != nil {
				return stats, migration.Trace(err)
			}
			for _, lineID := range im.serviceLines[s.ID] {
				if err := dst.LinkInvoiceLine(ctx, lineID, serviceID); err != nil {
					return stats, migration.Trace(err)
				}
			}

			if known {
				fields, err := im.src.ServiceFields(ctx, s.ID)
				if err != nil {
					return stats, migration.Trace(err)
				}
				scope := blesta.FieldScope{Table: blesta.ServiceFields, OwnerID: serviceID}
				if _, err := im.tr.Write(ctx, dst, scope, pm.Type.ServiceFields, fieldmap.Record(fields)); err != nil {
					return stats, migration.Trace(fmt.Errorf("service %d fields: %w", s.ID, err))
				}
			}

			if err := im.addServiceOptions(ctx, dst, ids, s.ID, serviceID); err != nil {
				return stats, err
			}
			if err := ids.Put(idmap.Services, idmap.Key(s.ID), serviceID); err != nil {
				return stats, migration.Trace(err)
			}
			stats.Imported++
		}
		return stats, nil
	})
}

func (im *Importer) addServiceOptions(ctx context.Context, dst blesta.Destination, ids mapper, remoteID, serviceID int64) error {
	addons, err := im.src.ServiceAddons(ctx, remoteID)
	if err != nil {
		return migration.Trace(err)
	}
	for _, a := range addons {
		pricingID, ok := ids.Lookup(idmap.OptionPricings, idmap.CompositeKey(a.AddonPriceID, a.PaymentTerm))
		if !ok {
			im.stepLog(StepServices).WithFields(logrus.Fields{
				"service_id":     remoteID,
				"addon_price_id": a.AddonPriceID,
			}).Debug("Skipping addon without imported option pricing")
			continue
		}
		qty := a.Quantity
		if qty < 1 {
			qty = 1
		}
		if err := dst.AddServiceOption(ctx, blesta.ServiceOption{
			ServiceID:       serviceID,
			OptionPricingID: pricingID,
			Qty:             qty,
		}); err != nil {
			return migration.Trace(err)
		}
	}
	return nil
}
