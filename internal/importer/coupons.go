package importer

import (
	"context"
	"strings"

	"github.com/gotrs-io/cemigrate/internal/blesta"
	"github.com/gotrs-io/cemigrate/internal/convert"
	"github.com/gotrs-io/cemigrate/internal/idmap"
	"github.com/gotrs-io/cemigrate/internal/migration"
)

// couponAmount reads a Clientexec discount: values below 1 are a fraction
// of the price, anything else a fixed amount.
func couponAmount(discount float64) (string, string) {
	if discount < 1 {
		return convert.Amount(discount * 100), "percent"
	}
	return convert.Amount(discount), "amount"
}

func (im *Importer) importCoupons(ctx context.Context) (migration.Stats, error) {
	var stats migration.Stats
	coupons, err := im.src.Coupons(ctx)
	if err != nil {
		return stats, migration.Trace(err)
	}
	log := im.stepLog(StepCoupons)

	for _, c := range coupons {
		code := strings.TrimSpace(c.Code)
		if code == "" {
			log.WithField("coupon_id", c.ID).Debug("Skipping coupon without code")
			stats.Skipped++
			continue
		}
		status := "active"
		if c.Archived {
			status = "inactive"
		}
		couponID, err := im.dst.AddCoupon(ctx, blesta.Coupon{
			Code:      code,
			CompanyID: im.opts.CompanyID,
			UsedQty:   c.Used,
			MaxQty:    c.Quantity,
			StartDate: im.datePtr(c.Start),
			EndDate:   im.datePtr(c.Expires),
			Status:    status,
			Type:      "exclusive",
			Recurring: c.Recurring,
		})
		if err != nil {
			return stats, migration.Trace(err)
		}

		amount, kind := couponAmount(c.Discount)
		if err := im.dst.AddCouponAmount(ctx, blesta.CouponAmount{
			CouponID: couponID,
			Currency: im.opts.DefaultCurrency,
			Amount:   amount,
			Type:     kind,
		}); err != nil {
			return stats, migration.Trace(err)
		}

		pkgs, err := im.src.CouponPackages(ctx, c.ID)
		if err != nil {
			return stats, migration.Trace(err)
		}
		for _, remotePkg := range pkgs {
			pkgID, ok := im.ids.LookupInt(idmap.Packages, remotePkg)
			if !ok {
				continue
			}
			if err := im.dst.AddCouponPackage(ctx, couponID, pkgID); err != nil {
				return stats, migration.Trace(err)
			}
		}

		if err := im.ids.Put(idmap.Coupons, idmap.Key(c.ID), couponID); err != nil {
			return stats, migration.Trace(err)
		}
		stats.Imported++
	}
	return stats, nil
}
