package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gotrs-io/cemigrate/internal/blesta"
	"github.com/gotrs-io/cemigrate/internal/clientexec"
	"github.com/gotrs-io/cemigrate/internal/convert"
	"github.com/gotrs-io/cemigrate/internal/fieldmap"
	"github.com/gotrs-io/cemigrate/internal/idmap"
	"github.com/gotrs-io/cemigrate/internal/migration"
)

// packageModule is the module a package provisions through: its type and
// the module_rows mapping key of its server or registrar.
type packageModule struct {
	Type   *fieldmap.ModuleType
	RowKey string
	Vars   map[string]string
}

func registrarKey(moduleType string) string {
	return idmap.CompositeKey("registrar", moduleType)
}

// resolveCatalog works out the module of every package from source data
// alone, so services can be translated even when the packages step was
// skipped by an earlier run.
func (im *Importer) resolveCatalog(ctx context.Context) (map[int64]packageModule, error) {
	if im.catalog != nil {
		return im.catalog, nil
	}
	servers, err := im.src.Servers(ctx)
	if err != nil {
		return nil, migration.Trace(err)
	}
	byServer := make(map[int64]*fieldmap.ModuleType, len(servers))
	for _, s := range servers {
		byServer[s.ID] = im.tables.Detect(s.Plugin)
	}

	pkgs, err := im.loadPackages(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[int64]packageModule, len(pkgs))
	for _, p := range pkgs {
		vars, err := im.src.PackageVariables(ctx, p.ID)
		if err != nil {
			return nil, migration.Trace(err)
		}
		pm := packageModule{Vars: vars}
		if mt, ok := byServer[p.ServerID]; ok && p.ServerID != 0 {
			pm.Type = mt
			pm.RowKey = idmap.Key(p.ServerID)
		} else if reg := strings.TrimSpace(vars["registrar"]); reg != "" {
			pm.Type = im.tables.Detect(reg)
			pm.RowKey = registrarKey(pm.Type.Type)
		} else {
			pm.Type = im.tables.Detect("")
		}
		catalog[p.ID] = pm
	}
	im.catalog = catalog
	return catalog, nil
}

func (im *Importer) ensureModule(ctx context.Context, mt *fieldmap.ModuleType) (int64, error) {
	if id, ok := im.ids.Lookup(idmap.Modules, mt.Type); ok {
		return id, nil
	}
	id, err := im.dst.AddModule(ctx, blesta.Module{
		CompanyID: im.opts.CompanyID,
		Name:      mt.Name,
		Class:     mt.Class,
		Version:   mt.Version,
	})
	if err != nil {
		return 0, migration.Trace(err)
	}
	if err := im.ids.Put(idmap.Modules, mt.Type, id); err != nil {
		return 0, migration.Trace(err)
	}
	return id, nil
}

// importModules installs one module per detected type and a module row per
// server, plus one row per configured registrar plugin.
func (im *Importer) importModules(ctx context.Context) (migration.Stats, error) {
	var stats migration.Stats
	servers, err := im.src.Servers(ctx)
	if err != nil {
		return stats, migration.Trace(err)
	}

	for _, s := range servers {
		mt := im.tables.Detect(s.Plugin)
		options, err := im.src.ServerOptions(ctx, s.ID)
		if err != nil {
			return stats, migration.Trace(err)
		}
		rec := fieldmap.Record{
			"name":        convert.DecodeText(s.Name),
			"hostname":    strings.TrimSpace(s.Hostname),
			"sharedip":    strings.TrimSpace(s.SharedIP),
			"maxaccounts": strconv.Itoa(s.MaxAccounts),
		}
		for k, v := range options {
			rec[k] = v
		}
		if err := im.addModuleRow(ctx, mt, idmap.Key(s.ID), rec); err != nil {
			return stats, err
		}
		stats.Imported++
	}

	settings, err := im.loadSettings(ctx)
	if err != nil {
		return stats, err
	}
	for _, mt := range im.tables.Registrars() {
		rec := pluginSettings(settings, mt.Type)
		if len(rec) == 0 || rec["Enabled"] == "0" {
			continue
		}
		if err := im.addModuleRow(ctx, mt, registrarKey(mt.Type), rec); err != nil {
			return stats, err
		}
		stats.Imported++
	}
	return stats, nil
}

func (im *Importer) addModuleRow(ctx context.Context, mt *fieldmap.ModuleType, key string, rec fieldmap.Record) error {
	moduleID, err := im.ensureModule(ctx, mt)
	if err != nil {
		return err
	}
	rowID, err := im.dst.AddModuleRow(ctx, blesta.ModuleRow{ModuleID: moduleID, Status: "active"})
	if err != nil {
		return migration.Trace(err)
	}
	scope := blesta.FieldScope{Table: blesta.ModuleRowMeta, OwnerID: rowID}
	if _, err := im.tr.Write(ctx, im.dst, scope, mt.RowMeta, rec); err != nil {
		return migration.Trace(fmt.Errorf("module row %s: %w", key, err))
	}
	if err := im.ids.Put(idmap.ModuleRows, key, rowID); err != nil {
		return migration.Trace(err)
	}
	return nil
}

// pluginSettings collects plugin_<type>_<name> settings as name -> value.
func pluginSettings(settings map[string]string, moduleType string) fieldmap.Record {
	prefix := "plugin_" + strings.ToLower(moduleType) + "_"
	rec := fieldmap.Record{}
	for k, v := range settings {
		if len(k) > len(prefix) && strings.EqualFold(k[:len(prefix)], prefix) {
			rec[k[len(prefix):]] = v
		}
	}
	return rec
}

// importPackages copies package groups and packages with names, pricing,
// group placement and module meta.
func (im *Importer) importPackages(ctx context.Context) (migration.Stats, error) {
	var stats migration.Stats
	log := im.stepLog(StepPackages)

	groups, err := im.src.PackageGroups(ctx)
	if err != nil {
		return stats, migration.Trace(err)
	}
	for _, g := range groups {
		id, err := im.dst.AddPackageGroup(ctx, blesta.PackageGroup{
			CompanyID: im.opts.CompanyID,
			Name:      convert.DecodeText(g.Name),
			Type:      "standard",
		})
		if err != nil {
			return stats, migration.Trace(err)
		}
		if err := im.ids.Put(idmap.PackageGroups, idmap.Key(g.ID), id); err != nil {
			return stats, migration.Trace(err)
		}
	}

	pkgs, err := im.loadPackages(ctx)
	if err != nil {
		return stats, err
	}
	catalog, err := im.resolveCatalog(ctx)
	if err != nil {
		return stats, err
	}

	order := map[int64]int{}
	for _, p := range pkgs {
		pm := catalog[p.ID]
		var moduleID, rowID *int64
		if pm.RowKey != "" {
			if id, ok := im.ids.Lookup(idmap.ModuleRows, pm.RowKey); ok {
				rowID = &id
			}
		}
		if id, ok := im.ids.Lookup(idmap.Modules, pm.Type.Type); ok {
			moduleID = &id
		}
		status := "active"
		if !p.Visible {
			status = "restricted"
		}

		pkgID, err := im.dst.AddPackage(ctx, blesta.Package{
			IDFormat:    blesta.IDFormat,
			IDValue:     p.ID,
			CompanyID:   im.opts.CompanyID,
			ModuleID:    moduleID,
			ModuleRow:   rowID,
			Taxable:     p.Taxable,
			Status:      status,
			Name:        convert.DecodeText(p.Name),
			Description: im.html.HTML(p.Description),
			Lang:        im.opts.Language,
		})
		if err != nil {
			return stats, migration.Trace(err)
		}

		if groupID, ok := im.ids.LookupInt(idmap.PackageGroups, p.GroupID); ok {
			if err := im.dst.AddPackageToGroup(ctx, pkgID, groupID, order[groupID]); err != nil {
				return stats, migration.Trace(err)
			}
			order[groupID]++
		}

		prices, err := fieldmap.ParsePricing(p.Pricing)
		if err != nil {
			log.WithField("package_id", p.ID).Warnf("Package has no usable pricing: %v", err)
		}
		for _, price := range prices {
			id, err := im.addPricing(ctx, price)
			if err != nil {
				return stats, err
			}
			linkID, err := im.dst.AddPackagePricing(ctx, pkgID, id)
			if err != nil {
				return stats, migration.Trace(err)
			}
			if err := im.ids.Put(idmap.Pricings, idmap.CompositeKey(p.ID, price.Months), linkID); err != nil {
				return stats, migration.Trace(err)
			}
		}

		scope := blesta.FieldScope{Table: blesta.PackageMeta, OwnerID: pkgID}
		if _, err := im.tr.Write(ctx, im.dst, scope, pm.Type.PackageMeta, fieldmap.Record(pm.Vars)); err != nil {
			return stats, migration.Trace(fmt.Errorf("package %d meta: %w", p.ID, err))
		}
		if err := im.ids.Put(idmap.Packages, idmap.Key(p.ID), pkgID); err != nil {
			return stats, migration.Trace(err)
		}
		stats.Imported++
	}
	return stats, nil
}

func (im *Importer) addPricing(ctx context.Context, price fieldmap.Price) (int64, error) {
	term, period := fieldmap.Term(price.Months)
	id, err := im.dst.AddPricing(ctx, blesta.Pricing{
		CompanyID: im.opts.CompanyID,
		Term:      term,
		Period:    period,
		Price:     convert.Amount(price.Price),
		SetupFee:  convert.Amount(price.Setup),
		Currency:  im.opts.DefaultCurrency,
	})
	if err != nil {
		return 0, migration.Trace(err)
	}
	return id, nil
}

// importPackageOptions copies addons as select options with priced values
// and attaches them to packages through one option group per package.
func (im *Importer) importPackageOptions(ctx context.Context) (migration.Stats, error) {
	var stats migration.Stats
	log := im.stepLog(StepPackageOptions)

	addons, err := im.src.Addons(ctx)
	if err != nil {
		return stats, migration.Trace(err)
	}
	for _, a := range addons {
		label := convert.DecodeText(a.Name)
		name := strings.TrimSpace(a.PluginOption)
		if name == "" {
			name = fieldmap.SnakeCase(label)
		}
		optionID, err := im.dst.AddPackageOption(ctx, blesta.PackageOption{
			CompanyID:   im.opts.CompanyID,
			Label:       label,
			Name:        name,
			Type:        "select",
			Description: convert.DecodeText(a.Description),
			Addable:     true,
			Editable:    true,
		})
		if err != nil {
			return stats, migration.Trace(err)
		}
		if err := im.addOptionValues(ctx, a, optionID); err != nil {
			return stats, err
		}
		if err := im.ids.Put(idmap.PackageOptions, idmap.Key(a.ID), optionID); err != nil {
			return stats, migration.Trace(err)
		}
		stats.Imported++
	}

	links, err := im.src.ProductAddons(ctx)
	if err != nil {
		return stats, migration.Trace(err)
	}
	byPackage := map[int64][]clientexec.ProductAddon{}
	var packageOrder []int64
	for _, l := range links {
		if _, seen := byPackage[l.PackageID]; !seen {
			packageOrder = append(packageOrder, l.PackageID)
		}
		byPackage[l.PackageID] = append(byPackage[l.PackageID], l)
	}

	pkgs, err := im.loadPackages(ctx)
	if err != nil {
		return stats, err
	}
	names := make(map[int64]string, len(pkgs))
	for _, p := range pkgs {
		names[p.ID] = convert.DecodeText(p.Name)
	}

	for _, remotePkg := range packageOrder {
		pkgID, ok := im.ids.LookupInt(idmap.Packages, remotePkg)
		if !ok {
			log.WithField("package_id", remotePkg).Debug("Skipping addons of unknown package")
			stats.Skipped += len(byPackage[remotePkg])
			continue
		}
		name := names[remotePkg]
		if name == "" {
			name = "Package " + strconv.FormatInt(remotePkg, 10)
		}
		groupID, err := im.dst.AddPackageOptionGroup(ctx, blesta.PackageOptionGroup{
			CompanyID: im.opts.CompanyID,
			Name:      name + " Options",
		})
		if err != nil {
			return stats, migration.Trace(err)
		}
		if err := im.dst.AddOptionGroupToPackage(ctx, pkgID, groupID); err != nil {
			return stats, migration.Trace(err)
		}
		for i, l := range byPackage[remotePkg] {
			optionID, ok := im.ids.LookupInt(idmap.PackageOptions, l.AddonID)
			if !ok {
				stats.Skipped++
				continue
			}
			if err := im.dst.AddOptionToGroup(ctx, optionID, groupID, i); err != nil {
				return stats, migration.Trace(err)
			}
		}
	}
	return stats, nil
}

func (im *Importer) addOptionValues(ctx context.Context, a clientexec.Addon, optionID int64) error {
	prices, err := im.src.AddonPrices(ctx, a.ID)
	if err != nil {
		return migration.Trace(err)
	}
	for i, ap := range prices {
		detail := convert.DecodeText(ap.Detail)
		value := strings.TrimSpace(ap.Value)
		if value == "" {
			value = detail
		}
		valueID, err := im.dst.AddPackageOptionValue(ctx, blesta.PackageOptionValue{
			OptionID: optionID,
			Name:     detail,
			Value:    value,
			Order:    i,
			Status:   "active",
		})
		if err != nil {
			return migration.Trace(err)
		}
		if err := im.ids.Put(idmap.PackageOptionValues, idmap.Key(ap.ID), valueID); err != nil {
			return migration.Trace(err)
		}

		terms, err := fieldmap.ParsePricing(ap.Pricing)
		if err != nil {
			im.stepLog(StepPackageOptions).WithField("addon_price_id", ap.ID).Warnf("Addon value has no usable pricing: %v", err)
			continue
		}
		for _, price := range terms {
			pricingID, err := im.addPricing(ctx, price)
			if err != nil {
				return err
			}
			linkID, err := im.dst.AddPackageOptionPricing(ctx, valueID, pricingID)
			if err != nil {
				return migration.Trace(err)
			}
			if err := im.ids.Put(idmap.OptionPricings, idmap.CompositeKey(ap.ID, price.Months), linkID); err != nil {
				return migration.Trace(err)
			}
		}
	}
	return nil
}
