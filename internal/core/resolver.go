package core

// resolver.go turns human-readable codes into database identifiers.
//
// A lookup miss is an ordinary outcome: the value is nulled and the code
// recorded, the row is kept. Scientific names are the exception and are
// checked by CheckSciname, which drops the row.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/importparser/internal/registry"
)

// ErrUnknownNomenclatureColumn is returned when a nomenclature column has no
// configured nomenclature type.
var ErrUnknownNomenclatureColumn = errors.New("nomenclature column without type")

// codeColumn binds a single-level code column to its domain.
type codeColumn struct {
	column   string
	domain   registry.Domain
	category Category
	label    string
}

var (
	datasetColumn   = codeColumn{ColDataset, registry.Datasets, DatasetCodeUnknown, "dataset"}
	moduleColumn    = codeColumn{ColModule, registry.Modules, ModuleCodeUnknown, "module"}
	sourceColumn    = codeColumn{ColSource, registry.Sources, SourceCodeUnknown, "source"}
	organismColumn  = codeColumn{ColOrganism, registry.Organisms, OrganismCodeUnknown, "organism"}
	digitiserColumn = codeColumn{ColDigitiser, registry.Users, DigitiserCodeUnknown, "digitiser"}
	afColumn        = codeColumn{ColAcquisitionFramework, registry.AcquisitionFrameworks, AFCodeUnknown, "acquisition framework"}
	themeColumn     = codeColumn{ColTheme, registry.Themes, ThemeCodeUnknown, "theme"}
)

// Resolver resolves code columns against a registry.
type Resolver struct {
	rc  *recorder
	reg *registry.Registry

	nomenclatures map[string]string // column -> nomenclature type
	defaults      map[string]string // column -> default code
	areas         map[string]string // column -> area type
}

// resolve replaces the code of a single-level column by its identifier.
func (r *Resolver) resolve(row Row, c codeColumn) {
	code, ok := r.rc.present(row, c.column)
	if !ok {
		return
	}
	if id, found := r.reg.Get(c.domain).Lookup(code); found {
		row.Set(c.column, registry.FormatID(id))
		return
	}
	ref := r.rc.warn(row, c.label+" code unknown, set to null", "code", code)
	r.rc.report.AddCode(c.category, code, ref)
	row.Set(c.column, r.rc.null)
}

// CheckSciname reports whether cd_nom exists in TaxRef. An unknown code
// drops the row; an empty or null one does not.
func (r *Resolver) CheckSciname(row Row) bool {
	code, ok := row.Get(ColSciname)
	if !ok || r.rc.emptyOrNull(code) {
		return true
	}
	if r.reg.Get(registry.Scinames).Has(code) {
		return true
	}
	ref := r.rc.warn(row, "line removed, sciname code unknown in TaxRef", "code", code)
	r.rc.report.DropCode(ScinameUnknown, code, ref)
	return false
}

// ApplyNomenclatureDefaults fills empty nomenclature columns with their
// configured default code.
func (r *Resolver) ApplyNomenclatureDefaults(row Row) {
	for col, code := range r.defaults {
		if v, ok := row.Get(col); row.Has(col) && (!ok || r.rc.emptyOrNull(v)) {
			row.Set(col, code)
		}
	}
}

// ResolveNomenclatures resolves every code_nomenclature_* column.
func (r *Resolver) ResolveNomenclatures(row Row) {
	r.ApplyNomenclatureDefaults(row)
	m := r.reg.GetTyped(registry.Nomenclatures)
	for _, f := range row.Fields() {
		if !strings.HasPrefix(f.Name, NomenclaturePrefix) {
			continue
		}
		r.resolveTyped(row, f, r.nomenclatures[f.Name], m, NomenclatureCodeUnknown, "nomenclature")
	}
}

// ResolveAreas resolves the configured area columns and every code_area_*
// column.
func (r *Resolver) ResolveAreas(row Row) {
	m := r.reg.GetTyped(registry.Areas)
	for _, f := range row.Fields() {
		kind, ok := r.areaType(f.Name)
		if !ok {
			continue
		}
		r.resolveTyped(row, f, kind, m, AreaCodeUnknown, "area")
	}
}

func (r *Resolver) areaType(col string) (string, bool) {
	if kind, ok := r.areas[col]; ok {
		return kind, true
	}
	if suffix, ok := strings.CutPrefix(col, AreaPrefix); ok && suffix != "" {
		return strings.ToUpper(suffix), true
	}
	return "", false
}

// resolveTyped applies the two-level policy: empty becomes null, null is
// kept, a miss is nulled and recorded as "type-code".
func (r *Resolver) resolveTyped(row Row, f Field, kind string, m registry.TypedMapping, c Category, label string) {
	switch {
	case f.Missing:
		return
	case strings.TrimSpace(f.Value) == "":
		row.Set(f.Name, r.rc.null)
		return
	case r.rc.isNull(f.Value):
		return
	}
	if id, found := m.Lookup(kind, f.Value); found {
		row.Set(f.Name, registry.FormatID(id))
		return
	}
	ref := r.rc.warn(row, label+" code unknown, set to null", "column", f.Name, "type", kind, "code", f.Value)
	r.rc.report.AddCode(c, kind+"-"+f.Value, ref)
	row.Set(f.Name, r.rc.null)
}

// CheckNomenclatureColumns verifies that every nomenclature column of
// header has a configured type.
func (r *Resolver) CheckNomenclatureColumns(header []string) error {
	var missing []string
	for _, name := range header {
		if strings.HasPrefix(name, NomenclaturePrefix) {
			if _, ok := r.nomenclatures[name]; !ok {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownNomenclatureColumn, strings.Join(missing, ", "))
	}
	return nil
}

// ResolveMediaTaxon checks cd_ref against the TaxHub taxa. A code that is a
// cd_nom rather than a cd_ref is replaced by its cd_ref; otherwise the row
// is dropped.
func (r *Resolver) ResolveMediaTaxon(m Media) bool {
	code, ok := m.Taxon()
	if ok && !r.rc.emptyOrNull(code) && r.reg.Get(registry.Taxa).Has(code) {
		return true
	}
	if ok && !r.rc.emptyOrNull(code) {
		if cdRef, found := r.reg.Get(registry.Scinames).Lookup(code); found {
			r.rc.warn(m, "taxon code is a cd_nom, replaced by its cd_ref", "code", code, "cd_ref", cdRef)
			m.Set(ColTaxon, registry.FormatID(cdRef))
			return true
		}
	}
	ref := r.rc.warn(m, "line removed, taxon code unknown", "code", code)
	r.rc.report.DropCode(TaxonUnknown, code, ref)
	return false
}
