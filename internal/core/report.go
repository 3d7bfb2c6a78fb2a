package core

import (
	"encoding/json"
	"time"
)

// Category names one kind of anomaly collected in a Report.
type Category string

// Hard categories: the row is dropped.
const (
	ScinameUnknown   Category = "sciname_removed_lines"
	TaxonUnknown     Category = "taxon_unknown_removed_lines"
	DateMissing      Category = "date_missing_removed_lines"
	DateMaxBeforeMin Category = "date_max_removed_lines"
	DateMinInFuture  Category = "date_min_in_future_removed_lines"
	DateMaxInFuture  Category = "date_max_in_future_removed_lines"
	DateInvalid      Category = "date_invalid_removed_lines"
)

// Soft categories: the row is kept with a corrected or nulled value.
const (
	DatasetCodeUnknown      Category = "dataset_code_unknown_lines"
	ModuleCodeUnknown       Category = "module_code_unknown_lines"
	SourceCodeUnknown       Category = "source_code_unknown_lines"
	AreaCodeUnknown         Category = "area_code_unknown_lines"
	OrganismCodeUnknown     Category = "organism_code_unknown_lines"
	NomenclatureCodeUnknown Category = "nomenclature_code_unknown_lines"
	DigitiserCodeUnknown    Category = "digitiser_code_unknown_lines"
	AFCodeUnknown           Category = "af_code_unknown_lines"
	ThemeCodeUnknown        Category = "theme_code_unknown_lines"
	AltitudeNegative        Category = "altitude_negative_lines"
	AltitudeInverted        Category = "altitude_inverted_lines"
	AltitudeErrors          Category = "altitude_errors_lines"
	AltitudeMinFixed        Category = "altitude_min_fixed_lines"
	AltitudeMaxFixed        Category = "altitude_max_fixed_lines"
	DepthMinFixed           Category = "depth_min_fixed_lines"
	DepthMaxFixed           Category = "depth_max_fixed_lines"
	Malformed               Category = "malformed_lines"
)

// CategoryInfo describes how a category is collected and shown.
type CategoryInfo struct {
	Category Category
	Label    string
	Hard     bool // rows in this category were dropped
	Grouped  bool // rows are grouped by offending code
}

// Categories lists every category in report order.
var Categories = []CategoryInfo{
	{ScinameUnknown, "Sciname code unknown in TaxRef", true, true},
	{TaxonUnknown, "Taxon code unknown", true, true},
	{DateMissing, "Mandatory date missing", true, false},
	{DateMaxBeforeMin, "Date max before date min", true, false},
	{DateMinInFuture, "Date min in the future", true, false},
	{DateMaxInFuture, "Date max in the future", true, false},
	{DateInvalid, "Date not parsable", true, false},
	{DatasetCodeUnknown, "Dataset code unknown", false, true},
	{ModuleCodeUnknown, "Module code unknown", false, true},
	{SourceCodeUnknown, "Source code unknown", false, true},
	{AreaCodeUnknown, "Area code unknown", false, true},
	{OrganismCodeUnknown, "Organism code unknown", false, true},
	{NomenclatureCodeUnknown, "Nomenclature code unknown", false, true},
	{DigitiserCodeUnknown, "Digitiser code unknown", false, true},
	{AFCodeUnknown, "Acquisition framework code unknown", false, true},
	{ThemeCodeUnknown, "Theme code unknown", false, true},
	{AltitudeNegative, "Negative altitudes moved to depths", false, false},
	{AltitudeInverted, "Altitudes min/max inverted", false, false},
	{AltitudeErrors, "Altitudes out of range, set to null", false, false},
	{AltitudeMinFixed, "Altitude min truncated", false, false},
	{AltitudeMaxFixed, "Altitude max truncated", false, false},
	{DepthMinFixed, "Depth min truncated", false, false},
	{DepthMaxFixed, "Depth max truncated", false, false},
	{Malformed, "Lines with more values than columns", false, false},
}

// Group is the list of row references sharing one offending code.
type Group struct {
	Code string   `json:"code"`
	Refs []string `json:"refs"`
}

type groups struct {
	order []Group
	index map[string]int
}

func (g *groups) add(code, ref string) {
	if i, ok := g.index[code]; ok {
		g.order[i].Refs = append(g.order[i].Refs, ref)
		return
	}
	g.index[code] = len(g.order)
	g.order = append(g.order, Group{Code: code, Refs: []string{ref}})
}

// Report accumulates the anomalies of one run. It is written by the single
// goroutine processing rows and read once the run is over.
type Report struct {
	RecordType  string
	Source      string
	Destination string
	StartedAt   time.Time
	Elapsed     time.Duration

	LinesTotal        int // data lines read
	LinesWritten      int // rows written to the destination
	LinesRemovedTotal int // rows dropped

	flat    map[Category][]string
	grouped map[Category]*groups
}

// NewReport returns an empty report.
func NewReport(recordType string) *Report {
	return &Report{
		RecordType: recordType,
		flat:       make(map[Category][]string),
		grouped:    make(map[Category]*groups),
	}
}

// Drop records a dropped row under a flat hard category.
func (r *Report) Drop(c Category, ref string) {
	r.LinesRemovedTotal++
	r.Add(c, ref)
}

// DropCode records a dropped row under a grouped hard category.
func (r *Report) DropCode(c Category, code, ref string) {
	r.LinesRemovedTotal++
	r.AddCode(c, code, ref)
}

// Add records a kept row under a flat category.
func (r *Report) Add(c Category, ref string) {
	r.flat[c] = append(r.flat[c], ref)
}

// AddCode records a kept row under a grouped category.
func (r *Report) AddCode(c Category, code, ref string) {
	g, ok := r.grouped[c]
	if !ok {
		g = &groups{index: make(map[string]int)}
		r.grouped[c] = g
	}
	g.add(code, ref)
}

// Flat returns the row references of a flat category.
func (r *Report) Flat(c Category) []string {
	return r.flat[c]
}

// Grouped returns the code groups of a grouped category, in first seen order.
func (r *Report) Grouped(c Category) []Group {
	if g, ok := r.grouped[c]; ok {
		return g.order
	}
	return nil
}

// Count returns the number of row references recorded under c.
func (r *Report) Count(c Category) int {
	n := len(r.flat[c])
	for _, g := range r.Grouped(c) {
		n += len(g.Refs)
	}
	return n
}

// NonEmpty returns the categories holding at least one reference.
func (r *Report) NonEmpty() []CategoryInfo {
	var out []CategoryInfo
	for _, info := range Categories {
		if r.Count(info.Category) > 0 {
			out = append(out, info)
		}
	}
	return out
}

// MarshalJSON renders the report as one object: counters plus one key per
// category, grouped categories as code -> references.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"record_type":         r.RecordType,
		"source":              r.Source,
		"destination":         r.Destination,
		"elapsed":             r.Elapsed.String(),
		"lines_total":         r.LinesTotal,
		"lines_written":       r.LinesWritten,
		"lines_removed_total": r.LinesRemovedTotal,
	}
	for _, info := range Categories {
		if info.Grouped {
			byCode := make(map[string][]string)
			for _, g := range r.Grouped(info.Category) {
				byCode[g.Code] = g.Refs
			}
			out[string(info.Category)] = byCode
			continue
		}
		refs := r.Flat(info.Category)
		if refs == nil {
			refs = []string{}
		}
		out[string(info.Category)] = refs
	}
	return json.Marshal(out)
}
