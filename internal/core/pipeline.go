package core

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/importparser/internal/actions"
	"github.com/JonMunkholm/importparser/internal/registry"
)

// ErrUnknownAttribute is returned when a text file has a column that is not
// a TaxHub attribute.
var ErrUnknownAttribute = errors.New("unknown attribute column")

// TextHeader is the output header of text imports.
var TextHeader = []string{"cd_ref", "attribut_id", "text"}

// Decision is the outcome of processing one row.
type Decision int

const (
	Keep Decision = iota
	Drop
)

func (d Decision) String() string {
	if d == Drop {
		return "drop"
	}
	return "keep"
}

// Pipeline processes the rows of one run. It is not safe for concurrent use.
type Pipeline struct {
	typ       RecordType
	rc        *recorder
	shaper    *Shaper
	validator *Validator
	resolver  *Resolver
	header    []string
}

// PipelineOptions carries the optional collaborators of a pipeline.
type PipelineOptions struct {
	Logger *slog.Logger
	Now    func() time.Time
}

// NewPipeline plans the processing of a file whose header is header. Every
// configuration problem is reported here, before any row is read.
func NewPipeline(
	typ RecordType,
	cfg *actions.Compiled,
	reg *registry.Registry,
	header []string,
	report *Report,
	opts PipelineOptions,
) (*Pipeline, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if reg == nil {
		reg = registry.New()
	}

	rc := &recorder{
		report:      report,
		logger:      opts.Logger,
		reportField: cfg.ReportField,
		null:        cfg.NullValue,
	}

	shaper, err := NewShaper(cfg, header, rc)
	if err != nil {
		return nil, fmt.Errorf("plan columns: %w", err)
	}

	p := &Pipeline{
		typ:       typ,
		rc:        rc,
		shaper:    shaper,
		validator: &Validator{rc: rc, addUUID: cfg.AddObservationUUID, now: opts.Now},
		resolver: &Resolver{
			rc:            rc,
			reg:           reg,
			nomenclatures: cfg.Nomenclatures,
			defaults:      cfg.NomenclatureDefaults,
			areas:         cfg.Areas,
		},
		header: shaper.Header(),
	}

	switch typ.Name {
	case TypeSynthese, TypeDataset, TypeAcquisitionFramework:
		if err := p.resolver.CheckNomenclatureColumns(p.header); err != nil {
			return nil, err
		}
	case TypeText:
		if err := checkAttributeColumns(p.header, reg.Get(registry.Attributes)); err != nil {
			return nil, err
		}
		p.header = TextHeader
	}
	return p, nil
}

func checkAttributeColumns(header []string, attributes registry.Mapping) error {
	var unknown []string
	for _, name := range header {
		if name != ColTaxon && !attributes.Has(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownAttribute, strings.Join(unknown, ", "))
	}
	return nil
}

// Header returns the output header.
func (p *Pipeline) Header() []string {
	return p.header
}

// Process runs one record through the pipeline. Kept rows are returned in
// output order; a text record yields one row per attribute value.
func (p *Pipeline) Process(rec *Record) (Decision, []*Record) {
	p.shaper.ShapeRow(rec)
	p.shaper.AddColumns(rec)
	p.shaper.SetValues(rec)
	EscapeControlChars(rec)

	switch row := p.typ.shape(rec).(type) {
	case Observation:
		if p.processObservation(row) == Drop {
			return Drop, nil
		}
	case Dataset:
		p.resolver.ResolveNomenclatures(row)
		p.resolver.resolve(row, afColumn)
	case AcquisitionFramework:
		p.resolver.ResolveNomenclatures(row)
	case User:
		p.resolver.resolve(row, organismColumn)
	case Attribute:
		p.resolver.resolve(row, themeColumn)
	case AttributeText:
		return Keep, p.flipText(row)
	case Media:
		if !p.resolver.ResolveMediaTaxon(row) {
			return Drop, nil
		}
	}
	return Keep, []*Record{rec}
}

// processObservation stops at the first hard failure: once a row is
// dropped no further check runs.
func (p *Pipeline) processObservation(o Observation) Decision {
	p.validator.EnsureObservationID(o)
	p.validator.NullifyEmptyOptionalFields(o)

	if !p.resolver.CheckSciname(o) {
		return Drop
	}
	if !p.validator.CheckDates(o) {
		return Drop
	}

	p.validator.FixAltitudes(o)

	p.resolver.resolve(o, datasetColumn)
	p.resolver.resolve(o, moduleColumn)
	p.resolver.resolve(o, sourceColumn)
	p.resolver.ResolveNomenclatures(o)
	p.resolver.resolve(o, digitiserColumn)
	p.resolver.ResolveAreas(o)
	p.resolver.resolve(o, organismColumn)
	return Keep
}

// flipText turns each non-empty attribute column into its own row.
func (p *Pipeline) flipText(t AttributeText) []*Record {
	cdRef, _ := t.Get(ColTaxon)
	attributes := p.resolver.reg.Get(registry.Attributes)

	var out []*Record
	for _, f := range t.Fields() {
		if f.Name == ColTaxon || f.Missing || p.rc.emptyOrNull(f.Value) {
			continue
		}
		id, ok := attributes.Lookup(f.Name)
		if !ok {
			continue
		}
		out = append(out, NewRecord(TextHeader, []string{cdRef, registry.FormatID(id), f.Value}, t.Line()))
	}
	return out
}
