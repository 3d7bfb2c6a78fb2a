package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/importparser/internal/actions"
)

// ErrDuplicateColumn is returned when shaping yields the same column twice.
var ErrDuplicateColumn = errors.New("duplicate output column")

// Shaper applies the structural rules of an action configuration. The rules
// are matched once against the header; rows are then shaped by column name.
type Shaper struct {
	cfg *actions.Compiled
	rc  *recorder

	header  []string
	removed map[string]bool
	before  map[string][]Field
	after   map[string][]Field
	forced  map[string]string
}

// NewShaper plans the header transformation for header.
func NewShaper(cfg *actions.Compiled, header []string, rc *recorder) (*Shaper, error) {
	s := &Shaper{
		cfg:     cfg,
		rc:      rc,
		removed: make(map[string]bool, len(header)),
		before:  make(map[string][]Field),
		after:   make(map[string][]Field),
		forced:  make(map[string]string),
	}

	var kept []string
	for _, name := range header {
		if cfg.Removes(name) {
			s.removed[name] = true
			continue
		}
		s.removed[name] = false
		kept = append(kept, name)
	}

	seen := make(map[string]bool, len(kept))
	for _, name := range kept {
		var before, after []Field
		for _, rule := range cfg.Additions(name) {
			f := Field{Name: rule.NewField, Value: rule.Value}
			switch rule.Position {
			case actions.Before:
				before = append(before, f)
			case actions.After:
				// Each rule inserts right after the anchor, pushing earlier
				// ones further right.
				after = append([]Field{f}, after...)
			default:
				return nil, fmt.Errorf("column %q: %w: %q", name, actions.ErrUnknownPosition, rule.Position)
			}
		}
		s.before[name], s.after[name] = before, after

		for _, group := range [][]Field{before, {{Name: name}}, after} {
			for _, f := range group {
				if seen[f.Name] {
					return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, f.Name)
				}
				seen[f.Name] = true
				s.header = append(s.header, f.Name)
			}
		}
	}

	for _, name := range s.header {
		if v, ok := cfg.ForcedValue(name); ok {
			s.forced[name] = v
		}
	}
	return s, nil
}

// Header returns the output header.
func (s *Shaper) Header() []string {
	return s.header
}

// ShapeRow removes the configured columns. Values beyond the header cannot
// be matched to a column: they are reported and left out of the output.
func (s *Shaper) ShapeRow(row Row) {
	rec := row.Base()
	if len(rec.Overflow) > 0 {
		ref := s.rc.warn(row, "line has more values than columns",
			"columns", len(rec.Fields()), "extra", len(rec.Overflow))
		s.rc.logger.Debug("malformed line", "ref", ref, "fields", rec.Fields(), "overflow", rec.Overflow)
		s.rc.report.Add(Malformed, ref)
	}

	fields := rec.Fields()
	kept := make([]Field, 0, len(fields))
	for _, f := range fields {
		remove, planned := s.removed[f.Name]
		if !planned {
			remove = s.cfg.Removes(f.Name)
		}
		if !remove {
			kept = append(kept, f)
		}
	}
	rec.replace(kept)
}

// AddColumns inserts the configured literal columns around their anchors.
func (s *Shaper) AddColumns(row Row) {
	rec := row.Base()
	fields := rec.Fields()
	out := make([]Field, 0, len(s.header))
	for _, f := range fields {
		out = append(out, s.before[f.Name]...)
		out = append(out, f)
		out = append(out, s.after[f.Name]...)
	}
	rec.replace(out)
}

// SetValues overwrites the value of every column with a forced literal.
func (s *Shaper) SetValues(row Row) {
	for name, v := range s.forced {
		if row.Has(name) {
			row.Set(name, v)
		}
	}
}

var controlChars = strings.NewReplacer(
	"\r\n", `\r\n`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeControlChars writes line breaks and tabs in their escaped text form
// so the value stays on one COPY line.
func EscapeControlChars(row Row) {
	for _, f := range row.Fields() {
		if f.Missing || !strings.ContainsAny(f.Value, "\r\n\t") {
			continue
		}
		row.Set(f.Name, controlChars.Replace(f.Value))
	}
}
