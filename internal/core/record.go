package core

// record.go defines the row model shared by every pipeline stage.
//
// A Record is an ordered list of named values built from one input line.
// Record types wrap it in a concrete shape (Observation, Dataset, ...) that
// adds accessors for the columns their stages read; every shape satisfies Row.

import "strconv"

// Field is one named value of a record. Missing marks a column the input
// line was too short to fill; it is written as an empty value.
type Field struct {
	Name    string
	Value   string
	Missing bool
}

// Row is the capability every pipeline stage works on.
type Row interface {
	// Get returns the value of name; ok is false when the column is absent
	// or missing from the input line.
	Get(name string) (value string, ok bool)
	Set(name, value string)
	Has(name string) bool
	Fields() []Field
	Line() int
	Base() *Record
}

// Record is the concrete ordered row.
type Record struct {
	fields []Field
	index  map[string]int
	line   int

	// Overflow holds values found beyond the last header column.
	Overflow []string
}

var _ Row = (*Record)(nil)

// NewRecord pairs header names with values. Short lines leave trailing
// fields Missing; long lines keep the surplus in Overflow.
func NewRecord(header, values []string, line int) *Record {
	r := &Record{
		fields: make([]Field, len(header)),
		index:  make(map[string]int, len(header)),
		line:   line,
	}
	for i, name := range header {
		f := Field{Name: name}
		if i < len(values) {
			f.Value = values[i]
		} else {
			f.Missing = true
		}
		r.fields[i] = f
		r.index[name] = i
	}
	if len(values) > len(header) {
		r.Overflow = append([]string(nil), values[len(header):]...)
	}
	return r
}

// Get implements Row.
func (r *Record) Get(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok || r.fields[i].Missing {
		return "", false
	}
	return r.fields[i].Value, true
}

// Set implements Row. Setting an unknown column appends it.
func (r *Record) Set(name, value string) {
	if i, ok := r.index[name]; ok {
		r.fields[i] = Field{Name: name, Value: value}
		return
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Has implements Row.
func (r *Record) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Fields implements Row. The slice must not be modified.
func (r *Record) Fields() []Field {
	return r.fields
}

// Line implements Row.
func (r *Record) Line() int {
	return r.line
}

// Base implements Row.
func (r *Record) Base() *Record {
	return r
}

// replace swaps in a new field list, keeping line and overflow.
func (r *Record) replace(fields []Field) {
	r.fields = fields
	r.reindex()
}

func (r *Record) reindex() {
	clear(r.index)
	for i, f := range r.fields {
		r.index[f.Name] = i
	}
}

// Values returns the values in header order. Columns the record lacks are
// written empty.
func (r *Record) Values(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		out[i], _ = r.Get(name)
	}
	return out
}

// Reference returns the best human identifier of the row: the value of
// the report field when set and not null, else the input line number.
func Reference(row Row, reportField, null string) string {
	if reportField != "" {
		if v, ok := row.Get(reportField); ok && v != null {
			return v
		}
	}
	return strconv.Itoa(row.Line())
}
