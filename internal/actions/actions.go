// Package actions holds the resolved action configuration of a parser run:
// which columns to remove, add or overwrite, the null sentinel, and the
// nomenclature and area column maps.
//
// An action file is YAML. Top-level keys are shared by every record type and
// each entry under "sections" overrides them for one record type:
//
//	null_value: '\N'
//	report_field: unique_id_sinp
//	nomenclatures:
//	  code_nomenclature_geo_object_nature: NAT_OBJ_GEO
//	sections:
//	  synthese:
//	    remove_columns: [comment_description]
//	    add_columns:
//	      - new_field: code_module
//	        field: code_source
//	        position: before
//	        value: SYNTHESE
//	    set_values:
//	      - field: id_digitiser
//	        value: '\N'
//
// A Config is built once per run, compiled, and passed explicitly to every
// component that needs it; nothing reads it ambiently afterwards.
package actions

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
)

// DefaultNullValue is the PostgreSQL COPY text representation of NULL.
const DefaultNullValue = `\N`

// Position says where an added column goes relative to its anchor.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
)

// ErrUnknownPosition is returned when an add rule has a position other than
// before or after.
var ErrUnknownPosition = errors.New("unknown add column position")

// AddRule inserts NewField next to every column whose name matches Field.
type AddRule struct {
	NewField string   `yaml:"new_field"`
	Field    string   `yaml:"field"`
	Position Position `yaml:"position"`
	Value    string   `yaml:"value"`
}

// SetRule overwrites the value of every column whose name matches Field.
type SetRule struct {
	Field string `yaml:"field"`
	Value string `yaml:"value"`
}

// CSVOptions names the reader and writer dialects and the input encoding.
type CSVOptions struct {
	ReaderDialect string `yaml:"reader_dialect"`
	WriterDialect string `yaml:"writer_dialect"`
	Encoding      string `yaml:"encoding"`
}

// Config is the resolved action configuration for one record type.
type Config struct {
	NullValue            string
	ReportField          string
	RemoveColumns        []string
	AddColumns           []AddRule
	SetValues            []SetRule
	AddObservationUUID   bool
	Nomenclatures        map[string]string // column -> nomenclature type mnemonic
	NomenclatureDefaults map[string]string // column -> default code
	Areas                map[string]string // column -> area type code
	CSV                  CSVOptions
}

// Default returns the configuration used when no action file is given.
func Default() Config {
	return Config{
		NullValue:          DefaultNullValue,
		AddObservationUUID: true,
	}
}

// Compiled is a Config whose column patterns have been compiled.
type Compiled struct {
	Config

	remove []*regexp.Regexp
	add    []compiledAdd
	set    []compiledSet
}

type compiledAdd struct {
	re   *regexp.Regexp
	rule AddRule
}

type compiledSet struct {
	re    *regexp.Regexp
	value string
}

// Compile validates the configuration and compiles its patterns. Patterns
// must match a whole column name.
func (c Config) Compile() (*Compiled, error) {
	out := &Compiled{Config: c}
	if out.NullValue == "" {
		out.NullValue = DefaultNullValue
	}
	out.Nomenclatures = maps.Clone(c.Nomenclatures)
	out.NomenclatureDefaults = maps.Clone(c.NomenclatureDefaults)
	out.Areas = maps.Clone(c.Areas)

	for _, p := range c.RemoveColumns {
		re, err := fullMatch(p)
		if err != nil {
			return nil, fmt.Errorf("remove_columns: %w", err)
		}
		out.remove = append(out.remove, re)
	}

	for _, r := range c.AddColumns {
		if r.Position != Before && r.Position != After {
			return nil, fmt.Errorf("add_columns %q: %w: %q", r.NewField, ErrUnknownPosition, r.Position)
		}
		if r.NewField == "" {
			return nil, fmt.Errorf("add_columns: new_field is required for pattern %q", r.Field)
		}
		re, err := fullMatch(r.Field)
		if err != nil {
			return nil, fmt.Errorf("add_columns %q: %w", r.NewField, err)
		}
		out.add = append(out.add, compiledAdd{re: re, rule: r})
	}

	for _, r := range c.SetValues {
		re, err := fullMatch(r.Field)
		if err != nil {
			return nil, fmt.Errorf("set_values: %w", err)
		}
		out.set = append(out.set, compiledSet{re: re, value: r.Value})
	}

	return out, nil
}

func fullMatch(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re, nil
}

// Removes reports whether the column must be dropped.
func (c *Compiled) Removes(field string) bool {
	for _, re := range c.remove {
		if re.MatchString(field) {
			return true
		}
	}
	return false
}

// Additions returns the add rules anchored on field, in declaration order.
func (c *Compiled) Additions(field string) []AddRule {
	var out []AddRule
	for _, a := range c.add {
		if a.re.MatchString(field) {
			out = append(out, a.rule)
		}
	}
	return out
}

// ForcedValue returns the literal a set rule imposes on field. When several
// rules match, the last declared wins.
func (c *Compiled) ForcedValue(field string) (string, bool) {
	var (
		value string
		found bool
	)
	for _, s := range c.set {
		if s.re.MatchString(field) {
			value, found = s.value, true
		}
	}
	return value, found
}
