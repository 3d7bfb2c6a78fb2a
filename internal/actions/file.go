package actions

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// section is the YAML shape shared by the top level and every section.
// Pointers distinguish "unset" from a zero value when merging.
type section struct {
	NullValue            *string           `yaml:"null_value"`
	ReportField          *string           `yaml:"report_field"`
	RemoveColumns        []string          `yaml:"remove_columns"`
	AddColumns           []AddRule         `yaml:"add_columns"`
	SetValues            []SetRule         `yaml:"set_values"`
	AddObservationUUID   *bool             `yaml:"add_uuid_obs"`
	Nomenclatures        map[string]string `yaml:"nomenclatures"`
	NomenclatureDefaults map[string]string `yaml:"nomenclature_defaults"`
	Areas                map[string]string `yaml:"areas"`
	CSV                  CSVOptions        `yaml:"csv"`
}

type file struct {
	section  `yaml:",inline"`
	Sections map[string]section `yaml:"sections"`
}

// LoadFile reads an action file and resolves it for the named section.
func LoadFile(path, name string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read action file: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data), name)
	if err != nil {
		return Config{}, fmt.Errorf("action file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes an action document and resolves it for the named section.
// A missing section leaves the shared keys in effect.
func Parse(r io.Reader, name string) (Config, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode: %w", err)
	}

	cfg := Default()
	f.section.applyTo(&cfg)
	if s, ok := f.Sections[name]; ok {
		s.applyTo(&cfg)
	}
	return cfg, nil
}

func (s section) applyTo(c *Config) {
	if s.NullValue != nil {
		c.NullValue = *s.NullValue
	}
	if s.ReportField != nil {
		c.ReportField = *s.ReportField
	}
	if s.RemoveColumns != nil {
		c.RemoveColumns = s.RemoveColumns
	}
	if s.AddColumns != nil {
		c.AddColumns = s.AddColumns
	}
	if s.SetValues != nil {
		c.SetValues = s.SetValues
	}
	if s.AddObservationUUID != nil {
		c.AddObservationUUID = *s.AddObservationUUID
	}
	c.Nomenclatures = mergeMap(c.Nomenclatures, s.Nomenclatures)
	c.NomenclatureDefaults = mergeMap(c.NomenclatureDefaults, s.NomenclatureDefaults)
	c.Areas = mergeMap(c.Areas, s.Areas)

	if s.CSV.ReaderDialect != "" {
		c.CSV.ReaderDialect = s.CSV.ReaderDialect
	}
	if s.CSV.WriterDialect != "" {
		c.CSV.WriterDialect = s.CSV.WriterDialect
	}
	if s.CSV.Encoding != "" {
		c.CSV.Encoding = s.CSV.Encoding
	}
}

func mergeMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
