package actions

import (
	"errors"
	"strings"
	"testing"
)

const sampleFile = `
null_value: 'NULL'
report_field: unique_id_sinp
nomenclatures:
  code_nomenclature_geo_object_nature: NAT_OBJ_GEO
csv:
  reader_dialect: ssv
sections:
  synthese:
    remove_columns: [comment_.*, id_synthese]
    add_columns:
      - new_field: code_module
        field: code_source
        position: before
        value: SYNTHESE
    set_values:
      - field: meta_v_taxref
        value: '16.0'
    nomenclatures:
      code_nomenclature_info_geo_type: TYP_INF_GEO
    csv:
      writer_dialect: tsv
  dataset:
    add_uuid_obs: false
    null_value: '\N'
`

// ============================================================================
// Parse Tests
// ============================================================================

func TestParse_MergesSection(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sampleFile), "synthese")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.NullValue != "NULL" {
		t.Errorf("NullValue = %q, want %q", cfg.NullValue, "NULL")
	}
	if cfg.ReportField != "unique_id_sinp" {
		t.Errorf("ReportField = %q", cfg.ReportField)
	}
	if len(cfg.RemoveColumns) != 2 {
		t.Errorf("RemoveColumns = %v, want 2 entries", cfg.RemoveColumns)
	}
	if len(cfg.AddColumns) != 1 || cfg.AddColumns[0].Position != Before {
		t.Errorf("AddColumns = %+v", cfg.AddColumns)
	}
	if got := cfg.Nomenclatures["code_nomenclature_geo_object_nature"]; got != "NAT_OBJ_GEO" {
		t.Errorf("shared nomenclature lost, got %q", got)
	}
	if got := cfg.Nomenclatures["code_nomenclature_info_geo_type"]; got != "TYP_INF_GEO" {
		t.Errorf("section nomenclature missing, got %q", got)
	}
	if cfg.CSV.ReaderDialect != "ssv" || cfg.CSV.WriterDialect != "tsv" {
		t.Errorf("CSV = %+v", cfg.CSV)
	}
	if !cfg.AddObservationUUID {
		t.Error("AddObservationUUID should default to true")
	}
}

func TestParse_SectionOverridesScalars(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sampleFile), "dataset")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.NullValue != `\N` {
		t.Errorf("NullValue = %q, want %q", cfg.NullValue, `\N`)
	}
	if cfg.AddObservationUUID {
		t.Error("AddObservationUUID should be overridden to false")
	}
	if len(cfg.RemoveColumns) != 0 {
		t.Errorf("RemoveColumns leaked from another section: %v", cfg.RemoveColumns)
	}
}

func TestParse_MissingSectionKeepsShared(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sampleFile), "user")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.NullValue != "NULL" {
		t.Errorf("NullValue = %q, want %q", cfg.NullValue, "NULL")
	}
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse(strings.NewReader("remove_colums: [a]\n"), "synthese")
	if err == nil {
		t.Fatal("Parse() expected error for misspelled key")
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""), "synthese")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.NullValue != DefaultNullValue {
		t.Errorf("NullValue = %q, want default", cfg.NullValue)
	}
}

// ============================================================================
// Compile Tests
// ============================================================================

func TestCompile_UnknownPosition(t *testing.T) {
	cfg := Default()
	cfg.AddColumns = []AddRule{{NewField: "x", Field: "a", Position: "middle"}}

	_, err := cfg.Compile()
	if !errors.Is(err, ErrUnknownPosition) {
		t.Fatalf("Compile() error = %v, want ErrUnknownPosition", err)
	}
}

func TestCompile_InvalidPattern(t *testing.T) {
	cfg := Default()
	cfg.RemoveColumns = []string{"code_("}

	if _, err := cfg.Compile(); err == nil {
		t.Fatal("Compile() expected error for invalid pattern")
	}
}

func TestCompiled_FullMatch(t *testing.T) {
	cfg := Default()
	cfg.RemoveColumns = []string{"comment", "meta_.*"}
	c, err := cfg.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	tests := []struct {
		field string
		want  bool
	}{
		{"comment", true},
		{"comment_description", false},
		{"my_comment", false},
		{"meta_create_date", true},
		{"other", false},
	}
	for _, tt := range tests {
		if got := c.Removes(tt.field); got != tt.want {
			t.Errorf("Removes(%q) = %v, want %v", tt.field, got, tt.want)
		}
	}
}

func TestCompiled_AlternationIsAnchored(t *testing.T) {
	cfg := Default()
	cfg.RemoveColumns = []string{"a|b"}
	c, err := cfg.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if c.Removes("ab") || c.Removes("xa") {
		t.Error("alternation must match a whole name")
	}
	if !c.Removes("a") || !c.Removes("b") {
		t.Error("alternation should match each branch")
	}
}

func TestCompiled_ForcedValueLastWins(t *testing.T) {
	cfg := Default()
	cfg.SetValues = []SetRule{
		{Field: "code_.*", Value: "first"},
		{Field: "code_source", Value: "second"},
	}
	c, err := cfg.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if v, ok := c.ForcedValue("code_source"); !ok || v != "second" {
		t.Errorf("ForcedValue(code_source) = %q, %v", v, ok)
	}
	if v, ok := c.ForcedValue("code_dataset"); !ok || v != "first" {
		t.Errorf("ForcedValue(code_dataset) = %q, %v", v, ok)
	}
	if _, ok := c.ForcedValue("cd_nom"); ok {
		t.Error("ForcedValue(cd_nom) should not match")
	}
}

func TestCompiled_AdditionsInDeclarationOrder(t *testing.T) {
	cfg := Default()
	cfg.AddColumns = []AddRule{
		{NewField: "first", Field: "anchor", Position: After},
		{NewField: "second", Field: "anch.*", Position: Before},
	}
	c, err := cfg.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	got := c.Additions("anchor")
	if len(got) != 2 || got[0].NewField != "first" || got[1].NewField != "second" {
		t.Errorf("Additions(anchor) = %+v", got)
	}
}

func TestCompile_EmptyNullDefaults(t *testing.T) {
	c, err := Config{}.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if c.NullValue != DefaultNullValue {
		t.Errorf("NullValue = %q, want default sentinel %q", c.NullValue, DefaultNullValue)
	}
}
