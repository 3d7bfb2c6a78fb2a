package core

import (
	"errors"
	"slices"
	"testing"
)

func newTestResolver() (*Resolver, *recorder) {
	rc := testRecorder()
	return &Resolver{
		rc:  rc,
		reg: testRegistry(),
		nomenclatures: map[string]string{
			"code_nomenclature_geo_object_nature": "NAT_OBJ_GEO",
			"code_nomenclature_bio_condition":     "ETA_BIO",
		},
		defaults: map[string]string{"code_nomenclature_bio_condition": "1"},
		areas:    map[string]string{"insee_commune": "COM"},
	}, rc
}

// ============================================================================
// Single Level Tests
// ============================================================================

func TestResolve_Dataset(t *testing.T) {
	r, rc := newTestResolver()
	header := []string{ColDataset}

	known := NewRecord(header, []string{"EXAMPLE"}, 2)
	r.resolve(known, datasetColumn)
	if got := get(t, known, ColDataset); got != "42" {
		t.Errorf("code_dataset = %q, want 42", got)
	}

	unknown := NewRecord(header, []string{"UNKNOWN"}, 3)
	r.resolve(unknown, datasetColumn)
	if got := get(t, unknown, ColDataset); got != `\N` {
		t.Errorf("code_dataset = %q, want sentinel", got)
	}

	groups := rc.report.Grouped(DatasetCodeUnknown)
	if len(groups) != 1 || groups[0].Code != "UNKNOWN" || !slices.Equal(groups[0].Refs, []string{"3"}) {
		t.Errorf("dataset unknown = %+v", groups)
	}
	if rc.report.LinesRemovedTotal != 0 {
		t.Error("unknown dataset is a soft failure")
	}
}

func TestResolve_ModuleMissIsSoft(t *testing.T) {
	r, rc := newTestResolver()
	row := NewRecord([]string{ColModule}, []string{"OCCTAX"}, 2)

	r.resolve(row, moduleColumn)

	if get(t, row, ColModule) != `\N` {
		t.Error("unknown module must be nulled")
	}
	if rc.report.Count(ModuleCodeUnknown) != 1 {
		t.Error("unknown module must be recorded")
	}
}

func TestResolve_EmptyAndNullUntouched(t *testing.T) {
	r, rc := newTestResolver()
	row := NewRecord([]string{ColSource, ColDigitiser}, []string{"", `\N`}, 2)

	r.resolve(row, sourceColumn)
	r.resolve(row, digitiserColumn)

	if get(t, row, ColSource) != "" || get(t, row, ColDigitiser) != `\N` {
		t.Errorf("values changed: %v", row.Values([]string{ColSource, ColDigitiser}))
	}
	if len(rc.report.NonEmpty()) != 0 {
		t.Error("nothing should be recorded")
	}
}

// ============================================================================
// Sciname Tests
// ============================================================================

func TestCheckSciname(t *testing.T) {
	tests := []struct {
		code string
		keep bool
	}{
		{"60612", true},
		{`\N`, true},
		{"", true},
		{"9999", false},
	}
	for _, tt := range tests {
		r, rc := newTestResolver()
		row := NewRecord([]string{ColSciname}, []string{tt.code}, 2)

		if got := r.CheckSciname(row); got != tt.keep {
			t.Errorf("CheckSciname(%q) = %v, want %v", tt.code, got, tt.keep)
		}
		wantRemoved := 0
		if !tt.keep {
			wantRemoved = 1
		}
		if rc.report.LinesRemovedTotal != wantRemoved {
			t.Errorf("CheckSciname(%q): removed = %d, want %d", tt.code, rc.report.LinesRemovedTotal, wantRemoved)
		}
	}
}

// ============================================================================
// Two Level Tests
// ============================================================================

func TestResolveNomenclatures(t *testing.T) {
	r, rc := newTestResolver()
	header := []string{
		"code_nomenclature_geo_object_nature",
		"code_nomenclature_bio_condition",
		"cd_nom",
	}

	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{"known codes", []string{"In", "2", "60612"}, []string{"1", "11", "60612"}},
		{"default applied", []string{"St", `\N`, "60612"}, []string{"2", "10", "60612"}},
		{"empty becomes null", []string{"", "1", "60612"}, []string{`\N`, "10", "60612"}},
		{"unknown nulled", []string{"Xx", "1", "60612"}, []string{`\N`, "10", "60612"}},
	}
	for _, tt := range tests {
		row := NewRecord(header, tt.values, 4)
		r.ResolveNomenclatures(row)
		if got := row.Values(header); !slices.Equal(got, tt.want) {
			t.Errorf("%s: values = %v, want %v", tt.name, got, tt.want)
		}
	}

	groups := rc.report.Grouped(NomenclatureCodeUnknown)
	if len(groups) != 1 || groups[0].Code != "NAT_OBJ_GEO-Xx" {
		t.Errorf("nomenclature unknown = %+v", groups)
	}
}

func TestCheckNomenclatureColumns(t *testing.T) {
	r, _ := newTestResolver()

	if err := r.CheckNomenclatureColumns([]string{"code_nomenclature_geo_object_nature", "cd_nom"}); err != nil {
		t.Errorf("known columns: %v", err)
	}
	err := r.CheckNomenclatureColumns([]string{"code_nomenclature_sex"})
	if !errors.Is(err, ErrUnknownNomenclatureColumn) {
		t.Errorf("error = %v, want ErrUnknownNomenclatureColumn", err)
	}
}

func TestResolveAreas(t *testing.T) {
	r, rc := newTestResolver()
	header := []string{"insee_commune", "code_area_com", "code_area_dep"}
	row := NewRecord(header, []string{"38185", "38185", "38"}, 2)

	r.ResolveAreas(row)

	want := []string{"5000", "5000", `\N`}
	if got := row.Values(header); !slices.Equal(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
	groups := rc.report.Grouped(AreaCodeUnknown)
	if len(groups) != 1 || groups[0].Code != "DEP-38" {
		t.Errorf("area unknown = %+v", groups)
	}
}

// ============================================================================
// Media Tests
// ============================================================================

func TestResolveMediaTaxon(t *testing.T) {
	tests := []struct {
		code string
		keep bool
		want string
	}{
		{"60612", true, "60612"},
		{"60615", true, "60612"},
		{"1", false, "1"},
		{`\N`, false, `\N`},
	}
	for _, tt := range tests {
		r, rc := newTestResolver()
		m := Media{NewRecord([]string{ColTaxon}, []string{tt.code}, 2)}

		if got := r.ResolveMediaTaxon(m); got != tt.keep {
			t.Errorf("ResolveMediaTaxon(%q) = %v, want %v", tt.code, got, tt.keep)
		}
		if got := get(t, m, ColTaxon); got != tt.want {
			t.Errorf("cd_ref = %q, want %q", got, tt.want)
		}
		if !tt.keep && rc.report.Count(TaxonUnknown) != 1 {
			t.Errorf("ResolveMediaTaxon(%q) not recorded", tt.code)
		}
	}
}
