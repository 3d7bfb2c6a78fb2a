package core

import (
	"slices"
	"testing"

	"github.com/google/uuid"
)

func newTestValidator() (*Validator, *recorder) {
	rc := testRecorder()
	return &Validator{rc: rc, addUUID: true, now: fixedNow}, rc
}

func observation(header []string, values ...string) Observation {
	return Observation{NewRecord(header, values, 2)}
}

// ============================================================================
// Identifier and Empty Field Tests
// ============================================================================

func TestEnsureObservationID(t *testing.T) {
	v, _ := newTestValidator()
	existing := "5b1c2c3e-8a5f-4e5c-9d3a-1f2e3d4c5b6a"

	o := observation([]string{ColUniqueID}, existing)
	v.EnsureObservationID(o)
	if get(t, o, ColUniqueID) != existing {
		t.Error("valid uuid must be kept")
	}

	o = observation([]string{ColUniqueID}, "not-a-uuid")
	v.EnsureObservationID(o)
	id, err := uuid.Parse(get(t, o, ColUniqueID))
	if err != nil || id.Version() != 4 {
		t.Errorf("generated id = %v (%v), want a v4 uuid", id, err)
	}

	o = observation([]string{ColUniqueID, ColSciname}, "", "60612")
	v.EnsureObservationID(o)
	if _, err := uuid.Parse(get(t, o, ColUniqueID)); err != nil {
		t.Errorf("empty id should be replaced, got %q", get(t, o, ColUniqueID))
	}

	o = observation([]string{ColSciname}, "60612")
	v.EnsureObservationID(o)
	if o.Has(ColUniqueID) {
		t.Error("no id column may be added when the file has none")
	}
}

func TestNullifyEmptyOptionalFields(t *testing.T) {
	v, _ := newTestValidator()
	o := observation([]string{"count_min", "altitude_max", "comment_description"}, "", "12", "")

	v.NullifyEmptyOptionalFields(o)

	if get(t, o, "count_min") != `\N` {
		t.Error("empty optional field must become the sentinel")
	}
	if get(t, o, "altitude_max") != "12" {
		t.Error("non-empty field must be kept")
	}
	if get(t, o, "comment_description") != "" {
		t.Error("non optional field must stay empty")
	}
}

// ============================================================================
// Date Tests
// ============================================================================

func TestCheckDates(t *testing.T) {
	header := []string{ColDateMin, ColDateMax, ColLastAction}

	tests := []struct {
		name     string
		values   []string
		keep     bool
		category Category
	}{
		{"valid", []string{"2020-01-01", "2020-01-02", "I"}, true, ""},
		{"same day", []string{"2020-01-01", "2020-01-01", "U"}, true, ""},
		{"today with time", []string{"2024-06-15 08:00:00", "2024-06-15 23:59:59", "I"}, true, ""},
		{"max missing", []string{"2020-01-01", `\N`, "I"}, false, DateMissing},
		{"min empty", []string{"", "2020-01-02", "I"}, false, DateMissing},
		{"max before min", []string{"2020-02-01", "2020-01-01", "I"}, false, DateMaxBeforeMin},
		{"min in future", []string{"2024-06-16", "2024-06-17", "I"}, false, DateMinInFuture},
		{"max in future", []string{"2024-06-01", "2024-07-01", "I"}, false, DateMaxInFuture},
		{"not parsable", []string{"yesterday", "yesterday", "I"}, false, DateInvalid},
		{"delete skips checks", []string{`\N`, `\N`, "D"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, rc := newTestValidator()
			o := observation(header, tt.values...)

			if got := v.CheckDates(o); got != tt.keep {
				t.Fatalf("CheckDates() = %v, want %v", got, tt.keep)
			}
			if tt.keep {
				if rc.report.LinesRemovedTotal != 0 {
					t.Error("kept row must not be counted")
				}
				if get(t, o, ColDateMin) != tt.values[0] || get(t, o, ColDateMax) != tt.values[1] {
					t.Error("dates must be unchanged")
				}
				return
			}
			if rc.report.LinesRemovedTotal != 1 {
				t.Errorf("LinesRemovedTotal = %d, want 1", rc.report.LinesRemovedTotal)
			}
			if rc.report.Count(tt.category) != 1 {
				t.Errorf("category %s count = %d, want 1", tt.category, rc.report.Count(tt.category))
			}
		})
	}
}

func TestCheckDates_MissingColumn(t *testing.T) {
	v, rc := newTestValidator()
	o := observation([]string{ColDateMin}, "2020-01-01")

	if v.CheckDates(o) {
		t.Fatal("row without date_max must be dropped")
	}
	if rc.report.LinesRemovedTotal != 1 || rc.report.Count(DateMissing) != 1 {
		t.Errorf("report = %d removed, %d missing", rc.report.LinesRemovedTotal, rc.report.Count(DateMissing))
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{
		"2020-01-02",
		"2020/01/02",
		"02/01/2020",
		"2020-01-02 10:11",
		"2020-01-02 10:11:12",
		"2020-01-02 10:11:12.123456",
		"2020-01-02T10:11:12Z",
		"2020-01-02T10:11:12+02:00",
	} {
		d, ok := ParseDate(s)
		if !ok {
			t.Errorf("ParseDate(%q) failed", s)
			continue
		}
		if y, m, day := d.Date(); y != 2020 || m != 1 || day != 2 {
			t.Errorf("ParseDate(%q) = %v", s, d)
		}
	}
	if _, ok := ParseDate("2020-13-45"); ok {
		t.Error("invalid date should not parse")
	}
}

// ============================================================================
// Altitude Tests
// ============================================================================

var altitudeHeader = []string{ColAltitudeMin, ColAltitudeMax, ColDepthMin, ColDepthMax}

func TestFixAltitudes(t *testing.T) {
	tests := []struct {
		name       string
		values     []string
		want       []string
		categories []Category
	}{
		{
			name:       "decimal truncation",
			values:     []string{"120,5", "300.2", `\N`, `\N`},
			want:       []string{"120", "300", `\N`, `\N`},
			categories: []Category{AltitudeMinFixed, AltitudeMaxFixed},
		},
		{
			name:       "inverted",
			values:     []string{"500", "100", `\N`, `\N`},
			want:       []string{"100", "500", `\N`, `\N`},
			categories: []Category{AltitudeInverted},
		},
		{
			name:       "out of range",
			values:     []string{"-50", "6000", `\N`, `\N`},
			want:       []string{`\N`, `\N`, `\N`, `\N`},
			categories: []Category{AltitudeErrors},
		},
		{
			name:       "negative moved to depths",
			values:     []string{"-10", "-50", `\N`, `\N`},
			want:       []string{`\N`, `\N`, "-10", "-50"},
			categories: []Category{AltitudeInverted, AltitudeNegative},
		},
		{
			name:       "not a number",
			values:     []string{"abc", "100", `\N`, `\N`},
			want:       []string{`\N`, `\N`, `\N`, `\N`},
			categories: []Category{AltitudeErrors},
		},
		{
			name:       "only one altitude",
			values:     []string{"5000", `\N`, `\N`, `\N`},
			want:       []string{"5000", `\N`, `\N`, `\N`},
			categories: nil,
		},
		{
			name:       "depth truncation",
			values:     []string{"", "", "-1.5", "-12,75"},
			want:       []string{"", "", "-1", "-12"},
			categories: []Category{DepthMinFixed, DepthMaxFixed},
		},
		{
			name:       "valid",
			values:     []string{"0", "4696", `\N`, `\N`},
			want:       []string{"0", "4696", `\N`, `\N`},
			categories: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, rc := newTestValidator()
			o := observation(altitudeHeader, tt.values...)

			v.FixAltitudes(o)

			if got := o.Values(altitudeHeader); !slices.Equal(got, tt.want) {
				t.Errorf("values = %v, want %v", got, tt.want)
			}
			for _, c := range tt.categories {
				if refs := rc.report.Flat(c); !slices.Equal(refs, []string{"2"}) {
					t.Errorf("category %s = %v, want [2]", c, refs)
				}
			}
			if len(rc.report.NonEmpty()) != len(tt.categories) {
				t.Errorf("categories = %v, want %v", rc.report.NonEmpty(), tt.categories)
			}
			if rc.report.LinesRemovedTotal != 0 {
				t.Error("altitude fixes never remove a row")
			}
		})
	}
}

func TestHasAltitudes(t *testing.T) {
	v, _ := newTestValidator()

	if !v.HasAltitudes(observation(altitudeHeader, "1", "2")) {
		t.Error("both altitudes present")
	}
	if v.HasAltitudes(observation(altitudeHeader, "1", `\N`)) {
		t.Error("null altitude max")
	}
	if v.HasAltitudes(observation([]string{ColAltitudeMin}, "1")) {
		t.Error("altitude max column absent")
	}
}
