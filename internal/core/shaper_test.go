package core

import (
	"errors"
	"slices"
	"testing"

	"github.com/JonMunkholm/importparser/internal/actions"
)

var shaperConfig = actions.Config{
	NullValue:     `\N`,
	RemoveColumns: []string{"comment_.*", "id_synthese"},
	AddColumns: []actions.AddRule{
		{NewField: "code_module", Field: "code_source", Position: actions.Before, Value: "SYNTHESE"},
		{NewField: "meta_v", Field: "code_source", Position: actions.After, Value: "v1"},
		{NewField: "meta_w", Field: "code_source", Position: actions.After, Value: "w"},
	},
	SetValues: []actions.SetRule{
		{Field: "id_digitiser", Value: `\N`},
	},
}

var shaperHeader = []string{"id_synthese", "code_source", "comment_a", "id_digitiser", "cd_nom"}

func newTestShaper(t *testing.T) (*Shaper, *recorder) {
	t.Helper()
	rc := testRecorder()
	s, err := NewShaper(compile(t, shaperConfig), shaperHeader, rc)
	if err != nil {
		t.Fatalf("NewShaper() error = %v", err)
	}
	return s, rc
}

// ============================================================================
// Header Tests
// ============================================================================

func TestShaper_Header(t *testing.T) {
	s, _ := newTestShaper(t)

	want := []string{"code_module", "code_source", "meta_w", "meta_v", "id_digitiser", "cd_nom"}
	if got := s.Header(); !slices.Equal(got, want) {
		t.Errorf("Header() = %v, want %v", got, want)
	}
}

func TestShaper_DuplicateColumn(t *testing.T) {
	cfg := actions.Config{AddColumns: []actions.AddRule{
		{NewField: "cd_nom", Field: "code_source", Position: actions.After},
	}}
	_, err := NewShaper(compile(t, cfg), []string{"code_source", "cd_nom"}, testRecorder())
	if !errors.Is(err, ErrDuplicateColumn) {
		t.Errorf("NewShaper() error = %v, want ErrDuplicateColumn", err)
	}
}

func TestCompile_UnknownPositionIsFatal(t *testing.T) {
	cfg := actions.Config{AddColumns: []actions.AddRule{
		{NewField: "x", Field: "code_source", Position: "inside"},
	}}
	if _, err := cfg.Compile(); !errors.Is(err, actions.ErrUnknownPosition) {
		t.Errorf("Compile() error = %v, want ErrUnknownPosition", err)
	}
}

// ============================================================================
// Row Tests
// ============================================================================

func TestShaper_Row(t *testing.T) {
	s, _ := newTestShaper(t)
	r := NewRecord(shaperHeader, []string{"1", "SRC", "note", "42", "60612"}, 2)

	s.ShapeRow(r)
	s.AddColumns(r)
	s.SetValues(r)

	want := []string{"SYNTHESE", "SRC", "w", "v1", `\N`, "60612"}
	if got := r.Values(s.Header()); !slices.Equal(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}

	var names []string
	for _, f := range r.Fields() {
		names = append(names, f.Name)
	}
	if !slices.Equal(names, s.Header()) {
		t.Errorf("row order = %v, want %v", names, s.Header())
	}
}

func TestShaper_OverflowIsReportedNotDropped(t *testing.T) {
	s, rc := newTestShaper(t)
	r := NewRecord(shaperHeader, []string{"1", "SRC", "note", "42", "60612", "stray"}, 5)

	s.ShapeRow(r)

	if got := rc.report.Flat(Malformed); !slices.Equal(got, []string{"5"}) {
		t.Errorf("malformed = %v, want [5]", got)
	}
	if rc.report.LinesRemovedTotal != 0 {
		t.Error("overflow must not count as a removal")
	}
	if get(t, r, "cd_nom") != "60612" {
		t.Error("row content lost")
	}
}

// ============================================================================
// Escape Tests
// ============================================================================

func TestEscapeControlChars(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"line1\r\nline2", `line1\r\nline2`},
		{"a\nb", `a\nb`},
		{"a\rb", `a\rb`},
		{"a\tb", `a\tb`},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		r := NewRecord([]string{"comment"}, []string{tt.in}, 2)
		EscapeControlChars(r)
		if got := get(t, r, "comment"); got != tt.want {
			t.Errorf("escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeControlChars_Idempotent(t *testing.T) {
	r := NewRecord([]string{"comment", "empty"}, []string{"a\r\nb"}, 2)

	EscapeControlChars(r)
	once := get(t, r, "comment")
	EscapeControlChars(r)

	if got := get(t, r, "comment"); got != once || got != `a\r\nb` {
		t.Errorf("second pass = %q, want %q", got, once)
	}
	if _, ok := r.Get("empty"); ok {
		t.Error("missing value must stay missing")
	}
}
