package core

import (
	"slices"
	"testing"
)

func TestNewRecord_ShortAndLongLines(t *testing.T) {
	header := []string{"a", "b", "c"}

	short := NewRecord(header, []string{"1"}, 2)
	if _, ok := short.Get("b"); ok {
		t.Error("missing field should not be found")
	}
	if !short.Has("b") {
		t.Error("missing field should still be a column")
	}
	if got := short.Values(header); !slices.Equal(got, []string{"1", "", ""}) {
		t.Errorf("Values() = %v", got)
	}

	long := NewRecord(header, []string{"1", "2", "3", "4", "5"}, 3)
	if !slices.Equal(long.Overflow, []string{"4", "5"}) {
		t.Errorf("Overflow = %v, want [4 5]", long.Overflow)
	}
}

func TestRecord_Set(t *testing.T) {
	r := NewRecord([]string{"a", "b"}, []string{"1", "2"}, 2)

	r.Set("c", "3")
	r.Set("a", "9")

	var names []string
	for _, f := range r.Fields() {
		names = append(names, f.Name)
	}
	if !slices.Equal(names, []string{"a", "b", "c"}) {
		t.Errorf("fields = %v, want [a b c]", names)
	}
	if get(t, r, "a") != "9" {
		t.Error("Set on existing column lost")
	}
	if get(t, r, "c") != "3" {
		t.Error("Set on new column lost")
	}
}

func TestReference(t *testing.T) {
	header := []string{"unique_id_sinp", "cd_nom"}

	tests := []struct {
		name   string
		values []string
		field  string
		want   string
	}{
		{"report field set", []string{"abc", "1"}, "unique_id_sinp", "abc"},
		{"report field null", []string{`\N`, "1"}, "unique_id_sinp", "7"},
		{"report field absent", []string{"abc", "1"}, "id_perso", "7"},
		{"no report field", []string{"abc", "1"}, "", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecord(header, tt.values, 7)
			if got := Reference(r, tt.field, `\N`); got != tt.want {
				t.Errorf("Reference() = %q, want %q", got, tt.want)
			}
		})
	}
}
