package report

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/importparser/internal/core"
)

//go:generate templ generate -f html.templ

type summaryRow struct {
	label string
	value string
}

func pageTitle(r *core.Report) string {
	return "Import report - " + r.RecordType
}

func summaryRows(r *core.Report) []summaryRow {
	return []summaryRow{
		{"Source", r.Source},
		{"Destination", r.Destination},
		{"Elapsed", r.Elapsed.String()},
		{"Lines read", fmt.Sprint(r.LinesTotal)},
		{"Written", fmt.Sprint(r.LinesWritten)},
		{"Removed", fmt.Sprint(r.LinesRemovedTotal)},
	}
}

func (s section) heading() string {
	return fmt.Sprintf("%s (%d)", s.Info.Label, s.Count)
}

func joinRefs(refs []string) string {
	return strings.Join(refs, ", ")
}
