package report

import (
	"io"
	"strings"
	"text/template"

	"github.com/JonMunkholm/importparser/internal/core"
)

var textTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`Import parser report ({{ .Report.RecordType }})
Source:       {{ .Report.Source }}
Destination:  {{ .Report.Destination }}
Elapsed:      {{ .Report.Elapsed }}
Lines read:   {{ .Report.LinesTotal }}
Written:      {{ .Report.LinesWritten }}
Removed:      {{ .Report.LinesRemovedTotal }}
{{ range .Sections }}
{{ if .Info.Hard }}[REMOVED]{{ else }}[FIXED]{{ end }} {{ .Info.Label }} ({{ .Count }})
{{- if .Info.Grouped }}{{ range .Groups }}
  {{ .Code }}: {{ join .Refs ", " }}{{ end }}
{{- else }}
  {{ join .Refs ", " }}
{{- end }}
{{ else }}
No anomaly.
{{ end }}`))

type section struct {
	Info   core.CategoryInfo
	Count  int
	Groups []core.Group
	Refs   []string
}

func sections(r *core.Report) []section {
	var out []section
	for _, info := range r.NonEmpty() {
		out = append(out, section{
			Info:   info,
			Count:  r.Count(info.Category),
			Groups: r.Grouped(info.Category),
			Refs:   r.Flat(info.Category),
		})
	}
	return out
}

func renderText(w io.Writer, r *core.Report) error {
	return textTemplate.Execute(w, struct {
		Report   *core.Report
		Sections []section
	}{r, sections(r)})
}
