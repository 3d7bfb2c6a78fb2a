package core

import (
	"log/slog"
	"strings"
)

// recorder is what every row stage shares: the report of the run, the run
// logger and the settings needed to name a row.
type recorder struct {
	report      *Report
	logger      *slog.Logger
	reportField string
	null        string
}

func (rc *recorder) ref(row Row) string {
	return Reference(row, rc.reportField, rc.null)
}

// warn logs a row level anomaly with the row reference.
func (rc *recorder) warn(row Row, msg string, args ...any) string {
	ref := rc.ref(row)
	rc.logger.Warn(msg, append([]any{"ref", ref, "line", row.Line()}, args...)...)
	return ref
}

// isNull reports whether v is the null sentinel.
func (rc *recorder) isNull(v string) bool {
	return v == rc.null
}

// emptyOrNull reports whether v carries no data.
func (rc *recorder) emptyOrNull(v string) bool {
	return strings.TrimSpace(v) == "" || v == rc.null
}

// present returns the value of name when it carries data.
func (rc *recorder) present(row Row, name string) (string, bool) {
	v, ok := row.Get(name)
	if !ok || rc.emptyOrNull(v) {
		return "", false
	}
	return v, true
}
