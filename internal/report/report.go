// Package report renders the report of a parser run and saves it to disk.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/importparser/internal/core"
)

// Formats.
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatJSON = "json"
)

var extensions = map[string]string{
	FormatText: "txt",
	FormatHTML: "html",
	FormatJSON: "json",
}

// Render writes r to w in format.
func Render(ctx context.Context, w io.Writer, r *core.Report, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return renderText(w, r)
	case FormatHTML:
		return Page(r).Render(ctx, w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return fmt.Errorf("unknown report format %q", format)
}

// FileName returns the name a report is saved under:
// {YYYY-MM-DD}_{type}.report.{ext}.
func FileName(r *core.Report, format string, day time.Time) string {
	ext, ok := extensions[strings.ToLower(format)]
	if !ok {
		ext = extensions[FormatText]
	}
	return fmt.Sprintf("%s_%s.report.%s", day.Format(time.DateOnly), r.RecordType, ext)
}

// Save renders r into dir, creating it when needed, and returns the path.
func Save(ctx context.Context, dir string, r *core.Report, format string, day time.Time) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path = filepath.Join(dir, FileName(r, format, day))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close report: %w", closeErr)
		}
	}()

	if err := Render(ctx, f, r, format); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return path, nil
}
