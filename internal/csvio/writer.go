package csvio

import (
	"bufio"
	"io"
	"strings"
)

// Writer writes delimited lines in a dialect.
//
// encoding/csv cannot quote every field nor pick the line terminator per
// dialect, so quoting is done here.
type Writer struct {
	w        *bufio.Writer
	d        Dialect
	specials string
}

// NewWriter returns a buffered writer; call Flush when done.
func NewWriter(w io.Writer, d Dialect) *Writer {
	return &Writer{
		w:        bufio.NewWriter(w),
		d:        d,
		specials: string(d.Comma) + "\"\r\n",
	}
}

// Write writes one line.
func (w *Writer) Write(fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := w.w.WriteRune(w.d.Comma); err != nil {
				return err
			}
		}
		if err := w.writeField(f); err != nil {
			return err
		}
	}
	_, err := w.w.WriteString(w.d.Terminator)
	return err
}

func (w *Writer) writeField(f string) error {
	if !w.d.QuoteAll && !strings.ContainsAny(f, w.specials) {
		_, err := w.w.WriteString(f)
		return err
	}
	var b strings.Builder
	b.Grow(len(f) + 2)
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(f, `"`, `""`))
	b.WriteByte('"')
	_, err := w.w.WriteString(b.String())
	return err
}

// Flush writes any buffered data.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
