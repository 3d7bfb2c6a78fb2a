package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/transform"
)

// ErrNoHeader is returned when the source holds no header line.
var ErrNoHeader = errors.New("file has no header line")

// Reader yields the header then the data lines of a delimited file.
type Reader struct {
	cr     *csv.Reader
	header []string
}

// NewReader reads r using dialect d. Lines may carry fewer or more values
// than the header; the caller decides what that means. Carriage returns
// inside quoted values are kept as read.
func NewReader(r io.Reader, d Dialect) *Reader {
	cr := csv.NewReader(transform.NewReader(r, newCRGuard(d.Comma)))
	cr.Comma = d.Comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false
	return &Reader{cr: cr}
}

// Header reads the header line. It must be called before Next.
func (r *Reader) Header() ([]string, error) {
	if r.header != nil {
		return r.header, nil
	}
	h, err := r.cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	restoreCR(h)
	r.header = h
	return h, nil
}

// Next returns the values of the next data line together with its 1-based
// line number in the file. It returns io.EOF after the last line.
func (r *Reader) Next() ([]string, int, error) {
	if r.header == nil {
		if _, err := r.Header(); err != nil {
			return nil, 0, err
		}
	}
	values, err := r.cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}
		return nil, 0, fmt.Errorf("read line: %w", err)
	}
	line, _ := r.cr.FieldPos(0)
	restoreCR(values)
	return values, line, nil
}
