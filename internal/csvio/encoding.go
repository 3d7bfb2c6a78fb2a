package csvio

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Input encodings.
const (
	UTF8        = "utf-8"
	Latin1      = "latin1"
	Windows1252 = "windows-1252"
)

// Decode wraps r so that it yields UTF-8 text.
//
// UTF-8 input has its BOM stripped and invalid bytes replaced; single-byte
// encodings are transcoded with golang.org/x/text.
func Decode(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", UTF8, "utf8":
		return NewUTF8Sanitizer(NewBOMSkippingReader(r)), nil
	case Latin1, "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case Windows1252, "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("unsupported input encoding %q", encoding)
}
