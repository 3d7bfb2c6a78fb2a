// Package csvio reads and writes the delimited files handled by the parser.
//
// Files are exchanged with PostgreSQL \copy, so dialects follow what copy
// produces and accepts: tab separated by default, or semicolon separated with
// full or minimal quoting.
package csvio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Dialect names.
const (
	TSV        = "tsv"
	SSV        = "ssv"
	SSVMinimal = "ssv-minimal"
)

// ErrUnknownDialect is returned for a dialect name that is not registered.
var ErrUnknownDialect = errors.New("unknown csv dialect")

// Dialect describes how fields are delimited and quoted.
type Dialect struct {
	Name       string
	Comma      rune
	QuoteAll   bool
	Terminator string
}

var dialects = map[string]Dialect{
	TSV:        {Name: TSV, Comma: '\t', Terminator: "\n"},
	SSV:        {Name: SSV, Comma: ';', QuoteAll: true, Terminator: "\r\n"},
	SSVMinimal: {Name: SSVMinimal, Comma: ';', Terminator: "\n"},
}

// LookupDialect returns the named dialect. An empty name selects tsv.
func LookupDialect(name string) (Dialect, error) {
	if name == "" {
		name = TSV
	}
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
	return d, nil
}

// DestinationPath returns the "ready to import" path written next to src.
func DestinationPath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + "_rti.csv"
}
