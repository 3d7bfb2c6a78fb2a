package csvio

import (
	"strings"

	"golang.org/x/text/transform"
)

// crMark stands in for a carriage return inside a quoted field while the
// csv reader runs, since encoding/csv folds a quoted "\r\n" into "\n".
// It is a private use rune; a source already holding it reads back as '\r'.
const crMark = '\uE00D'

var crMarkBytes = []byte(string(crMark))

// crGuard is a transformer that swaps '\r' inside quoted fields for crMark.
// Quote state follows the csv rules: a field is quoted when it starts with
// '"', and a doubled quote inside it is a literal quote.
type crGuard struct {
	comma      byte
	fieldStart bool
	quoted     bool
	afterQuote bool
}

func newCRGuard(comma rune) *crGuard {
	g := &crGuard{comma: byte(comma)}
	g.Reset()
	return g
}

// Reset implements transform.Transformer.
func (g *crGuard) Reset() {
	g.fieldStart = true
	g.quoted = false
	g.afterQuote = false
}

// Transform implements transform.Transformer.
func (g *crGuard) Transform(dst, src []byte, _ bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if g.quoted && c == '\r' {
			if nDst+len(crMarkBytes) > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			nDst += copy(dst[nDst:], crMarkBytes)
			nSrc++
			continue
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = c
		nDst++
		nSrc++
		g.step(c)
	}
	return nDst, nSrc, nil
}

func (g *crGuard) step(c byte) {
	switch {
	case g.quoted:
		if c == '"' {
			g.quoted = false
			g.afterQuote = true
		}
		return
	case g.afterQuote && c == '"':
		g.quoted = true
		g.afterQuote = false
		return
	case c == '"' && g.fieldStart:
		g.quoted = true
	}
	g.afterQuote = false
	g.fieldStart = c == g.comma || c == '\n' || c == '\r'
}

// restoreCR puts back the carriage returns hidden by crGuard.
func restoreCR(values []string) {
	for i, v := range values {
		if strings.ContainsRune(v, crMark) {
			values[i] = strings.ReplaceAll(v, string(crMark), "\r")
		}
	}
}
