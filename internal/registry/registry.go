// Package registry holds the reference code mappings used to turn the
// human-readable codes of an import file into database identifiers.
//
// Mappings are materialized once per run through a Provider and are read-only
// afterwards. A lookup reports whether the code was found; a miss is an
// ordinary outcome, never an error.
package registry

import (
	"context"
	"fmt"
	"slices"
	"strconv"
)

// Domain names one family of reference codes.
type Domain string

const (
	Datasets              Domain = "dataset"
	Modules               Domain = "module"
	Sources               Domain = "source"
	Nomenclatures         Domain = "nomenclature"
	Areas                 Domain = "area"
	Organisms             Domain = "organism"
	Users                 Domain = "user"
	AcquisitionFrameworks Domain = "acquisition_framework"
	Themes                Domain = "theme"
	Attributes            Domain = "attribute"
	Taxa                  Domain = "taxon"
	Scinames              Domain = "sciname"
)

// AllDomains lists every domain in a stable order.
var AllDomains = []Domain{
	Datasets, Modules, Sources, Nomenclatures, Areas, Organisms, Users,
	AcquisitionFrameworks, Themes, Attributes, Taxa, Scinames,
}

// Typed reports whether the domain is keyed by type then code.
func (d Domain) Typed() bool {
	return d == Nomenclatures || d == Areas
}

// Mapping resolves a code to an identifier.
type Mapping map[string]int64

// Lookup returns the identifier of code and whether it exists.
func (m Mapping) Lookup(code string) (int64, bool) {
	id, ok := m[code]
	return id, ok
}

// Has reports whether code exists.
func (m Mapping) Has(code string) bool {
	_, ok := m[code]
	return ok
}

// TypedMapping resolves a (type, code) pair to an identifier.
type TypedMapping map[string]Mapping

// Lookup returns the identifier of code within kind and whether it exists.
func (m TypedMapping) Lookup(kind, code string) (int64, bool) {
	codes, ok := m[kind]
	if !ok {
		return 0, false
	}
	return codes.Lookup(code)
}

// Set stores id for (kind, code).
func (m TypedMapping) Set(kind, code string, id int64) {
	codes, ok := m[kind]
	if !ok {
		codes = make(Mapping)
		m[kind] = codes
	}
	codes[code] = id
}

// FormatID renders an identifier the way it is written to the output file.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Provider materializes reference mappings from a backing store.
type Provider interface {
	// Mapping returns the full code -> id mapping of a single-level domain.
	Mapping(ctx context.Context, d Domain) (Mapping, error)

	// TypedMapping returns the type -> code -> id mapping of a two-level
	// domain. When types is non-empty only those types are loaded.
	TypedMapping(ctx context.Context, d Domain, types []string) (TypedMapping, error)
}

// Registry is the bundle of mappings available to a run. Domains that were
// not loaded are empty.
type Registry struct {
	single map[Domain]Mapping
	typed  map[Domain]TypedMapping
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		single: make(map[Domain]Mapping),
		typed:  make(map[Domain]TypedMapping),
	}
}

// Load materializes the given domains from p. nomenclatureTypes restricts
// the nomenclature types fetched; areas are always fetched whole.
func Load(ctx context.Context, p Provider, domains []Domain, nomenclatureTypes []string) (*Registry, error) {
	reg := New()
	for _, d := range domains {
		if d.Typed() {
			var types []string
			if d == Nomenclatures {
				types = nomenclatureTypes
			}
			m, err := p.TypedMapping(ctx, d, types)
			if err != nil {
				return nil, fmt.Errorf("load %s codes: %w", d, err)
			}
			reg.typed[d] = m
			continue
		}
		m, err := p.Mapping(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("load %s codes: %w", d, err)
		}
		reg.single[d] = m
	}
	return reg, nil
}

// Put installs a single-level mapping. Intended for building registries in
// tests and snapshots.
func (r *Registry) Put(d Domain, m Mapping) *Registry {
	r.single[d] = m
	return r
}

// PutTyped installs a two-level mapping.
func (r *Registry) PutTyped(d Domain, m TypedMapping) *Registry {
	r.typed[d] = m
	return r
}

// Get returns the mapping of a single-level domain (nil when not loaded).
func (r *Registry) Get(d Domain) Mapping {
	return r.single[d]
}

// GetTyped returns the mapping of a two-level domain (nil when not loaded).
func (r *Registry) GetTyped(d Domain) TypedMapping {
	return r.typed[d]
}

// Domains returns the loaded domains in AllDomains order.
func (r *Registry) Domains() []Domain {
	var out []Domain
	for _, d := range AllDomains {
		_, s := r.single[d]
		_, t := r.typed[d]
		if s || t {
			out = append(out, d)
		}
	}
	return out
}

// Size returns the number of codes loaded for d.
func (r *Registry) Size(d Domain) int {
	if d.Typed() {
		n := 0
		for _, codes := range r.typed[d] {
			n += len(codes)
		}
		return n
	}
	return len(r.single[d])
}

// Types returns the sorted type keys of a two-level domain.
func (r *Registry) Types(d Domain) []string {
	out := make([]string, 0, len(r.typed[d]))
	for k := range r.typed[d] {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
