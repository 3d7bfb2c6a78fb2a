package registry

import (
	"context"
	"fmt"
)

// Static serves mappings held in memory. It backs tests and lets a registry
// built by hand be used wherever a Provider is expected.
type Static struct {
	Single map[Domain]Mapping
	Typed  map[Domain]TypedMapping
}

var _ Provider = (*Static)(nil)

// Mapping implements Provider.
func (s *Static) Mapping(_ context.Context, d Domain) (Mapping, error) {
	if d.Typed() {
		return nil, fmt.Errorf("domain %s is typed", d)
	}
	m := s.Single[d]
	if m == nil {
		m = Mapping{}
	}
	return m, nil
}

// TypedMapping implements Provider.
func (s *Static) TypedMapping(_ context.Context, d Domain, types []string) (TypedMapping, error) {
	if !d.Typed() {
		return nil, fmt.Errorf("domain %s is not typed", d)
	}
	all := s.Typed[d]
	if len(types) == 0 {
		if all == nil {
			return TypedMapping{}, nil
		}
		return all, nil
	}
	out := make(TypedMapping, len(types))
	for _, t := range types {
		if codes, ok := all[t]; ok {
			out[t] = codes
		}
	}
	return out, nil
}
