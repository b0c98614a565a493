package registry

import (
	"slices"

	"github.com/agentstation/mavroute/internal/matcher"
	"github.com/agentstation/mavroute/pkg/endpoint"
)

// Query narrows Select. Zero fields match everything.
type Query struct {
	// Kinds keeps endpoints of any of these kinds.
	Kinds []endpoint.Kind
	// Owner keeps endpoints created by this owner.
	Owner string
	// Persistent keeps endpoints whose persistent flag equals *Persistent.
	Persistent *bool
	// Match is a glob or regular expression tested, case insensitively,
	// against the name, place and key.
	Match string
}

// Select returns the endpoints matching q, sorted by key. An invalid
// Match pattern is reported as a validation error.
func (r *Registry) Select(q Query) ([]endpoint.Endpoint, error) {
	var m *matcher.Matcher
	if q.Match != "" {
		var err error
		m, err = matcher.New(matcher.Auto, q.Match, matcher.Options{CaseInsensitive: true})
		if err != nil {
			return nil, err
		}
	}

	return r.filter(func(e endpoint.Endpoint) bool {
		if len(q.Kinds) > 0 && !slices.Contains(q.Kinds, e.Kind()) {
			return false
		}
		if q.Owner != "" && e.Owner() != q.Owner {
			return false
		}
		if q.Persistent != nil && e.Persistent() != *q.Persistent {
			return false
		}
		return m == nil || m.MatchAny(e.Name(), e.Place(), e.Key())
	}), nil
}
