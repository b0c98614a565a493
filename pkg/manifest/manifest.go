// Package manifest reads endpoint lists from YAML or JSON documents.
//
// A manifest is either a mapping with an "endpoints" key or a bare list:
//
//	endpoints:
//	  - name: GCS
//	    owner: autopilot_manager
//	    connection_type: udpin
//	    place: 0.0.0.0
//	    argument: 14550
//	    persistent: true
//
// Every entry goes through endpoint.FromConfig on its own. A bad entry does
// not stop the others from loading; it is reported as a Rejection in the
// Result.
package manifest

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/mavroute/pkg/constants"
	"github.com/agentstation/mavroute/pkg/endpoint"
	"github.com/agentstation/mavroute/pkg/errors"
)

// ListKey is the mapping key holding the endpoint list.
const ListKey = "endpoints"

// Entry is the outcome for one list element, in document order.
type Entry struct {
	// Index is the zero based position in the list.
	Index int

	// Name is the entry's name field as written, for reporting.
	Name string

	// Endpoint is set when Err is nil.
	Endpoint endpoint.Endpoint

	Err error
}

// OK reports whether the entry produced an endpoint.
func (e Entry) OK() bool { return e.Err == nil }

// Rejection describes an entry that did not produce an endpoint.
type Rejection struct {
	Index int
	Name  string
	Err   error
}

func (r *Rejection) Error() string {
	if r.Name != "" {
		return fmt.Sprintf("entry %d (%s): %v", r.Index, r.Name, r.Err)
	}
	return fmt.Sprintf("entry %d: %v", r.Index, r.Err)
}

func (r *Rejection) Unwrap() error { return r.Err }

// Result holds every entry of a manifest.
type Result struct {
	// Source names where the document came from, e.g. a file path.
	Source  string
	Entries []Entry

	seen map[string]int
}

// FromConfigs validates already decoded entries, applying the same
// duplicate detection as Parse.
func FromConfigs(source string, configs []endpoint.Config) *Result {
	res := &Result{Source: source, Entries: make([]Entry, 0, len(configs))}
	for i, c := range configs {
		entry := Entry{Index: i, Name: c.Name}
		entry.Endpoint, entry.Err = endpoint.FromConfig(c)
		res.add(entry)
	}
	return res
}

// add appends entry, turning a repeated key into an AlreadyExistsError.
func (r *Result) add(entry Entry) {
	if entry.OK() {
		if r.seen == nil {
			r.seen = make(map[string]int)
		}
		key := entry.Endpoint.Key()
		if first, dup := r.seen[key]; dup {
			entry.Err = fmt.Errorf("same endpoint as entry %d: %w", first, errors.NewAlreadyExistsError("endpoint", key))
			entry.Endpoint = endpoint.Endpoint{}
		} else {
			r.seen[key] = entry.Index
		}
	}
	r.Entries = append(r.Entries, entry)
}

// Endpoints returns the accepted endpoints in document order.
func (r *Result) Endpoints() []endpoint.Endpoint {
	out := make([]endpoint.Endpoint, 0, len(r.Entries))
	for _, e := range r.Entries {
		if e.OK() {
			out = append(out, e.Endpoint)
		}
	}
	return out
}

// Rejections returns the rejected entries in document order.
func (r *Result) Rejections() []*Rejection {
	var out []*Rejection
	for _, e := range r.Entries {
		if !e.OK() {
			out = append(out, &Rejection{Index: e.Index, Name: e.Name, Err: e.Err})
		}
	}
	return out
}

// Err joins every rejection, or returns nil when all entries were accepted.
func (r *Result) Err() error {
	rejections := r.Rejections()
	if len(rejections) == 0 {
		return nil
	}
	errs := make([]error, len(rejections))
	for i, rej := range rejections {
		errs[i] = rej
	}
	return errors.Join(errs...)
}

// Parse decodes a manifest document and validates each entry. The returned
// error is non-nil only when the document itself is unusable; per entry
// failures are in the Result.
func Parse(data []byte) (*Result, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}

	items, err := list(doc)
	if err != nil {
		return nil, err
	}
	if len(items) > constants.MaxManifestEntries {
		return nil, errors.NewValidationError(ListKey, len(items),
			fmt.Sprintf("manifest declares %d endpoints, the limit is %d", len(items), constants.MaxManifestEntries))
	}

	res := &Result{Entries: make([]Entry, 0, len(items))}
	for i, item := range items {
		res.add(build(i, item))
	}
	return res, nil
}

// list extracts the endpoint list from a decoded document.
func list(doc any) ([]any, error) {
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case map[string]any:
		raw, ok := v[ListKey]
		if !ok {
			return nil, errors.NewParseError("yaml", "", fmt.Sprintf("expected a list or an %q key", ListKey), nil)
		}
		if raw == nil {
			return nil, nil
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, errors.NewParseError("yaml", "", fmt.Sprintf("%q must be a list, got %T", ListKey, raw), nil)
		}
		return items, nil
	default:
		return nil, errors.NewParseError("yaml", "", fmt.Sprintf("expected a list or an %q key, got %T", ListKey, doc), nil)
	}
}

func build(index int, item any) Entry {
	entry := Entry{Index: index}

	fields, ok := item.(map[string]any)
	if !ok {
		entry.Err = errors.NewValidationError("", item, fmt.Sprintf("entry must be a mapping, got %T", item))
		return entry
	}
	if name, ok := fields[endpoint.FieldName].(string); ok {
		entry.Name = name
	}

	cfg, err := decodeConfig(fields)
	if err != nil {
		entry.Err = err
		return entry
	}
	entry.Endpoint, entry.Err = endpoint.FromConfig(cfg)
	return entry
}

// decodeConfig maps a decoded YAML mapping onto endpoint.Config using its
// mapstructure tags. Scalars of the wrong type are rejected rather than
// converted.
func decodeConfig(fields map[string]any) (endpoint.Config, error) {
	var cfg endpoint.Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &cfg,
		TagName: "mapstructure",
	})
	if err != nil {
		return cfg, err
	}
	if err := dec.Decode(fields); err != nil {
		return cfg, errors.NewValidationError("", fields, err.Error())
	}
	return cfg, nil
}
