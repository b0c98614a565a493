// Package endpoint defines the validated description of a single MAVLink
// routing endpoint: a UDP or TCP socket, or a serial device.
//
// An Endpoint is immutable and can only be obtained through New, FromConfig or
// by decoding JSON/YAML, all of which run the same validation. Its identity is
// the canonical key "kind:place:argument"; name, owner and the persistence
// hints do not take part in equality or hashing.
//
//	ep, err := endpoint.New(endpoint.Params{
//	    Name:     "GCS",
//	    Owner:    "autopilot_manager",
//	    Kind:     "udpin",
//	    Place:    "0.0.0.0",
//	    Argument: endpoint.Int(14550),
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(ep) // udpin:0.0.0.0:14550
//
// Endpoints are plain values and safe to share between goroutines.
package endpoint

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"github.com/agentstation/mavroute/pkg/errors"
)

// Field names as they appear in configuration and in AsMap.
const (
	FieldName       = "name"
	FieldOwner      = "owner"
	FieldKind       = "connection_type"
	FieldPlace      = "place"
	FieldArgument   = "argument"
	FieldPersistent = "persistent"
	FieldProtected  = "protected"
)

// Length bounds for name and owner, counted in characters after trimming.
const (
	MinLabelLength = 3
	MaxLabelLength = 50
)

// Endpoint is a validated, immutable endpoint descriptor.
// The zero value is not a valid endpoint; see IsZero.
type Endpoint struct {
	name       string
	owner      string
	kind       Kind
	place      string
	argument   int
	persistent bool
	protected  bool
}

// Params is the typed input to New.
type Params struct {
	Name  string
	Owner string
	Kind  string
	Place string

	// Argument is the port for network kinds and the baud rate for serial.
	// A nil Argument is always rejected.
	Argument *int

	Persistent bool
	Protected  bool
}

// Int returns a pointer to v, for filling Params.Argument.
func Int(v int) *int {
	return &v
}

// New validates p and returns the endpoint it describes.
// The returned error is a *errors.ValidationError whose Reason is one of
// ErrInvalidField, ErrInvalidKind, ErrInvalidAddress, ErrInvalidPort,
// ErrInvalidPath or ErrInvalidBaudRate.
func New(p Params) (Endpoint, error) {
	var raw any
	if p.Argument != nil {
		raw = *p.Argument
	}
	return build(p, raw)
}

// build runs every check in order and only then assembles the value.
// raw is the argument as originally supplied, kept for error reporting.
func build(p Params, raw any) (Endpoint, error) {
	name, err := label(FieldName, p.Name)
	if err != nil {
		return Endpoint{}, err
	}
	owner, err := label(FieldOwner, p.Owner)
	if err != nil {
		return Endpoint{}, err
	}

	kind, err := ParseKind(p.Kind)
	if err != nil {
		return Endpoint{}, err
	}

	r := rules[kind]
	if err := r.place(p.Place); err != nil {
		return Endpoint{}, err
	}
	if err := r.argument(p.Argument, raw); err != nil {
		return Endpoint{}, err
	}

	return Endpoint{
		name:       name,
		owner:      owner,
		kind:       kind,
		place:      p.Place,
		argument:   *p.Argument,
		persistent: p.Persistent,
		protected:  p.Protected,
	}, nil
}

func label(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	n := utf8.RuneCountInString(trimmed)
	if n < MinLabelLength || n > MaxLabelLength {
		return "", errors.NewRejection(errors.ErrInvalidField, field, value,
			fmt.Sprintf("must be between %d and %d characters after trimming, got %d", MinLabelLength, MaxLabelLength, n))
	}
	return trimmed, nil
}

// Name returns the human readable label.
func (e Endpoint) Name() string { return e.name }

// Owner returns the service that created the endpoint.
func (e Endpoint) Owner() string { return e.owner }

// Kind returns the connection kind.
func (e Endpoint) Kind() Kind { return e.kind }

// Place returns the network address or device path.
func (e Endpoint) Place() string { return e.place }

// Argument returns the port or baud rate.
func (e Endpoint) Argument() int { return e.argument }

// Persistent reports whether the endpoint should survive save/reload cycles.
func (e Endpoint) Persistent() bool { return e.persistent }

// Protected reports whether the endpoint must not be removed by ordinary user action.
func (e Endpoint) Protected() bool { return e.protected }

// IsZero reports whether e is the zero value rather than a constructed endpoint.
func (e Endpoint) IsZero() bool { return e.kind == "" }

// Key returns the canonical identity "kind:place:argument".
// Equal and Hash are both derived from it. The place is used as written: a
// Unicode domain and its punycode form give different keys.
func (e Endpoint) Key() string {
	var b strings.Builder
	b.Grow(len(e.kind) + len(e.place) + 8)
	b.WriteString(string(e.kind))
	b.WriteByte(':')
	b.WriteString(e.place)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(e.argument))
	return b.String()
}

// String returns the canonical key.
func (e Endpoint) String() string {
	return e.Key()
}

// Equal reports whether other describes the same endpoint as e.
// other must be an Endpoint or a non-nil *Endpoint; any other type yields a
// *errors.TypeMismatchError instead of false.
func (e Endpoint) Equal(other any) (bool, error) {
	switch o := other.(type) {
	case Endpoint:
		return e.Key() == o.Key(), nil
	case *Endpoint:
		if o == nil {
			return false, errors.NewTypeMismatchError("endpoint.Endpoint", other)
		}
		return e.Key() == o.Key(), nil
	default:
		return false, errors.NewTypeMismatchError("endpoint.Endpoint", other)
	}
}

// Same is the typed form of Equal.
func Same(a, b Endpoint) bool {
	return a.Key() == b.Key()
}

// Hash returns a process independent 64-bit hash of the canonical key.
func (e Endpoint) Hash() uint64 {
	return xxhash.Sum64String(e.Key())
}

// AsMap returns every field keyed by its configuration name.
func (e Endpoint) AsMap() map[string]any {
	return map[string]any{
		FieldName:       e.name,
		FieldOwner:      e.owner,
		FieldKind:       string(e.kind),
		FieldPlace:      e.place,
		FieldArgument:   e.argument,
		FieldPersistent: e.persistent,
		FieldProtected:  e.protected,
	}
}

// Params returns the input that reconstructs e through New.
func (e Endpoint) Params() Params {
	return Params{
		Name:       e.name,
		Owner:      e.owner,
		Kind:       string(e.kind),
		Place:      e.place,
		Argument:   Int(e.argument),
		Persistent: e.persistent,
		Protected:  e.protected,
	}
}
