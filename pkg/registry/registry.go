// Package registry keeps the set of active endpoints, deduplicated by their
// canonical key. It is what a routing service consults to decide whether a
// requested endpoint is already running.
package registry

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/mavroute/pkg/endpoint"
	"github.com/agentstation/mavroute/pkg/errors"
	"github.com/agentstation/mavroute/pkg/logging"
	"github.com/agentstation/mavroute/pkg/metrics"
)

const resource = "endpoint"

// Registry is a concurrent safe set of endpoints keyed by endpoint.Key.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]endpoint.Endpoint
	perKind   map[endpoint.Kind]int

	metrics *metrics.Metrics
	logger  *zerolog.Logger
	hooks   hooks
	tickets uint64 // changes committed so far; guarded by mu
}

// Option configures a Registry.
type Option func(*Registry)

// WithCapacity presizes the underlying map.
func WithCapacity(n int) Option {
	return func(r *Registry) {
		r.endpoints = make(map[string]endpoint.Endpoint, n)
	}
}

// WithMetrics publishes the number of active endpoints per kind.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithLogger sets the logger used for add/remove events.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		endpoints: make(map[string]endpoint.Endpoint),
		perKind:   make(map[endpoint.Kind]int),
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers e. It fails with ErrInvalidInput for the zero endpoint and with
// an *errors.AlreadyExistsError when an endpoint with the same key is present,
// whatever its name or owner.
func (r *Registry) Add(e endpoint.Endpoint) error {
	if e.IsZero() {
		return errors.NewValidationError("", e, "cannot register the zero endpoint")
	}
	key := e.Key()

	r.mu.Lock()
	if existing, ok := r.endpoints[key]; ok {
		r.mu.Unlock()
		r.logger.Debug().
			Str(logging.FieldEndpoint, key).
			Str("existing_owner", existing.Owner()).
			Str("owner", e.Owner()).
			Msg("endpoint already registered")
		return errors.NewAlreadyExistsError(resource, key)
	}
	r.endpoints[key] = e
	r.adjust(e.Kind(), 1)
	ticket := r.ticket()
	r.mu.Unlock()

	r.logger.Debug().Str(logging.FieldEndpoint, key).Str("name", e.Name()).Msg("endpoint registered")
	r.hooks.added(ticket, e)
	return nil
}

// AddAll registers every endpoint in eps, skipping the ones Add refuses.
// Skipped endpoints are logged at warn level with source and the context
// logger. It returns the number of endpoints added.
func (r *Registry) AddAll(ctx context.Context, source string, eps ...endpoint.Endpoint) int {
	logger := logging.FromContext(ctx)
	added := 0
	for _, e := range eps {
		if err := r.Add(e); err != nil {
			logger.Warn().
				Str(logging.FieldSource, source).
				Str(logging.FieldEndpoint, e.Key()).
				Err(err).
				Msg("endpoint skipped")
			continue
		}
		added++
	}
	return added
}

// Get returns the endpoint stored under key.
func (r *Registry) Get(key string) (endpoint.Endpoint, bool) {
	r.mu.RLock()
	e, ok := r.endpoints[key]
	r.mu.RUnlock()
	return e, ok
}

// Contains reports whether an endpoint with e's key is registered.
func (r *Registry) Contains(e endpoint.Endpoint) bool {
	_, ok := r.Get(e.Key())
	return ok
}

// Len returns the number of registered endpoints.
func (r *Registry) Len() int {
	r.mu.RLock()
	n := len(r.endpoints)
	r.mu.RUnlock()
	return n
}

// Remove unregisters the endpoint with e's key. Protection is judged on the
// stored endpoint, not on e.
func (r *Registry) Remove(e endpoint.Endpoint) error {
	return r.remove(e.Key(), false)
}

// ForceRemove unregisters the endpoint with e's key even if it is protected.
func (r *Registry) ForceRemove(e endpoint.Endpoint) error {
	return r.remove(e.Key(), true)
}

// RemoveKey unregisters the endpoint stored under key. Protected endpoints
// are only removed when force is set.
func (r *Registry) RemoveKey(key string, force bool) error {
	return r.remove(key, force)
}

func (r *Registry) remove(key string, force bool) error {
	r.mu.Lock()
	stored, ok := r.endpoints[key]
	if !ok {
		r.mu.Unlock()
		return errors.NewNotFoundError(resource, key)
	}
	if stored.Protected() && !force {
		r.mu.Unlock()
		return errors.NewProtectedError(resource, key)
	}
	delete(r.endpoints, key)
	r.adjust(stored.Kind(), -1)
	ticket := r.ticket()
	r.mu.Unlock()

	r.logger.Debug().Str(logging.FieldEndpoint, key).Bool("forced", force).Msg("endpoint removed")
	r.hooks.removed(ticket, stored, force && stored.Protected())
	return nil
}

// ticket numbers a committed change. The caller must hold mu.
func (r *Registry) ticket() uint64 {
	t := r.tickets
	r.tickets++
	return t
}

// List returns every endpoint sorted by key.
func (r *Registry) List() []endpoint.Endpoint {
	return r.filter(func(endpoint.Endpoint) bool { return true })
}

// Persistent returns the endpoints flagged persistent, sorted by key.
func (r *Registry) Persistent() []endpoint.Endpoint {
	return r.filter(endpoint.Endpoint.Persistent)
}

func (r *Registry) filter(keep func(endpoint.Endpoint) bool) []endpoint.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := slices.Sorted(maps.Keys(r.endpoints))
	out := make([]endpoint.Endpoint, 0, len(keys))
	for _, k := range keys {
		if e := r.endpoints[k]; keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// adjust must be called with mu held.
func (r *Registry) adjust(kind endpoint.Kind, delta int) {
	r.perKind[kind] += delta
	r.metrics.SetActive(kind.String(), r.perKind[kind])
}
