package subplugin

import (
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/dataignite-io/nnstreamer/pkg/errors"
	"github.com/dataignite-io/nnstreamer/pkg/logging"
	"github.com/dataignite-io/nnstreamer/pkg/registry"
)

// Record is one registered subplugin: a name unique within its kind and an
// opaque payload supplied by the module. The registry never interprets the
// payload; it is forwarded verbatim to callers.
type Record struct {
	Name    string
	Payload interface{}
}

// UnloadPolicy decides what Shutdown does with tracked module handles.
// Releasing dynamically loaded modules at process-exit time is unsafe on
// some legacy runtimes, so the policy is deployment configuration rather
// than a compiled-in version check.
type UnloadPolicy int

const (
	// ReleaseOnShutdown releases every tracked handle at shutdown
	ReleaseOnShutdown UnloadPolicy = iota

	// LeakOnShutdown keeps handles mapped and lets process exit reclaim them
	LeakOnShutdown
)

// String returns the policy name
func (p UnloadPolicy) String() string {
	if p == LeakOnShutdown {
		return "leak-on-shutdown"
	}
	return "release-on-shutdown"
}

// Registry discovers, loads, and tracks subplugin modules. All methods are
// safe for concurrent use from arbitrary host threads.
//
// mu protects the handle set and the per-kind discovery state. It is never
// held across Opener.Open: opening a module reenters Register on the same
// goroutine (the self-registration callback), and holding mu across the
// open call would self-deadlock.
type Registry struct {
	opener   Opener
	resolver Resolver
	policy   UnloadPolicy
	log      zerolog.Logger

	mu       sync.Mutex
	handles  []Module
	stores   [kindEnd]registry.Registry[*Record]
	state    [kindEnd]discoveryState
	enumOnce [kindEnd]sync.Once
	done     bool

	// flight deduplicates concurrent first-time loads of the same
	// (kind, name). Without it, two racing lookups of an unloaded name
	// would both open the module file; duplicate rejection in Register
	// keeps the store consistent either way, but single-flight avoids
	// the second resident handle.
	flight singleflight.Group
}

// discoveryState is the per-kind lookup behavior. enumerate-all kinds flip
// permanently to exhausted after their first query attempted every
// discoverable candidate.
type discoveryState int

const (
	stateNameLookup discoveryState = iota
	stateEnumerateAll
	stateExhausted
)

// Option configures a Registry
type Option func(*Registry)

// WithOpener sets the module opener. Tests inject fakes here.
func WithOpener(o Opener) Option {
	return func(r *Registry) { r.opener = o }
}

// WithResolver sets the path resolver
func WithResolver(res Resolver) Option {
	return func(r *Registry) { r.resolver = res }
}

// WithUnloadPolicy sets the shutdown unload policy
func WithUnloadPolicy(p UnloadPolicy) Option {
	return func(r *Registry) { r.policy = p }
}

// WithLogger sets the registry logger
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// New creates a Registry. Without options it uses the Go plugin opener, no
// resolver (explicit registrations only), and ReleaseOnShutdown.
func New(opts ...Option) *Registry {
	r := &Registry{
		opener:   NewPluginOpener(),
		resolver: nullResolver{},
		policy:   ReleaseOnShutdown,
		log:      logging.GetLogger("subplugin"),
		handles:  make([]Module, 0, 16),
	}
	for _, opt := range opts {
		opt(r)
	}
	for k := KindFilter; k < kindEnd; k++ {
		if strategies[k] == searchGetAll {
			r.state[k] = stateEnumerateAll
		}
	}
	return r
}

// store returns the per-kind extension store, materializing it lazily.
func (r *Registry) store(kind Kind) registry.Registry[*Record] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stores[kind] == nil {
		r.stores[kind] = registry.New[*Record]()
	}
	return r.stores[kind]
}

// Register adds a subplugin under (kind, name). It fails on an empty name,
// nil payload, unrecognized kind, or an existing entry for the same name:
// duplicates are rejected, not overwritten. Modules call this from their
// init functions while being opened; it is reentrant-safe with respect to
// Lookup's load path.
func (r *Registry) Register(kind Kind, name string, payload interface{}) error {
	if !kind.Valid() {
		return errors.Newf(errors.ErrInvalidInput, "unknown subplugin kind %d", int(kind))
	}
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "subplugin name cannot be empty")
	}
	if payload == nil {
		return errors.Newf(errors.ErrInvalidInput, "subplugin %q has no payload", name)
	}

	if err := r.store(kind).Register(name, &Record{Name: name, Payload: payload}); err != nil {
		if errors.IsErrorCode(err, errors.ErrAlreadyExists) {
			r.log.Error().
				Str("kind", kind.String()).
				Str("name", name).
				Msg("subplugin is already registered")
		}
		return err
	}

	r.log.Debug().
		Str("kind", kind.String()).
		Str("name", name).
		Msg("registered subplugin")
	return nil
}

// Unregister removes the entry for (kind, name). It fails when no such entry
// exists. Removing an entry does not unload the owning module; a later
// lookup under name-lookup discovery may load the file again and
// re-register the same name.
func (r *Registry) Unregister(kind Kind, name string) error {
	if !kind.Valid() {
		return errors.Newf(errors.ErrInvalidInput, "unknown subplugin kind %d", int(kind))
	}
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "subplugin name cannot be empty")
	}

	return r.store(kind).Remove(name)
}

// Lookup returns the payload registered under (kind, name), loading modules
// on demand according to the kind's discovery strategy. The returned error
// carries ErrNotFound when no module backs the name, ErrLoadFailure when the
// module file cannot be opened, and ErrMalformedModule when it opens but
// never self-registers.
func (r *Registry) Lookup(kind Kind, name string) (interface{}, error) {
	if !kind.Valid() {
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown subplugin kind %d", int(kind))
	}
	if name == "" {
		return nil, errors.New(errors.ErrInvalidInput, "subplugin name cannot be empty")
	}

	if r.discoveryState(kind) == stateEnumerateAll {
		r.enumOnce[kind].Do(func() { r.enumerateAll(kind) })
	}

	if rec, err := r.store(kind).Get(name); err == nil {
		return rec.Payload, nil
	}

	if r.discoveryState(kind) != stateNameLookup {
		return nil, errors.Newf(errors.ErrNotFound, "no %s subplugin named %q", kind, name)
	}

	// Load-on-miss, deduplicated per (kind, name) so concurrent first
	// lookups of the same unloaded name open the file once.
	payload, err, _ := r.flight.Do(kind.String()+"/"+name, func() (interface{}, error) {
		return r.loadByName(kind, name)
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// loadByName resolves, validates, and opens the module expected to back
// (kind, name), then rereads the store to pick up the self-registration.
func (r *Registry) loadByName(kind Kind, name string) (interface{}, error) {
	store := r.store(kind)

	// Another flight may have loaded it between the miss and here.
	if rec, err := store.Get(name); err == nil {
		return rec.Payload, nil
	}

	path, ok := r.resolver.ResolveOne(kind, name)
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "no %s subplugin named %q", kind, name)
	}
	if !r.resolver.Validate(kind, path) {
		r.log.Warn().
			Str("kind", kind.String()).
			Str("name", name).
			Str("path", path).
			Msg("candidate module failed validation")
		return nil, errors.Newf(errors.ErrNotFound, "no valid module for %s subplugin %q", kind, name)
	}

	// The open call runs the module's init, which calls Register. No
	// registry lock is held here.
	mod, err := r.opener.Open(path)
	if err != nil {
		r.log.Error().
			Str("kind", kind.String()).
			Str("name", name).
			Str("path", path).
			Err(err).
			Msg("cannot open subplugin module")
		return nil, errors.Wrapf(err, errors.ErrLoadFailure, "cannot open %s subplugin %q (%s)", kind, name, path)
	}

	rec, err := store.Get(name)
	if err != nil {
		// The module opened but its init never called Register: judged
		// broken. Release immediately and do not track the handle.
		r.log.Error().
			Str("kind", kind.String()).
			Str("name", name).
			Str("path", path).
			Msg("subplugin module is broken: it did not register itself while loading")
		if relErr := mod.Release(); relErr != nil {
			r.log.Warn().Str("path", path).Err(relErr).Msg("failed to release broken module")
		}
		return nil, errors.Newf(errors.ErrMalformedModule,
			"module %s did not register %s subplugin %q while loading", path, kind, name)
	}

	r.track(mod)
	return rec.Payload, nil
}

// enumerateAll opens every discoverable module of an enumerate-all kind,
// logging and skipping failures, then flips the kind to exhausted. Runs at
// most once per kind per Registry.
func (r *Registry) enumerateAll(kind Kind) {
	paths := r.resolver.ResolveAll(kind)

	for _, path := range paths {
		// Each successfully opened module registers itself during Open.
		mod, err := r.opener.Open(path)
		if err != nil {
			r.log.Error().
				Str("kind", kind.String()).
				Str("path", path).
				Err(err).
				Msg("cannot open subplugin module, skipping")
			continue
		}
		r.track(mod)
	}

	r.mu.Lock()
	r.state[kind] = stateExhausted
	r.mu.Unlock()

	r.log.Debug().
		Str("kind", kind.String()).
		Int("candidates", len(paths)).
		Msg("enumerated all subplugin modules")
}

// track appends a handle to the module handle set for bulk release at
// shutdown. Handles are tracked even when the module's registrations are
// later removed.
func (r *Registry) track(mod Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles = append(r.handles, mod)
}

func (r *Registry) discoveryState(kind Kind) discoveryState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state[kind]
}

// Names returns the registered names of a kind, sorted
func (r *Registry) Names(kind Kind) []string {
	if !kind.Valid() {
		return nil
	}
	return r.store(kind).List()
}

// ModuleCount returns the number of tracked module handles
func (r *Registry) ModuleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Shutdown releases every tracked handle according to the unload policy and
// clears the registry. It runs exactly once; later calls are no-ops. Using
// the registry after Shutdown is not supported.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		return
	}
	r.done = true
	handles := r.handles
	r.handles = nil
	stores := r.stores
	r.stores = [kindEnd]registry.Registry[*Record]{}
	r.mu.Unlock()

	for _, s := range stores {
		if s != nil {
			s.Clear()
		}
	}

	if r.policy == LeakOnShutdown {
		r.log.Debug().
			Int("handles", len(handles)).
			Msg("leaving module handles mapped per unload policy")
		return
	}

	for _, mod := range handles {
		if err := mod.Release(); err != nil {
			r.log.Warn().Str("path", mod.Path()).Err(err).Msg("failed to release module")
		}
	}
	r.log.Debug().Int("handles", len(handles)).Msg("released module handles")
}
