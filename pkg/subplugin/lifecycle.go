package subplugin

import "sync"

// The process-wide default registry. Subplugin modules register themselves
// through the package-level functions below while they are being opened, so
// exactly one registry instance must exist for the life of the process. The
// host runtime wires Init into its process-start hook and Fini into its
// process-end hook; misusing the lifecycle is a programming error and
// panics rather than returning a recoverable failure.

var (
	defaultMu sync.Mutex
	defaultRe *Registry
)

// Init creates the process-wide registry. It must run exactly once, before
// any other operation in this package. Calling Init twice panics.
func Init(opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultRe != nil {
		panic("subplugin: Init called twice")
	}
	defaultRe = New(opts...)
}

// Fini shuts the process-wide registry down and discards it. Calling Fini
// without a prior Init panics. The registry must not be used afterwards.
func Fini() {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultRe == nil {
		panic("subplugin: Fini called before Init")
	}
	defaultRe.Shutdown()
	defaultRe = nil
}

// Default returns the process-wide registry, panicking when the package is
// used before Init (or after Fini).
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultRe == nil {
		panic("subplugin: registry used before Init")
	}
	return defaultRe
}

// Register adds a subplugin to the process-wide registry. This is the entry
// point module init functions call while being opened.
func Register(kind Kind, name string, payload interface{}) error {
	return Default().Register(kind, name, payload)
}

// Unregister removes a subplugin from the process-wide registry.
func Unregister(kind Kind, name string) error {
	return Default().Unregister(kind, name)
}

// Lookup fetches a payload from the process-wide registry, loading modules
// on demand.
func Lookup(kind Kind, name string) (interface{}, error) {
	return Default().Lookup(kind, name)
}
