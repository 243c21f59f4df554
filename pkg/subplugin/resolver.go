package subplugin

// Resolver maps subplugin names to candidate module files. The conf package
// provides the production implementation; the registry treats it as an
// opaque path-resolution service.
type Resolver interface {
	// ResolveOne returns the file expected to back the named subplugin,
	// or ok=false when no candidate exists.
	ResolveOne(kind Kind, name string) (path string, ok bool)

	// Validate reports whether a candidate path is trusted for the kind.
	// Implementations fail closed.
	Validate(kind Kind, path string) bool

	// ResolveAll returns every discoverable module file of a kind, in
	// search-directory order. Used only for enumerate-all kinds.
	ResolveAll(kind Kind) []string
}

// nullResolver resolves nothing. It is the default when no resolver is
// configured: the registry still serves explicit registrations, but every
// load-on-miss fails as not found.
type nullResolver struct{}

func (nullResolver) ResolveOne(Kind, string) (string, bool) { return "", false }
func (nullResolver) Validate(Kind, string) bool             { return false }
func (nullResolver) ResolveAll(Kind) []string               { return nil }
