package subplugin

import (
	"plugin"
)

// Module is an opaque reference to a successfully opened subplugin module.
// Modules are owned by the Registry's handle set and released in bulk at
// shutdown; they are never released individually while the registry lives.
type Module interface {
	// Path returns the file the module was opened from
	Path() string

	// Release frees the module. Called only by the registry at shutdown,
	// or immediately when a module opens but never self-registers.
	Release() error
}

// Opener performs the dynamic load of a module file. Opening a module runs
// the module's own initialization as a side effect, and that initialization
// is expected to call Register before Open returns. Callers must not hold
// the registry lock across Open for that reason.
type Opener interface {
	Open(path string) (Module, error)
}

// pluginOpener is the production Opener, backed by the standard plugin
// package. plugin.Open resolves symbols immediately and runs the plugin's
// init functions before returning, which is the self-registration window.
type pluginOpener struct{}

// NewPluginOpener returns an Opener backed by the Go plugin runtime.
func NewPluginOpener() Opener {
	return pluginOpener{}
}

func (pluginOpener) Open(path string) (Module, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	return &pluginModule{path: path, plugin: p}, nil
}

type pluginModule struct {
	path   string
	plugin *plugin.Plugin
}

func (m *pluginModule) Path() string {
	return m.path
}

// Release is a no-op: the Go runtime keeps a plugin mapped for the life of
// the process and re-opening the same path returns the cached plugin without
// re-running its init functions.
func (m *pluginModule) Release() error {
	return nil
}
