// Package registry provides a generic, type-safe named registry.
// The subplugin core builds its per-kind extension stores on top of it.
package registry
