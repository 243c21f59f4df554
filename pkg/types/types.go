// Package types holds the small shared contracts of the subplugin system.
package types

import "io/fs"

// FS abstracts the filesystem operations the subplugin resolver needs.
// Production code uses the OS implementation; tests use an afero-backed one.
type FS interface {
	// Stat returns file info for the named file
	Stat(name string) (fs.FileInfo, error)

	// ReadDir lists the named directory
	ReadDir(name string) ([]fs.DirEntry, error)
}
