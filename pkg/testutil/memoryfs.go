package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/dataignite-io/nnstreamer/pkg/filesystem"
	"github.com/dataignite-io/nnstreamer/pkg/types"
)

// MemoryFS wraps an afero in-memory filesystem for discovery tests.
type MemoryFS struct {
	Afero afero.Fs
	FS    types.FS
}

// NewMemoryFS creates an empty in-memory filesystem.
func NewMemoryFS() *MemoryFS {
	mem := afero.NewMemMapFs()
	return &MemoryFS{
		Afero: mem,
		FS:    filesystem.NewAferoFS(mem),
	}
}

// AddModule creates an empty module file at dir/filename, creating parents.
func (m *MemoryFS) AddModule(t *testing.T, dir, filename string) string {
	t.Helper()

	if err := m.Afero.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", dir, err)
	}

	path := filepath.Join(dir, filename)
	if err := afero.WriteFile(m.Afero, path, []byte{0x7f, 'E', 'L', 'F'}, 0644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	return path
}

// AddDir creates a directory without contents.
func (m *MemoryFS) AddDir(t *testing.T, dir string) {
	t.Helper()

	if err := m.Afero.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", dir, err)
	}
}
