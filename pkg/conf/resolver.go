package conf

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dataignite-io/nnstreamer/pkg/filesystem"
	"github.com/dataignite-io/nnstreamer/pkg/logging"
	"github.com/dataignite-io/nnstreamer/pkg/subplugin"
	"github.com/dataignite-io/nnstreamer/pkg/types"
)

// Resolver maps subplugin names to module file paths using the configured
// per-kind search directories and the filename convention
// <prefix><name><suffix>. It implements subplugin.Resolver.
//
// Directory scans for enumerate-all kinds are cached; Refresh discards the
// cache so new module files become visible.
type Resolver struct {
	cfg Config
	fs  types.FS
	log zerolog.Logger

	mu      sync.Mutex
	scanned map[subplugin.Kind][]string
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithFS overrides the filesystem used for stats and directory scans
func WithFS(fs types.FS) ResolverOption {
	return func(r *Resolver) {
		r.fs = fs
	}
}

// NewResolver creates a Resolver over the given configuration
func NewResolver(cfg Config, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cfg:     cfg,
		fs:      filesystem.NewOS(),
		log:     logging.GetLogger("conf.resolver"),
		scanned: make(map[subplugin.Kind][]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveOne returns the path of the module file backing name, searching the
// kind's directories in priority order. The first existing regular file wins.
func (r *Resolver) ResolveOne(kind subplugin.Kind, name string) (string, bool) {
	if !kind.Valid() || name == "" {
		return "", false
	}

	filename := r.cfg.Filename(kind, name)
	for _, dir := range r.cfg.Section(kind).Dirs {
		path := filepath.Join(dir, filename)
		if r.isRegularFile(path) {
			r.log.Debug().
				Str("kind", kind.String()).
				Str("name", name).
				Str("path", path).
				Msg("Resolved subplugin path")
			return path, true
		}
	}

	r.log.Debug().
		Str("kind", kind.String()).
		Str("name", name).
		Str("filename", filename).
		Msg("No module file found in search directories")
	return "", false
}

// Validate reports whether path is an acceptable module file for kind: it
// must live directly in one of the kind's search directories, follow the
// filename convention, and be an existing regular file. Anything the checks
// cannot confirm is rejected.
func (r *Resolver) Validate(kind subplugin.Kind, path string) bool {
	if !kind.Valid() || path == "" {
		return false
	}

	sec := r.cfg.Section(kind)
	base := filepath.Base(path)
	if r.nameFromFile(sec, base) == "" {
		return false
	}

	dir := filepath.Clean(filepath.Dir(path))
	inSearchPath := false
	for _, d := range sec.Dirs {
		if filepath.Clean(d) == dir {
			inSearchPath = true
			break
		}
	}
	if !inSearchPath {
		return false
	}

	return r.isRegularFile(path)
}

// ResolveAll returns the paths of every module file discoverable for kind,
// search directories in priority order and sorted within each directory.
// Results are cached until Refresh.
func (r *Resolver) ResolveAll(kind subplugin.Kind) []string {
	if !kind.Valid() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if paths, ok := r.scanned[kind]; ok {
		return paths
	}

	paths := r.scan(kind)
	r.scanned[kind] = paths
	return paths
}

// Refresh discards cached directory scans
func (r *Resolver) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scanned = make(map[subplugin.Kind][]string)
}

// Dirs returns the search directories for kind, in priority order
func (r *Resolver) Dirs(kind subplugin.Kind) []string {
	return r.cfg.Section(kind).Dirs
}

// NameOf returns the subplugin name encoded in a module file path, or ""
// when the file name does not follow the kind's convention.
func (r *Resolver) NameOf(kind subplugin.Kind, path string) string {
	return r.nameFromFile(r.cfg.Section(kind), filepath.Base(path))
}

// scan walks the kind's directories once. Caller holds r.mu.
func (r *Resolver) scan(kind subplugin.Kind) []string {
	sec := r.cfg.Section(kind)
	var paths []string

	for _, dir := range sec.Dirs {
		entries, err := r.fs.ReadDir(dir)
		if err != nil {
			// Missing search directories are routine
			r.log.Debug().
				Str("kind", kind.String()).
				Str("dir", dir).
				Err(err).
				Msg("Skipping unreadable search directory")
			continue
		}

		var found []string
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if r.nameFromFile(sec, entry.Name()) == "" {
				continue
			}
			found = append(found, filepath.Join(dir, entry.Name()))
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}

	r.log.Debug().
		Str("kind", kind.String()).
		Int("count", len(paths)).
		Msg("Scanned search directories")
	return paths
}

// nameFromFile extracts the subplugin name from a module file name, or ""
// when the convention does not match.
func (r *Resolver) nameFromFile(sec Section, base string) string {
	if !strings.HasPrefix(base, sec.Prefix) || !strings.HasSuffix(base, r.cfg.Suffix) {
		return ""
	}
	name := strings.TrimSuffix(strings.TrimPrefix(base, sec.Prefix), r.cfg.Suffix)
	return name
}

func (r *Resolver) isRegularFile(path string) bool {
	info, err := r.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
