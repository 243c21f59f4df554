package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataignite-io/nnstreamer/pkg/errors"
	"github.com/dataignite-io/nnstreamer/pkg/subplugin"
)

// clearEnv unsets the resolver environment variables for the test
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{EnvConfFile, EnvFilters, EnvDecoders, EnvCustomFilters, EnvConverters} {
		if old, ok := os.LookupEnv(key); ok {
			key, old := key, old
			t.Cleanup(func() { os.Setenv(key, old) })
			os.Unsetenv(key)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, ".so", cfg.Suffix)
	assert.Equal(t, "libnnstreamer_filter_", cfg.Filters.Prefix)
	assert.Equal(t, "libnnstreamer_decoder_", cfg.Decoders.Prefix)
	assert.Equal(t, "libnnstreamer_customfilter_", cfg.CustomFilters.Prefix)
	assert.Equal(t, "libnnstreamer_converter_", cfg.Converters.Prefix)

	assert.Contains(t, cfg.Filters.Dirs, "/usr/lib/nnstreamer/filters")
	assert.Contains(t, cfg.Converters.Dirs, "/usr/lib/nnstreamer/converters")
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nnstreamer.toml")
	content := `
suffix = ".plugin"

[filters]
dirs = ["/opt/nns/filters"]
prefix = "nns_filter_"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ".plugin", cfg.Suffix)
	assert.Equal(t, "nns_filter_", cfg.Filters.Prefix)
	assert.Equal(t, []string{"/opt/nns/filters"}, cfg.Filters.Dirs)

	// Sections the file does not mention keep their defaults
	assert.Equal(t, "libnnstreamer_decoder_", cfg.Decoders.Prefix)
	assert.Contains(t, cfg.Decoders.Dirs, "/usr/lib/nnstreamer/decoders")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nnstreamer.toml")
	content := `
[filters]
dirs = ["/from/file"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv(EnvFilters, "/env/first:/env/second")
	t.Setenv(EnvConverters, "/env/converters")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/env/first", "/env/second"}, cfg.Filters.Dirs)
	assert.Equal(t, []string{"/env/converters"}, cfg.Converters.Dirs)

	// Untouched kinds keep defaults
	assert.Contains(t, cfg.Decoders.Dirs, "/usr/lib/nnstreamer/decoders")
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nnstreamer.toml")
	require.NoError(t, os.WriteFile(path, []byte("suffix = [broken"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestDefaultPath(t *testing.T) {
	clearEnv(t)

	t.Setenv(EnvConfFile, "/etc/custom/nns.toml")
	assert.Equal(t, "/etc/custom/nns.toml", DefaultPath())
}

func TestDefaultPathWithoutOverride(t *testing.T) {
	clearEnv(t)

	path := DefaultPath()
	assert.Equal(t, ConfFileName, filepath.Base(path))
	assert.Contains(t, path, "nnstreamer")
}

func TestFilename(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "libnnstreamer_filter_tensorflow.so", cfg.Filename(subplugin.KindFilter, "tensorflow"))
	assert.Equal(t, "libnnstreamer_decoder_bounding_boxes.so", cfg.Filename(subplugin.KindDecoder, "bounding_boxes"))
	assert.Equal(t, "libnnstreamer_converter_flatbuf.so", cfg.Filename(subplugin.KindConverter, "flatbuf"))
}

func TestSectionInvalidKind(t *testing.T) {
	cfg := Config{}
	sec := cfg.Section(subplugin.Kind(99))
	assert.Empty(t, sec.Dirs)
	assert.Empty(t, sec.Prefix)
}
