package conf

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dataignite-io/nnstreamer/pkg/errors"
	"github.com/dataignite-io/nnstreamer/pkg/subplugin"
)

// Environment variable names
const (
	// EnvConfFile overrides the configuration file location
	EnvConfFile = "NNSTREAMER_CONF"

	// Per-kind search directory overrides, colon-separated. These take
	// priority over directories from the configuration file.
	EnvFilters       = "NNSTREAMER_FILTERS"
	EnvDecoders      = "NNSTREAMER_DECODERS"
	EnvCustomFilters = "NNSTREAMER_CUSTOMFILTERS"
	EnvConverters    = "NNSTREAMER_CONVERTERS"
)

// ConfFileName is the configuration file name under the XDG config dir
const ConfFileName = "nnstreamer.toml"

// Section is the per-kind search configuration
type Section struct {
	// Dirs are the search directories, in priority order
	Dirs []string `koanf:"dirs" toml:"dirs"`

	// Prefix is the module filename prefix for the kind
	Prefix string `koanf:"prefix" toml:"prefix"`
}

// Config holds the subplugin search configuration for every kind
type Config struct {
	// Suffix is the module filename suffix, shared by all kinds
	Suffix string `koanf:"suffix" toml:"suffix"`

	Filters       Section `koanf:"filters" toml:"filters"`
	Decoders      Section `koanf:"decoders" toml:"decoders"`
	CustomFilters Section `koanf:"custom-filters" toml:"custom-filters"`
	Converters    Section `koanf:"converters" toml:"converters"`
}

// Section returns the configuration section for a kind
func (c *Config) Section(kind subplugin.Kind) Section {
	switch kind {
	case subplugin.KindFilter:
		return c.Filters
	case subplugin.KindDecoder:
		return c.Decoders
	case subplugin.KindCustomFilter:
		return c.CustomFilters
	case subplugin.KindConverter:
		return c.Converters
	default:
		return Section{}
	}
}

// Filename returns the module file name expected to back a subplugin name
func (c *Config) Filename(kind subplugin.Kind, name string) string {
	return c.Section(kind).Prefix + name + c.Suffix
}

// DefaultPath returns the configuration file location: NNSTREAMER_CONF when
// set, otherwise the XDG config directory.
func DefaultPath() string {
	if p := os.Getenv(EnvConfFile); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, "nnstreamer", ConfFileName)
}

// defaults are the built-in search settings, overridable by file and env
func defaults() map[string]interface{} {
	dataDir := filepath.Join(xdg.DataHome, "nnstreamer")
	return map[string]interface{}{
		"suffix": ".so",

		"filters.prefix": "libnnstreamer_filter_",
		"filters.dirs": []string{
			"/usr/lib/nnstreamer/filters",
			filepath.Join(dataDir, "filters"),
		},

		"decoders.prefix": "libnnstreamer_decoder_",
		"decoders.dirs": []string{
			"/usr/lib/nnstreamer/decoders",
			filepath.Join(dataDir, "decoders"),
		},

		"custom-filters.prefix": "libnnstreamer_customfilter_",
		"custom-filters.dirs": []string{
			"/usr/lib/nnstreamer/customfilters",
			filepath.Join(dataDir, "customfilters"),
		},

		"converters.prefix": "libnnstreamer_converter_",
		"converters.dirs": []string{
			"/usr/lib/nnstreamer/converters",
			filepath.Join(dataDir, "converters"),
		},
	}
}

// envKeys maps directory-override variables to their config keys
var envKeys = map[string]string{
	EnvFilters:       "filters.dirs",
	EnvDecoders:      "decoders.dirs",
	EnvCustomFilters: "custom-filters.dirs",
	EnvConverters:    "converters.dirs",
}

// Load reads the effective configuration: built-in defaults, then the
// configuration file at path (skipped when absent), then environment
// overrides. An empty path means DefaultPath.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Configuration file, when present
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Config{}, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config from %s", path)
		}
	}

	// 3. Environment overrides, colon-separated directory lists
	envProvider := env.ProviderWithValue("NNSTREAMER_", ".", func(key, value string) (string, interface{}) {
		confKey, ok := envKeys[key]
		if !ok {
			// Unrelated NNSTREAMER_ variables (e.g. NNSTREAMER_CONF) are
			// not configuration keys.
			return "", nil
		}
		return confKey, filepath.SplitList(value)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			// Allow dirs given as one colon-separated string
			DecodeHook:       mapstructure.StringToSliceHookFunc(string(os.PathListSeparator)),
			WeaklyTypedInput: true,
			Result:           &cfg,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigParse, "invalid configuration")
	}

	// Drop empty directory entries left by trailing separators
	for _, dirs := range []*[]string{
		&cfg.Filters.Dirs, &cfg.Decoders.Dirs, &cfg.CustomFilters.Dirs, &cfg.Converters.Dirs,
	} {
		cleaned := (*dirs)[:0]
		for _, d := range *dirs {
			if strings.TrimSpace(d) != "" {
				cleaned = append(cleaned, filepath.Clean(d))
			}
		}
		*dirs = cleaned
	}

	return cfg, nil
}
