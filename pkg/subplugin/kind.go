package subplugin

import (
	"github.com/dataignite-io/nnstreamer/pkg/errors"
)

// Kind is the fixed category a subplugin belongs to. Each kind has its own
// namespace of names. The set is closed at compile time.
type Kind int

const (
	// KindFilter is a tensor filter subplugin (one module per named filter)
	KindFilter Kind = iota

	// KindDecoder is a tensor decoder subplugin
	KindDecoder

	// KindCustomFilter is a custom easy-filter subplugin
	KindCustomFilter

	// KindConverter is a tensor converter subplugin; all converter modules
	// are loaded eagerly the first time the kind is queried
	KindConverter

	// kindEnd is the terminal sentinel, used only for array sizing
	kindEnd
)

var kindNames = [kindEnd]string{
	KindFilter:       "filter",
	KindDecoder:      "decoder",
	KindCustomFilter: "custom-filter",
	KindConverter:    "converter",
}

// String returns the kind name
func (k Kind) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the recognized subplugin kinds
func (k Kind) Valid() bool {
	return k >= KindFilter && k < kindEnd
}

// Kinds returns every recognized kind, in declaration order
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindEnd)
	for k := KindFilter; k < kindEnd; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// ParseKind maps a kind name (as printed by String) back to its Kind
func ParseKind(s string) (Kind, error) {
	for k := KindFilter; k < kindEnd; k++ {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return kindEnd, errors.Newf(errors.ErrInvalidInput, "unknown subplugin kind %q", s)
}

// searchStrategy is the per-kind discovery strategy. Kinds whose modules are
// cheap, few, and always needed are enumerated eagerly and in full; kinds
// with many rarely-used modules are loaded lazily by exact name.
type searchStrategy int

const (
	// searchByName resolves one module file per requested name, on miss
	searchByName searchStrategy = iota

	// searchGetAll loads every discoverable module on the kind's first query
	searchGetAll
)

var strategies = [kindEnd]searchStrategy{
	KindFilter:       searchByName,
	KindDecoder:      searchByName,
	KindCustomFilter: searchByName,
	KindConverter:    searchGetAll,
}

// Strategy names the discovery strategy of a kind, for diagnostics
func (k Kind) Strategy() string {
	if !k.Valid() {
		return "no-op"
	}
	switch strategies[k] {
	case searchGetAll:
		return "enumerate-all"
	default:
		return "name-lookup"
	}
}
