// Package subplugin is the dynamic extension registry of the stream
// processing host: it discovers, loads, and tracks optional processing
// modules (filters, decoders, custom filters, converters) without the host
// linking against any of them.
//
// Modules self-register: opening a module file runs its initialization,
// which calls Register before the open returns. Filter, decoder, and
// custom-filter kinds load lazily by exact name; the converter kind loads
// every discoverable module on its first query and never enumerates again.
//
// Loaded modules stay resident until Shutdown releases them in bulk, under
// a configurable unload policy. There is no sandboxing, no signature
// verification, and no hot-reload of an individual module in use.
package subplugin
