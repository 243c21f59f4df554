// Package conf resolves subplugin names to module file paths.
//
// Search directories come from three layers, later layers winning: built-in
// defaults under /usr/lib/nnstreamer and the XDG data dir, the TOML
// configuration file (NNSTREAMER_CONF or the XDG config dir), and per-kind
// environment variables such as NNSTREAMER_FILTERS holding colon-separated
// directory lists.
//
// Module files follow the convention <prefix><name><suffix>, for example
// libnnstreamer_filter_tensorflow.so. The Resolver validates candidate
// paths against the convention and the configured directories and rejects
// anything it cannot confirm.
package conf
