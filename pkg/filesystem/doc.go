// Package filesystem provides implementations of the types.FS interface:
// the standard OS filesystem for production and an afero-backed one for tests.
package filesystem
