// Package testutil provides shared test helpers: lightweight assertions
// and afero-backed filesystem fixtures for subplugin discovery tests.
package testutil
