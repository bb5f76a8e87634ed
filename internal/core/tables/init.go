// Package tables registers the FERC Form 1 extract definitions with the core
// registry. Import it for its side effects.
package tables
