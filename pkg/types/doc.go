// Package types defines the near-Earth object and close approach entities,
// the loader configuration, and the standard error values shared by the
// database, filter, loader, and writer packages.
package types
