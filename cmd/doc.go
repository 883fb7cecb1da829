// Package cmd implements the command-line interface of the moniker name registry.
// It provides a hierarchical command structure on top of lib/moniker.
//
// The package is organized into several subpackages:
//
//   - category: Commands to create and list categories
//   - name: Commands to create, delete, list and check names of a category tier
//   - util: Shared utilities for flags, configuration and output (internal use)
//
// The root command also provides info, backup and version.
//
// See moniker -help for a list of all commands.
package cmd
