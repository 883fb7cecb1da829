// Package logging configures the dragonboat logger package for this module.
//
// Every package keeps its own named logger (logger.GetLogger("moniker") and so on).
// Init installs a factory that writes lines in the format
//
//	2025/01/02 15:04:05 INFO  | moniker         | creating category English
//
// to stderr and applies the configured level to all loggers listed in Packages.
package logging
