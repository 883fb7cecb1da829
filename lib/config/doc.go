// Package config holds the configuration of a moniker database: which storage
// backend to use, the per-backend connection settings, the log level and the
// output format of the cli. The cmd package fills a Config from flags,
// environment variables and .env files, the library packages never read the
// environment themselves.
package config
