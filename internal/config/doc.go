// Package config holds the client configuration: server endpoint paths,
// OAuth client registration values, storage keys, timeouts, and provisioning
// defaults. Configuration is assembled from flags and TALKBRIDGE_*
// environment variables; nothing in this package performs I/O beyond reading
// the environment.
package config
