// Package storage provides the persistent string-keyed key/value store used
// for OAuth tokens, the configured server URL, and the cached user profile.
//
// Two implementations exist: FileStore persists to a JSON file under the
// user cache directory, MemoryStore keeps everything in process memory for
// tests.
package storage
