// Package cache provides a translation memory: finished chunk translations
// keyed by model and rendered prompt, so unchanged chunks are not sent to the
// model again. Stores are in-memory or SQLite backed.
package cache
