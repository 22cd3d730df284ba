// Package history keeps a SQLite log of finished pipeline runs.
package history
