// Package storage provides match record persistence backends: an in-memory
// store for tests and development, and a SQLite store for production use.
package storage
