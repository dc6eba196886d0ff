// Package postgres provides PostgreSQL implementations of the store
// interfaces, plus helpers that translate database driver errors into
// the sentinel errors callers match against.
package postgres
