/*
Package kvstore provides the string key-value stores used for window state.

Backends:

  - memory: sync.Map, lost on restart
  - file: one file per key, atomic rename on write
  - redis: go-redis client with a key prefix
  - sqlite: single table via the pure Go modernc driver

Keys are limited to letters, digits, '-' and '_'. Every backend returns
ErrClosed after Close and ErrInvalidKey for keys outside that set.

	store, err := kvstore.New(ctx, kvstore.Config{Backend: kvstore.BackendSQLite, SQLitePath: "state.db"})
*/
package kvstore
