// Package persist saves store values to pluggable key-value backends.
//
// Persist wraps a *store.Store so that every publish the store accepts is
// encoded and written under one key, and the stored value, if present, is
// loaded once when the wrapper is created:
//
//	prefs := store.New(Prefs{Theme: "light"})
//	p, err := persist.Persist(ctx, prefs,
//	    persist.WithKey("prefs"),
//	    persist.WithStorage(fileStorage))
//	p.Publish(Prefs{Theme: "dark"}) // saved
//
// # Backends
//
// Storage is the backend contract. The package ships:
//
//   - MemoryStorage: in process, the default
//   - FileStorage: one file per key, watched with fsnotify
//   - SQLStorage: database/sql for PostgreSQL, MySQL and SQLite
//   - RedisStorage: any client satisfying RedisClient
//   - S3Storage: objects in an S3 bucket
//   - CookieStorage and QueryStorage: per-request HTTP state
//   - RemoteStorage: a client for NewHandler's item API
//
// Prefixed namespaces any backend.
//
// # Watching
//
// Backends that also implement Watcher report changes made by other writers.
// Those values are published on the store but not written back, and the echo
// of the wrapper's own write is ignored.
//
// # Errors
//
// Persist and PersistCodec return hydration errors. Save and decode failures
// after construction are reported through the store's OnError handlers as
// *Error values.
package persist
