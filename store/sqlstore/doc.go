// Package sqlstore provides a bun-based implementation of whirr.Store
// for both of whirr's deployment modes.
//
// # Overview
//
// The SQL backend provides:
//
//   - durable persistence of jobs and worker registrations
//   - an atomic claim operation safe under concurrent pollers
//   - visibility-timeout (lease) semantics with renew and reap
//   - retention cleanup of terminal runs
//
// Two dialects are supported through the same query paths:
//
//   - sqlitedialect, for whirr's embedded mode — a single-file store
//     opened with SetMaxOpenConns(1), which makes the connection pool
//     itself the serialization point for claims. Claim atomicity rests on
//     the filesystem's locking; a data root on a shared network
//     filesystem needs the Postgres dialect instead.
//   - pgdialect (via jackc/pgx/v5), for whirr's networked mode — claims
//     use SELECT ... FOR UPDATE SKIP LOCKED so concurrent pollers never
//     block on each other.
//
// # Schema
//
// InitDB (or MustInitDB) creates the jobs and workers tables and the
// indexes Pull, ListRuns and Clean depend on. InitDB is idempotent and
// runs inside a transaction; it performs no destructive migrations.
//
// # Database Lifecycle
//
// NewSQLiteDB and NewPostgresDB open a configured *bun.DB (the SQLite
// one limited to a single open connection); a caller may instead build
// its own *bun.DB and set connection limits itself. Either way the
// caller runs InitDB before use and closes the DB when done.
package sqlstore
