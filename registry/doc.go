// Package registry defines the worker-presence record described in
// spec §3.2: one row per live worker process, upserted at startup and
// kept fresh by heartbeats.
//
// A registry.Worker is what the submission API's Status and worker
// listing operations read; the orphan reaper does not consult it (it
// works from job leases). It is not itself a scheduling unit (see
// package job for that).
package registry
