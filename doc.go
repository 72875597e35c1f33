// Package whirr is a storage-agnostic job-scheduling and process-
// lifecycle engine for long-running ML experiment commands.
//
// # Overview
//
// whirr separates the submission payload (job.Spec) from delivery state
// (job.Job) and defines a set of interfaces — Pusher, Puller, Observer,
// Cleaner, Registrar — for enqueueing, claiming, observing, retaining
// and registering against a durable store. The package does not mandate
// a particular storage backend: package store/sqlstore implements these
// interfaces against SQLite (embedded, single-host) or PostgreSQL
// (networked, multi-host, fronted by package httpapi), per §9 of the
// specification this module implements.
//
// # Lease Model
//
// When a job is claimed, it transitions from queued to running and
// receives a lease (LeaseExpiresAt). While the lease is valid, the job
// is not eligible for claiming by another worker. If the lease expires
// before completion — because the owning worker crashed or stalled —
// the job becomes eligible again via reaping (see ReapWorker).
//
// WorkerLoop renews the lease while its Supervisor's child runs, and
// discovers cancellation requests on the same renewal round-trip.
//
// # State Machine
//
// Jobs follow this lifecycle:
//
//	queued  -> running
//	running -> completed
//	running -> failed
//	running -> cancelled
//
// completed, failed and cancelled are terminal; a terminal job runs
// again only via an explicit Retry (new job, linked by ParentJobID).
// Lease-expiry reaping applies to running jobs only: it resets the same
// job row to queued with Attempt incremented.
//
// # WorkerLoop
//
// WorkerLoop coordinates claiming, supervising and finalizing jobs:
//
//   - claims a job from a Puller
//   - launches it through a Supervisor as an isolated process group
//   - renews the lease while the child runs
//   - observes cancellation requests and drain/force shutdown signals
//   - finalizes the run on exit and repeats
//
// # Interfaces
//
// whirr defines the following primary interfaces:
//
//	Pusher     — enqueue jobs
//	Puller     — claim, renew, complete, cancel and retry jobs
//	Observer   — inspect job, run and worker state
//	Cleaner    — retire terminal run-index rows
//	Registrar  — register and heartbeat worker presence
//
// These interfaces allow storage and transport implementations to be
// plugged in without coupling scheduling logic to a specific database
// or network protocol.
//
// # Concurrency Model
//
// Each worker process supervises a bounded number of job slots
// concurrently (WorkerLoopConfig.Concurrency; whirr.toml's
// worker.concurrency defaults to 1 — the intended deployment is one
// slot per accelerator). Within a slot,
// claiming and supervision are strictly serial: one job at a time.
//
// Shutdown is graceful: a first drain signal lets in-flight children
// finish; a second force signal begins cooperative-then-forceful
// termination immediately.
//
// # Storage Expectations
//
// Implementations of Puller must ensure atomic claim/renew transitions,
// durable persistence and correct lease handling. whirr assumes the
// store provides serializable single-row transactions; behavior under
// concurrent writers beyond that depends on the chosen backend.
package whirr
