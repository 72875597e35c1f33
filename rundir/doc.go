// Package rundir manages the on-disk layout of a single job run: the
// directory tree under a data directory that holds a run's metadata,
// submitted configuration, append-only metric streams and captured
// output, as described in spec §5.
//
// A run directory is laid out as:
//
//	<data-dir>/runs/<run-id>/
//	    meta.json      snapshot of run identity and terminal state
//	    config.json    the submitted job Spec.Config, verbatim
//	    output.log     combined stdout/stderr of the child process
//	    metrics.jsonl  append-only, one JSON object per line
//	    system.jsonl   append-only, one JSON object per line
//	    artifacts/     files the job itself chooses to write
//
// Every write under a run directory is append-only or create-once,
// except meta.json, which is rewritten at each state transition;
// nothing in this package ever rewrites metrics.jsonl or system.jsonl
// in place, so a crash mid-write leaves at most one truncated trailing
// line, which ReadRecords tolerates.
package rundir
