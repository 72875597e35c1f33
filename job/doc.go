// Package job defines the scheduling unit of whirr: the submitted Spec
// and the stateful Job row the store maintains around it.
//
// Spec carries only what a caller submits — command, working directory,
// name, tags, free-form config. It has no delivery or lifecycle fields.
//
// Job embeds Spec and augments it with everything the queue tracks:
// status, lease, worker ownership, attempt count and retry lineage.
// Unlike Spec, Job values are snapshots of storage state. Mutating a
// returned Job does not change the underlying queue; transitions must go
// through a Puller implementation.
package job
