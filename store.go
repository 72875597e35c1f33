package whirr

// Store is the full contract a backend must satisfy: the union of
// Pusher, Puller, Observer, Cleaner and Registrar. Spec §9 notes that
// the embedded and networked backends differ in exactly two behaviors
// (the claim primitive's locking mechanism and the reaper's cadence);
// everything else, including this interface, is shared.
type Store interface {
	Pusher
	Puller
	Observer
	Cleaner
	Registrar
}
