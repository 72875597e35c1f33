package registry

import "time"

// Worker is a snapshot of a worker's presence row, as described in
// spec §3.2.
//
// ID has the form "<host>:<slot>" where slot is the accelerator index
// assigned to this worker or the literal string "default".
type Worker struct {
	ID   string
	Host string
	Slot string

	Status       Status
	CurrentJobID *int64
	LastSeenAt   time.Time
	RegisteredAt time.Time
}
