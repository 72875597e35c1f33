package sqlstore

import "github.com/uptrace/bun"

// Store bundles the five SQL-backed components into a single
// whirr.Store, convenient for command-line entrypoints that need one
// value to hand to both a WorkerLoop and an httpapi.Router.
type Store struct {
	*Pusher
	*Puller
	*Observer
	*Cleaner
	*Registrar
}

// New builds a Store over db. InitDB must have been called on db
// beforehand.
func New(db *bun.DB) *Store {
	return &Store{
		Pusher:    NewPusher(db),
		Puller:    NewPuller(db),
		Observer:  NewObserver(db),
		Cleaner:   NewCleaner(db),
		Registrar: NewRegistrar(db),
	}
}
