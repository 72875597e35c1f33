// Package httpapi exposes whirr's Submission API (spec §4.5) as an HTTP
// surface for networked-mode deployments (spec §6.2).
//
// Router is a thin adapter: every handler validates and decodes its
// request, calls straight through to a whirr.Pusher/Puller/Observer/
// Registrar/Cleaner, and maps the result (or sentinel error) to the
// documented JSON response. It holds no state of its own beyond the
// data directory needed to serve run artifacts.
package httpapi
