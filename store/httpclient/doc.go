// Package httpclient implements whirr.Pusher, whirr.Puller,
// whirr.Observer and whirr.Registrar by calling a remote httpapi.Router
// over net/http (spec §6.2, networked mode).
//
// Client retries transport failures and 5xx responses against
// Pull and Renew only, using the same bounded-exponential-backoff
// shape as the embedded WorkerLoop (spec §7): other calls surface the
// server's error as-is. Exhausted retries and persistent transport
// failure both surface as whirr.ErrStoreUnavailable.
package httpclient
