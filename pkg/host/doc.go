// Package host serves a live obsrv store over HTTP.
//
// A Host owns one reactive scope. The store is constructed inside that
// scope, so its cells live in the scope's hook slots; whenever a write
// changes a cell the host constructs the store again (cells keep their
// values and identity) and pushes a snapshot to every websocket client.
//
// Routes:
//
//	GET  /store              snapshot as JSON (?indent=n)
//	GET  /store/{path...}    leaf value or group snapshot; path segments map to fields
//	PUT  /store/{path...}    write a JSON value to a leaf
//	GET  /computeds          computed names
//	GET  /computeds/{name}   evaluate a computed
//	GET  /actions            action names
//	POST /actions/{name}     call an action; the body is a JSON array of arguments
//	GET  /ws                 snapshot push channel
//	GET  /metrics            Prometheus scrape endpoint, when a gatherer is set
//
// Access to the store is serialized by the host. Code that needs the store
// directly goes through View and Update.
package host
