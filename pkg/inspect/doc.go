// Package inspect streams scheduler events to browser devtools.
//
// A Hub is a state.Observer that turns every flush and computation run into
// a JSON message and broadcasts it to connected WebSocket clients. Install
// it on a runtime, start its broadcast loop, and mount its router:
//
//	hub := inspect.NewHub()
//	rt := state.NewRuntime(state.WithObserver(hub))
//	go hub.Run(ctx)
//
//	r := chi.NewRouter()
//	r.Mount("/_decantr", hub.Router())
//
// Endpoints:
//   - GET /ws: WebSocket stream of Event messages
//   - GET /stats: JSON Snapshot of aggregate counters
//   - GET /healthz: liveness probe
//
// The observer side never blocks the runtime: when the buffer is full,
// events are dropped and counted in Snapshot.Dropped.
package inspect
