// Package dynamo provides the shared vocabulary of the orbital sandbox.
//
// The package defines the value types exchanged between the simulation core
// and its front ends:
//
//   - [Kind]: sun or planet
//   - [BodyView]: read-only snapshot of one body
//   - [Diagnostics]: orbital quantities of one planet relative to the sun
//   - [Field]: an editable body property
//
// and the domain errors returned by mutation operations. None of the errors
// is fatal: every operation that returns one leaves the world unchanged.
//
// # Example
//
//	w, _ := world.New(config.DefaultConfig())
//	w.Step()
//	for _, v := range w.Snapshot() {
//	    if d, ok := w.DiagnosticsFor(v.ID); ok {
//	        fmt.Println(v.Name, d.Distance, d.Tangential)
//	    }
//	}
package dynamo
