// Package assembler turns scanned frame text into a reassembled payload.
//
// An [Assembler] owns one receive session at a time and moves through three
// states:
//
//	Empty -> Accumulating -> Complete
//
// Complete is left only through [Assembler.Reset]. Completion is
// edge-triggered: the [Outcome] of the frame that finishes the payload has
// kind OutcomeComplete and the OnComplete callback runs exactly once per
// session, however many duplicate frames arrive afterwards.
//
// Malformed frames and frames from another payload are dropped and counted,
// never fatal, and never disturb the session in progress.
//
// # Usage
//
//	a := assembler.New(assembler.WithOnComplete(func(p []byte) { save(p) }))
//	for text := range scans {
//	    a.Ingest(text)
//	}
//
// Ingest is safe for concurrent callers; calls are serialized internally.
package assembler
