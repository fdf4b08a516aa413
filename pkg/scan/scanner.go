package scan

import (
	"sync/atomic"

	"github.com/bft-labs/qrship/pkg/assembler"
)

// Scanner forwards decoded frame candidates to an assembler while the camera
// is Ready and drops them otherwise.
type Scanner struct {
	lifecycle *Lifecycle
	assembler *assembler.Assembler
	gated     atomic.Int64
}

// NewScanner binds a lifecycle to an assembler.
func NewScanner(lifecycle *Lifecycle, a *assembler.Assembler) *Scanner {
	return &Scanner{lifecycle: lifecycle, assembler: a}
}

// HandleCandidates ingests the candidates of one scan attempt. It returns one
// outcome per ingested candidate, or nil when the camera is not Ready.
func (s *Scanner) HandleCandidates(candidates []string) []assembler.Outcome {
	if !s.lifecycle.Ready() {
		s.gated.Add(int64(len(candidates)))
		return nil
	}
	outcomes := make([]assembler.Outcome, 0, len(candidates))
	for _, c := range candidates {
		outcomes = append(outcomes, s.assembler.Ingest(c))
	}
	return outcomes
}

// Gated returns how many candidates were dropped because the camera was not Ready.
func (s *Scanner) Gated() int64 {
	return s.gated.Load()
}

// Lifecycle returns the camera lifecycle.
func (s *Scanner) Lifecycle() *Lifecycle {
	return s.lifecycle
}

// Assembler returns the assembler.
func (s *Scanner) Assembler() *assembler.Assembler {
	return s.assembler
}
