package newsletter

import (
	"errors"
	"fmt"

	"github.com/goncharom/yomu/app/content"
)

// ErrDeliveryFailed marks a cycle aborted during delivery: no source is
// committed and the whole batch is retried on the next fire.
var ErrDeliveryFailed = errors.New("newsletter delivery failed")

// Phase is the coordinator's position in the cycle state machine.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseCollecting Phase = "collecting"
	PhaseFiltering  Phase = "filtering"
	PhaseDelivering Phase = "delivering"
	PhaseCommitting Phase = "committing"
	PhaseFailed     Phase = "failed"
)

// transitions lists the legal moves of the cycle state machine. Failed is
// reachable from every non-idle phase; a new cycle may start from Idle or
// from a previous cycle's Failed.
var transitions = map[Phase][]Phase{
	PhaseIdle:       {PhaseCollecting},
	PhaseCollecting: {PhaseFiltering, PhaseFailed},
	PhaseFiltering:  {PhaseDelivering, PhaseFailed},
	PhaseDelivering: {PhaseCommitting, PhaseFailed},
	PhaseCommitting: {PhaseIdle, PhaseFailed},
	PhaseFailed:     {PhaseCollecting},
}

// transition validates a state machine move.
func transition(from, to Phase) (Phase, error) {
	for _, allowed := range transitions[from] {
		if to == allowed {
			return to, nil
		}
	}
	return from, fmt.Errorf("invalid cycle transition %s -> %s", from, to)
}

// SourceBatch is one source's new items for a delivered cycle, in the order
// the fetch returned them.
type SourceBatch struct {
	SourceKey string
	Items     []content.Item
}
