// Package workflow implements a minimal sequential stage runner. A pipeline
// is data: an ordered list of stages sharing one state type. There is no
// branching, no parallel fan-out and no retry here; conditional behavior is
// expressed inside a stage by what it writes into the state.
package workflow

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Stage is one step of a pipeline: a named function mutating the state.
// Stages may perform I/O and must honor ctx.
type Stage[S any] struct {
	Name string
	Run  func(ctx context.Context, state *S) error
}

// StageError reports which stage failed. The state as last observed is still
// returned by Run alongside it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Run executes stages strictly in order against state. Stage i+1 never
// begins before stage i completes. On the first failing stage the run stops
// and the state is returned as the failing stage left it.
//
// Run holds no state between invocations and is safe to call concurrently
// for distinct state values. A single state value must not be handed to two
// concurrent runs.
func Run[S any](ctx context.Context, log *zerolog.Logger, stages []Stage[S], state *S) (*S, error) {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return state, &StageError{Stage: st.Name, Err: err}
		}
		if log != nil {
			log.Debug().Str("stage", st.Name).Msg("stage start")
		}
		if err := st.Run(ctx, state); err != nil {
			if log != nil {
				log.Warn().Str("stage", st.Name).Err(err).Msg("stage failed")
			}
			return state, &StageError{Stage: st.Name, Err: err}
		}
		if log != nil {
			log.Debug().Str("stage", st.Name).Msg("stage done")
		}
	}
	return state, nil
}
