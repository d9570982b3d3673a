package xcsf

import (
	"fmt"

	"github.com/nguyensu/xcsf/internal/telemetry"
)

// Snapshot builds the telemetry payload for the current population
// state. verbose also includes every macro-classifier's summary.
func (e *Engine) Snapshot(verbose bool) telemetry.Snapshot {
	snap := telemetry.Snapshot{
		Time:        e.time,
		MacroCount:  len(e.Pop.Cls),
		Numerosity:  e.Pop.NumSum(),
		MeanFitness: e.Pop.MeanFitness(),
	}
	if verbose {
		snap.Classifiers = make([]telemetry.ClassifierView, len(e.Pop.Cls))
		for i, c := range e.Pop.Cls {
			snap.Classifiers[i] = telemetry.ClassifierView{
				Condition: fmt.Sprintf("%T", c.Condition),
				Action:    fmt.Sprintf("%T", c.Action),
				Err:       c.Err,
				Fit:       c.Fit,
				Num:       c.Num,
				Exp:       c.Exp,
			}
		}
	}
	return snap
}

// Serve starts a telemetry server streaming this engine's population
// state; it blocks until the HTTP server exits.
func (e *Engine) Serve(addr string) error {
	return telemetry.NewServer(addr, func() telemetry.Snapshot { return e.Snapshot(true) }).Serve()
}
