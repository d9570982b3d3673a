package xcsf

import (
	"github.com/nguyensu/xcsf/internal/xcsferr"
	"github.com/nguyensu/xcsf/pkg/population"
)

// Step runs a reinforcement trial's first half on state: match, build
// the prediction array, choose an action (argmax when exploiting,
// uniform over populated actions when exploring), and form the action
// set. It returns the chosen action; call Update with the resulting
// reward to complete the trial.
func (e *Engine) Step(state []float64) (int, error) {
	if err := e.checkDims(state, nil); err != nil {
		return 0, err
	}
	e.k.Clear()
	e.Pop.Time = e.time
	e.m = population.Match(e.Pop, state, true, e.k)
	pa := population.BuildPA(e.Pop, e.Params, e.m, state)

	var act int
	if e.Params.Explore {
		act = e.uniformPopulatedAction(pa)
	} else {
		act = pa.BestAction
	}
	if act < 0 {
		return 0, xcsferr.New(xcsferr.Invariant, "no populated action after covering", nil)
	}

	e.a = population.ActionSet(e.Pop, e.m, state, act)
	e.lastState = state
	e.lastAction = act
	return act, nil
}

func (e *Engine) uniformPopulatedAction(pa *population.PA) int {
	populated := make([]int, 0, pa.NActions)
	for act := 0; act < pa.NActions; act++ {
		if pa.Present[act] {
			populated = append(populated, act)
		}
	}
	if len(populated) == 0 {
		return -1
	}
	return populated[e.RNG.Intn(len(populated))]
}

// Update completes the reinforcement trial: bootstraps the payoff from
// s′'s prediction array unless done, updates the action set, runs the
// EA, and sweeps kills.
func (e *Engine) Update(reward float64, done bool, nextState []float64) error {
	target := reward
	if !done {
		if err := e.checkDims(nextState, nil); err != nil {
			return err
		}
		e.mNext = population.Match(e.Pop, nextState, true, e.k)
		paNext := population.BuildPA(e.Pop, e.Params, e.mNext, nextState)
		target = reward + e.Params.Gamma*paNext.BestPayoff
	}

	y := []float64{target}
	if e.Params.YDim != 1 {
		// multi-dim RL payoff: broadcast the scalar target across every
		// output dimension rather than guessing a decomposition.
		y = make([]float64, e.Params.YDim)
		for i := range y {
			y[i] = target
		}
	}

	population.Update(e.Pop, e.a, e.lastState, y)
	e.time++
	if population.ShouldTrigger(e.Pop, e.a, e.time) {
		population.RunEA(e.Pop, e.a, e.time, e.k)
	}

	population.Validate(e.Pop, e.k)
	e.Pop.KillSweep(e.k)
	e.a.Clear()
	e.m.Clear()
	if e.mNext != nil {
		e.mNext.Clear()
		e.mNext = nil
	}
	return nil
}
