package population

import (
	"sync"

	"github.com/nguyensu/xcsf/internal/atomicfloat"
	"github.com/nguyensu/xcsf/pkg/params"
)

// PA is the prediction array: a fitness-weighted mean of
// classifier predictions, indexed by action and output dimension.
type PA struct {
	NActions   int
	YDim       int
	Values     []float64 // NActions*YDim, normalized
	Present    []bool    // NActions
	BestAction int
	BestPayoff float64
}

func (pa *PA) at(a, v int) int { return a*pa.YDim + v }

// Vector returns action a's predicted output vector; in supervised mode
// (n_actions=1) this is simply the predicted y-vector.
func (pa *PA) Vector(a int) []float64 {
	out := make([]float64, pa.YDim)
	copy(out, pa.Values[pa.at(a, 0):pa.at(a, 0)+pa.YDim])
	return out
}

func (pa *PA) Mean(a int) float64 {
	if !pa.Present[a] {
		return 0
	}
	sum := 0.0
	for v := 0; v < pa.YDim; v++ {
		sum += pa.Values[pa.at(a, v)]
	}
	return sum / float64(pa.YDim)
}

// BuildPA aggregates every c ∈ m's prediction into pa, weighted by
// fitness, then normalizes and caches the best action. The
// per-action, per-dim accumulation is the "prediction-array build"
// parallel kernel: all workers add into shared lock-free atomicfloat
// cells, since two classifiers sharing an action legitimately race to
// add into the same cell.
func BuildPA(pop *Population, p *params.Params, m *Set, x []float64) *PA {
	numer := atomicfloat.NewBuffer(p.NActions * p.YDim)
	denom := atomicfloat.NewBuffer(p.NActions)

	accumulate := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			c := pop.Cls[m.Indices[i]]
			a := c.Action.Act(x)
			pred := c.Prediction.Compute(x)
			for v, val := range pred {
				numer.Add(a*p.YDim+v, val*c.Fit)
			}
			denom.Add(a, c.Fit)
		}
	}

	n := len(m.Indices)
	if !p.Parallel || n < p.NumWorkers*2 {
		accumulate(0, n)
	} else {
		workers := p.NumWorkers
		chunk := (n + workers - 1) / workers
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			lo := w * chunk
			hi := lo + chunk
			if lo >= n {
				break
			}
			if hi > n {
				hi = n
			}
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				accumulate(lo, hi)
			}(lo, hi)
		}
		wg.Wait()
	}

	pa := &PA{NActions: p.NActions, YDim: p.YDim, Values: make([]float64, p.NActions*p.YDim), Present: make([]bool, p.NActions)}
	for a := 0; a < p.NActions; a++ {
		nr := denom.Load(a)
		if nr <= 0 {
			continue
		}
		pa.Present[a] = true
		for v := 0; v < p.YDim; v++ {
			pa.Values[pa.at(a, v)] = numer.Load(a*p.YDim+v) / nr
		}
	}

	pa.BestAction = -1
	for a := 0; a < p.NActions; a++ {
		if !pa.Present[a] {
			continue
		}
		mean := pa.Mean(a)
		if pa.BestAction == -1 || mean > pa.BestPayoff {
			pa.BestAction = a
			pa.BestPayoff = mean
		}
	}
	return pa
}
