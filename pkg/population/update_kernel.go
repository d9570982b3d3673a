package population

import (
	"sync"

	"github.com/nguyensu/xcsf/internal/atomicfloat"
)

// updateKernel runs Cl.Update for every member of s and returns each
// member's post-update accuracy, the "set update" parallel kernel.
// Each worker only ever touches the classifiers in its own disjoint
// index range, so no mutex guards the classifier mutation itself;
// accuracies are written into one shared atomic buffer, one cell per
// member, even though, here, disjoint ownership already rules out
// contention — the buffer matches the shape the prediction-array
// kernel uses.
func updateKernel(pop *Population, s *Set, x, y []float64, setNum int) []float64 {
	n := len(s.Indices)
	accs := atomicfloat.NewBuffer(n)

	run := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			c := pop.Cls[s.Indices[i]]
			c.Update(pop.Params, x, y, setNum)
			accs.Add(i, c.Acc(pop.Params))
		}
	}

	if !pop.Params.Parallel || n < pop.Params.NumWorkers*2 {
		run(0, n)
	} else {
		workers := pop.Params.NumWorkers
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
				run(lo, hi)
			}(lo, hi)
		}
		wg.Wait()
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = accs.Load(i)
	}
	return out
}
