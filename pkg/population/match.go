package population

import (
	channerics "github.com/niceyeti/channerics/channels"
)

// matchScan fills m with every index whose condition matches x. When Parallel is enabled the population
// is partitioned across NumWorkers goroutines, each scanning its own
// slice into a private buffer; the per-worker buffers are fanned in
// with channerics.Merge and the driver appends them to m in whatever
// order they arrive — the sequential path is what gives deterministic
// ordering for tests.
func matchScan(pop *Population, x []float64, m *Set) {
	if !pop.Params.Parallel || len(pop.Cls) < pop.Params.NumWorkers*2 {
		matchScanSequential(pop, x, m)
		return
	}

	n := len(pop.Cls)
	workers := pop.Params.NumWorkers
	chunk := (n + workers - 1) / workers

	done := make(chan struct{})
	defer close(done)

	chans := make([]<-chan int, 0, workers)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if lo >= n {
			break
		}
		if hi > n {
			hi = n
		}
		chans = append(chans, matchWorker(done, pop, x, lo, hi))
	}

	for idx := range channerics.Merge(done, chans...) {
		m.Add(idx)
	}
}

func matchWorker(done <-chan struct{}, pop *Population, x []float64, lo, hi int) <-chan int {
	out := make(chan int)
	go func() {
		defer close(out)
		for i := lo; i < hi; i++ {
			if pop.Cls[i].Condition.Match(x) {
				select {
				case out <- i:
				case <-done:
					return
				}
			}
		}
	}()
	return out
}

func matchScanSequential(pop *Population, x []float64, m *Set) {
	for i, c := range pop.Cls {
		if c.Condition.Match(x) {
			m.Add(i)
		}
	}
}
