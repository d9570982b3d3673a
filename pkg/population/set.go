package population

import (
	"github.com/nguyensu/xcsf/pkg/classifier"
	"github.com/nguyensu/xcsf/pkg/params"
)

// Set is an ordered sequence of non-owning references into a Population
//. M, A and K are the three concrete sets the engine carries.
type Set struct {
	Indices []int
}

func (s *Set) Add(idx int) { s.Indices = append(s.Indices, idx) }
func (s *Set) Clear()      { s.Indices = nil }
func (s *Set) Size() int   { return len(s.Indices) }

// Num returns Σ num over the set's macro-classifiers.
func (s *Set) Num(pop *Population) int {
	sum := 0
	for _, idx := range s.Indices {
		sum += pop.Cls[idx].Num
	}
	return sum
}

func (s *Set) actionsPresent(pop *Population, x []float64) map[int]bool {
	present := make(map[int]bool)
	for _, idx := range s.Indices {
		present[pop.Cls[idx].Action.Act(x)] = true
	}
	return present
}

// Match populates M with every classifier whose condition matches x. In
// reinforcement mode (nActions > 0 is always true, but covering-to-full-
// coverage only applies when reinforcement is requested by the caller),
// it covers a classifier for each action missing from M, enforcing the
// population cap and recording any resulting kills into k after each
// insertion.
func Match(pop *Population, x []float64, reinforcement bool, k *Set) *Set {
	m := &Set{}
	matchScan(pop, x, m)

	if !reinforcement {
		if m.Size() == 0 {
			cover(pop, x, allActions(pop.Params.NActions), m, k)
		}
		return m
	}

	for {
		present := m.actionsPresent(pop, x)
		if len(present) >= pop.Params.NActions {
			break
		}
		missing := make([]int, 0, pop.Params.NActions)
		for a := 0; a < pop.Params.NActions; a++ {
			if !present[a] {
				missing = append(missing, a)
			}
		}
		cover(pop, x, missing, m, k)
	}
	return m
}

func allActions(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func cover(pop *Population, x []float64, allowed []int, m, k *Set) {
	c := classifier.Cover(pop.Params, pop.RNG, x, allowed, pop.Time)
	idx := pop.Insert(c)
	m.Add(idx)
	k.Indices = append(k.Indices, pop.EnforceCap()...)
}

// ActionSet filters m into the subset whose action for x equals a.
func ActionSet(pop *Population, m *Set, x []float64, a int) *Set {
	s := &Set{}
	for _, idx := range m.Indices {
		if pop.Cls[idx].Action.Act(x) == a {
			s.Add(idx)
		}
	}
	return s
}

// Update calls Cl.Update for every member, then recomputes fitness from
// relative accuracy, and performs set subsumption if enabled.
func Update(pop *Population, s *Set, x, y []float64) {
	setNum := s.Num(pop)
	accs := updateKernel(pop, s, x, y, setNum)

	kappaSum := 0.0
	for _, a := range accs {
		kappaSum += a
	}
	if kappaSum <= 0 {
		kappaSum = 1
	}
	for i, idx := range s.Indices {
		c := pop.Cls[idx]
		warmingUp := float64(c.Exp)*pop.Params.Beta < 1
		rate := params.BlendRate(c.Exp, pop.Params.Beta)
		target := accs[i] * float64(c.Num) / kappaSum
		if warmingUp {
			c.Fit = target
		} else {
			c.Fit += rate * (target - c.Fit)
		}
		if c.Fit <= 0 {
			c.Fit = 1e-9
		}
	}

	if pop.Params.DoSetSubsumption {
		setSubsumption(pop, s)
	}
}

// setSubsumption finds the most general subsumer in s and has it absorb
// every classifier it subsumes.
func setSubsumption(pop *Population, s *Set) {
	if len(s.Indices) == 0 {
		return
	}
	bestIdx := -1
	for _, idx := range s.Indices {
		c := pop.Cls[idx]
		if float64(c.Exp) < pop.Params.ThetaSub || c.Err >= pop.Params.Eps0 {
			continue
		}
		if bestIdx == -1 || moreGeneralCondition(pop.Cls[idx], pop.Cls[bestIdx]) {
			bestIdx = idx
		}
	}
	if bestIdx == -1 {
		return
	}
	best := pop.Cls[bestIdx]
	for _, idx := range s.Indices {
		if idx == bestIdx {
			continue
		}
		other := pop.Cls[idx]
		if best.Subsumes(pop.Params, other) {
			best.Num += other.Num
			other.Num = 0
		}
	}
}

func moreGeneralCondition(a, b *classifier.Cl) bool {
	return a.Condition.General(b.Condition)
}

// Validate drops every macro-classifier with num=0 from pop into k,
// an invariant that must hold after every trial.
func Validate(pop *Population, k *Set) {
	for i, c := range pop.Cls {
		if c.Num <= 0 {
			k.Add(i)
		}
	}
}
