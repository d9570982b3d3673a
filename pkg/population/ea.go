package population

import (
	"github.com/nguyensu/xcsf/pkg/classifier"
	"github.com/nguyensu/xcsf/pkg/params"
)

// ShouldTrigger reports whether the EA fires on s at time t:
// (t − Σ(c.time·c.num)/S.num) > THETA_EA.
func ShouldTrigger(pop *Population, s *Set, t int) bool {
	setNum := s.Num(pop)
	if setNum == 0 {
		return false
	}
	weightedTime := 0.0
	for _, idx := range s.Indices {
		c := pop.Cls[idx]
		weightedTime += float64(c.Time) * float64(c.Num)
	}
	return float64(t)-weightedTime/float64(setNum) > pop.Params.ThetaEA
}

// RunEA runs one steady-state evolutionary-algorithm cycle on s:
// Lambda/2 rounds of parent selection, cloning, crossover, mutation, and
// insertion with subsumption, each round producing two offspring so the
// cycle emits Lambda classifiers in total. An odd Lambda is rounded
// down, with at least one round. Any resulting kill-set indices are
// appended to k.
func RunEA(pop *Population, s *Set, t int, k *Set) {
	p := pop.Params
	for _, idx := range s.Indices {
		pop.Cls[idx].Time = t
	}

	rounds := p.Lambda / 2
	if rounds < 1 {
		rounds = 1
	}
	for i := 0; i < rounds; i++ {
		p1 := selectParent(pop, s)
		p2 := selectParent(pop, s)

		o1 := p1.Copy(t)
		o2 := p2.Copy(t)

		if pop.RNG.Bool(p.PCrossover) {
			o1.Condition.Crossover(o2.Condition, pop.RNG)
			o1.Prediction.Crossover(o2.Prediction, pop.RNG)
			if p.ActionKind == params.ActNeuralKind {
				o1.Action.Crossover(o2.Action, pop.RNG)
			}
		}
		avgErr := (p1.Err + p2.Err) / 2
		avgFit := (p1.Fit + p2.Fit) / 2
		o1.Err, o2.Err = avgErr, avgErr
		o1.Fit, o2.Fit = avgFit, avgFit

		insertOffspring(pop, p1, mutateOffspring(pop, o1), k)
		insertOffspring(pop, p2, mutateOffspring(pop, o2), k)
	}
}

// mutateOffspring mutates every component of o and, if anything changed,
// resets its err/fit to a damped fraction of the parent average. It returns o for chaining.
func mutateOffspring(pop *Population, o *classifier.Cl) *classifier.Cl {
	p := pop.Params
	changed := o.Condition.Mutate(pop.RNG, p)
	changed = o.Action.Mutate(pop.RNG, p) || changed
	changed = o.Prediction.Mutate(pop.RNG, p) || changed
	if changed {
		o.Err *= 0.1
		o.Fit *= 0.1
		if o.Fit <= 0 {
			o.Fit = p.InitFitness * 0.1
		}
	}
	return o
}

// insertOffspring tries GA subsumption by the parent first, else a
// numerosity-bump merge into an identical existing classifier, else
// plain insertion, each followed by enforcing the population cap.
func insertOffspring(pop *Population, parent *classifier.Cl, o *classifier.Cl, k *Set) {
	p := pop.Params

	if p.DoGASubsumption && parent.Subsumes(p, o) {
		parent.Num++
		k.Indices = append(k.Indices, pop.EnforceCap()...)
		return
	}
	if idx, ok := pop.FindIdentical(o); ok {
		pop.Cls[idx].Num++
	} else {
		pop.Insert(o)
	}
	k.Indices = append(k.Indices, pop.EnforceCap()...)
}

func selectParent(pop *Population, s *Set) *classifier.Cl {
	if pop.Params.EASelectType == params.SelectTournament {
		return tournamentSelect(pop, s)
	}
	return rouletteSelect(pop, s)
}

func rouletteSelect(pop *Population, s *Set) *classifier.Cl {
	total := 0.0
	for _, idx := range s.Indices {
		total += pop.Cls[idx].Fit
	}
	if total <= 0 {
		return pop.Cls[s.Indices[pop.RNG.Intn(len(s.Indices))]]
	}
	draw := pop.RNG.Float64() * total
	acc := 0.0
	for _, idx := range s.Indices {
		acc += pop.Cls[idx].Fit
		if draw <= acc {
			return pop.Cls[idx]
		}
	}
	return pop.Cls[s.Indices[len(s.Indices)-1]]
}

// tournamentSelect samples ⌈EA_SELECT_SIZE·|S|⌉ (minimum 1) members with
// replacement and returns the highest-fitness one.
func tournamentSelect(pop *Population, s *Set) *classifier.Cl {
	size := int(pop.Params.EASelectSize*float64(len(s.Indices)) + 0.999999)
	if size < 1 {
		size = 1
	}
	var best *classifier.Cl
	for i := 0; i < size; i++ {
		idx := s.Indices[pop.RNG.Intn(len(s.Indices))]
		c := pop.Cls[idx]
		if best == nil || c.Fit > best.Fit {
			best = c
		}
	}
	return best
}
