// Package xcsf is the top-level engine handle. It wires the population, set algebra, prediction
// array and evolutionary algorithm into the supervised and
// reinforcement trial orchestrators and the library surface.
package xcsf

import (
	"fmt"

	"github.com/nguyensu/xcsf/internal/xcsferr"
	"github.com/nguyensu/xcsf/pkg/params"
	"github.com/nguyensu/xcsf/pkg/population"
)

// Engine is the library handle: `Xcsf::new(params) → handle`.
type Engine struct {
	Params *params.Params
	RNG    *params.RNG
	Pop    *population.Population

	m, a, k *population.Set
	mNext   *population.Set
	time    int

	lastState  []float64
	lastAction int
}

// New validates params and returns a fresh engine with an empty
// population, the library surface's `Xcsf::new`.
func New(p params.Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, xcsferr.New(xcsferr.Configuration, "invalid parameters", err)
	}
	pCopy := p
	e := &Engine{
		Params: &pCopy,
		RNG:    params.NewRNG(p.Seed),
		m:      &population.Set{},
		a:      &population.Set{},
		k:      &population.Set{},
	}
	e.Pop = population.New(e.Params, e.RNG)
	return e, nil
}

func (e *Engine) checkDims(x, y []float64) error {
	if len(x) != e.Params.XDim {
		return xcsferr.New(xcsferr.Runtime, fmt.Sprintf("input width %d, want %d", len(x), e.Params.XDim), nil)
	}
	if y != nil && len(y) != e.Params.YDim {
		return xcsferr.New(xcsferr.Runtime, fmt.Sprintf("target width %d, want %d", len(y), e.Params.YDim), nil)
	}
	return nil
}

// Time returns the logical trial counter.
func (e *Engine) Time() int { return e.time }
