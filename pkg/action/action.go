// Package action implements the discrete action-selection substrate,
// using the same tagged-variant interface style as pkg/condition.
package action

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nguyensu/xcsf/pkg/params"
)

// Action is the discrete action-selection substrate's capability contract.
type Action interface {
	Kind() params.ActionKind
	// Act returns the discrete action index in [0, n_actions) for x.
	Act(x []float64) int
	Crossover(other Action, rng *params.RNG) bool
	Mutate(rng *params.RNG, p *params.Params) bool
	Copy() Action
	Save(w io.Writer) error
}

// Cover builds a freshly-covering action restricted to one of allowed.
func Cover(p *params.Params, x []float64, allowed []int, rng *params.RNG) Action {
	switch p.ActionKind {
	case params.ActNeuralKind:
		return newNeuralCover(p, x, allowed, rng)
	default:
		return newIntegerCover(allowed, rng)
	}
}

func Load(r io.Reader) (Action, error) {
	var tag byte
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return nil, fmt.Errorf("action: read tag: %w", err)
	}
	switch params.ActionKind(tag) {
	case params.ActIntegerKind:
		return loadInteger(r)
	case params.ActNeuralKind:
		return loadNeuralAction(r)
	default:
		return nil, fmt.Errorf("action: unknown tag %d", tag)
	}
}

func writeTag(w io.Writer, k params.ActionKind) error {
	return binary.Write(w, binary.LittleEndian, byte(k))
}
