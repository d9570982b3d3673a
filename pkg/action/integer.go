package action

import (
	"encoding/binary"
	"io"

	"github.com/nguyensu/xcsf/pkg/params"
)

// Integer is a constant action value in [0, n_actions).
type Integer struct {
	Value int
}

func newIntegerCover(allowed []int, rng *params.RNG) *Integer {
	return &Integer{Value: allowed[rng.Intn(len(allowed))]}
}

func (a *Integer) Kind() params.ActionKind { return params.ActIntegerKind }
func (a *Integer) Act(x []float64) int     { return a.Value }

// Crossover has no effect on integer actions.
func (a *Integer) Crossover(other Action, rng *params.RNG) bool { return false }

// Mutate replaces the value with a random distinct action with probability
// P_MUTATION.
func (a *Integer) Mutate(rng *params.RNG, p *params.Params) bool {
	if !rng.Bool(p.PMutation) || p.NActions <= 1 {
		return false
	}
	next := rng.Intn(p.NActions - 1)
	if next >= a.Value {
		next++
	}
	a.Value = next
	return true
}

func (a *Integer) Copy() Action { return &Integer{Value: a.Value} }

func (a *Integer) Save(w io.Writer) error {
	if err := writeTag(w, params.ActIntegerKind); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, uint32(a.Value))
}

func loadInteger(r io.Reader) (Action, error) {
	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return nil, err
	}
	return &Integer{Value: int(v)}, nil
}
