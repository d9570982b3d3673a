package condition

import (
	"io"

	"github.com/nguyensu/xcsf/pkg/params"
)

// Dummy always matches; no genetics.
type Dummy struct{}

func (d *Dummy) Kind() params.ConditionKind           { return params.CondDummy }
func (d *Dummy) Cover(p *params.Params, x []float64, rng *params.RNG) {}
func (d *Dummy) Match(x []float64) bool               { return true }
func (d *Dummy) Crossover(Condition, *params.RNG) bool { return false }
func (d *Dummy) Mutate(*params.RNG, *params.Params) bool { return false }
func (d *Dummy) General(other Condition) bool {
	_, ok := other.(*Dummy)
	return false && ok // never strictly more general than an identical dummy
}
func (d *Dummy) Copy() Condition { return &Dummy{} }

func (d *Dummy) Save(w io.Writer) error { return writeTag(w, params.CondDummy) }

func loadDummy(r io.Reader) (Condition, error) { return &Dummy{}, nil }
