// Package condition implements the polymorphic match-predicate
// substrate: tagged variants dispatched through a shared interface,
// with validated, RNG-driven in-place genetic operators.
package condition

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nguyensu/xcsf/pkg/params"
)

// Condition is the match-predicate substrate's capability contract:
// cover, match, crossover, mutate, general, copy, serialize.
type Condition interface {
	Kind() params.ConditionKind
	Cover(p *params.Params, x []float64, rng *params.RNG)
	Match(x []float64) bool
	// Crossover mutates self and other in place, returning whether
	// anything changed.
	Crossover(other Condition, rng *params.RNG) bool
	Mutate(rng *params.RNG, p *params.Params) bool
	// General reports whether self is strictly more general than other:
	// every x matched by other is matched by self, and self != other.
	General(other Condition) bool
	Copy() Condition
	Save(w io.Writer) error
}

// New builds a freshly-covering condition of the configured kind.
func New(p *params.Params, x []float64, rng *params.RNG) Condition {
	c := newZero(p)
	c.Cover(p, x, rng)
	return c
}

// newZero allocates the zero-value instance for a kind, ready for Cover
// or Load to populate.
func newZero(p *params.Params) Condition {
	switch p.ConditionKind {
	case params.CondEllipsoid:
		return &Ellipsoid{}
	case params.CondTernary:
		return &Ternary{Bits: p.TernaryBits}
	case params.CondNeural:
		return &Neural{}
	case params.CondDGP:
		return &DGP{}
	case params.CondGPTree:
		return &GPTree{}
	case params.CondDummy:
		return &Dummy{}
	default:
		return &Hyperrectangle{}
	}
}

// Load reads a tag byte and dispatches to the matching variant's
// loader, following the self-describing payload scheme.
func Load(r io.Reader) (Condition, error) {
	var tag byte
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return nil, fmt.Errorf("condition: read tag: %w", err)
	}
	switch params.ConditionKind(tag) {
	case params.CondHyperrectangle:
		return loadHyperrectangle(r)
	case params.CondEllipsoid:
		return loadEllipsoid(r)
	case params.CondTernary:
		return loadTernary(r)
	case params.CondNeural:
		return loadNeural(r)
	case params.CondDGP:
		return loadDGP(r)
	case params.CondGPTree:
		return loadGPTree(r)
	case params.CondDummy:
		return loadDummy(r)
	default:
		return nil, fmt.Errorf("condition: unknown tag %d", tag)
	}
}

func writeTag(w io.Writer, k params.ConditionKind) error {
	return binary.Write(w, binary.LittleEndian, byte(k))
}

func writeFloats(w io.Writer, xs []float64) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(xs))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, xs)
}

func readFloats(r io.Reader) ([]float64, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	xs := make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, xs); err != nil {
		return nil, err
	}
	return xs, nil
}
