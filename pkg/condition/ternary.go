package condition

import (
	"encoding/binary"
	"io"

	"github.com/nguyensu/xcsf/pkg/params"
)

const dontCare = 2 // ternary symbol '#'

// Ternary is a fixed-length string over {0,1,#}, Bits symbols per input
// dimension, formed by a fixed-point binary discretisation of each x_i
// assumed to lie in [0,1].
type Ternary struct {
	Bits   int
	String []byte // len = len(x)*Bits, values in {0,1,2}
}

func (t *Ternary) Kind() params.ConditionKind { return params.CondTernary }

func discretize(v float64, bits int) []byte {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	out := make([]byte, bits)
	scaled := v
	for i := 0; i < bits; i++ {
		scaled *= 2
		bit := byte(0)
		if scaled >= 1 {
			bit = 1
			scaled -= 1
		}
		out[i] = bit
	}
	return out
}

// Cover sets every bit to the exact discretisation of x, then relaxes
// each position to '#' independently with probability HASH_HASH so the
// covered condition starts with some generality.
func (t *Ternary) Cover(p *params.Params, x []float64, rng *params.RNG) {
	if t.Bits == 0 {
		t.Bits = 1
	}
	t.String = make([]byte, 0, len(x)*t.Bits)
	for _, v := range x {
		t.String = append(t.String, discretize(v, t.Bits)...)
	}
	t.relax(rng, p.HashHash)
}

func (t *Ternary) relax(rng *params.RNG, pHash float64) {
	for i := range t.String {
		if rng.Bool(pHash) {
			t.String[i] = dontCare
		}
	}
}

func (t *Ternary) Match(x []float64) bool {
	pos := 0
	for _, v := range x {
		bits := discretize(v, t.Bits)
		for _, b := range bits {
			if t.String[pos] != dontCare && t.String[pos] != b {
				return false
			}
			pos++
		}
	}
	return true
}

func (t *Ternary) Crossover(other Condition, rng *params.RNG) bool {
	o, ok := other.(*Ternary)
	if !ok {
		return false
	}
	changed := false
	for i := range t.String {
		if rng.Bool(0.5) {
			t.String[i], o.String[i] = o.String[i], t.String[i]
			changed = true
		}
	}
	return changed
}

func (t *Ternary) Mutate(rng *params.RNG, p *params.Params) bool {
	changed := false
	for i := range t.String {
		if rng.Bool(p.PMutation) {
			if rng.Bool(p.HashHash) {
				t.String[i] = dontCare
			} else {
				t.String[i] = byte(rng.Intn(2))
			}
			changed = true
		}
	}
	return changed
}

// General reports self strictly more general: every fixed position of
// self agrees with other's, and self has at least one more '#'.
func (t *Ternary) General(other Condition) bool {
	o, ok := other.(*Ternary)
	if !ok || len(t.String) != len(o.String) {
		return false
	}
	moreGeneral := false
	for i := range t.String {
		if t.String[i] == dontCare {
			if o.String[i] != dontCare {
				moreGeneral = true
			}
			continue
		}
		if o.String[i] != t.String[i] {
			return false
		}
	}
	return moreGeneral
}

func (t *Ternary) Copy() Condition {
	return &Ternary{Bits: t.Bits, String: append([]byte(nil), t.String...)}
}

func (t *Ternary) Save(w io.Writer) error {
	if err := writeTag(w, params.CondTernary); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(t.Bits)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(t.String))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, t.String)
}

func loadTernary(r io.Reader) (Condition, error) {
	var bits, n uint32
	if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	s := make([]byte, n)
	if err := binary.Read(r, binary.LittleEndian, s); err != nil {
		return nil, err
	}
	return &Ternary{Bits: int(bits), String: s}, nil
}
