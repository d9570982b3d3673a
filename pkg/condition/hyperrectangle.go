package condition

import (
	"io"

	"github.com/nguyensu/xcsf/pkg/params"
)

// Hyperrectangle is an axis-aligned box, centre ± spread per dimension.
type Hyperrectangle struct {
	Centre []float64
	Spread []float64
}

func (h *Hyperrectangle) Kind() params.ConditionKind { return params.CondHyperrectangle }

// Cover initialises the box to straddle x with a random spread no
// smaller than the configured minimum, so the freshly-covered condition
// always matches the triggering input.
func (h *Hyperrectangle) Cover(p *params.Params, x []float64, rng *params.RNG) {
	h.Centre = append([]float64(nil), x...)
	h.Spread = make([]float64, len(x))
	for i := range h.Spread {
		h.Spread[i] = rng.Float64()*0.5 + 0.1
		if h.Spread[i] < p.ConditionSpreadMin {
			h.Spread[i] = p.ConditionSpreadMin
		}
	}
}

func (h *Hyperrectangle) Match(x []float64) bool {
	for i, v := range x {
		if v < h.Centre[i]-h.Spread[i] || v > h.Centre[i]+h.Spread[i] {
			return false
		}
	}
	return true
}

func (h *Hyperrectangle) Crossover(other Condition, rng *params.RNG) bool {
	o, ok := other.(*Hyperrectangle)
	if !ok {
		return false
	}
	changed := false
	for i := range h.Centre {
		if rng.Bool(0.5) {
			h.Centre[i], o.Centre[i] = o.Centre[i], h.Centre[i]
			h.Spread[i], o.Spread[i] = o.Spread[i], h.Spread[i]
			changed = true
		}
	}
	return changed
}

func (h *Hyperrectangle) Mutate(rng *params.RNG, p *params.Params) bool {
	changed := false
	for i := range h.Centre {
		if rng.Bool(p.PMutation) {
			h.Centre[i] += rng.NormFloat64() * p.MutationSigma
			changed = true
		}
		if rng.Bool(p.PMutation) {
			h.Spread[i] += rng.NormFloat64() * p.MutationSigma
			if h.Spread[i] < p.ConditionSpreadMin {
				h.Spread[i] = p.ConditionSpreadMin
			}
			changed = true
		}
	}
	return changed
}

// General reports whether h's box contains other's box entirely,
// checked by random sampling in tests.
func (h *Hyperrectangle) General(other Condition) bool {
	o, ok := other.(*Hyperrectangle)
	if !ok {
		return false
	}
	atLeastOneStrict := false
	for i := range h.Centre {
		hLo, hHi := h.Centre[i]-h.Spread[i], h.Centre[i]+h.Spread[i]
		oLo, oHi := o.Centre[i]-o.Spread[i], o.Centre[i]+o.Spread[i]
		if oLo < hLo || oHi > hHi {
			return false
		}
		if hLo < oLo || hHi > oHi {
			atLeastOneStrict = true
		}
	}
	return atLeastOneStrict
}

func (h *Hyperrectangle) Copy() Condition {
	return &Hyperrectangle{
		Centre: append([]float64(nil), h.Centre...),
		Spread: append([]float64(nil), h.Spread...),
	}
}

func (h *Hyperrectangle) Save(w io.Writer) error {
	if err := writeTag(w, params.CondHyperrectangle); err != nil {
		return err
	}
	if err := writeFloats(w, h.Centre); err != nil {
		return err
	}
	return writeFloats(w, h.Spread)
}

func loadHyperrectangle(r io.Reader) (Condition, error) {
	centre, err := readFloats(r)
	if err != nil {
		return nil, err
	}
	spread, err := readFloats(r)
	if err != nil {
		return nil, err
	}
	return &Hyperrectangle{Centre: centre, Spread: spread}, nil
}
