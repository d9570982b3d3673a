package condition

import (
	"io"

	"github.com/nguyensu/xcsf/pkg/params"
)

// Ellipsoid matches by weighted L2 distance from a centre: Σ((x_i-c_i)/s_i)² ≤ 1.
type Ellipsoid struct {
	Centre []float64
	Spread []float64
}

func (e *Ellipsoid) Kind() params.ConditionKind { return params.CondEllipsoid }

func (e *Ellipsoid) Cover(p *params.Params, x []float64, rng *params.RNG) {
	e.Centre = append([]float64(nil), x...)
	e.Spread = make([]float64, len(x))
	for i := range e.Spread {
		e.Spread[i] = rng.Float64()*0.5 + 0.1
	}
}

func (e *Ellipsoid) Match(x []float64) bool {
	sum := 0.0
	for i, v := range x {
		d := (v - e.Centre[i]) / e.Spread[i]
		sum += d * d
	}
	return sum <= 1.0
}

func (e *Ellipsoid) Crossover(other Condition, rng *params.RNG) bool {
	o, ok := other.(*Ellipsoid)
	if !ok {
		return false
	}
	changed := false
	for i := range e.Centre {
		if rng.Bool(0.5) {
			e.Centre[i], o.Centre[i] = o.Centre[i], e.Centre[i]
			e.Spread[i], o.Spread[i] = o.Spread[i], e.Spread[i]
			changed = true
		}
	}
	return changed
}

func (e *Ellipsoid) Mutate(rng *params.RNG, p *params.Params) bool {
	changed := false
	for i := range e.Centre {
		if rng.Bool(p.PMutation) {
			e.Centre[i] += rng.NormFloat64() * p.MutationSigma
			changed = true
		}
		if rng.Bool(p.PMutation) {
			e.Spread[i] += rng.NormFloat64() * p.MutationSigma
			if e.Spread[i] < p.ConditionSpreadMin {
				e.Spread[i] = p.ConditionSpreadMin
			}
			changed = true
		}
	}
	return changed
}

// General approximates containment by comparing the bounding extents of
// each axis, since exact ellipsoid-in-ellipsoid containment has no closed
// form cheap enough for hot-path subsumption checks.
func (e *Ellipsoid) General(other Condition) bool {
	o, ok := other.(*Ellipsoid)
	if !ok {
		return false
	}
	atLeastOneStrict := false
	for i := range e.Centre {
		eLo, eHi := e.Centre[i]-e.Spread[i], e.Centre[i]+e.Spread[i]
		oLo, oHi := o.Centre[i]-o.Spread[i], o.Centre[i]+o.Spread[i]
		if oLo < eLo || oHi > eHi {
			return false
		}
		if eLo < oLo || eHi > oHi {
			atLeastOneStrict = true
		}
	}
	return atLeastOneStrict
}

func (e *Ellipsoid) Copy() Condition {
	return &Ellipsoid{
		Centre: append([]float64(nil), e.Centre...),
		Spread: append([]float64(nil), e.Spread...),
	}
}

func (e *Ellipsoid) Save(w io.Writer) error {
	if err := writeTag(w, params.CondEllipsoid); err != nil {
		return err
	}
	if err := writeFloats(w, e.Centre); err != nil {
		return err
	}
	return writeFloats(w, e.Spread)
}

func loadEllipsoid(r io.Reader) (Condition, error) {
	centre, err := readFloats(r)
	if err != nil {
		return nil, err
	}
	spread, err := readFloats(r)
	if err != nil {
		return nil, err
	}
	return &Ellipsoid{Centre: centre, Spread: spread}, nil
}
