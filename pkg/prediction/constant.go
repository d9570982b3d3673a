package prediction

import (
	"encoding/binary"
	"io"

	"github.com/nguyensu/xcsf/pkg/params"
)

// Constant tracks a running mean of y_true per output dimension, blended
// by the Widrow-Hoff warm-up schedule at the configured BETA,
// the same fixed blend rate Cl.err and Cl.size settle into once warmed up.
type Constant struct {
	Y    []float64
	Exp  int
	Beta float64
}

func newConstant(p *params.Params) *Constant {
	return &Constant{Y: make([]float64, p.YDim), Beta: p.Beta}
}

func (c *Constant) Kind() params.PredictionKind { return params.PredConstant }
func (c *Constant) Compute(x []float64) []float64 {
	return append([]float64(nil), c.Y...)
}

func (c *Constant) Update(x, yTrue []float64) float64 {
	yHat := c.Compute(x)
	c.Exp++
	rate := params.BlendRate(c.Exp, c.Beta)
	for i := range c.Y {
		c.Y[i] += rate * (yTrue[i] - c.Y[i])
	}
	return mse(yTrue, yHat)
}

func (c *Constant) Crossover(other Prediction, rng *params.RNG) bool {
	o, ok := other.(*Constant)
	if !ok {
		return false
	}
	changed := false
	for i := range c.Y {
		if rng.Bool(0.5) {
			c.Y[i], o.Y[i] = o.Y[i], c.Y[i]
			changed = true
		}
	}
	return changed
}

func (c *Constant) Mutate(rng *params.RNG, p *params.Params) bool {
	changed := false
	for i := range c.Y {
		if rng.Bool(p.PMutation) {
			c.Y[i] += rng.NormFloat64() * p.MutationSigma
			changed = true
		}
	}
	return changed
}

func (c *Constant) Copy() Prediction {
	return &Constant{Y: append([]float64(nil), c.Y...), Exp: c.Exp, Beta: c.Beta}
}

func (c *Constant) Save(w io.Writer) error {
	if err := writeTag(w, params.PredConstant); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(c.Exp)); err != nil {
		return err
	}
	if err := writeFloat(w, c.Beta); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(c.Y))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, c.Y)
}

func loadConstant(r io.Reader) (Prediction, error) {
	var exp, n uint32
	if err := binary.Read(r, binary.LittleEndian, &exp); err != nil {
		return nil, err
	}
	beta, err := readFloat(r)
	if err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	y := make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, y); err != nil {
		return nil, err
	}
	return &Constant{Y: y, Exp: int(exp), Beta: beta}, nil
}
