package condition

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/nguyensu/xcsf/pkg/params"
)

// DGP is a small dynamical graph: each of NumNodes node values is a
// tanh-squashed linear combination of the input and every node's value
// from the previous iteration, relaxed for Iterations steps. Match iff
// the last node's final value exceeds zero.
type DGP struct {
	NumNodes   int
	Iterations int
	XDim       int
	Weights    [][]float64 // NumNodes x (XDim+NumNodes)
	Bias       []float64
}

func (d *DGP) Kind() params.ConditionKind { return params.CondDGP }

func newDGPWeights(numNodes, xdim int, rng *params.RNG) ([][]float64, []float64) {
	w := make([][]float64, numNodes)
	b := make([]float64, numNodes)
	for i := range w {
		w[i] = make([]float64, xdim+numNodes)
		for j := range w[i] {
			w[i][j] = rng.Uniform(-0.5, 0.5)
		}
		b[i] = rng.Uniform(-0.1, 0.1)
	}
	return w, b
}

func (d *DGP) Cover(p *params.Params, x []float64, rng *params.RNG) {
	d.NumNodes = 4
	d.Iterations = 3
	d.XDim = len(x)
	d.Weights, d.Bias = newDGPWeights(d.NumNodes, d.XDim, rng)
	if d.eval(x) <= 0 {
		d.Bias[d.NumNodes-1] += 1.0
	}
}

func (d *DGP) eval(x []float64) float64 {
	state := make([]float64, d.NumNodes)
	for it := 0; it < d.Iterations; it++ {
		next := make([]float64, d.NumNodes)
		for j := 0; j < d.NumNodes; j++ {
			sum := d.Bias[j]
			for i, v := range x {
				sum += d.Weights[j][i] * v
			}
			for i, v := range state {
				sum += d.Weights[j][d.XDim+i] * v
			}
			next[j] = math.Tanh(sum)
		}
		state = next
	}
	return state[d.NumNodes-1]
}

func (d *DGP) Match(x []float64) bool { return d.eval(x) > 0 }

func (d *DGP) Crossover(other Condition, rng *params.RNG) bool {
	o, ok := other.(*DGP)
	if !ok || d.NumNodes != o.NumNodes {
		return false
	}
	changed := false
	for j := 0; j < d.NumNodes; j++ {
		if rng.Bool(0.5) {
			d.Weights[j], o.Weights[j] = o.Weights[j], d.Weights[j]
			d.Bias[j], o.Bias[j] = o.Bias[j], d.Bias[j]
			changed = true
		}
	}
	return changed
}

func (d *DGP) Mutate(rng *params.RNG, p *params.Params) bool {
	changed := false
	for j := range d.Weights {
		for i := range d.Weights[j] {
			if rng.Bool(p.PMutation) {
				d.Weights[j][i] += rng.NormFloat64() * p.MutationSigma
				changed = true
			}
		}
		if rng.Bool(p.PMutation) {
			d.Bias[j] += rng.NormFloat64() * p.MutationSigma
			changed = true
		}
	}
	return changed
}

// General has no cheap closed form for a relaxed dynamical graph; always
// false, the conservative default also used by the Neural variant.
func (d *DGP) General(other Condition) bool { return false }

func (d *DGP) Copy() Condition {
	cp := &DGP{NumNodes: d.NumNodes, Iterations: d.Iterations, XDim: d.XDim}
	cp.Weights = make([][]float64, d.NumNodes)
	for i, row := range d.Weights {
		cp.Weights[i] = append([]float64(nil), row...)
	}
	cp.Bias = append([]float64(nil), d.Bias...)
	return cp
}

func (d *DGP) Save(w io.Writer) error {
	if err := writeTag(w, params.CondDGP); err != nil {
		return err
	}
	hdr := []uint32{uint32(d.NumNodes), uint32(d.Iterations), uint32(d.XDim)}
	for _, v := range hdr {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	for _, row := range d.Weights {
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	return binary.Write(w, binary.LittleEndian, d.Bias)
}

func loadDGP(r io.Reader) (Condition, error) {
	var numNodes, iterations, xdim uint32
	for _, dst := range []*uint32{&numNodes, &iterations, &xdim} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, err
		}
	}
	d := &DGP{NumNodes: int(numNodes), Iterations: int(iterations), XDim: int(xdim)}
	d.Weights = make([][]float64, numNodes)
	for i := range d.Weights {
		d.Weights[i] = make([]float64, int(xdim)+int(numNodes))
		if err := binary.Read(r, binary.LittleEndian, d.Weights[i]); err != nil {
			return nil, err
		}
	}
	d.Bias = make([]float64, numNodes)
	if err := binary.Read(r, binary.LittleEndian, d.Bias); err != nil {
		return nil, err
	}
	return d, nil
}
