package prediction

import (
	"encoding/binary"
	"io"

	"github.com/nguyensu/xcsf/pkg/params"
	"gonum.org/v1/gonum/floats"
)

// NLMS is linear on (1, x) per output dim, updated by normalised LMS:
// w += η·(y_true-ŷ)·φ / (‖φ‖²+ε).
type NLMS struct {
	YDim    int
	XDim    int
	Weights [][]float64 // YDim rows, each length 1+XDim
	Eta     float64
	Eps     float64
}

func newNLMS(p *params.Params) *NLMS {
	n := &NLMS{YDim: p.YDim, XDim: p.XDim, Eta: p.NLMSEta, Eps: p.NLMSEps}
	n.Weights = make([][]float64, p.YDim)
	for i := range n.Weights {
		n.Weights[i] = make([]float64, 1+p.XDim)
	}
	return n
}

func phi(x []float64) []float64 {
	out := make([]float64, 1+len(x))
	out[0] = 1
	copy(out[1:], x)
	return out
}

func (n *NLMS) Kind() params.PredictionKind { return params.PredNLMS }

func (n *NLMS) Compute(x []float64) []float64 {
	p := phi(x)
	out := make([]float64, n.YDim)
	for d := range n.Weights {
		out[d] = floats.Dot(n.Weights[d], p)
	}
	return out
}

func (n *NLMS) Update(x, yTrue []float64) float64 {
	p := phi(x)
	yHat := n.Compute(x)
	denom := floats.Dot(p, p) + n.Eps
	for d := range n.Weights {
		err := yTrue[d] - yHat[d]
		scale := n.Eta * err / denom
		floats.AddScaled(n.Weights[d], scale, p)
	}
	return mse(yTrue, yHat)
}

func (n *NLMS) Crossover(other Prediction, rng *params.RNG) bool {
	o, ok := other.(*NLMS)
	if !ok {
		return false
	}
	changed := false
	for d := range n.Weights {
		for i := range n.Weights[d] {
			if rng.Bool(0.5) {
				n.Weights[d][i], o.Weights[d][i] = o.Weights[d][i], n.Weights[d][i]
				changed = true
			}
		}
	}
	return changed
}

func (n *NLMS) Mutate(rng *params.RNG, p *params.Params) bool {
	changed := false
	for d := range n.Weights {
		for i := range n.Weights[d] {
			if rng.Bool(p.PMutation) {
				n.Weights[d][i] += rng.NormFloat64() * p.MutationSigma
				changed = true
			}
		}
	}
	return changed
}

func (n *NLMS) Copy() Prediction {
	cp := &NLMS{YDim: n.YDim, XDim: n.XDim, Eta: n.Eta, Eps: n.Eps}
	cp.Weights = make([][]float64, len(n.Weights))
	for i, row := range n.Weights {
		cp.Weights[i] = append([]float64(nil), row...)
	}
	return cp
}

func (n *NLMS) Save(w io.Writer) error {
	if err := writeTag(w, params.PredNLMS); err != nil {
		return err
	}
	hdr := []uint32{uint32(n.YDim), uint32(n.XDim)}
	for _, v := range hdr {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, n.Eta); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, n.Eps); err != nil {
		return err
	}
	for _, row := range n.Weights {
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	return nil
}

func loadNLMS(r io.Reader) (Prediction, error) {
	var ydim, xdim uint32
	if err := binary.Read(r, binary.LittleEndian, &ydim); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &xdim); err != nil {
		return nil, err
	}
	n := &NLMS{YDim: int(ydim), XDim: int(xdim)}
	if err := binary.Read(r, binary.LittleEndian, &n.Eta); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n.Eps); err != nil {
		return nil, err
	}
	n.Weights = make([][]float64, ydim)
	for i := range n.Weights {
		n.Weights[i] = make([]float64, 1+int(xdim))
		if err := binary.Read(r, binary.LittleEndian, n.Weights[i]); err != nil {
			return nil, err
		}
	}
	return n, nil
}
