package prediction

import (
	"io"

	"github.com/nguyensu/xcsf/internal/neural"
	"github.com/nguyensu/xcsf/pkg/params"
)

// Neural is a multi-layer network; forward on Compute, one backprop step
// on Update.
type Neural struct {
	Net *neural.Network
	LR  float64
}

func newNeuralPrediction(p *params.Params, rng *params.RNG) *Neural {
	net := neural.NewNetwork([]int{p.XDim, p.NeuralHiddenUnits, p.YDim}, neural.Sigmoid, rng)
	return &Neural{Net: net, LR: p.NeuralLearnRate}
}

func (n *Neural) Kind() params.PredictionKind { return params.PredNeural }
func (n *Neural) Compute(x []float64) []float64 { return n.Net.Forward(x) }

func (n *Neural) Update(x, yTrue []float64) float64 {
	yHat := n.Net.Forward(x)
	grad := make([]float64, len(yTrue))
	for i := range grad {
		// gradient of squared-error loss wrt output, in the direction the
		// weight-update step should move.
		grad[i] = yTrue[i] - yHat[i]
	}
	n.Net.Update(grad, n.LR)
	return mse(yTrue, yHat)
}

func (n *Neural) Crossover(other Prediction, rng *params.RNG) bool {
	o, ok := other.(*Neural)
	if !ok || len(n.Net.Layers) != len(o.Net.Layers) {
		return false
	}
	changed := false
	for li := range n.Net.Layers {
		a, b := n.Net.Layers[li], o.Net.Layers[li]
		for i := range a.Weights {
			if rng.Bool(0.5) {
				a.Weights[i], b.Weights[i] = b.Weights[i], a.Weights[i]
				changed = true
			}
		}
	}
	return changed
}

func (n *Neural) Mutate(rng *params.RNG, p *params.Params) bool {
	return n.Net.Mutate(p.PMutation, p.MutationSigma, rng)
}

func (n *Neural) Copy() Prediction { return &Neural{Net: n.Net.Copy(), LR: n.LR} }

func (n *Neural) Save(w io.Writer) error {
	if err := writeTag(w, params.PredNeural); err != nil {
		return err
	}
	if err := writeFloat(w, n.LR); err != nil {
		return err
	}
	return n.Net.Save(w)
}

func loadNeuralPrediction(r io.Reader) (Prediction, error) {
	lr, err := readFloat(r)
	if err != nil {
		return nil, err
	}
	net, err := neural.Load(r)
	if err != nil {
		return nil, err
	}
	return &Neural{Net: net, LR: lr}, nil
}
