package action

import (
	"io"

	"github.com/nguyensu/xcsf/internal/neural"
	"github.com/nguyensu/xcsf/pkg/params"
)

// Neural is a network with n_actions outputs; the chosen action is the
// argmax output.
type Neural struct {
	Net *neural.Network
}

func newNeuralCover(p *params.Params, x []float64, allowed []int, rng *params.RNG) *Neural {
	n := &Neural{Net: neural.NewNetwork([]int{len(x), p.NeuralHiddenUnits, p.NActions}, neural.Sigmoid, rng)}
	out := n.Net.Forward(x)
	chosen := allowed[rng.Intn(len(allowed))]
	maxOther := out[chosen]
	for i, v := range out {
		if i != chosen && v > maxOther {
			maxOther = v
		}
	}
	last := n.Net.Layers[len(n.Net.Layers)-1]
	last.Biases[chosen] += maxOther - out[chosen] + 1
	return n
}

func (a *Neural) Kind() params.ActionKind { return params.ActNeuralKind }

func (a *Neural) Act(x []float64) int {
	out := a.Net.Forward(x)
	best := 0
	for i, v := range out {
		if v > out[best] {
			best = i
		}
	}
	return best
}

func (a *Neural) Crossover(other Action, rng *params.RNG) bool {
	o, ok := other.(*Neural)
	if !ok || len(a.Net.Layers) != len(o.Net.Layers) {
		return false
	}
	changed := false
	for li := range a.Net.Layers {
		la, lb := a.Net.Layers[li], o.Net.Layers[li]
		for i := range la.Weights {
			if rng.Bool(0.5) {
				la.Weights[i], lb.Weights[i] = lb.Weights[i], la.Weights[i]
				changed = true
			}
		}
	}
	return changed
}

func (a *Neural) Mutate(rng *params.RNG, p *params.Params) bool {
	return a.Net.Mutate(p.PMutation, p.MutationSigma, rng)
}

func (a *Neural) Copy() Action { return &Neural{Net: a.Net.Copy()} }

func (a *Neural) Save(w io.Writer) error {
	if err := writeTag(w, params.ActNeuralKind); err != nil {
		return err
	}
	return a.Net.Save(w)
}

func loadNeuralAction(r io.Reader) (Action, error) {
	net, err := neural.Load(r)
	if err != nil {
		return nil, err
	}
	return &Neural{Net: net}, nil
}
