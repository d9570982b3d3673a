package condition

import (
	"io"
	"math"

	"github.com/nguyensu/xcsf/internal/neural"
	"github.com/nguyensu/xcsf/pkg/params"
)

// Neural is a small feed-forward network producing a single scalar;
// match iff σ(out) > 0.5.
type Neural struct {
	Net *neural.Network
}

func (n *Neural) Kind() params.ConditionKind { return params.CondNeural }

// Cover builds a network sized for x and nudges its output bias so the
// freshly-covered condition matches x, the same guarantee every other
// variant's Cover gives.
func (n *Neural) Cover(p *params.Params, x []float64, rng *params.RNG) {
	hidden := 4
	n.Net = neural.NewNetwork([]int{len(x), hidden, 1}, neural.Sigmoid, rng)
	out := n.Net.Forward(x)[0]
	if out <= 0 {
		last := n.Net.Layers[len(n.Net.Layers)-1]
		last.Biases[0] += (0.5 - out)
	}
}

func (n *Neural) score(x []float64) float64 {
	return 1.0 / (1.0 + math.Exp(-n.Net.Forward(x)[0]))
}

func (n *Neural) Match(x []float64) bool {
	return n.score(x) > 0.5
}

func (n *Neural) Crossover(other Condition, rng *params.RNG) bool {
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

// General has no cheap closed form for neural conditions; treat as never
// strictly more general so subsumption never fires between two neural
// conditions (a conservative, always-correct default).
func (n *Neural) General(other Condition) bool { return false }

func (n *Neural) Copy() Condition { return &Neural{Net: n.Net.Copy()} }

func (n *Neural) Save(w io.Writer) error {
	if err := writeTag(w, params.CondNeural); err != nil {
		return err
	}
	return n.Net.Save(w)
}

func loadNeural(r io.Reader) (Condition, error) {
	net, err := neural.Load(r)
	if err != nil {
		return nil, err
	}
	return &Neural{Net: net}, nil
}
