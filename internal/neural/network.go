package neural

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nguyensu/xcsf/pkg/params"
)

// Network is an owned, ordered sequence of connected layers. Index-based
// traversal replaces the source's doubly-linked list: layer i
// reads layer i-1's OutN as its InN, so growing or shrinking a layer only
// ever touches its immediate neighbour, never a back-pointer.
type Network struct {
	Layers []*ConnectedLayer
}

// NewNetwork builds a network with the given unit counts, e.g.
// {xdim, hidden, ydim} for a single hidden layer. The output layer is
// linear; hidden layers use act.
func NewNetwork(units []int, act Activation, rng *params.RNG) *Network {
	n := &Network{Layers: make([]*ConnectedLayer, 0, len(units)-1)}
	for i := 1; i < len(units); i++ {
		a := act
		if i == len(units)-1 {
			a = Linear
		}
		n.Layers = append(n.Layers, NewConnected(units[i-1], units[i], a, rng))
	}
	return n
}

func (n *Network) InputWidth() int {
	if len(n.Layers) == 0 {
		return 0
	}
	return n.Layers[0].InN
}

func (n *Network) OutputWidth() int {
	if len(n.Layers) == 0 {
		return 0
	}
	return n.Layers[len(n.Layers)-1].OutN
}

// Forward runs the full sequence and returns the final layer's output.
func (n *Network) Forward(in []float64) []float64 {
	out := in
	for _, l := range n.Layers {
		out = l.Forward(out)
	}
	return out
}

// Update runs one fused backward+weight-update step given the error
// signal at the output layer (target − output, i.e. the negative loss
// gradient), propagating it back through every preceding layer in
// reverse order.
func (n *Network) Update(outGrad []float64, lr float64) {
	grad := outGrad
	for i := len(n.Layers) - 1; i >= 0; i-- {
		grad = n.Layers[i].Backward(grad, lr)
	}
}

// Copy deep-copies the whole network, giving the classifier-level Copy
// operation an independent substrate instance.
func (n *Network) Copy() *Network {
	cp := &Network{Layers: make([]*ConnectedLayer, len(n.Layers))}
	for i, l := range n.Layers {
		cp.Layers[i] = l.Copy()
	}
	return cp
}

// Mutate perturbs every layer's weights and biases (see
// ConnectedLayer.Mutate) and reports whether anything changed. It does
// not change any layer's width.
func (n *Network) Mutate(p, sigma float64, rng *params.RNG) bool {
	changed := false
	for _, l := range n.Layers {
		if l.Mutate(p, sigma, rng) {
			changed = true
		}
	}
	return changed
}

// ResizeHidden resizes the output width of layer idx and fixes up layer
// idx+1's input width to match. idx must not be the last layer (the
// output width is fixed by y_dim / n_actions and never mutated).
func (n *Network) ResizeHidden(idx, newWidth int, rng *params.RNG) error {
	if idx < 0 || idx >= len(n.Layers)-1 {
		return fmt.Errorf("neural: cannot resize output layer %d", idx)
	}
	n.Layers[idx].Resize(newWidth, rng)
	n.Layers[idx+1].ResizeInput(newWidth)
	return nil
}

// Save writes layer count followed by each layer's self-describing
// payload.
func (n *Network) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(n.Layers))); err != nil {
		return err
	}
	for _, l := range n.Layers {
		if err := l.Save(w); err != nil {
			return err
		}
	}
	return nil
}

// Load reconstructs a network previously written by Save.
func Load(r io.Reader) (*Network, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("neural: read layer count: %w", err)
	}
	n := &Network{Layers: make([]*ConnectedLayer, count)}
	for i := range n.Layers {
		l, err := LoadConnected(r)
		if err != nil {
			return nil, err
		}
		n.Layers[i] = l
	}
	return n, nil
}
