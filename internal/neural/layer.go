// Package neural implements a capability substrate: an ordered, owned
// sequence of layers (index-based, not a linked list) offering
// init/copy/free, forward, backward, update, mutate and resize. Only
// the "connected" layer variant's arithmetic is implemented in full;
// the remaining named variants (convolutional, pooling, up-sample,
// dropout, noise, recurrent, LSTM, softmax) exist only as Kind names —
// see DESIGN.md.
package neural

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/nguyensu/xcsf/pkg/params"
	"gonum.org/v1/gonum/floats"
)

// Kind names a layer variant; only Connected has concrete arithmetic.
type Kind byte

const (
	Connected Kind = iota
	Convolutional
	MaxPool
	AvgPool
	UpSample
	Dropout
	Noise
	Recurrent
	LSTM
	Softmax
)

// Activation is a differentiable elementwise nonlinearity.
type Activation byte

const (
	Sigmoid Activation = iota
	Tanh
	Linear
)

func apply(a Activation, x float64) float64 {
	switch a {
	case Sigmoid:
		return 1.0 / (1.0 + math.Exp(-x))
	case Tanh:
		return math.Tanh(x)
	default:
		return x
	}
}

func derivative(a Activation, out float64) float64 {
	switch a {
	case Sigmoid:
		return out * (1 - out)
	case Tanh:
		return 1 - out*out
	default:
		return 1
	}
}

// ConnectedLayer is a fully-connected layer: out = act(W·in + b).
type ConnectedLayer struct {
	Kind       Kind
	Act        Activation
	InN, OutN  int
	Weights    []float64 // row-major, OutN x InN
	Biases     []float64
	lastInput  []float64
	lastOutput []float64
}

// NewConnected builds a connected layer with small random weights.
func NewConnected(inN, outN int, act Activation, rng *params.RNG) *ConnectedLayer {
	l := &ConnectedLayer{
		Kind:    Connected,
		Act:     act,
		InN:     inN,
		OutN:    outN,
		Weights: make([]float64, inN*outN),
		Biases:  make([]float64, outN),
	}
	for i := range l.Weights {
		l.Weights[i] = rng.Uniform(-0.1, 0.1)
	}
	return l
}

// Forward computes the layer's output and caches input/output for Backward.
func (l *ConnectedLayer) Forward(in []float64) []float64 {
	out := make([]float64, l.OutN)
	for o := 0; o < l.OutN; o++ {
		sum := l.Biases[o]
		row := l.Weights[o*l.InN : (o+1)*l.InN]
		sum += floats.Dot(row, in)
		out[o] = apply(l.Act, sum)
	}
	l.lastInput = append([]float64(nil), in...)
	l.lastOutput = out
	return out
}

// Backward propagates the error signal outGrad (target − output, i.e.
// −dL/dOut) to the matching signal inGrad for the layer's input, and
// moves the weights and biases along it by lr in place.
func (l *ConnectedLayer) Backward(outGrad []float64, lr float64) (inGrad []float64) {
	inGrad = make([]float64, l.InN)
	for o := 0; o < l.OutN; o++ {
		delta := outGrad[o] * derivative(l.Act, l.lastOutput[o])
		row := l.Weights[o*l.InN : (o+1)*l.InN]
		for i := 0; i < l.InN; i++ {
			inGrad[i] += delta * row[i]
			row[i] += lr * delta * l.lastInput[i]
		}
		l.Biases[o] += lr * delta
	}
	return inGrad
}

// Copy returns an independent deep copy.
func (l *ConnectedLayer) Copy() *ConnectedLayer {
	cp := &ConnectedLayer{
		Kind: l.Kind, Act: l.Act, InN: l.InN, OutN: l.OutN,
		Weights: append([]float64(nil), l.Weights...),
		Biases:  append([]float64(nil), l.Biases...),
	}
	return cp
}

// Mutate perturbs every weight/bias with probability p by Gaussian noise
// of stddev sigma. Returns whether anything changed.
func (l *ConnectedLayer) Mutate(p, sigma float64, rng *params.RNG) bool {
	changed := false
	for i := range l.Weights {
		if rng.Bool(p) {
			l.Weights[i] += rng.NormFloat64() * sigma
			changed = true
		}
	}
	for i := range l.Biases {
		if rng.Bool(p) {
			l.Biases[i] += rng.NormFloat64() * sigma
			changed = true
		}
	}
	return changed
}

// Resize grows or shrinks OutN. Mutation-driven resizes iterate by
// index and read the previous element's output width directly; no
// back-pointers are needed. Existing weights/biases are preserved; new
// units are randomly initialised.
func (l *ConnectedLayer) Resize(newOutN int, rng *params.RNG) {
	if newOutN == l.OutN {
		return
	}
	newWeights := make([]float64, newOutN*l.InN)
	newBiases := make([]float64, newOutN)
	copyN := newOutN
	if l.OutN < copyN {
		copyN = l.OutN
	}
	copy(newWeights, l.Weights[:copyN*l.InN])
	copy(newBiases, l.Biases[:copyN])
	for o := copyN; o < newOutN; o++ {
		for i := 0; i < l.InN; i++ {
			newWeights[o*l.InN+i] = rng.Uniform(-0.1, 0.1)
		}
	}
	l.Weights = newWeights
	l.Biases = newBiases
	l.OutN = newOutN
}

// ResizeInput adjusts InN when an upstream layer's OutN changed, zero
// padding or truncating each row.
func (l *ConnectedLayer) ResizeInput(newInN int) {
	if newInN == l.InN {
		return
	}
	newWeights := make([]float64, l.OutN*newInN)
	copyN := newInN
	if l.InN < copyN {
		copyN = l.InN
	}
	for o := 0; o < l.OutN; o++ {
		copy(newWeights[o*newInN:o*newInN+copyN], l.Weights[o*l.InN:o*l.InN+copyN])
	}
	l.Weights = newWeights
	l.InN = newInN
}

// Save/Load implement a self-describing binary payload: a kind tag
// followed by the layer's own serialized fields.
func (l *ConnectedLayer) Save(w io.Writer) error {
	hdr := []uint32{uint32(l.Kind), uint32(l.Act), uint32(l.InN), uint32(l.OutN)}
	for _, v := range hdr {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, l.Weights); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, l.Biases)
}

func LoadConnected(r io.Reader) (*ConnectedLayer, error) {
	var kind, act, inN, outN uint32
	for _, dst := range []*uint32{&kind, &act, &inN, &outN} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, fmt.Errorf("neural: read layer header: %w", err)
		}
	}
	l := &ConnectedLayer{Kind: Kind(kind), Act: Activation(act), InN: int(inN), OutN: int(outN)}
	l.Weights = make([]float64, int(inN)*int(outN))
	l.Biases = make([]float64, int(outN))
	if err := binary.Read(r, binary.LittleEndian, l.Weights); err != nil {
		return nil, fmt.Errorf("neural: read layer weights: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, l.Biases); err != nil {
		return nil, fmt.Errorf("neural: read layer biases: %w", err)
	}
	return l, nil
}
