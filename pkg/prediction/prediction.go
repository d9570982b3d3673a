// Package prediction implements the local-output substrate:
// compute(x), online update, crossover, mutate, copy, serialize. The RLS
// and NLMS variants use gonum/mat and gonum/floats for their numerical
// state instead of hand-rolled matrix code.
package prediction

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nguyensu/xcsf/pkg/params"
)

// Prediction is the local-output substrate's capability contract.
type Prediction interface {
	Kind() params.PredictionKind
	Compute(x []float64) []float64
	// Update performs one online step toward yTrue and returns the loss
	// (mean squared error across output dims) used by Cl.update.
	Update(x, yTrue []float64) float64
	Crossover(other Prediction, rng *params.RNG) bool
	Mutate(rng *params.RNG, p *params.Params) bool
	Copy() Prediction
	Save(w io.Writer) error
}

// New builds a freshly-initialised predictor of the configured kind.
func New(p *params.Params, rng *params.RNG) Prediction {
	switch p.PredictionKind {
	case params.PredNLMS:
		return newNLMS(p)
	case params.PredRLS:
		return newRLS(p)
	case params.PredNeural:
		return newNeuralPrediction(p, rng)
	default:
		return newConstant(p)
	}
}

func Load(r io.Reader) (Prediction, error) {
	var tag byte
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return nil, fmt.Errorf("prediction: read tag: %w", err)
	}
	switch params.PredictionKind(tag) {
	case params.PredConstant:
		return loadConstant(r)
	case params.PredNLMS:
		return loadNLMS(r)
	case params.PredRLS:
		return loadRLS(r)
	case params.PredNeural:
		return loadNeuralPrediction(r)
	default:
		return nil, fmt.Errorf("prediction: unknown tag %d", tag)
	}
}

func writeTag(w io.Writer, k params.PredictionKind) error {
	return binary.Write(w, binary.LittleEndian, byte(k))
}

func writeFloat(w io.Writer, v float64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readFloat(r io.Reader) (float64, error) {
	var v float64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func mse(yTrue, yHat []float64) float64 {
	sum := 0.0
	for i := range yTrue {
		d := yTrue[i] - yHat[i]
		sum += d * d
	}
	return sum / float64(len(yTrue))
}
