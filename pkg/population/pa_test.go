package population

import (
	"io"
	"testing"

	"github.com/nguyensu/xcsf/pkg/action"
	"github.com/nguyensu/xcsf/pkg/classifier"
	"github.com/nguyensu/xcsf/pkg/params"
	"github.com/nguyensu/xcsf/pkg/prediction"
)

func TestBuildPAOnlyMarksActionsActuallyPresent(t *testing.T) {
	p := testParams()
	pop := New(p, params.NewRNG(1))
	rng := params.NewRNG(2)

	c := classifier.Cover(p, rng, []float64{0.4, 0.4}, []int{1}, 0)
	c.Action = &action.Integer{Value: 1}
	c.Fit = 1.0
	idx := pop.Insert(c)
	m := &Set{Indices: []int{idx}}

	pa := BuildPA(pop, p, m, []float64{0.4, 0.4})
	for a := 0; a < p.NActions; a++ {
		want := a == 1
		if pa.Present[a] != want {
			t.Errorf("Present[%d] = %v, want %v", a, pa.Present[a], want)
		}
	}
	if pa.BestAction != 1 {
		t.Errorf("BestAction = %d, want 1", pa.BestAction)
	}
}

func TestBuildPAWeightsByFitness(t *testing.T) {
	p := testParams()
	p.YDim = 1
	pop := New(p, params.NewRNG(3))
	rng := params.NewRNG(4)
	x := []float64{0.5, 0.5}

	low := classifier.Cover(p, rng, x, []int{0}, 0)
	low.Action = &action.Integer{Value: 0}
	low.Prediction = constantPrediction{y: []float64{0.0}}
	low.Fit = 0.01

	high := classifier.Cover(p, rng, x, []int{0}, 0)
	high.Action = &action.Integer{Value: 0}
	high.Prediction = constantPrediction{y: []float64{10.0}}
	high.Fit = 10.0

	i1 := pop.Insert(low)
	i2 := pop.Insert(high)
	m := &Set{Indices: []int{i1, i2}}

	pa := BuildPA(pop, p, m, x)
	mean := pa.Mean(0)
	if mean < 5 {
		t.Errorf("fitness-weighted mean = %f, want closer to the high-fitness classifier's prediction (10.0)", mean)
	}
}

// constantPrediction is a minimal prediction.Prediction stand-in so the PA
// weighting test can fix each classifier's predicted output exactly.
type constantPrediction struct{ y []float64 }

func (c constantPrediction) Kind() params.PredictionKind       { return params.PredConstant }
func (c constantPrediction) Compute(x []float64) []float64     { return c.y }
func (c constantPrediction) Update(x, yTrue []float64) float64 { return 0 }
func (c constantPrediction) Crossover(other prediction.Prediction, rng *params.RNG) bool {
	return false
}
func (c constantPrediction) Mutate(rng *params.RNG, p *params.Params) bool { return false }
func (c constantPrediction) Copy() prediction.Prediction                  { return c }
func (c constantPrediction) Save(w io.Writer) error                      { return nil }
