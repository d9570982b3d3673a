package xcsf

import (
	"github.com/nguyensu/xcsf/internal/xcsferr"
	"github.com/nguyensu/xcsf/pkg/population"
)

func mse(yTrue, yHat []float64) float64 {
	sum := 0.0
	for i := range yTrue {
		d := yTrue[i] - yHat[i]
		sum += d * d
	}
	if len(yTrue) == 0 {
		return 0
	}
	return sum / float64(len(yTrue))
}

// supervisedTrial runs one supervised trial on (x, y) and returns the
// trial's prediction loss.
func (e *Engine) supervisedTrial(x, y []float64, explore bool) float64 {
	e.k.Clear()
	e.Pop.Time = e.time
	e.m = population.Match(e.Pop, x, false, e.k)
	pa := population.BuildPA(e.Pop, e.Params, e.m, x)
	yHat := pa.Vector(0)
	loss := mse(y, yHat)

	if explore {
		population.Update(e.Pop, e.m, x, y)
		e.time++
		if population.ShouldTrigger(e.Pop, e.m, e.time) {
			population.RunEA(e.Pop, e.m, e.time, e.k)
		}
	}

	population.Validate(e.Pop, e.k)
	e.Pop.KillSweep(e.k)
	e.m.Clear()
	return loss
}

// Fit trains on train for MAX_TRIALS trials (optionally reshuffled each
// epoch) and returns the mean training loss.
func (e *Engine) Fit(trainX, trainY [][]float64, shuffle bool) (float64, error) {
	if len(trainX) == 0 {
		return 0, xcsferr.New(xcsferr.Configuration, "empty training set", nil)
	}
	for _, y := range trainY {
		if err := e.checkDims(trainX[0], y); err != nil {
			return 0, err
		}
	}
	n := len(trainX)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	total := 0.0
	for trial := 0; trial < e.Params.MaxTrials; trial++ {
		if shuffle && trial%n == 0 {
			e.RNG.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		i := order[trial%n]
		total += e.supervisedTrial(trainX[i], trainY[i], e.Params.Explore)
	}
	return total / float64(e.Params.MaxTrials), nil
}

// Predict computes the model's output for every row of xMatrix without
// training.
func (e *Engine) Predict(xMatrix [][]float64) ([][]float64, error) {
	out := make([][]float64, len(xMatrix))
	for i, x := range xMatrix {
		if err := e.checkDims(x, nil); err != nil {
			return nil, err
		}
		out[i] = e.supervisedTrialNoTrain(x)
	}
	return out, nil
}

func (e *Engine) supervisedTrialNoTrain(x []float64) []float64 {
	e.k.Clear()
	e.Pop.Time = e.time
	m := population.Match(e.Pop, x, false, e.k)
	pa := population.BuildPA(e.Pop, e.Params, m, x)
	yHat := pa.Vector(0)
	population.Validate(e.Pop, e.k)
	e.Pop.KillSweep(e.k)
	m.Clear()
	return yHat
}

// Score computes mean loss over test without training.
func (e *Engine) Score(testX, testY [][]float64) (float64, error) {
	if len(testX) != len(testY) {
		return 0, xcsferr.New(xcsferr.Configuration, "test x/y length mismatch", nil)
	}
	preds, err := e.Predict(testX)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for i := range preds {
		total += mse(testY[i], preds[i])
	}
	if len(preds) == 0 {
		return 0, nil
	}
	return total / float64(len(preds)), nil
}
