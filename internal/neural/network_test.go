package neural

import (
	"bytes"
	"math"
	"testing"

	"github.com/nguyensu/xcsf/pkg/params"
)

func TestNewNetworkWidths(t *testing.T) {
	rng := params.NewRNG(1)
	n := NewNetwork([]int{3, 5, 2}, Sigmoid, rng)
	if got := n.InputWidth(); got != 3 {
		t.Errorf("InputWidth() = %d, want 3", got)
	}
	if got := n.OutputWidth(); got != 2 {
		t.Errorf("OutputWidth() = %d, want 2", got)
	}
	if len(n.Layers) != 2 {
		t.Fatalf("len(Layers) = %d, want 2", len(n.Layers))
	}
	if n.Layers[len(n.Layers)-1].Act != Linear {
		t.Errorf("output layer activation = %v, want Linear", n.Layers[len(n.Layers)-1].Act)
	}
}

func TestForwardProducesFiniteOutput(t *testing.T) {
	rng := params.NewRNG(2)
	n := NewNetwork([]int{4, 6, 1}, Tanh, rng)
	out := n.Forward([]float64{0.1, -0.2, 0.3, 0.4})
	if len(out) != 1 {
		t.Fatalf("Forward() returned %d outputs, want 1", len(out))
	}
	if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		t.Errorf("Forward() produced non-finite output: %f", out[0])
	}
}

func TestUpdateReducesLoss(t *testing.T) {
	rng := params.NewRNG(3)
	n := NewNetwork([]int{2, 4, 1}, Sigmoid, rng)
	x := []float64{0.5, -0.5}
	target := 0.9

	before := n.Forward(x)[0]
	lossBefore := (target - before) * (target - before)

	for i := 0; i < 50; i++ {
		out := n.Forward(x)
		grad := []float64{target - out[0]}
		n.Update(grad, 0.5)
	}

	after := n.Forward(x)[0]
	lossAfter := (target - after) * (target - after)
	if lossAfter >= lossBefore {
		t.Errorf("loss did not decrease after training: before=%f after=%f", lossBefore, lossAfter)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	rng := params.NewRNG(4)
	n := NewNetwork([]int{2, 3, 1}, Sigmoid, rng)
	cp := n.Copy()

	cp.Layers[0].Weights[0] += 100

	if n.Layers[0].Weights[0] == cp.Layers[0].Weights[0] {
		t.Error("mutating the copy's weights mutated the original")
	}
}

func TestResizeHiddenPropagatesInputWidth(t *testing.T) {
	rng := params.NewRNG(5)
	n := NewNetwork([]int{3, 4, 2}, Sigmoid, rng)
	if err := n.ResizeHidden(0, 7, rng); err != nil {
		t.Fatalf("ResizeHidden: %v", err)
	}
	if n.Layers[0].OutN != 7 {
		t.Errorf("hidden layer OutN = %d, want 7", n.Layers[0].OutN)
	}
	if n.Layers[1].InN != 7 {
		t.Errorf("output layer InN = %d, want 7 (propagated)", n.Layers[1].InN)
	}
	// Forward must still run without panicking after a structural resize.
	out := n.Forward([]float64{1, 2, 3})
	if len(out) != 2 {
		t.Fatalf("Forward after resize returned %d outputs, want 2", len(out))
	}
}

func TestResizeHiddenRejectsOutputLayer(t *testing.T) {
	rng := params.NewRNG(6)
	n := NewNetwork([]int{3, 4, 2}, Sigmoid, rng)
	if err := n.ResizeHidden(1, 9, rng); err == nil {
		t.Error("expected an error resizing the fixed-width output layer")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	rng := params.NewRNG(7)
	n := NewNetwork([]int{3, 5, 2}, Tanh, rng)

	var buf bytes.Buffer
	if err := n.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	x := []float64{0.2, -0.4, 0.6}
	want := n.Forward(x)
	got := loaded.Forward(x)
	if len(want) != len(got) {
		t.Fatalf("output width mismatch: want %d, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(want[i]-got[i]) > 1e-12 {
			t.Errorf("output[%d]: want %f, got %f", i, want[i], got[i])
		}
	}
}

func TestMutateCanChangeWeights(t *testing.T) {
	rng := params.NewRNG(8)
	n := NewNetwork([]int{2, 3, 1}, Sigmoid, rng)
	before := n.Layers[0].Weights[0]

	changed := false
	for i := 0; i < 100 && !changed; i++ {
		changed = n.Mutate(1.0, 0.5, rng)
	}
	if !changed {
		t.Fatal("Mutate with p=1.0 never reported a change across 100 attempts")
	}
	if n.Layers[0].Weights[0] == before && changed {
		t.Error("Mutate reported changed=true but weights are unchanged")
	}
}
