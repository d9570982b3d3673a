package classifier

import (
	"bytes"
	"io"
	"testing"

	"github.com/nguyensu/xcsf/pkg/action"
	"github.com/nguyensu/xcsf/pkg/condition"
	"github.com/nguyensu/xcsf/pkg/params"
)

func testParams() *params.Params {
	p := params.Default()
	p.XDim = 2
	p.YDim = 1
	p.NActions = 3
	return &p
}

func TestCoverMatchesItsOwnInput(t *testing.T) {
	p := testParams()
	rng := params.NewRNG(1)
	x := []float64{0.4, 0.6}
	c := Cover(p, rng, x, []int{0, 1, 2}, 0)
	if !c.Condition.Match(x) {
		t.Fatal("a freshly covered classifier must match the input it covered")
	}
	if c.Num != 1 || c.Exp != 0 {
		t.Errorf("fresh classifier: Num=%d Exp=%d, want Num=1 Exp=0", c.Num, c.Exp)
	}
	if c.Err != p.InitError || c.Fit != p.InitFitness {
		t.Errorf("fresh classifier did not inherit InitError/InitFitness")
	}
}

func TestUpdateIncrementsExpMonotonically(t *testing.T) {
	p := testParams()
	rng := params.NewRNG(2)
	x := []float64{0.1, 0.2}
	c := Cover(p, rng, x, []int{0}, 0)

	prevExp := c.Exp
	for i := 0; i < 10; i++ {
		c.Update(p, x, []float64{1.0}, 5)
		if c.Exp != prevExp+1 {
			t.Fatalf("Exp did not increment by exactly 1: got %d, want %d", c.Exp, prevExp+1)
		}
		prevExp = c.Exp
	}
}

func TestUpdateErrNeverNegative(t *testing.T) {
	p := testParams()
	rng := params.NewRNG(3)
	x := []float64{0.3, 0.3}
	c := Cover(p, rng, x, []int{0}, 0)
	for i := 0; i < 50; i++ {
		c.Update(p, x, []float64{0.0}, 1)
		if c.Err < 0 {
			t.Fatalf("Err went negative: %f", c.Err)
		}
	}
}

func TestAccIsOneWithinEpsilonZero(t *testing.T) {
	p := testParams()
	c := &Cl{Err: p.Eps0 / 2}
	if got := c.Acc(p); got != 1 {
		t.Errorf("Acc() with Err < Eps0 = %f, want 1", got)
	}
}

func TestAccDecreasesAsErrorGrows(t *testing.T) {
	p := testParams()
	low := &Cl{Err: p.Eps0 * 2}
	high := &Cl{Err: p.Eps0 * 10}
	if low.Acc(p) <= high.Acc(p) {
		t.Errorf("Acc should decrease as Err grows beyond Eps0: Acc(low err)=%f Acc(high err)=%f",
			low.Acc(p), high.Acc(p))
	}
}

func TestSubsumesRequiresExperienceAccuracyAndGenerality(t *testing.T) {
	p := testParams()
	p.ThetaSub = 10

	general := &Cl{
		Condition: &fakeGeneralCondition{more: true},
		Action:    &action.Integer{Value: 1},
		Exp:       20,
		Err:       p.Eps0 / 2,
	}
	specific := &Cl{
		Condition: &fakeGeneralCondition{more: false},
		Action:    &action.Integer{Value: 1},
		Exp:       5,
		Err:       p.Eps0 / 2,
	}

	if !general.Subsumes(p, specific) {
		t.Error("an experienced, accurate, more-general same-action classifier should subsume")
	}

	inexperienced := &Cl{
		Condition: &fakeGeneralCondition{more: true},
		Action:    &action.Integer{Value: 1},
		Exp:       1,
		Err:       p.Eps0 / 2,
	}
	if inexperienced.Subsumes(p, specific) {
		t.Error("an inexperienced classifier (Exp < ThetaSub) must never subsume")
	}

	differentAction := &Cl{
		Condition: &fakeGeneralCondition{more: true},
		Action:    &action.Integer{Value: 2},
		Exp:       20,
		Err:       p.Eps0 / 2,
	}
	if differentAction.Subsumes(p, specific) {
		t.Error("classifiers with different actions must never subsume each other")
	}
}

func TestCopyResetsLifecycleButKeepsSubstrate(t *testing.T) {
	p := testParams()
	rng := params.NewRNG(4)
	x := []float64{0.5, 0.5}
	c := Cover(p, rng, x, []int{0}, 0)
	c.Num = 7
	c.Exp = 42

	cp := c.Copy(10)
	if cp.Num != 1 || cp.Exp != 0 {
		t.Errorf("Copy must reset Num=1 Exp=0, got Num=%d Exp=%d", cp.Num, cp.Exp)
	}
	if cp.Time != 10 || cp.Age != 10 {
		t.Errorf("Copy must stamp the given time, got Time=%d Age=%d", cp.Time, cp.Age)
	}
	if !cp.Condition.Match(x) {
		t.Error("copy lost its condition's ability to match the covering input")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := testParams()
	rng := params.NewRNG(5)
	x := []float64{0.2, 0.8}
	c := Cover(p, rng, x, []int{0, 1}, 3)
	c.Update(p, x, []float64{0.5}, 4)

	var buf bytes.Buffer
	if err := c.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Err != c.Err || loaded.Fit != c.Fit || loaded.Num != c.Num ||
		loaded.Exp != c.Exp || loaded.Size != c.Size || loaded.Time != c.Time || loaded.Age != c.Age {
		t.Errorf("reloaded lifecycle fields mismatch: got %+v, want fields from %+v", loaded, c)
	}
	if !loaded.Condition.Match(x) {
		t.Error("reloaded classifier's condition no longer matches the covering input")
	}
}

// fakeGeneralCondition is a minimal condition.Condition stub so Subsumes
// tests can control General()'s result directly without a real substrate.
type fakeGeneralCondition struct{ more bool }

func (f *fakeGeneralCondition) Kind() params.ConditionKind         { return params.CondDummy }
func (f *fakeGeneralCondition) Cover(p *params.Params, x []float64, rng *params.RNG) {}
func (f *fakeGeneralCondition) Match(x []float64) bool             { return true }
func (f *fakeGeneralCondition) Crossover(o condition.Condition, rng *params.RNG) bool {
	return false
}
func (f *fakeGeneralCondition) Mutate(rng *params.RNG, p *params.Params) bool { return false }
func (f *fakeGeneralCondition) General(other condition.Condition) bool       { return f.more }
func (f *fakeGeneralCondition) Copy() condition.Condition                    { return f }
func (f *fakeGeneralCondition) Save(w io.Writer) error                       { return nil }
