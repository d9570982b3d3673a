package condition

import (
	"bytes"
	"testing"

	"github.com/nguyensu/xcsf/pkg/params"
)

var allKinds = []params.ConditionKind{
	params.CondHyperrectangle,
	params.CondEllipsoid,
	params.CondTernary,
	params.CondNeural,
	params.CondDGP,
	params.CondGPTree,
	params.CondDummy,
}

func kindName(k params.ConditionKind) string {
	switch k {
	case params.CondHyperrectangle:
		return "hyperrectangle"
	case params.CondEllipsoid:
		return "ellipsoid"
	case params.CondTernary:
		return "ternary"
	case params.CondNeural:
		return "neural"
	case params.CondDGP:
		return "dgp"
	case params.CondGPTree:
		return "gptree"
	case params.CondDummy:
		return "dummy"
	default:
		return "unknown"
	}
}

func testParams(kind params.ConditionKind) *params.Params {
	p := params.Default()
	p.ConditionKind = kind
	return &p
}

// TestCoverAlwaysMatches is the round-trip invariant every variant must
// satisfy: a freshly-covered condition matches the input it covered.
func TestCoverAlwaysMatches(t *testing.T) {
	x := []float64{0.2, 0.5, 0.8}
	for _, kind := range allKinds {
		kind := kind
		t.Run(kindName(kind), func(t *testing.T) {
			p := testParams(kind)
			rng := params.NewRNG(1)
			c := New(p, x, rng)
			if !c.Match(x) {
				t.Errorf("%s: covered condition does not match its own covering input", kindName(kind))
			}
		})
	}
}

// TestSaveLoadRoundTrip checks every variant's serialized form reloads to
// an equivalent condition (same match behaviour on the covering input).
func TestSaveLoadRoundTrip(t *testing.T) {
	x := []float64{0.1, 0.4, 0.9}
	for _, kind := range allKinds {
		kind := kind
		t.Run(kindName(kind), func(t *testing.T) {
			p := testParams(kind)
			rng := params.NewRNG(2)
			c := New(p, x, rng)

			var buf bytes.Buffer
			if err := c.Save(&buf); err != nil {
				t.Fatalf("Save: %v", err)
			}
			loaded, err := Load(&buf)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !loaded.Match(x) {
				t.Errorf("%s: reloaded condition no longer matches the original covering input", kindName(kind))
			}
		})
	}
}

// TestCopyIsIndependent checks that mutating a copy never perturbs the
// original's match behaviour on a battery of probe points.
func TestCopyIsIndependent(t *testing.T) {
	x := []float64{0.3, 0.6, 0.1}
	probes := [][]float64{{0, 0, 0}, {1, 1, 1}, {0.5, 0.5, 0.5}, x}
	for _, kind := range allKinds {
		kind := kind
		t.Run(kindName(kind), func(t *testing.T) {
			p := testParams(kind)
			rng := params.NewRNG(3)
			c := New(p, x, rng)

			before := make([]bool, len(probes))
			for i, pr := range probes {
				before[i] = c.Match(pr)
			}

			cp := c.Copy()
			mutRng := params.NewRNG(4)
			for i := 0; i < 50; i++ {
				cp.Mutate(mutRng, p)
			}

			for i, pr := range probes {
				if c.Match(pr) != before[i] {
					t.Errorf("%s: mutating the copy changed the original's Match on probe %d", kindName(kind), i)
				}
			}
		})
	}
}

// TestHyperrectangleGeneralBySampling directly checks the documented
// "contains" semantics of General by sampling points inside the narrower
// box and confirming the wider box also matches them.
func TestHyperrectangleGeneralBySampling(t *testing.T) {
	wide := &Hyperrectangle{Centre: []float64{0, 0}, Spread: []float64{1, 1}}
	narrow := &Hyperrectangle{Centre: []float64{0.1, -0.1}, Spread: []float64{0.2, 0.3}}

	if !wide.General(narrow) {
		t.Fatal("wide box should be strictly more general than narrow box")
	}
	if narrow.General(wide) {
		t.Fatal("narrow box must not be reported as more general than wide box")
	}

	rng := params.NewRNG(5)
	for i := 0; i < 200; i++ {
		x := []float64{
			narrow.Centre[0] + rng.Uniform(-1, 1)*narrow.Spread[0],
			narrow.Centre[1] + rng.Uniform(-1, 1)*narrow.Spread[1],
		}
		if !narrow.Match(x) {
			continue
		}
		if !wide.Match(x) {
			t.Fatalf("point %v matched by the narrower box but not by the more general wide box", x)
		}
	}
}

func TestTernaryDontCareIsMoreGeneral(t *testing.T) {
	specific := &Ternary{Bits: 2, String: []byte{0, 1, 1, 0}}
	general := &Ternary{Bits: 2, String: []byte{dontCare, 1, 1, 0}}

	if !general.General(specific) {
		t.Error("a condition with an extra don't-care position should be more general")
	}
	if specific.General(general) {
		t.Error("the more specific condition must not be reported as more general")
	}
}

func TestNeuralAndDGPAndGPTreeGeneralAlwaysFalse(t *testing.T) {
	x := []float64{0.2, 0.4}
	conservative := []params.ConditionKind{params.CondNeural, params.CondDGP, params.CondGPTree}
	for _, kind := range conservative {
		kind := kind
		t.Run(kindName(kind), func(t *testing.T) {
			p := testParams(kind)
			rng := params.NewRNG(6)
			a := New(p, x, rng)
			b := New(p, x, rng)
			if a.General(b) {
				t.Errorf("%s: General must conservatively return false", kindName(kind))
			}
		})
	}
}
