package params

import "testing"

func TestDefaultValidates(t *testing.T) {
	p := Default()
	if err := p.Validate(); err != nil {
		t.Fatalf("Default() failed Validate: %v", err)
	}
}

func TestValidateRejectsBadFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *Params)
	}{
		{"pop size zero", func(p *Params) { p.PopSize = 0 }},
		{"xdim negative", func(p *Params) { p.XDim = -1 }},
		{"ydim zero", func(p *Params) { p.YDim = 0 }},
		{"nactions zero", func(p *Params) { p.NActions = 0 }},
		{"crossover above one", func(p *Params) { p.PCrossover = 1.5 }},
		{"mutation negative", func(p *Params) { p.PMutation = -0.1 }},
		{"beta zero", func(p *Params) { p.Beta = 0 }},
		{"eps0 zero", func(p *Params) { p.Eps0 = 0 }},
		{"lambda zero", func(p *Params) { p.Lambda = 0 }},
		{"select size above one", func(p *Params) { p.EASelectSize = 1.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Default()
			tc.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Fatalf("expected Validate to reject %s", tc.name)
			}
		})
	}
}

func TestBlendRateWarmsUpThenFixes(t *testing.T) {
	beta := 0.2
	if got := BlendRate(1, beta); got != 1.0 {
		t.Errorf("exp=1: got %f, want 1.0 (full replacement)", got)
	}
	if got := BlendRate(2, beta); got != 0.5 {
		t.Errorf("exp=2: got %f, want 0.5", got)
	}
	// Once exp*beta >= 1, the blend rate fixes at beta.
	if got := BlendRate(5, beta); got != beta {
		t.Errorf("exp=5: got %f, want fixed beta %f", got, beta)
	}
	if got := BlendRate(100, beta); got != beta {
		t.Errorf("exp=100: got %f, want fixed beta %f", got, beta)
	}
}

func TestRNGDeriveIsIndependentAndDeterministic(t *testing.T) {
	master := NewRNG(42)
	a := master.Derive(0)
	b := master.Derive(1)

	va := a.Float64()
	vb := b.Float64()
	if va == vb {
		t.Errorf("derived streams for different worker indices produced the same draw: %f", va)
	}

	// Re-deriving from a freshly re-seeded master with the same seed
	// sequence must reproduce the same child seeds.
	master2 := NewRNG(42)
	a2 := master2.Derive(0)
	if got := a2.Float64(); got != va {
		t.Errorf("Derive not deterministic: got %f, want %f", got, va)
	}
}

func TestRNGShufflePermutesAllElements(t *testing.T) {
	r := NewRNG(7)
	n := 20
	xs := make([]int, n)
	for i := range xs {
		xs[i] = i
	}
	r.Shuffle(n, func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })

	seen := make(map[int]bool, n)
	for _, v := range xs {
		seen[v] = true
	}
	if len(seen) != n {
		t.Fatalf("shuffle lost elements: got %d distinct values, want %d", len(seen), n)
	}
}
