package prediction

import (
	"encoding/binary"
	"io"

	"github.com/nguyensu/xcsf/pkg/params"
	"gonum.org/v1/gonum/mat"
)

// RLS is recursive least squares with a maintained inverse-covariance
// matrix per output dimension.
type RLS struct {
	YDim  int
	XDim  int
	Gamma float64
	// P[d] is the (1+XDim)x(1+XDim) inverse covariance matrix for output d.
	P []*mat.Dense
	// W[d] is the (1+XDim)-length weight vector for output d.
	W []*mat.VecDense
}

func newRLS(p *params.Params) *RLS {
	n := 1 + p.XDim
	r := &RLS{YDim: p.YDim, XDim: p.XDim, Gamma: p.RLSGamma}
	r.P = make([]*mat.Dense, p.YDim)
	r.W = make([]*mat.VecDense, p.YDim)
	for d := 0; d < p.YDim; d++ {
		m := mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			m.Set(i, i, p.RLSDelta0)
		}
		r.P[d] = m
		r.W[d] = mat.NewVecDense(n, nil)
	}
	return r
}

func phiVec(x []float64) *mat.VecDense {
	v := mat.NewVecDense(1+len(x), nil)
	v.SetVec(0, 1)
	for i, xi := range x {
		v.SetVec(1+i, xi)
	}
	return v
}

func (r *RLS) Kind() params.PredictionKind { return params.PredRLS }

func (r *RLS) Compute(x []float64) []float64 {
	phi := phiVec(x)
	out := make([]float64, r.YDim)
	for d := 0; d < r.YDim; d++ {
		out[d] = mat.Dot(r.W[d], phi)
	}
	return out
}

// Update runs the standard RLS recursion for each output dim independently:
//
//	k = P·φ / (γ + φᵀ·P·φ)
//	e = y_true - w·φ
//	w += k·e
//	P = (P - k·(φᵀ·P)) / γ
func (r *RLS) Update(x, yTrue []float64) float64 {
	phi := phiVec(x)
	n, _ := phi.Dims()
	yHat := r.Compute(x)

	for d := 0; d < r.YDim; d++ {
		P := r.P[d]

		var Pphi mat.VecDense
		Pphi.MulVec(P, phi)
		denom := r.Gamma + mat.Dot(phi, &Pphi)

		k := mat.NewVecDense(n, nil)
		k.ScaleVec(1/denom, &Pphi)

		e := yTrue[d] - yHat[d]
		var wDelta mat.VecDense
		wDelta.ScaleVec(e, k)
		r.W[d].AddVec(r.W[d], &wDelta)

		var phiTP mat.VecDense
		phiTP.MulVec(P.T(), phi)
		var outer mat.Dense
		outer.Outer(1, k, &phiTP)
		var newP mat.Dense
		newP.Sub(P, &outer)
		newP.Scale(1/r.Gamma, &newP)
		r.P[d] = &newP
	}
	return mse(yTrue, yHat)
}

func (r *RLS) Crossover(other Prediction, rng *params.RNG) bool {
	o, ok := other.(*RLS)
	if !ok {
		return false
	}
	changed := false
	for d := 0; d < r.YDim; d++ {
		if rng.Bool(0.5) {
			r.W[d], o.W[d] = o.W[d], r.W[d]
			r.P[d], o.P[d] = o.P[d], r.P[d]
			changed = true
		}
	}
	return changed
}

func (r *RLS) Mutate(rng *params.RNG, p *params.Params) bool {
	changed := false
	n, _ := r.W[0].Dims()
	for d := 0; d < r.YDim; d++ {
		for i := 0; i < n; i++ {
			if rng.Bool(p.PMutation) {
				r.W[d].SetVec(i, r.W[d].AtVec(i)+rng.NormFloat64()*p.MutationSigma)
				changed = true
			}
		}
	}
	return changed
}

func (r *RLS) Copy() Prediction {
	cp := &RLS{YDim: r.YDim, XDim: r.XDim, Gamma: r.Gamma}
	cp.P = make([]*mat.Dense, r.YDim)
	cp.W = make([]*mat.VecDense, r.YDim)
	for d := 0; d < r.YDim; d++ {
		var p mat.Dense
		p.CloneFrom(r.P[d])
		cp.P[d] = &p
		var w mat.VecDense
		w.CloneFromVec(r.W[d])
		cp.W[d] = &w
	}
	return cp
}

func (r *RLS) Save(w io.Writer) error {
	if err := writeTag(w, params.PredRLS); err != nil {
		return err
	}
	hdr := []uint32{uint32(r.YDim), uint32(r.XDim)}
	for _, v := range hdr {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, r.Gamma); err != nil {
		return err
	}
	n := 1 + r.XDim
	for d := 0; d < r.YDim; d++ {
		wRow := make([]float64, n)
		for i := 0; i < n; i++ {
			wRow[i] = r.W[d].AtVec(i)
		}
		if err := binary.Write(w, binary.LittleEndian, wRow); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			rowVals := mat.Row(nil, i, r.P[d])
			if err := binary.Write(w, binary.LittleEndian, rowVals); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadRLS(r io.Reader) (Prediction, error) {
	var ydim, xdim uint32
	if err := binary.Read(r, binary.LittleEndian, &ydim); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &xdim); err != nil {
		return nil, err
	}
	res := &RLS{YDim: int(ydim), XDim: int(xdim)}
	if err := binary.Read(r, binary.LittleEndian, &res.Gamma); err != nil {
		return nil, err
	}
	n := 1 + int(xdim)
	res.P = make([]*mat.Dense, ydim)
	res.W = make([]*mat.VecDense, ydim)
	for d := 0; d < int(ydim); d++ {
		wVals := make([]float64, n)
		if err := binary.Read(r, binary.LittleEndian, wVals); err != nil {
			return nil, err
		}
		res.W[d] = mat.NewVecDense(n, wVals)
		p := mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			rowVals := make([]float64, n)
			if err := binary.Read(r, binary.LittleEndian, rowVals); err != nil {
				return nil, err
			}
			p.SetRow(i, rowVals)
		}
		res.P[d] = p
	}
	return res, nil
}
