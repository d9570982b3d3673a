// Package classifier implements the Cl lifecycle: cover,
// update, accuracy, subsumption, copy and serialize, composing the
// condition/action/prediction substrates behind the shared engine
// parameter bag and RNG facade.
package classifier

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/nguyensu/xcsf/pkg/action"
	"github.com/nguyensu/xcsf/pkg/condition"
	"github.com/nguyensu/xcsf/pkg/params"
	"github.com/nguyensu/xcsf/pkg/prediction"
)

// Cl is one macro-classifier: a rule of multiplicity Num, summarising Num
// identical micro-classifiers.
type Cl struct {
	Condition condition.Condition
	Action    action.Action
	Prediction prediction.Prediction

	Err  float64
	Fit  float64
	Num  int
	Exp  int
	Size float64
	Time int
	Age  int

	// M is a transient match flag for the current input; not persisted.
	M bool
}

// Cover initialises condition to match x, sets action to a, and resets
// the lifecycle accounting to fresh-classifier values.
func Cover(p *params.Params, rng *params.RNG, x []float64, allowedActions []int, t int) *Cl {
	c := &Cl{
		Condition:  condition.New(p, x, rng),
		Action:     action.Cover(p, x, allowedActions, rng),
		Prediction: prediction.New(p, rng),
		Err:        p.InitError,
		Fit:        p.InitFitness,
		Num:        1,
		Exp:        0,
		Size:       1,
		Time:       t,
		Age:        t,
	}
	return c
}

// Update applies one experience step: prediction update, err and size
// tracking. setNum is Σ num over the owning set.
func (c *Cl) Update(p *params.Params, x, y []float64, setNum int) {
	c.Exp++
	warmingUp := float64(c.Exp)*p.Beta < 1
	rate := params.BlendRate(c.Exp, p.Beta)

	if warmingUp {
		c.Size = float64(setNum)
	} else {
		c.Size += rate * (float64(setNum) - c.Size)
	}

	loss := c.Prediction.Update(x, y)

	if warmingUp {
		c.Err = loss
	} else {
		c.Err += rate * (loss - c.Err)
	}
	if c.Err < 0 {
		c.Err = 0
	}
}

// Acc computes relative accuracy from the err curve.
func (c *Cl) Acc(p *params.Params) float64 {
	if c.Err < p.Eps0 {
		return 1
	}
	return p.Alpha * math.Pow(c.Err/p.Eps0, -p.Nu)
}

// Subsumes reports whether self is an experienced, accurate, strictly
// more general classifier than other with the same action.
func (c *Cl) Subsumes(p *params.Params, other *Cl) bool {
	if float64(c.Exp) < p.ThetaSub || c.Err >= p.Eps0 {
		return false
	}
	if !sameAction(c.Action, other.Action) {
		return false
	}
	return c.Condition.General(other.Condition)
}

func sameAction(a, b action.Action) bool {
	ai, aok := a.(*action.Integer)
	bi, bok := b.(*action.Integer)
	if aok && bok {
		return ai.Value == bi.Value
	}
	return false
}

// Copy returns an independent deep copy with its own substrate state but
// a fresh lifecycle (num=1, exp=0), the micro-classifier spun out of an
// EA clone before mutation.
func (c *Cl) Copy(t int) *Cl {
	return &Cl{
		Condition:  c.Condition.Copy(),
		Action:     c.Action.Copy(),
		Prediction: c.Prediction.Copy(),
		Err:        c.Err,
		Fit:        c.Fit,
		Num:        1,
		Exp:        0,
		Size:       c.Size,
		Time:       t,
		Age:        t,
	}
}

// Save writes the self-describing condition/action/prediction payloads
// followed by the fixed scalar fields.
func (c *Cl) Save(w io.Writer) error {
	if err := c.Condition.Save(w); err != nil {
		return err
	}
	if err := c.Action.Save(w); err != nil {
		return err
	}
	if err := c.Prediction.Save(w); err != nil {
		return err
	}
	fields := []float64{c.Err, c.Fit, float64(c.Num), float64(c.Exp), c.Size, float64(c.Time), float64(c.Age)}
	return binary.Write(w, binary.LittleEndian, fields)
}

// Load reconstructs a classifier previously written by Save.
func Load(r io.Reader) (*Cl, error) {
	cond, err := condition.Load(r)
	if err != nil {
		return nil, err
	}
	act, err := action.Load(r)
	if err != nil {
		return nil, err
	}
	pred, err := prediction.Load(r)
	if err != nil {
		return nil, err
	}
	fields := make([]float64, 7)
	if err := binary.Read(r, binary.LittleEndian, fields); err != nil {
		return nil, err
	}
	return &Cl{
		Condition: cond, Action: act, Prediction: pred,
		Err: fields[0], Fit: fields[1], Num: int(fields[2]), Exp: int(fields[3]),
		Size: fields[4], Time: int(fields[5]), Age: int(fields[6]),
	}, nil
}
