// Package population implements the macro-classifier multiset and its
// set-algebra (match set M, action set A, kill set K), the deletion
// scheme, and the evolutionary algorithm. The population owns
// classifiers directly; sets hold non-owning indices into it. Removal
// is deferred to an end-of-trial kill sweep so indices stay valid for
// the trial's duration.
package population

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nguyensu/xcsf/pkg/classifier"
	"github.com/nguyensu/xcsf/pkg/params"
)

// Population is the capped multiset: Σ num ≤ POP_SIZE.
type Population struct {
	Params *params.Params
	RNG    *params.RNG
	Cls    []*classifier.Cl
	Time   int
}

// New returns an empty population ready for covering.
func New(p *params.Params, rng *params.RNG) *Population {
	return &Population{Params: p, RNG: rng}
}

// NumSum returns Σ num across every macro-classifier.
func (pop *Population) NumSum() int {
	sum := 0
	for _, c := range pop.Cls {
		sum += c.Num
	}
	return sum
}

// MeanFitness returns Σ(fit)/Σ(num), the deletion vote's reference point
//.
func (pop *Population) MeanFitness() float64 {
	sumFit, sumNum := 0.0, 0
	for _, c := range pop.Cls {
		sumFit += c.Fit
		sumNum += c.Num
	}
	if sumNum == 0 {
		return 0
	}
	return sumFit / float64(sumNum)
}

// Insert appends a freshly-created or offspring classifier.
// Numerosity-cap restoration is the caller's responsibility via
// EnforceCap, run once per insertion.
func (pop *Population) Insert(c *classifier.Cl) int {
	pop.Cls = append(pop.Cls, c)
	return len(pop.Cls) - 1
}

// FindIdentical returns the index of an existing classifier with the
// same condition and action representation as c, used by the EA's
// numerosity-bump merge; predictions are not compared. Identity is judged
// on the serialized form, since the substrate interfaces don't expose a
// generic equality method.
func (pop *Population) FindIdentical(c *classifier.Cl) (int, bool) {
	target := serializeBody(c)
	for i, other := range pop.Cls {
		if other.Action.Kind() != c.Action.Kind() {
			continue
		}
		if serializeBody(other) == target {
			return i, true
		}
	}
	return -1, false
}

func serializeBody(c *classifier.Cl) string {
	return dump(c.Condition) + "|" + dump(c.Action)
}

type saver interface {
	Save(w io.Writer) error
}

func dump(s saver) string {
	var b byteBuf
	_ = s.Save(&b)
	return string(b)
}

type byteBuf []byte

func (b *byteBuf) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

// EnforceCap deletes numerosity units by roulette over the deletion vote
// until Σ num ≤ POP_SIZE, returning the indices of any
// macro-classifier whose numerosity reached zero so the caller can add
// them to the kill set K.
func (pop *Population) EnforceCap() []int {
	var killed []int
	for pop.NumSum() > pop.Params.PopSize {
		idx := pop.rouletteDeletionTarget()
		if idx < 0 {
			break
		}
		c := pop.Cls[idx]
		c.Num--
		if c.Num <= 0 {
			killed = append(killed, idx)
		}
	}
	return killed
}

func (pop *Population) deletionVote(c *classifier.Cl, meanFit float64) float64 {
	if float64(c.Exp) > pop.Params.ThetaDel && c.Num > 0 && c.Fit/float64(c.Num) < pop.Params.Delta*meanFit {
		return c.Size * float64(c.Num) * meanFit / (c.Fit / float64(c.Num))
	}
	return c.Size * float64(c.Num)
}

func (pop *Population) rouletteDeletionTarget() int {
	if len(pop.Cls) == 0 {
		return -1
	}
	meanFit := pop.MeanFitness()
	votes := make([]float64, len(pop.Cls))
	total := 0.0
	for i, c := range pop.Cls {
		if c.Num <= 0 {
			continue
		}
		votes[i] = pop.deletionVote(c, meanFit)
		total += votes[i]
	}
	if total <= 0 {
		for i, c := range pop.Cls {
			if c.Num > 0 {
				return i
			}
		}
		return -1
	}
	draw := pop.RNG.Float64() * total
	acc := 0.0
	for i, v := range votes {
		acc += v
		if draw <= acc {
			return i
		}
	}
	return len(pop.Cls) - 1
}

// KillSweep frees every macro-classifier referenced by K:
// validate() guarantees no other live set still references them, so a
// compacting removal is safe. Indices are invalidated by this call; no
// set may be carried across it.
func (pop *Population) KillSweep(k *Set) {
	if len(k.Indices) == 0 {
		return
	}
	dead := make(map[int]bool, len(k.Indices))
	for _, idx := range k.Indices {
		dead[idx] = true
	}
	kept := pop.Cls[:0]
	for i, c := range pop.Cls {
		if !dead[i] {
			kept = append(kept, c)
		}
	}
	pop.Cls = kept
	k.Indices = nil
}

// Save writes the whole-population binary snapshot: u32 count, then
// each classifier's self-describing payload.
func (pop *Population) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(pop.Cls))); err != nil {
		return err
	}
	for _, c := range pop.Cls {
		if err := c.Save(w); err != nil {
			return err
		}
	}
	return nil
}

// Load reconstructs a population from a snapshot written by Save. Params
// and RNG are supplied separately — the engine handle owns them.
func Load(r io.Reader, p *params.Params, rng *params.RNG) (*Population, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("population: read count: %w", err)
	}
	pop := New(p, rng)
	pop.Cls = make([]*classifier.Cl, count)
	for i := range pop.Cls {
		c, err := classifier.Load(r)
		if err != nil {
			return nil, fmt.Errorf("population: read classifier %d: %w", i, err)
		}
		pop.Cls[i] = c
	}
	return pop, nil
}
