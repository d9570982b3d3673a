package xcsf

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/nguyensu/xcsf/internal/xcsferr"
	"github.com/nguyensu/xcsf/pkg/params"
	"github.com/nguyensu/xcsf/pkg/population"
)

const (
	snapshotMagic   = "XCSF"
	snapshotVersion = uint32(1)
)

// snapshotFields is the fixed parameter schema, limited to the
// fields that must round-trip for predictions to stay behaviorally
// identical after reload (population shape, substrate selection, trial
// dimensions). Tunables that only influence future training (mutation
// rates, EA cadence) round-trip too, for a faithful `print` after load.
type snapshotFields struct {
	PopSize, MaxTrials, PerfTrials       int32
	ThetaEA                              float64
	PCrossover                           float64
	Lambda                               int32
	EASelectType                         int32
	EASelectSize                         float64
	PMutation                            float64
	Alpha, Nu, Beta, Eps0                float64
	ThetaSub                             float64
	DoGASubsumption, DoSetSubsumption    int32
	ThetaDel, Delta                      float64
	E0, InitFitness, InitError           float64
	XDim, YDim, NActions                 int32
	ConditionKind, ActionKind, PredictionKind int32
	TernaryBits                          int32
	HashHash, ConditionSpreadMin, MutationSigma float64
	NLMSEta, NLMSEps, RLSGamma, RLSDelta0 float64
	NeuralHiddenUnits                    int32
	NeuralLearnRate                      float64
	Gamma                                float64
	NumWorkers                           int32
	Parallel, Explore                    int32
	Seed                                 int64
}

func boolToI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func toFields(p *params.Params) snapshotFields {
	return snapshotFields{
		PopSize: int32(p.PopSize), MaxTrials: int32(p.MaxTrials), PerfTrials: int32(p.PerfTrials),
		ThetaEA: p.ThetaEA, PCrossover: p.PCrossover, Lambda: int32(p.Lambda),
		EASelectType: int32(p.EASelectType), EASelectSize: p.EASelectSize, PMutation: p.PMutation,
		Alpha: p.Alpha, Nu: p.Nu, Beta: p.Beta, Eps0: p.Eps0,
		ThetaSub: p.ThetaSub, DoGASubsumption: boolToI32(p.DoGASubsumption), DoSetSubsumption: boolToI32(p.DoSetSubsumption),
		ThetaDel: p.ThetaDel, Delta: p.Delta,
		E0: p.E0, InitFitness: p.InitFitness, InitError: p.InitError,
		XDim: int32(p.XDim), YDim: int32(p.YDim), NActions: int32(p.NActions),
		ConditionKind: int32(p.ConditionKind), ActionKind: int32(p.ActionKind), PredictionKind: int32(p.PredictionKind),
		TernaryBits: int32(p.TernaryBits), HashHash: p.HashHash, ConditionSpreadMin: p.ConditionSpreadMin, MutationSigma: p.MutationSigma,
		NLMSEta: p.NLMSEta, NLMSEps: p.NLMSEps, RLSGamma: p.RLSGamma, RLSDelta0: p.RLSDelta0,
		NeuralHiddenUnits: int32(p.NeuralHiddenUnits), NeuralLearnRate: p.NeuralLearnRate,
		Gamma: p.Gamma, NumWorkers: int32(p.NumWorkers),
		Parallel: boolToI32(p.Parallel), Explore: boolToI32(p.Explore), Seed: p.Seed,
	}
}

func fromFields(f snapshotFields) params.Params {
	return params.Params{
		PopSize: int(f.PopSize), MaxTrials: int(f.MaxTrials), PerfTrials: int(f.PerfTrials),
		ThetaEA: f.ThetaEA, PCrossover: f.PCrossover, Lambda: int(f.Lambda),
		EASelectType: params.SelectType(f.EASelectType), EASelectSize: f.EASelectSize, PMutation: f.PMutation,
		Alpha: f.Alpha, Nu: f.Nu, Beta: f.Beta, Eps0: f.Eps0,
		ThetaSub: f.ThetaSub, DoGASubsumption: f.DoGASubsumption != 0, DoSetSubsumption: f.DoSetSubsumption != 0,
		ThetaDel: f.ThetaDel, Delta: f.Delta,
		E0: f.E0, InitFitness: f.InitFitness, InitError: f.InitError,
		XDim: int(f.XDim), YDim: int(f.YDim), NActions: int(f.NActions),
		ConditionKind: params.ConditionKind(f.ConditionKind), ActionKind: params.ActionKind(f.ActionKind), PredictionKind: params.PredictionKind(f.PredictionKind),
		TernaryBits: int(f.TernaryBits), HashHash: f.HashHash, ConditionSpreadMin: f.ConditionSpreadMin, MutationSigma: f.MutationSigma,
		NLMSEta: f.NLMSEta, NLMSEps: f.NLMSEps, RLSGamma: f.RLSGamma, RLSDelta0: f.RLSDelta0,
		NeuralHiddenUnits: int(f.NeuralHiddenUnits), NeuralLearnRate: f.NeuralLearnRate,
		Gamma: f.Gamma, NumWorkers: int(f.NumWorkers),
		Parallel: f.Parallel != 0, Explore: f.Explore != 0, Seed: f.Seed,
	}
}

// Save writes the whole-population binary snapshot: magic, version,
// fixed parameter schema, then the population.
func (e *Engine) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return xcsferr.New(xcsferr.Persistence, "create snapshot file", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(snapshotMagic); err != nil {
		return xcsferr.New(xcsferr.Persistence, "write magic", err)
	}
	if err := binary.Write(w, binary.LittleEndian, snapshotVersion); err != nil {
		return xcsferr.New(xcsferr.Persistence, "write version", err)
	}
	fields := toFields(e.Params)
	if err := binary.Write(w, binary.LittleEndian, fields); err != nil {
		return xcsferr.New(xcsferr.Persistence, "write parameters", err)
	}
	if err := e.Pop.Save(w); err != nil {
		return xcsferr.New(xcsferr.Persistence, "write population", err)
	}
	if err := w.Flush(); err != nil {
		return xcsferr.New(xcsferr.Persistence, "flush snapshot", err)
	}
	return nil
}

// Load reconstructs an engine from a snapshot written by Save.
func Load(path string) (*Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xcsferr.New(xcsferr.Persistence, "open snapshot file", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	magic := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, xcsferr.New(xcsferr.Persistence, "read magic", err)
	}
	if string(magic) != snapshotMagic {
		return nil, xcsferr.New(xcsferr.Persistence, fmt.Sprintf("bad magic %q", magic), nil)
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, xcsferr.New(xcsferr.Persistence, "read version", err)
	}
	if version != snapshotVersion {
		return nil, xcsferr.New(xcsferr.Configuration, fmt.Sprintf("unsupported snapshot version %d", version), nil)
	}
	var fields snapshotFields
	if err := binary.Read(r, binary.LittleEndian, &fields); err != nil {
		return nil, xcsferr.New(xcsferr.Persistence, "read parameters", err)
	}
	p := fromFields(fields)
	if err := p.Validate(); err != nil {
		return nil, xcsferr.New(xcsferr.Configuration, "snapshot parameters invalid", err)
	}

	e := &Engine{
		Params: &p,
		RNG:    params.NewRNG(p.Seed),
		m:      &population.Set{},
		a:      &population.Set{},
		k:      &population.Set{},
	}
	pop, err := population.Load(r, e.Params, e.RNG)
	if err != nil {
		return nil, xcsferr.New(xcsferr.Persistence, "read population", err)
	}
	e.Pop = pop
	return e, nil
}
