// Package config loads an INI-style configuration source, mapping
// key/value pairs onto params.Params and rejecting unknown keys. It
// builds a scoped *viper.Viper per call instead of relying on viper's
// global instance.
package config

import (
	"fmt"
	"strings"

	"github.com/nguyensu/xcsf/pkg/params"
	"github.com/spf13/viper"
)

// knownKeys is the full set of configuration keys Params accepts,
// lower-cased field names.
var knownKeys = map[string]bool{
	"pop_size": true, "max_trials": true, "perf_trials": true,
	"theta_ea": true, "p_crossover": true, "lambda": true,
	"ea_select_type": true, "ea_select_size": true, "p_mutation": true,
	"alpha": true, "nu": true, "beta": true, "eps_0": true,
	"theta_sub": true, "do_ga_subsumption": true, "do_set_subsumption": true,
	"theta_del": true, "delta": true,
	"e0": true, "init_fitness": true, "init_error": true,
	"x_dim": true, "y_dim": true, "n_actions": true,
	"condition_kind": true, "action_kind": true, "prediction_kind": true,
	"ternary_bits": true, "hash_hash": true, "condition_spread_min": true, "mutation_sigma": true,
	"nlms_eta": true, "nlms_eps": true, "rls_gamma": true, "rls_delta0": true,
	"neural_hidden_units": true, "neural_learn_rate": true,
	"gamma": true, "parallel": true, "num_workers": true,
	"explore": true, "seed": true,
}

var selectTypes = map[string]params.SelectType{"roulette": params.SelectRoulette, "tournament": params.SelectTournament}

var conditionKinds = map[string]params.ConditionKind{
	"hyperrectangle": params.CondHyperrectangle, "ellipsoid": params.CondEllipsoid,
	"ternary": params.CondTernary, "neural": params.CondNeural,
	"dgp": params.CondDGP, "gptree": params.CondGPTree, "dummy": params.CondDummy,
}

var actionKinds = map[string]params.ActionKind{"integer": params.ActIntegerKind, "neural": params.ActNeuralKind}

var predictionKinds = map[string]params.PredictionKind{
	"constant": params.PredConstant, "nlms": params.PredNLMS, "rls": params.PredRLS, "neural": params.PredNeural,
}

// Load reads an INI file at path into a Params starting from
// params.Default(), rejecting any key not in knownKeys.
func Load(path string) (params.Params, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("ini")
	if err := vp.ReadInConfig(); err != nil {
		return params.Params{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	for _, key := range vp.AllKeys() {
		if !knownKeys[strings.TrimPrefix(strings.ToLower(key), "default.")] {
			return params.Params{}, fmt.Errorf("config: unknown key %q", key)
		}
	}
	// viper files keys that precede any [section] header under "default".
	if sub := vp.Sub("default"); sub != nil {
		vp = sub
	}

	p := params.Default()
	applyInt := func(key string, dst *int) {
		if vp.IsSet(key) {
			*dst = vp.GetInt(key)
		}
	}
	applyFloat := func(key string, dst *float64) {
		if vp.IsSet(key) {
			*dst = vp.GetFloat64(key)
		}
	}
	applyBool := func(key string, dst *bool) {
		if vp.IsSet(key) {
			*dst = vp.GetBool(key)
		}
	}

	applyInt("pop_size", &p.PopSize)
	applyInt("max_trials", &p.MaxTrials)
	applyInt("perf_trials", &p.PerfTrials)
	applyFloat("theta_ea", &p.ThetaEA)
	applyFloat("p_crossover", &p.PCrossover)
	applyInt("lambda", &p.Lambda)
	if vp.IsSet("ea_select_type") {
		st, ok := selectTypes[strings.ToLower(vp.GetString("ea_select_type"))]
		if !ok {
			return params.Params{}, fmt.Errorf("config: unknown ea_select_type %q", vp.GetString("ea_select_type"))
		}
		p.EASelectType = st
	}
	applyFloat("ea_select_size", &p.EASelectSize)
	applyFloat("p_mutation", &p.PMutation)
	applyFloat("alpha", &p.Alpha)
	applyFloat("nu", &p.Nu)
	applyFloat("beta", &p.Beta)
	applyFloat("eps_0", &p.Eps0)
	applyFloat("theta_sub", &p.ThetaSub)
	applyBool("do_ga_subsumption", &p.DoGASubsumption)
	applyBool("do_set_subsumption", &p.DoSetSubsumption)
	applyFloat("theta_del", &p.ThetaDel)
	applyFloat("delta", &p.Delta)
	applyFloat("e0", &p.E0)
	applyFloat("init_fitness", &p.InitFitness)
	applyFloat("init_error", &p.InitError)
	applyInt("x_dim", &p.XDim)
	applyInt("y_dim", &p.YDim)
	applyInt("n_actions", &p.NActions)
	if vp.IsSet("condition_kind") {
		ck, ok := conditionKinds[strings.ToLower(vp.GetString("condition_kind"))]
		if !ok {
			return params.Params{}, fmt.Errorf("config: unknown condition_kind %q", vp.GetString("condition_kind"))
		}
		p.ConditionKind = ck
	}
	if vp.IsSet("action_kind") {
		ak, ok := actionKinds[strings.ToLower(vp.GetString("action_kind"))]
		if !ok {
			return params.Params{}, fmt.Errorf("config: unknown action_kind %q", vp.GetString("action_kind"))
		}
		p.ActionKind = ak
	}
	if vp.IsSet("prediction_kind") {
		pk, ok := predictionKinds[strings.ToLower(vp.GetString("prediction_kind"))]
		if !ok {
			return params.Params{}, fmt.Errorf("config: unknown prediction_kind %q", vp.GetString("prediction_kind"))
		}
		p.PredictionKind = pk
	}
	applyInt("ternary_bits", &p.TernaryBits)
	applyFloat("hash_hash", &p.HashHash)
	applyFloat("condition_spread_min", &p.ConditionSpreadMin)
	applyFloat("mutation_sigma", &p.MutationSigma)
	applyFloat("nlms_eta", &p.NLMSEta)
	applyFloat("nlms_eps", &p.NLMSEps)
	applyFloat("rls_gamma", &p.RLSGamma)
	applyFloat("rls_delta0", &p.RLSDelta0)
	applyInt("neural_hidden_units", &p.NeuralHiddenUnits)
	applyFloat("neural_learn_rate", &p.NeuralLearnRate)
	applyFloat("gamma", &p.Gamma)
	applyBool("parallel", &p.Parallel)
	applyInt("num_workers", &p.NumWorkers)
	applyBool("explore", &p.Explore)
	if vp.IsSet("seed") {
		p.Seed = vp.GetInt64("seed")
	}

	if err := p.Validate(); err != nil {
		return params.Params{}, err
	}
	return p, nil
}
