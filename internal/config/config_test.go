package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nguyensu/xcsf/pkg/params"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "xcsf.ini")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadAppliesKnownKeys(t *testing.T) {
	path := writeConfig(t, `
pop_size = 500
x_dim = 4
y_dim = 2
n_actions = 3
condition_kind = ellipsoid
action_kind = neural
prediction_kind = rls
ea_select_type = tournament
`)
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.PopSize != 500 {
		t.Errorf("PopSize = %d, want 500", p.PopSize)
	}
	if p.XDim != 4 || p.YDim != 2 || p.NActions != 3 {
		t.Errorf("dims = (%d,%d,%d), want (4,2,3)", p.XDim, p.YDim, p.NActions)
	}
	if p.ConditionKind != params.CondEllipsoid {
		t.Errorf("ConditionKind = %v, want CondEllipsoid", p.ConditionKind)
	}
	if p.ActionKind != params.ActNeuralKind {
		t.Errorf("ActionKind = %v, want ActNeuralKind", p.ActionKind)
	}
	if p.PredictionKind != params.PredRLS {
		t.Errorf("PredictionKind = %v, want PredRLS", p.PredictionKind)
	}
	if p.EASelectType != params.SelectTournament {
		t.Errorf("EASelectType = %v, want SelectTournament", p.EASelectType)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "not_a_real_key = 1\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load must reject a config file with an unrecognized key")
	}
}

func TestLoadRejectsUnknownEnumValue(t *testing.T) {
	path := writeConfig(t, "condition_kind = quantum\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load must reject an unrecognized condition_kind value")
	}
}

func TestLoadRejectsInvalidParamsAfterApply(t *testing.T) {
	path := writeConfig(t, "pop_size = 0\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load must surface Validate()'s rejection of an out-of-range value")
	}
}

func TestLoadDefaultsUnsetFields(t *testing.T) {
	path := writeConfig(t, "x_dim = 3\n")
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := params.Default()
	if p.PopSize != want.PopSize {
		t.Errorf("PopSize = %d, want default %d for an unset key", p.PopSize, want.PopSize)
	}
}
