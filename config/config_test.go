package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Tree.ThreadCount <= 0 {
		t.Errorf("ThreadCount = %d, want > 0", cfg.Tree.ThreadCount)
	}
	if cfg.Tree.CellsPerThread <= 0 {
		t.Errorf("CellsPerThread = %d, want > 0", cfg.Tree.CellsPerThread)
	}
	if cfg.Gravity.Theta <= 0 || cfg.Gravity.Theta > 1 {
		t.Errorf("Theta = %f, want in (0, 1]", cfg.Gravity.Theta)
	}
}

func TestDerivedCostBand(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := 1.0 / float64(cfg.Tree.ThreadCount*cfg.Tree.CellsPerThread)
	if cfg.Derived.NormCellCost != want {
		t.Errorf("NormCellCost = %f, want %f", cfg.Derived.NormCellCost, want)
	}
	if cfg.Derived.CostMin >= cfg.Derived.CostMax {
		t.Errorf("CostMin %f should be < CostMax %f", cfg.Derived.CostMin, cfg.Derived.CostMax)
	}
}

func TestMustInitPanicsOnBadPath(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustInit did not panic on unreadable path")
		}
	}()
	MustInit("/nonexistent/path/to/config.yaml")
}
