package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartRound()
		pc.StartPhase(PhaseHousekeepBottom)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseGravity)
		time.Sleep(200 * time.Microsecond)
		pc.EndRound()
	}

	stats := pc.Stats()

	if stats.AvgRoundDuration <= 0 {
		t.Error("expected positive average round duration")
	}

	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[PhaseHousekeepBottom]; !ok {
		t.Error("expected housekeep_bottom phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[PhaseGravity]; !ok {
		t.Error("expected gravity phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	for i := 0; i < 10; i++ {
		pc.StartRound()
		pc.StartPhase(PhaseHousekeepBottom)
		pc.EndRound()
	}

	stats := pc.Stats()

	if stats.AvgRoundDuration <= 0 {
		t.Error("expected positive average round duration after window filled")
	}

	if stats.RoundsPerSecond <= 0 {
		t.Error("expected positive rounds per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartRound()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndRound()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.AvgRoundDuration != 0 {
		t.Error("expected zero avg round duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_RecordPhasesFromReport(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.StartRound()
	pc.RecordPhases(map[string]time.Duration{
		PhaseMoveAll:   1 * time.Millisecond,
		PhaseRebalance: 3 * time.Millisecond,
	})
	pc.EndRound()

	stats := pc.Stats()
	if stats.PhaseAvg[PhaseRebalance] != 3*time.Millisecond {
		t.Errorf("expected rebalance phase of 3ms, got %v", stats.PhaseAvg[PhaseRebalance])
	}
	if stats.PhasePct[PhaseRebalance] <= stats.PhasePct[PhaseMoveAll] {
		t.Error("expected rebalance to take a larger share than move_all")
	}
}
