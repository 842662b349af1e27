package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one Update round, matching tree.Phase* constants.
const (
	PhaseMoveAll         = "move_all"
	PhaseRebalance       = "rebalance"
	PhasePushDown        = "push_down_orphans"
	PhaseHousekeepBottom = "housekeep_bottom"
	PhaseHousekeepTop    = "housekeep_top"
	PhaseGravity         = "gravity"
	PhaseNeighbors       = "neighbors"
)

// PerfSample holds timing data for a single round.
type PerfSample struct {
	RoundDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window of
// rounds.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	roundStart    time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of rounds to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 50
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartRound begins timing a new Update round.
func (p *PerfCollector) StartRound() {
	p.roundStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// RecordPhases merges an already-measured phase breakdown (e.g. from
// tree.UpdateReport.PhaseDurations) directly into the current round
// instead of requiring StartPhase/StartPhase bracketing calls.
func (p *PerfCollector) RecordPhases(durations map[string]time.Duration) {
	for phase, d := range durations {
		p.currentPhases[phase] += d
	}
}

// EndRound finishes timing the current round and records the sample.
func (p *PerfCollector) EndRound() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	sample := PerfSample{
		RoundDuration: now.Sub(p.roundStart),
		Phases:        p.currentPhases,
	}

	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics over a window.
type PerfStats struct {
	AvgRoundDuration time.Duration
	MinRoundDuration time.Duration
	MaxRoundDuration time.Duration

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	RoundsPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var totalRound time.Duration
	var minRound, maxRound time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalRound += s.RoundDuration

		if i == 0 || s.RoundDuration < minRound {
			minRound = s.RoundDuration
		}
		if s.RoundDuration > maxRound {
			maxRound = s.RoundDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgRound := totalRound / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgRound > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgRound) * 100
		}
	}

	var roundsPerSec float64
	if avgRound > 0 {
		roundsPerSec = float64(time.Second) / float64(avgRound)
	}

	return PerfStats{
		AvgRoundDuration: avgRound,
		MinRoundDuration: minRound,
		MaxRoundDuration: maxRound,
		PhaseAvg:         phaseAvg,
		PhasePct:         phasePct,
		RoundsPerSecond:  roundsPerSec,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_round_us", s.AvgRoundDuration.Microseconds(),
		"min_round_us", s.MinRoundDuration.Microseconds(),
		"max_round_us", s.MaxRoundDuration.Microseconds(),
		"rounds_per_sec", int(s.RoundsPerSecond),
	}

	phases := []string{
		PhaseMoveAll, PhaseRebalance, PhasePushDown,
		PhaseHousekeepBottom, PhaseHousekeepTop, PhaseGravity, PhaseNeighbors,
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_round_us", s.AvgRoundDuration.Microseconds()),
		slog.Int64("min_round_us", s.MinRoundDuration.Microseconds()),
		slog.Int64("max_round_us", s.MaxRoundDuration.Microseconds()),
		slog.Float64("rounds_per_sec", s.RoundsPerSecond),
	}
	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats via
// gocsv.
type PerfStatsCSV struct {
	WindowEnd            int32   `csv:"window_end"`
	AvgRoundUS           int64   `csv:"avg_round_us"`
	MinRoundUS           int64   `csv:"min_round_us"`
	MaxRoundUS           int64   `csv:"max_round_us"`
	RoundsPerSec         float64 `csv:"rounds_per_sec"`
	MoveAllPct           float64 `csv:"move_all_pct"`
	RebalancePct         float64 `csv:"rebalance_pct"`
	PushDownPct          float64 `csv:"push_down_pct"`
	HousekeepBottomPct   float64 `csv:"housekeep_bottom_pct"`
	HousekeepTopPct      float64 `csv:"housekeep_top_pct"`
	GravityPct           float64 `csv:"gravity_pct"`
	NeighborsPct         float64 `csv:"neighbors_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:          windowEnd,
		AvgRoundUS:         s.AvgRoundDuration.Microseconds(),
		MinRoundUS:         s.MinRoundDuration.Microseconds(),
		MaxRoundUS:         s.MaxRoundDuration.Microseconds(),
		RoundsPerSec:       s.RoundsPerSecond,
		MoveAllPct:         s.PhasePct[PhaseMoveAll],
		RebalancePct:       s.PhasePct[PhaseRebalance],
		PushDownPct:        s.PhasePct[PhasePushDown],
		HousekeepBottomPct: s.PhasePct[PhaseHousekeepBottom],
		HousekeepTopPct:    s.PhasePct[PhaseHousekeepTop],
		GravityPct:         s.PhasePct[PhaseGravity],
		NeighborsPct:       s.PhasePct[PhaseNeighbors],
	}
}
