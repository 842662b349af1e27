package telemetry

// RoundStats summarizes one Tree.Update round for telemetry purposes,
// filled in by the caller from tree.UpdateReport (kept decoupled from
// the tree package so telemetry never needs to import it).
type RoundStats struct {
	Round            int
	NumParticles     int
	NumCZBottom      int
	NumCZBottomLocal int
	CostMin          float64
	CostMax          float64
	NumSplits        int
	NumMerges        int
}

// RoundStatsCSV is the flat, gocsv-taggable form of RoundStats written
// to round_stats.csv.
type RoundStatsCSV struct {
	Round            int     `csv:"round"`
	NumParticles     int     `csv:"num_particles"`
	NumCZBottom      int     `csv:"num_cz_bottom"`
	NumCZBottomLocal int     `csv:"num_cz_bottom_local"`
	CostMin          float64 `csv:"cost_min"`
	CostMax          float64 `csv:"cost_max"`
	NumSplits        int     `csv:"num_splits"`
	NumMerges        int     `csv:"num_merges"`
}

// ToCSV converts RoundStats to its flat CSV form.
func (r RoundStats) ToCSV() RoundStatsCSV {
	return RoundStatsCSV{
		Round:            r.Round,
		NumParticles:     r.NumParticles,
		NumCZBottom:      r.NumCZBottom,
		NumCZBottomLocal: r.NumCZBottomLocal,
		CostMin:          r.CostMin,
		CostMax:          r.CostMax,
		NumSplits:        r.NumSplits,
		NumMerges:        r.NumMerges,
	}
}
