package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// GenerationStats holds aggregated statistics for one completed generation
// episode, computed at turnover time.
type GenerationStats struct {
	Generation int `csv:"generation"`
	Steps      int `csv:"steps"`

	BestScore   float64 `csv:"best_score"`
	MeanScore   float64 `csv:"mean_score"`
	ScoreStdDev float64 `csv:"score_stddev"`

	// Episode aggregates across the population.
	TotalDirt     int     `csv:"total_dirt"`
	TotalBumps    int     `csv:"total_bumps"`
	TotalThoughts int     `csv:"total_thoughts"`
	MeanCoverage  float64 `csv:"mean_coverage"`
	MeanGenomeLen float64 `csv:"mean_genome_len"`
	MeanTreeSize  float64 `csv:"mean_tree_size"`

	// World state at turnover.
	DirtyTiles int `csv:"dirty_tiles"`

	// Viability: agents that moved at least once.
	Viable int `csv:"viable"`
}

// ScoreStats fills the score aggregates from the population's final scores.
// Sentinel-scoring (motionless) agents are excluded from mean and spread so
// a few non-viable genomes don't swamp the statistics.
func (s *GenerationStats) ScoreStats(scores []float64, sentinel float64) {
	if len(scores) == 0 {
		return
	}

	best := scores[0]
	viable := make([]float64, 0, len(scores))
	for _, v := range scores {
		if v > best {
			best = v
		}
		if v > sentinel {
			viable = append(viable, v)
		}
	}

	s.BestScore = best
	s.Viable = len(viable)
	if len(viable) > 0 {
		s.MeanScore = stat.Mean(viable, nil)
		s.ScoreStdDev = stat.StdDev(viable, nil)
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("steps", s.Steps),
		slog.Float64("best_score", s.BestScore),
		slog.Float64("mean_score", s.MeanScore),
		slog.Float64("score_stddev", s.ScoreStdDev),
		slog.Int("total_dirt", s.TotalDirt),
		slog.Int("total_bumps", s.TotalBumps),
		slog.Int("total_thoughts", s.TotalThoughts),
		slog.Float64("mean_coverage", s.MeanCoverage),
		slog.Float64("mean_genome_len", s.MeanGenomeLen),
		slog.Float64("mean_tree_size", s.MeanTreeSize),
		slog.Int("dirty_tiles", s.DirtyTiles),
		slog.Int("viable", s.Viable),
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation",
		"generation", s.Generation,
		"steps", s.Steps,
		"best_score", s.BestScore,
		"mean_score", s.MeanScore,
		"score_stddev", s.ScoreStdDev,
		"total_dirt", s.TotalDirt,
		"total_bumps", s.TotalBumps,
		"total_thoughts", s.TotalThoughts,
		"mean_coverage", s.MeanCoverage,
		"mean_genome_len", s.MeanGenomeLen,
		"mean_tree_size", s.MeanTreeSize,
		"dirty_tiles", s.DirtyTiles,
		"viable", s.Viable,
	)
}
