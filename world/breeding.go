package world

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/goomba/agent"
	"github.com/pthm-cable/goomba/config"
	"github.com/pthm-cable/goomba/functree"
	"github.com/pthm-cable/goomba/genome"
	"github.com/pthm-cable/goomba/telemetry"
)

// turnover ends the running generation: scores and archives the cohort,
// breeds the next one, resets the dirt layout and the step counter. The new
// cohort has exactly the configured population size.
func (w *World) turnover() telemetry.GenerationStats {
	scores := make([]float64, len(w.Goombas))
	for i, g := range w.Goombas {
		scores[i] = g.Score()
	}

	// Rank indices by descending score; stable so equal scores keep cohort
	// order and turnover stays deterministic.
	order := make([]int, len(w.Goombas))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	stats := w.collectStats(scores)

	for _, i := range order {
		if scores[i] <= agent.SentinelScore {
			break
		}
		g := w.Goombas[i]
		meta, coding := g.Genome.Sequences()
		if !w.hof.Consider(telemetry.HallEntry{
			Score:        scores[i],
			Generation:   w.generation,
			Dirt:         g.Counts[agent.Dirt],
			TilesCovered: g.Counts[agent.TilesCovered],
			Moves:        g.Counts[agent.FwdMoves] + g.Counts[agent.BckwdMoves],
			Metagenome:   meta,
			Coding:       coding,
		}) {
			break
		}
	}

	next := w.breed(order, scores)

	w.Grid.ResetDirt()
	w.place(next)
	w.steps = 0
	w.generation++

	return stats
}

// breed composes the next cohort's genomes: elite clones, bred offspring,
// and a sprinkle of fresh random genomes.
func (w *World) breed(order []int, scores []float64) []*genome.Genome {
	p := config.Cfg().Population
	size := p.Size

	cloneN := int(float64(size) * p.CloneFraction)
	randomN := int(float64(size) * p.RandomFraction)
	if cloneN+randomN > size {
		randomN = size - cloneN
	}

	next := make([]*genome.Genome, 0, size)

	// Clones come from the merged elite: the top of this cohort and the
	// run-wide hall of fame compete for the clone slots. Cloning goes through
	// the textual encoding so every clone re-links and re-fuzzifies.
	for _, seq := range w.eliteSequences(order, scores, cloneN) {
		gen, err := genome.New(seq[0], seq[1])
		if err != nil {
			slog.Warn("elite clone failed to parse, substituting random", "err", err)
			gen = w.mustFresh()
		}
		next = append(next, gen)
	}

	// Breeding pool: the top breed fraction of the cohort, weighted linearly
	// from the success ramp at the best rank down to 1 at the worst.
	poolN := int(float64(size) * p.BreedFraction)
	if poolN < 2 {
		poolN = 2
	}
	if poolN > len(order) {
		poolN = len(order)
	}
	weights := make([]float64, poolN)
	floats.Span(weights, p.SuccessRamp, 1)

	for len(next) < size-randomN {
		mi := functree.WeightedChoice(w.rng, weights)
		di := functree.WeightedChoice(w.rng, weights)
		if poolN > 1 {
			for di == mi {
				di = functree.WeightedChoice(w.rng, weights)
			}
		}
		mum := w.Goombas[order[mi]].Genome
		dad := w.Goombas[order[di]].Genome

		child, err := genome.Crossover(w.rng, mum, dad)
		if err != nil {
			slog.Warn("crossover failed, substituting random", "err", err)
			next = append(next, w.mustFresh())
			continue
		}
		child.Mutate(w.rng)
		next = append(next, child)
	}

	for len(next) < size {
		next = append(next, w.mustFresh())
	}
	return next
}

// eliteSequences merges the cohort's top n agents with the hall of fame and
// returns the n best genome sequence pairs, best first.
func (w *World) eliteSequences(order []int, scores []float64, n int) [][2]string {
	type candidate struct {
		score float64
		seq   [2]string
	}

	var cands []candidate
	for i := 0; i < n && i < len(order); i++ {
		g := w.Goombas[order[i]]
		meta, coding := g.Genome.Sequences()
		cands = append(cands, candidate{scores[order[i]], [2]string{meta, coding}})
	}
	for _, e := range w.hof.Entries() {
		cands = append(cands, candidate{e.Score, [2]string{e.Metagenome, e.Coding}})
	}
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].score > cands[b].score })

	if len(cands) > n {
		cands = cands[:n]
	}
	seqs := make([][2]string, len(cands))
	for i, c := range cands {
		seqs[i] = c.seq
	}
	return seqs
}

// mustFresh draws a random genome, panicking only on a broken seed
// metagenome, which New has already validated.
func (w *World) mustFresh() *genome.Genome {
	gen, err := w.freshGenome()
	if err != nil {
		panic("world: seed metagenome no longer parses: " + err.Error())
	}
	return gen
}

// collectStats aggregates the completed generation's telemetry before the
// cohort is replaced.
func (w *World) collectStats(scores []float64) telemetry.GenerationStats {
	stats := telemetry.GenerationStats{
		Generation: w.generation,
		Steps:      w.steps,
		DirtyTiles: w.Grid.DirtyCount(),
	}
	stats.ScoreStats(scores, agent.SentinelScore)

	n := len(w.Goombas)
	if n == 0 {
		return stats
	}
	var coverage, genomeLen, treeSize int
	for _, g := range w.Goombas {
		stats.TotalDirt += g.Counts[agent.Dirt]
		stats.TotalBumps += g.Counts[agent.Bumps]
		stats.TotalThoughts += g.Counts[agent.Thoughts]
		coverage += g.Counts[agent.TilesCovered]
		genomeLen += g.Genome.Len()
		treeSize += g.Counts[agent.GenomeSize]
	}
	stats.MeanCoverage = float64(coverage) / float64(n)
	stats.MeanGenomeLen = float64(genomeLen) / float64(n)
	stats.MeanTreeSize = float64(treeSize) / float64(n)
	return stats
}
