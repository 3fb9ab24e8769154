// Package world runs the population on the grid: deterministic per-step
// agent execution and generational turnover.
package world

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/goomba/agent"
	"github.com/pthm-cable/goomba/config"
	"github.com/pthm-cable/goomba/genome"
	"github.com/pthm-cable/goomba/grid"
	"github.com/pthm-cable/goomba/telemetry"
)

// World owns the grid, the current cohort of goombas, and the elite archive.
// All randomness flows through the single rng, so identical seeds replay
// identical runs.
type World struct {
	Grid    *grid.Grid
	Goombas []*agent.Goomba

	steps      int
	generation int
	rng        *rand.Rand
	hof        *telemetry.HallOfFame

	seedMeta string
}

// New builds a fresh world: a weighted random grid and the initial cohort.
// When the seed config carries a coding region every founder starts from that
// genome; otherwise founders get random coding regions.
func New(rng *rand.Rand) (*World, error) {
	cfg := config.Cfg()

	g := grid.NewRandom(rng, cfg.World.Width, cfg.World.Height, grid.Weights{
		Boundary: cfg.World.BoundaryWeight,
		Dirty:    cfg.World.DirtyWeight,
		Clean:    cfg.World.CleanWeight,
	})

	w := &World{
		Grid:     g,
		rng:      rng,
		hof:      telemetry.NewHallOfFame(cfg.Elite.Size),
		seedMeta: cfg.Seed.Metagenome,
	}

	genomes := make([]*genome.Genome, cfg.Population.Size)
	for i := range genomes {
		var (
			gen *genome.Genome
			err error
		)
		if cfg.Seed.Coding != "" {
			gen, err = genome.New(cfg.Seed.Metagenome, cfg.Seed.Coding)
		} else {
			gen, err = w.freshGenome()
		}
		if err != nil {
			return nil, fmt.Errorf("seeding population: %w", err)
		}
		genomes[i] = gen
	}

	w.place(genomes)
	return w, nil
}

// Generation returns the index of the running generation.
func (w *World) Generation() int { return w.generation }

// Steps returns the step count within the running generation.
func (w *World) Steps() int { return w.steps }

// HallOfFame returns the run-wide elite archive.
func (w *World) HallOfFame() *telemetry.HallOfFame { return w.hof }

// Step advances the world one tick. Agents execute in slice order, each
// running its full Sense, Think, ChooseAction, PerformAction cycle before the
// next agent starts. When the episode budget is spent the generation turns
// over instead, and the completed generation's stats are returned.
func (w *World) Step() (telemetry.GenerationStats, bool) {
	if w.steps >= config.Cfg().World.GenTime {
		return w.turnover(), true
	}

	for _, g := range w.Goombas {
		g.Sense(w.Grid)
		g.Think()
		g.ChooseAction()
		g.PerformAction(w.Grid)
	}
	w.steps++
	return telemetry.GenerationStats{}, false
}

// freshGenome draws a random coding region under the seed metagenome, with a
// gene count uniform in the configured length range.
func (w *World) freshGenome() (*genome.Genome, error) {
	p := config.Cfg().Population
	length := p.GeneLenMin
	if p.GeneLenMax > p.GeneLenMin {
		length += w.rng.Intn(p.GeneLenMax - p.GeneLenMin + 1)
	}
	return genome.RandomCoding(w.rng, w.seedMeta, length)
}

// place replaces the cohort with fresh agents for the given genomes. Start
// tiles are drawn without replacement from the clean cells; tiles are reused
// only when the cohort outnumbers them.
func (w *World) place(genomes []*genome.Genome) {
	cells := w.Grid.CleanCells()
	w.rng.Shuffle(len(cells), func(i, j int) {
		cells[i], cells[j] = cells[j], cells[i]
	})

	w.Goombas = make([]*agent.Goomba, len(genomes))
	for i, gen := range genomes {
		pos := [2]int{1, 1}
		if len(cells) > 0 {
			pos = cells[i%len(cells)]
		}
		w.Goombas[i] = agent.New(gen, pos, w.rng)
	}
}
