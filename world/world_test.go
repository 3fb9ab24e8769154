package world

import (
	"math/rand"
	"os"
	"testing"

	"github.com/pthm-cable/goomba/config"
)

func TestMain(m *testing.M) {
	config.MustInit("")
	os.Exit(m.Run())
}

// runGenerations steps w until n turnovers have happened.
func runGenerations(t *testing.T, w *World, n int) {
	t.Helper()
	turnovers := 0
	for i := 0; turnovers < n; i++ {
		if i > n*10*config.Cfg().World.GenTime {
			t.Fatalf("no turnover after %d steps", i)
		}
		if _, turned := w.Step(); turned {
			turnovers++
		}
	}
}

func TestPopulationSizeInvariant(t *testing.T) {
	w, err := New(rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	size := config.Cfg().Population.Size
	if len(w.Goombas) != size {
		t.Fatalf("initial population %d, want %d", len(w.Goombas), size)
	}

	runGenerations(t, w, 3)
	if len(w.Goombas) != size {
		t.Errorf("population after turnover %d, want %d", len(w.Goombas), size)
	}
	if w.Generation() != 3 {
		t.Errorf("Generation = %d, want 3", w.Generation())
	}
	if w.Steps() != 0 {
		t.Errorf("Steps = %d after turnover, want 0", w.Steps())
	}
}

func TestDistinctStartTiles(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		w, err := New(rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("seed %d: New: %v", seed, err)
		}

		checkDistinct := func(when string) {
			t.Helper()
			seen := make(map[[2]int]int)
			for i, g := range w.Goombas {
				if j, ok := seen[g.Pos]; ok {
					t.Fatalf("seed %d, %s: agents %d and %d share start tile %v", seed, when, j, i, g.Pos)
				}
				seen[g.Pos] = i
			}
		}

		checkDistinct("at seeding")
		runGenerations(t, w, 1)
		checkDistinct("after turnover")
	}
}

func TestSameSeedSameRun(t *testing.T) {
	cfg := config.Cfg()
	ow, oh := cfg.World.Width, cfg.World.Height
	cfg.World.Width, cfg.World.Height = 10, 10
	t.Cleanup(func() { cfg.World.Width, cfg.World.Height = ow, oh })

	run := func(seed int64) ([][2]int, []string) {
		w, err := New(rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		runGenerations(t, w, 2)
		for i := 0; i < 50; i++ {
			w.Step()
		}

		positions := make([][2]int, len(w.Goombas))
		codings := make([]string, len(w.Goombas))
		for i, g := range w.Goombas {
			positions[i] = g.Pos
			codings[i] = g.Genome.CodingString()
		}
		return positions, codings
	}

	posA, codA := run(1234)
	posB, codB := run(1234)

	for i := range posA {
		if posA[i] != posB[i] {
			t.Fatalf("agent %d position diverged: %v vs %v", i, posA[i], posB[i])
		}
		if codA[i] != codB[i] {
			t.Fatalf("agent %d genome diverged", i)
		}
	}
}

func TestTurnoverStats(t *testing.T) {
	w, err := New(rand.New(rand.NewSource(10)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	genTime := config.Cfg().World.GenTime
	for i := 0; i < genTime; i++ {
		if _, turned := w.Step(); turned {
			t.Fatalf("premature turnover at step %d", i)
		}
	}
	stats, turned := w.Step()
	if !turned {
		t.Fatal("expected turnover after the generation budget")
	}
	if stats.Generation != 0 {
		t.Errorf("stats.Generation = %d, want 0", stats.Generation)
	}
	if stats.Steps != genTime {
		t.Errorf("stats.Steps = %d, want %d", stats.Steps, genTime)
	}
	if stats.MeanGenomeLen <= 0 {
		t.Errorf("MeanGenomeLen = %v, want positive", stats.MeanGenomeLen)
	}
}

func TestHallOfFameFills(t *testing.T) {
	w, err := New(rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	runGenerations(t, w, 4)
	hof := w.HallOfFame()
	if hof.Size() == 0 {
		t.Skip("no viable agents in this run")
	}

	top, ok := hof.Top()
	if !ok {
		t.Fatal("Top empty despite nonzero size")
	}
	if top.Coding == "" || top.Metagenome == "" {
		t.Error("hall entry missing genome text")
	}
}
