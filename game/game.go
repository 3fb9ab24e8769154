// Package game wires the world, telemetry and renderer into a runnable
// session, windowed or headless.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/goomba/config"
	"github.com/pthm-cable/goomba/renderer"
	"github.com/pthm-cable/goomba/telemetry"
	"github.com/pthm-cable/goomba/world"
)

// Options configures a game session.
type Options struct {
	Seed           int64
	LogStats       bool
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
}

// Game holds the complete session state.
type Game struct {
	world *world.World
	rng   *rand.Rand
	out   *telemetry.OutputManager
	rend  *renderer.Renderer

	opts Options
	hud  renderer.HUDState
	tick int

	lastStats telemetry.GenerationStats
}

// New creates a game session. The seed fully determines the simulation.
func New(opts Options) (*Game, error) {
	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	w, err := world.New(rng)
	if err != nil {
		return nil, fmt.Errorf("creating world: %w", err)
	}

	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	if err := out.WriteConfig(config.Cfg()); err != nil {
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	g := &Game{
		world: w,
		rng:   rng,
		out:   out,
		opts:  opts,
		hud:   renderer.HUDState{StepsPerUpdate: opts.StepsPerUpdate},
	}
	if !opts.Headless {
		g.rend = renderer.New()
	}
	return g, nil
}

// Update handles input and advances the simulation, respecting pause and the
// speed multiplier.
func (g *Game) Update() {
	g.handleInput()
	if g.hud.Paused {
		return
	}
	for i := 0; i < g.hud.StepsPerUpdate; i++ {
		g.step()
	}
}

// UpdateHeadless advances the simulation without any input handling.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.hud.StepsPerUpdate; i++ {
		g.step()
	}
}

func (g *Game) step() {
	stats, turned := g.world.Step()
	g.tick++
	if !turned {
		return
	}

	g.lastStats = stats
	if g.opts.LogStats {
		stats.LogStats()
	}
	if err := g.out.WriteGeneration(stats); err != nil {
		slog.Error("writing generation stats", "err", err)
	}
	if err := g.out.WriteHallOfFame(g.world.HallOfFame()); err != nil {
		slog.Error("writing hall of fame", "err", err)
	}
}

// Draw renders the world and HUD.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.rend.DrawGrid(g.world.Grid)
	g.rend.DrawGoombas(g.world.Goombas)
	g.rend.DrawHUD(&g.hud, g.world.Generation(), g.world.Steps(), g.lastStats.BestScore)

	rl.EndDrawing()
}

// Tick returns the number of simulation steps taken.
func (g *Game) Tick() int { return g.tick }

// World exposes the underlying world, mainly for tests.
func (g *Game) World() *world.World { return g.world }

// Close flushes telemetry output.
func (g *Game) Close() error {
	return g.out.Close()
}
