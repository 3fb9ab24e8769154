package game

import rl "github.com/gen2brain/raylib-go/raylib"

const maxStepsPerUpdate = 20

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		g.hud.Paused = !g.hud.Paused
	}

	// Speed control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.hud.StepsPerUpdate > 1 {
		g.hud.StepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.hud.StepsPerUpdate < maxStepsPerUpdate {
		g.hud.StepsPerUpdate++
	}
}
