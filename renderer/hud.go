package renderer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDState is the mutable control state the HUD edits in place.
type HUDState struct {
	Paused         bool
	StepsPerUpdate int
}

// DrawHUD renders the control strip: pause button, speed slider, and the run
// counters.
func (r *Renderer) DrawHUD(s *HUDState, generation, steps int, bestScore float64) {
	label := "Pause"
	if s.Paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: 10, Y: 10, Width: 90, Height: 26}, label) {
		s.Paused = !s.Paused
	}

	speed := gui.SliderBar(
		rl.Rectangle{X: 160, Y: 10, Width: 140, Height: 26},
		"Speed", fmt.Sprintf("%dx", s.StepsPerUpdate),
		float32(s.StepsPerUpdate), 1, 20,
	)
	s.StepsPerUpdate = int(speed + 0.5)
	if s.StepsPerUpdate < 1 {
		s.StepsPerUpdate = 1
	}

	rl.DrawText(fmt.Sprintf("Gen %d  Step %d", generation, steps), 10, 46, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Best %.1f", bestScore), 10, 70, 20, rl.White)
	if s.Paused {
		rl.DrawText("PAUSED", 10, 94, 20, rl.Yellow)
	}
}
