// Package renderer draws the grid and the goombas with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/goomba/agent"
	"github.com/pthm-cable/goomba/config"
	"github.com/pthm-cable/goomba/grid"
)

// Renderer projects grid coordinates onto the screen and draws the world.
type Renderer struct {
	tilePx  float32
	originX float32
	originY float32
}

// New creates a renderer using the derived screen layout from config.
func New() *Renderer {
	d := config.Cfg().Derived
	return &Renderer{tilePx: d.TilePx, originX: d.OriginX, originY: d.OriginY}
}

var tileColors = map[grid.TileState]rl.Color{
	grid.Boundary: rl.NewColor(58, 58, 70, 255),
	grid.Clean:    rl.NewColor(226, 224, 214, 255),
	grid.Dirty:    rl.NewColor(150, 110, 60, 255),
}

// DrawGrid renders every tile.
func (r *Renderer) DrawGrid(g *grid.Grid) {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			px, py := r.project(x, y)
			rl.DrawRectangle(int32(px), int32(py), int32(r.tilePx)+1, int32(r.tilePx)+1, tileColors[g.Tile(x, y)])
		}
	}
}

// DrawGoombas renders each agent as an oriented triangle in its genome's
// body colour, outlined in its trim colour.
func (r *Renderer) DrawGoombas(goombas []*agent.Goomba) {
	for _, g := range goombas {
		px, py := r.project(g.Pos[0], g.Pos[1])
		cx := px + r.tilePx/2
		cy := py + r.tilePx/2
		radius := r.tilePx * 0.4

		heading := float32(math.Atan2(float64(g.Ori[1]), float64(g.Ori[0])))
		body := metaColor(g.Genome.Meta.Colors[0])
		trim := metaColor(g.Genome.Meta.Colors[1])
		drawOrientedTriangle(cx, cy, heading, radius, body, trim)
	}
}

// project maps a grid cell to its on-screen top-left corner.
func (r *Renderer) project(x, y int) (float32, float32) {
	return r.originX + float32(x)*r.tilePx, r.originY + float32(y)*r.tilePx
}

func metaColor(c [3]float64) rl.Color {
	return rl.NewColor(uint8(c[0]*255), uint8(c[1]*255), uint8(c[2]*255), 255)
}

// drawOrientedTriangle draws a triangle pointing in the heading direction.
func drawOrientedTriangle(x, y, heading, radius float32, fill, line rl.Color) {
	cos := float32(math.Cos(float64(heading)))
	sin := float32(math.Sin(float64(heading)))

	frontX := x + cos*radius*1.4
	frontY := y + sin*radius*1.4

	backAngle := heading + math.Pi*0.8
	backLeftX := x + float32(math.Cos(float64(backAngle)))*radius
	backLeftY := y + float32(math.Sin(float64(backAngle)))*radius

	backAngle = heading - math.Pi*0.8
	backRightX := x + float32(math.Cos(float64(backAngle)))*radius
	backRightY := y + float32(math.Sin(float64(backAngle)))*radius

	v1 := rl.Vector2{X: frontX, Y: frontY}
	v2 := rl.Vector2{X: backLeftX, Y: backLeftY}
	v3 := rl.Vector2{X: backRightX, Y: backRightY}

	// DrawTriangle requires counter-clockwise winding (v1, v3, v2)
	rl.DrawTriangle(v1, v3, v2, fill)
	rl.DrawTriangleLines(v1, v2, v3, line)
}
