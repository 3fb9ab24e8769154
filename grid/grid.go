// Package grid holds the tile grid the agents inhabit.
package grid

import "math/rand"

// TileState is the state of one grid cell.
type TileState int8

const (
	Boundary TileState = -1
	Clean    TileState = 0
	Dirty    TileState = 1
)

// Grid is a bounded rectangle of tiles. Out-of-bounds reads yield Boundary;
// out-of-bounds writes are ignored.
type Grid struct {
	Width  int
	Height int

	tiles []TileState

	// initDirt records the dirty cells at generation time so episodes can
	// be replayed on the same layout.
	initDirt [][2]int
}

// Weights is the relative tile distribution for interior cells.
type Weights struct {
	Boundary float64
	Dirty    float64
	Clean    float64
}

// NewRandom generates a grid with interior cells drawn from the weighted
// distribution and the outer ring forced to Boundary. The initial dirty
// layout is recorded for ResetDirt.
func NewRandom(rng *rand.Rand, width, height int, w Weights) *Grid {
	g := &Grid{
		Width:  width,
		Height: height,
		tiles:  make([]TileState, width*height),
	}

	total := w.Boundary + w.Dirty + w.Clean
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				g.tiles[y*width+x] = Boundary
				continue
			}
			r := rng.Float64() * total
			switch {
			case r < w.Boundary:
				g.tiles[y*width+x] = Boundary
			case r < w.Boundary+w.Dirty:
				g.tiles[y*width+x] = Dirty
				g.initDirt = append(g.initDirt, [2]int{x, y})
			default:
				g.tiles[y*width+x] = Clean
			}
		}
	}
	return g
}

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// Tile returns the state at (x, y), Boundary when out of bounds.
func (g *Grid) Tile(x, y int) TileState {
	if !g.InBounds(x, y) {
		return Boundary
	}
	return g.tiles[y*g.Width+x]
}

// SetTile writes the state at (x, y); ignored out of bounds.
func (g *Grid) SetTile(x, y int, s TileState) {
	if g.InBounds(x, y) {
		g.tiles[y*g.Width+x] = s
	}
}

// ResetDirt restores the dirt layout recorded at generation time: every
// non-boundary tile is wiped clean and the original dirty cells re-dirtied.
func (g *Grid) ResetDirt() {
	for i, t := range g.tiles {
		if t == Dirty {
			g.tiles[i] = Clean
		}
	}
	for _, d := range g.initDirt {
		g.tiles[d[1]*g.Width+d[0]] = Dirty
	}
}

// CleanCells lists the coordinates of all currently Clean tiles, in row
// order. Used to sample agent start positions.
func (g *Grid) CleanCells() [][2]int {
	var cells [][2]int
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.tiles[y*g.Width+x] == Clean {
				cells = append(cells, [2]int{x, y})
			}
		}
	}
	return cells
}

// DirtyCount returns the number of currently Dirty tiles.
func (g *Grid) DirtyCount() int {
	n := 0
	for _, t := range g.tiles {
		if t == Dirty {
			n++
		}
	}
	return n
}
