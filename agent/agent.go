// Package agent implements the goomba runtime: the binding of a genome to a
// live position, orientation, memory and state, executed once per world tick.
//
// A tick runs four strictly sequential phases: Sense snapshots the nearby
// tiles, Think evaluates the genome into intent weights, ChooseAction picks
// the strongest effect, and PerformAction applies it to the world. The only
// guard against unbounded or cyclic recursion is the tick-scoped execution
// depth counter; once it saturates, further offset calls return 0.
package agent

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/goomba/config"
	"github.com/pthm-cable/goomba/genome"
	"github.com/pthm-cable/goomba/grid"
)

// Count indexes the per-episode counters that contribute to fitness.
type Count int

const (
	Dirt Count = iota
	FwdMoves
	BckwdMoves
	Bumps
	LeftTurns
	RightTurns
	Sucks
	Thoughts
	GenomeSize
	TilesCovered

	NumCounts
)

// SentinelScore is returned for agents that never moved during an episode;
// motionless goombas are never viable.
const SentinelScore = -1e18

// Goomba is an autonomous robotic vacuum cleaner whose behaviour is
// genetically determined.
type Goomba struct {
	Pos    [2]int
	Ori    [2]int // unit axis vector; Pos+Ori is one move forward
	Genome *genome.Genome
	Intent genome.Action
	Counts [NumCounts]int

	state   float64
	sensors [genome.NumSensors]float64 // only the snapshot slots are written
	memory  []float64
	queue   []int // gene indices; iterated by index because it grows mid-pass

	// exprOrder is the permutation of gene indices used to seed the queue;
	// Promote and Demote rearrange it.
	exprOrder []int

	intentWeights [genome.NumActions]float64
	execDepth     int

	tilesCovered map[[2]int]struct{}
	rng          *rand.Rand

	// Capacities cached from config at construction.
	execStackSize int
	numInitFuns   int
	queueSize     int
	memSize       int
	suckFailProb  float64
}

// New binds a genome to a fresh agent at the given position with a random
// orientation.
func New(gen *genome.Genome, pos [2]int, rng *rand.Rand) *Goomba {
	cfg := config.Cfg()

	orientations := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	g := &Goomba{
		Pos:    pos,
		Ori:    orientations[rng.Intn(4)],
		Genome: gen,
		Intent: genome.Wait,

		exprOrder:    make([]int, gen.Len()),
		tilesCovered: make(map[[2]int]struct{}),
		rng:          rng,

		execStackSize: cfg.Agent.ExecStackSize,
		numInitFuns:   cfg.Agent.NumInitFuns,
		queueSize:     cfg.Agent.GeneQueueSize,
		memSize:       cfg.Agent.MemSize,
		suckFailProb:  cfg.Agent.SuckFailProb,
	}
	for i := range g.exprOrder {
		g.exprOrder[i] = i
	}
	g.queue = make([]int, 0, g.queueSize)
	g.memory = make([]float64, 0, g.memSize)
	g.Counts[GenomeSize] = gen.Size()
	return g
}

// FromSequences constructs an agent from a genome sequence pair.
func FromSequences(meta, coding string, pos [2]int, rng *rand.Rand) (*Goomba, error) {
	gen, err := genome.New(meta, coding)
	if err != nil {
		return nil, err
	}
	return New(gen, pos, rng), nil
}

// Sense snapshots the tile underneath, the three tiles ahead, left and right
// of the current orientation, and one fresh random bit. Position,
// orientation, state and memory are read live during evaluation instead.
func (g *Goomba) Sense(w *grid.Grid) {
	x, y := g.Pos[0], g.Pos[1]
	ox, oy := g.Ori[0], g.Ori[1]

	g.sensors[genome.Tile] = float64(w.Tile(x, y))
	g.sensors[genome.Rand] = float64(g.rng.Intn(2))
	g.sensors[genome.Front] = float64(w.Tile(x+ox, y+oy))
	g.sensors[genome.Left] = float64(w.Tile(x-oy, y+ox))
	g.sensors[genome.Right] = float64(w.Tile(x+oy, y-ox))
}

// Think resets the intent weights and the execution queue, seeds the queue
// from the expression order, and runs genes until the queue is exhausted.
// Executed genes may append further genes via the Call action, up to the
// queue capacity, so total work per tick is bounded but can exceed the seed
// count.
func (g *Goomba) Think() {
	g.freshIntent()

	n := g.numInitFuns
	if n > len(g.exprOrder) {
		n = len(g.exprOrder)
	}
	for i := 0; i < n; i++ {
		g.queue = append(g.queue, g.exprOrder[i])
	}

	for i := 0; i < len(g.queue); i++ {
		g.CallGene(g.queue[i])
	}
}

// freshIntent resets the intent weights and expression queue for a new tick.
func (g *Goomba) freshIntent() {
	g.Intent = genome.Wait
	for i := range g.intentWeights {
		g.intentWeights[i] = 0
	}
	g.queue = g.queue[:0]
}

// CallFunction evaluates the function of the gene at index, respecting the
// tick-scoped execution depth bound. Part of the functree.Env contract.
func (g *Goomba) CallFunction(index int) float64 {
	if g.execDepth >= g.execStackSize {
		return 0
	}
	g.execDepth++
	v := g.Genome.Genes[index].Root.Eval(g)
	g.execDepth--

	g.Counts[Thoughts]++
	return v
}

// CallGene evaluates the gene at index and dispatches its action with the
// result, respecting the execution depth bound.
func (g *Goomba) CallGene(index int) float64 {
	if g.execDepth >= g.execStackSize {
		return 0
	}
	g.execDepth++
	gene := g.Genome.Genes[index]
	v := gene.Root.Eval(g)
	g.dispatch(gene.Action, v)
	g.execDepth--

	g.Counts[Thoughts]++
	return v
}

// PollSensor returns the live value of the sensor at index. Part of the
// functree.Env contract.
func (g *Goomba) PollSensor(index int) float64 {
	switch genome.Sensor(index) {
	case genome.PosX:
		return float64(g.Pos[0])
	case genome.PosY:
		return float64(g.Pos[1])
	case genome.OriX:
		return float64(g.Ori[0])
	case genome.OriY:
		return float64(g.Ori[1])
	case genome.State:
		return g.state
	case genome.Mem:
		return g.peekMemory()
	default:
		return g.sensors[index]
	}
}

// dispatch hypothesises an action: effect actions accumulate the value into
// their intent weight, mental actions execute immediately.
func (g *Goomba) dispatch(action genome.Action, val float64) {
	if action.IsEffect() {
		g.intentWeights[action] += val
		return
	}

	// Gene references wrap modulo the live genome length so that genes stay
	// useful over most of their value range.
	index := wrapFloat(val, g.Genome.Len())

	switch action {
	case genome.Call:
		if len(g.queue) < g.queueSize {
			g.queue = append(g.queue, index)
		}
	case genome.Promote:
		g.shiftRank(index, -1)
	case genome.Demote:
		g.shiftRank(index, +1)
	case genome.Remember:
		if len(g.memory) < g.memSize {
			g.memory = append(g.memory, val)
		}
	case genome.Forget:
		if len(g.memory) > 0 {
			g.memory = g.memory[:len(g.memory)-1]
		}
	case genome.SetState:
		g.state = val
	}
}

// shiftRank swaps a gene's rank with its immediate neighbour in the
// expression order; no-op at either end.
func (g *Goomba) shiftRank(index, delta int) {
	for rank, gi := range g.exprOrder {
		if gi != index {
			continue
		}
		other := rank + delta
		if other >= 0 && other < len(g.exprOrder) {
			g.exprOrder[rank], g.exprOrder[other] = g.exprOrder[other], g.exprOrder[rank]
		}
		return
	}
}

func (g *Goomba) peekMemory() float64 {
	if len(g.memory) == 0 {
		return 0
	}
	return g.memory[len(g.memory)-1]
}

// ChooseAction picks the effect action with the maximal accumulated intent
// weight. Ties favour the first-encountered action in the fixed effect
// order; Wait wins when no weight exceeds zero.
func (g *Goomba) ChooseAction() {
	strongest := genome.Wait
	best := 0.0
	for _, a := range genome.Effects {
		if g.intentWeights[a] > best {
			strongest, best = a, g.intentWeights[a]
		}
	}
	g.Intent = strongest
}

// PerformAction applies the chosen action's world effect.
func (g *Goomba) PerformAction(w *grid.Grid) {
	g.sensors[genome.Bump] = 0

	switch g.Intent {
	case genome.Forward:
		g.move(w, 1, FwdMoves)
	case genome.Backward:
		g.move(w, -1, BckwdMoves)
	case genome.LeftTurn:
		g.Ori = [2]int{-g.Ori[1], g.Ori[0]}
		g.Counts[LeftTurns]++
	case genome.RightTurn:
		g.Ori = [2]int{g.Ori[1], -g.Ori[0]}
		g.Counts[RightTurns]++
	case genome.Suck:
		g.suck(w)
	}
}

// move attempts a one-tile move along (dir=1) or against (dir=-1) the
// current orientation. Boundary tiles and the grid edge bump instead.
func (g *Goomba) move(w *grid.Grid, dir int, counter Count) {
	nx := g.Pos[0] + dir*g.Ori[0]
	ny := g.Pos[1] + dir*g.Ori[1]

	if w.InBounds(nx, ny) && w.Tile(nx, ny) != grid.Boundary {
		g.Pos = [2]int{nx, ny}
		g.Counts[counter]++
		if _, seen := g.tilesCovered[g.Pos]; !seen {
			g.tilesCovered[g.Pos] = struct{}{}
			g.Counts[TilesCovered]++
		}
	} else {
		g.Counts[Bumps]++
		g.sensors[genome.Bump] = 1
	}
}

// suck attempts to clean the current tile. There is a fixed chance the tile
// is dirtied instead. No effect on boundary tiles.
func (g *Goomba) suck(w *grid.Grid) {
	g.Counts[Sucks]++
	x, y := g.Pos[0], g.Pos[1]
	before := w.Tile(x, y)
	if !w.InBounds(x, y) || before == grid.Boundary {
		return
	}

	after := grid.Clean
	if g.rng.Float64() < g.suckFailProb {
		after = grid.Dirty
	}

	switch {
	case before == grid.Clean && after == grid.Dirty && g.Counts[Dirt] > 0:
		w.SetTile(x, y, after)
		g.Counts[Dirt]--
	case before == grid.Dirty && after == grid.Clean:
		w.SetTile(x, y, after)
		g.Counts[Dirt]++
	}
}

// Score determines the agent's fitness: the weighted sum of its episode
// counters, or the sentinel minimum if it never moved.
func (g *Goomba) Score() float64 {
	if g.Counts[FwdMoves]+g.Counts[BckwdMoves] == 0 {
		return SentinelScore
	}

	f := config.Cfg().Fitness
	weights := [NumCounts]float64{
		Dirt:         f.Dirt,
		FwdMoves:     f.FwdMoves,
		BckwdMoves:   f.BckwdMoves,
		Bumps:        f.Bumps,
		LeftTurns:    f.LeftTurns,
		RightTurns:   f.RightTurns,
		Sucks:        f.Sucks,
		Thoughts:     f.Thoughts,
		GenomeSize:   f.GenomeSize,
		TilesCovered: f.TilesCovered,
	}

	score := 0.0
	for c := Count(0); c < NumCounts; c++ {
		score += float64(g.Counts[c]) * weights[c]
	}
	return score
}

// State returns the agent's scalar internal state.
func (g *Goomba) State() float64 { return g.state }

// wrapFloat rounds v and wraps it into [0, n). The modulo happens in float
// space first so arbitrarily large evaluation results stay well-defined.
func wrapFloat(v float64, n int) int {
	r := math.Mod(math.Round(v), float64(n))
	if r < 0 {
		r += float64(n)
	}
	return int(r) % n
}
