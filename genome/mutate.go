package genome

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/goomba/functree"
)

// Mutate runs the genome-level mutation pass: one left-to-right sweep over
// gene positions, each drawing against the genome-edit rate, followed by a
// full re-link and a stochastic perturbation of the metagenome. Runs once
// per generation on every surviving or bred genome.
func (g *Genome) Mutate(rng *rand.Rand) {
	for i := 0; i < len(g.Genes); i++ {
		if rng.Float64() >= g.Meta.GenomeRate {
			continue
		}
		switch functree.WeightedChoice(rng, g.Meta.GenomeRel[:]) {
		case editInsert:
			fresh := g.Meta.randomGene(rng, len(g.Genes))
			g.insertGene(i, fresh)
			g.fuzzifyGene(fresh)
			i++
		case editDuplicate:
			dup := g.Genes[i].Clone()
			g.insertGene(i, dup)
			g.fuzzifyGene(dup)
			i++
		case editDelete:
			// Length floor of 1 keeps offset modulo arithmetic defined.
			if len(g.Genes) > 1 {
				g.Genes = append(g.Genes[:i], g.Genes[i+1:]...)
				i--
			}
		case editInvert:
			j := (i + 1) % len(g.Genes)
			g.Genes[i], g.Genes[j] = g.Genes[j], g.Genes[i]
		case editMuteGene:
			g.mutateGene(rng, g.Genes[i])
			g.fuzzifyGene(g.Genes[i])
		}
	}

	// Gene count or order may have changed.
	g.Link()
	g.Meta.Perturb(rng)
}

func (g *Genome) insertGene(i int, gene *Gene) {
	g.Genes = append(g.Genes, nil)
	copy(g.Genes[i+1:], g.Genes[i:])
	g.Genes[i] = gene
}

// mutateGene applies one gene-level mutation: an action-code change, a
// structural tree edit, or a point mutation of a single node.
func (g *Genome) mutateGene(rng *rand.Rand, gene *Gene) {
	m := g.Meta

	if rng.Float64() < m.GeneAction {
		gene.Action = Action(mutateEnum(rng, int(gene.Action), NumActions, m.EnumRel))
		return
	}

	nodes := functree.Flatten(gene.Root)
	target := nodes[rng.Intn(len(nodes))]

	if rng.Float64() < m.StructMod {
		g.mutateStructure(rng, gene, target)
		return
	}

	if op, ok := target.(*functree.OpNode); ok {
		op.SetOp(functree.Op(mutateEnum(rng, int(op.Op), functree.NumOps, m.EnumRel)))
		return
	}
	g.mutateLeaf(rng, target.(*functree.Leaf))
}

// mutateStructure applies one of the three structural edit primitives to the
// chosen node.
func (g *Genome) mutateStructure(rng *rand.Rand, gene *Gene, target functree.Node) {
	params := m2params(g)
	depth := int(math.Round(g.Meta.FunGenDepth))

	switch functree.WeightedChoice(rng, g.Meta.StructRel[:]) {
	case structReplace:
		fresh := functree.Random(rng, depth, params)
		gene.Root = functree.ReplaceSubtree(gene.Root, target, fresh)
	case structInsert:
		op := functree.Op(rng.Intn(functree.NumOps))
		fresh := functree.Random(rng, depth, params)
		gene.Root = functree.InsertOperator(gene.Root, target, op, fresh, rng.Intn(2) == 0)
	case structSwap:
		functree.SwapOperandsAt(target)
	}
}

// mutateLeaf either changes the leaf's reference kind or perturbs its value
// in a kind-appropriate way.
func (g *Genome) mutateLeaf(rng *rand.Rand, leaf *functree.Leaf) {
	m := g.Meta

	if rng.Float64() < m.LeafType {
		// Re-draw with the current kind excluded so the kind always differs.
		weights := m.LeafRel
		weights[leaf.Kind] = 0
		kind := functree.RefType(functree.WeightedChoice(rng, weights[:]))
		if kind == leaf.Kind {
			kind = functree.RefType((int(leaf.Kind) + 1 + rng.Intn(functree.NumRefTypes-1)) % functree.NumRefTypes)
		}
		if leaf.Kind == functree.Constant && leaf.Val != math.Trunc(leaf.Val) {
			leaf.Val = math.Round(leaf.Val)
		}
		leaf.Kind = kind
		return
	}

	switch leaf.Kind {
	case functree.Constant:
		leaf.Val = clamp(mutateConstant(rng, leaf.Val, m), m.ConstBounds[0], m.ConstBounds[1])
	case functree.PureCall, functree.ImpureCall:
		n := len(g.Genes)
		leaf.Val = float64(rng.Intn(2*n+1) - n)
	case functree.Sensor:
		leaf.Val = float64(rng.Intn(NumSensors))
	}
}

// mutateConstant drifts a constant by one of the four constant-mutation
// kinds, using the increment and multiply ranges.
func mutateConstant(rng *rand.Rand, v float64, m *Metagenome) float64 {
	switch functree.WeightedChoice(rng, m.ConstRel[:]) {
	case constIncrement:
		return v + rng.Float64()*m.IncrRange
	case constDecrement:
		return v - rng.Float64()*m.IncrRange
	case constMultiply:
		return v * (1 + rng.Float64()*(m.MultRange-1))
	default:
		return v / (1 + rng.Float64()*(m.MultRange-1))
	}
}

// mutateEnum cyclically perturbs a value over [0, n) by the kind drawn from
// the enum-mutation weight table.
func mutateEnum(rng *rand.Rand, v, n int, weights [3]float64) int {
	switch functree.WeightedChoice(rng, weights[:]) {
	case enumIncrement:
		return (v + 1) % n
	case enumDecrement:
		return (v + n - 1) % n
	default:
		return rng.Intn(n)
	}
}

func m2params(g *Genome) functree.GenParams {
	return g.Meta.GenParams(len(g.Genes))
}
