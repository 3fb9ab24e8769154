package functree

import "math/rand"

// GenParams bundles the genome-derived parameters random generation needs.
type GenParams struct {
	GenomeLen   int
	ConstBounds [2]float64
	LeafWeights [NumRefTypes]float64
	NumSensors  int
}

// Random generates a tree of at most maxDepth levels. Depth strictly
// decreases on every path, so generation always terminates.
func Random(rng *rand.Rand, maxDepth int, p GenParams) Node {
	if maxDepth <= 1 {
		return RandomLeaf(rng, p)
	}
	op := Op(rng.Intn(NumOps))
	left := Random(rng, rng.Intn(maxDepth-1), p)
	right := Random(rng, rng.Intn(maxDepth-1), p)
	return NewOpNode(op, left, right)
}

// RandomLeaf draws a leaf kind from the configured weight table and a value
// uniform over the kind's domain.
func RandomLeaf(rng *rand.Rand, p GenParams) *Leaf {
	kind := RefType(WeightedChoice(rng, p.LeafWeights[:]))

	var val float64
	switch kind {
	case PureCall, ImpureCall:
		val = float64(rng.Intn(2*p.GenomeLen+1) - p.GenomeLen)
	case Sensor:
		val = float64(rng.Intn(p.NumSensors))
	default:
		val = rng.Float64()*(p.ConstBounds[1]-p.ConstBounds[0]) + p.ConstBounds[0]
	}
	return NewLeaf(kind, val)
}

// WeightedChoice picks an index with probability proportional to its weight.
// Falls back to a uniform draw when all weights are zero.
func WeightedChoice(rng *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return rng.Intn(len(weights))
	}
	r := rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// ReplaceSubtree substitutes repl for target and returns the (possibly new)
// tree root.
func ReplaceSubtree(root, target, repl Node) Node {
	p := target.Parent()
	if p == nil {
		repl.SetParent(nil)
		return repl
	}
	p.(*OpNode).ReplaceChild(target, repl)
	return root
}

// InsertOperator places a new operator node where target was, with target as
// one operand and fresh as the other (freshLeft picks the side). Returns the
// (possibly new) tree root.
func InsertOperator(root, target Node, op Op, fresh Node, freshLeft bool) Node {
	p := target.Parent()
	var n *OpNode
	if freshLeft {
		n = NewOpNode(op, fresh, target)
	} else {
		n = NewOpNode(op, target, fresh)
	}
	if p == nil {
		n.SetParent(nil)
		return n
	}
	p.(*OpNode).ReplaceChild(target, n)
	return root
}

// SwapOperandsAt swaps target's two operands. If target is a leaf its
// parent's operands are swapped instead; a leaf with no parent is a no-op.
func SwapOperandsAt(target Node) {
	n, ok := target.(*OpNode)
	if !ok {
		p := target.Parent()
		if p == nil {
			return
		}
		n = p.(*OpNode)
	}
	n.SwapOperands()
}
