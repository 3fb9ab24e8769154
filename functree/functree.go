// Package functree implements the expression trees that make up a genome's
// coding region: binary arithmetic operators at internal nodes, and four kinds
// of reference leaves (constants, sensor polls, pure and impure offset calls).
//
// Trees are pure data plus an evaluator; they know nothing about the world.
// Leaf references are plain integers resolved by the genome's link pass, and
// evaluation dispatches through an Env so the same tree works inside a live
// agent or a test harness.
package functree

import "math"

// Op is a binary operator at an internal tree node.
type Op int

const (
	Add Op = iota
	Sub
	Mul
	Div
	Mod
	Pow
	Equ
	Les
	Gre

	NumOps = 9
)

var opStrings = [NumOps]string{"+", "-", "*", "/", "%", "^", "=", "<", ">"}

// String returns the operator's serialization symbol.
func (op Op) String() string {
	if op < 0 || op >= NumOps {
		return "?"
	}
	return opStrings[op]
}

// RefType tags the four leaf kinds.
//
// PureCall evaluates the function of the gene at a relative offset.
// ImpureCall does the same but also performs the referenced gene's action.
// Sensor polls one of the agent's sensors.
// Constant simply yields a stored value.
type RefType int

const (
	PureCall RefType = iota
	ImpureCall
	Sensor
	Constant

	NumRefTypes = 4
)

// Env resolves the external references a tree may contain during evaluation.
// Indices have already been wrapped into their live domain by the link pass.
type Env interface {
	CallFunction(gene int) float64
	CallGene(gene int) float64
	PollSensor(sensor int) float64
}

// Node is one vertex of an expression tree.
type Node interface {
	// Eval computes the node's value under env. It never panics and always
	// returns a finite number.
	Eval(env Env) float64

	// Parent returns the node's back-reference, nil at the root.
	Parent() Node
	SetParent(p Node)

	// Clone deep-copies the subtree. The copy's parent is nil.
	Clone() Node

	// Size counts the nodes in the subtree.
	Size() int

	appendNodes(nodes []Node) []Node
	appendTokens(toks []string) []string
}

// OpNode is an internal node: a binary operator with two children.
type OpNode struct {
	Op    Op
	Left  Node
	Right Node

	parent Node
	eval   func(l, r float64) float64
}

// NewOpNode creates an internal node with crisp operator semantics. The
// comparison operators stay crisp until Fuzzify rebinds them.
func NewOpNode(op Op, left, right Node) *OpNode {
	n := &OpNode{Op: op, eval: crispEval(op)}
	n.Attach(left, right)
	return n
}

// Attach sets both children and their parent back-references.
func (n *OpNode) Attach(left, right Node) {
	n.Left = left
	n.Right = right
	if left != nil {
		left.SetParent(n)
	}
	if right != nil {
		right.SetParent(n)
	}
}

// ReplaceChild swaps the child currently equal to old for repl. No-op if old
// is neither child.
func (n *OpNode) ReplaceChild(old, repl Node) {
	if n.Left == old {
		n.Left = repl
	} else if n.Right == old {
		n.Right = repl
	} else {
		return
	}
	repl.SetParent(n)
}

// SwapOperands exchanges the node's two children.
func (n *OpNode) SwapOperands() {
	n.Left, n.Right = n.Right, n.Left
}

// SetOp changes the operator and rebinds the crisp evaluation function.
// Callers must re-fuzzify afterwards if the tree belongs to a genome.
func (n *OpNode) SetOp(op Op) {
	n.Op = op
	n.eval = crispEval(op)
}

// Fuzzify rebinds every comparison operator in the subtree to its continuous
// form parameterized by fuzziness f. Must be re-run whenever f changes or the
// tree is structurally altered.
func Fuzzify(root Node, f float64) {
	n, ok := root.(*OpNode)
	if !ok {
		return
	}
	switch n.Op {
	case Equ:
		n.eval = func(l, r float64) float64 {
			return math.Max(0, f-math.Abs(l-r)) / f
		}
	case Les:
		n.eval = func(l, r float64) float64 {
			return math.Min(f, math.Max(0, r-l)) / f
		}
	case Gre:
		n.eval = func(l, r float64) float64 {
			return math.Min(f, math.Max(0, l-r)) / f
		}
	}
	Fuzzify(n.Left, f)
	Fuzzify(n.Right, f)
}

func crispEval(op Op) func(l, r float64) float64 {
	switch op {
	case Add:
		return func(l, r float64) float64 { return l + r }
	case Sub:
		return func(l, r float64) float64 { return l - r }
	case Mul:
		return func(l, r float64) float64 { return l * r }
	case Div:
		return func(l, r float64) float64 {
			if r == 0 {
				return l
			}
			return l / r
		}
	case Mod:
		return func(l, r float64) float64 {
			if r == 0 {
				return l
			}
			return math.Mod(l, r)
		}
	case Pow:
		return func(l, r float64) float64 {
			if l == 0 {
				return 0
			}
			return math.Pow(l, r)
		}
	case Equ:
		return func(l, r float64) float64 {
			if l == r {
				return 1
			}
			return 0
		}
	case Les:
		return func(l, r float64) float64 {
			if l < r {
				return 1
			}
			return 0
		}
	case Gre:
		return func(l, r float64) float64 {
			if l > r {
				return 1
			}
			return 0
		}
	}
	return func(l, r float64) float64 { return 0 }
}

// Eval evaluates post-order. Any non-finite result is coerced to 0 so the
// evaluator can never raise or hang.
func (n *OpNode) Eval(env Env) float64 {
	l := n.Left.Eval(env)
	r := n.Right.Eval(env)
	v := n.eval(l, r)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func (n *OpNode) Parent() Node     { return n.parent }
func (n *OpNode) SetParent(p Node) { n.parent = p }

func (n *OpNode) Clone() Node {
	c := &OpNode{Op: n.Op, eval: n.eval}
	c.Attach(n.Left.Clone(), n.Right.Clone())
	return c
}

func (n *OpNode) Size() int { return 1 + n.Left.Size() + n.Right.Size() }

func (n *OpNode) appendNodes(nodes []Node) []Node {
	nodes = n.Left.appendNodes(nodes)
	nodes = append(nodes, n)
	return n.Right.appendNodes(nodes)
}

// Leaf is a terminal node holding one of the four reference kinds.
//
// Val is the raw stored value, which may transiently encode an out-of-domain
// number after mutation; Index is the usable resolved form computed by the
// genome's link pass (a gene index for offset calls, a sensor index for
// sensor polls).
type Leaf struct {
	Kind  RefType
	Val   float64
	Index int

	parent Node
}

// NewLeaf creates an unlinked leaf.
func NewLeaf(kind RefType, val float64) *Leaf {
	return &Leaf{Kind: kind, Val: val}
}

func (l *Leaf) Eval(env Env) float64 {
	switch l.Kind {
	case Constant:
		return l.Val
	case Sensor:
		return env.PollSensor(l.Index)
	case PureCall:
		return env.CallFunction(l.Index)
	case ImpureCall:
		return env.CallGene(l.Index)
	}
	return 0
}

func (l *Leaf) Parent() Node     { return l.parent }
func (l *Leaf) SetParent(p Node) { l.parent = p }

func (l *Leaf) Clone() Node {
	return &Leaf{Kind: l.Kind, Val: l.Val, Index: l.Index}
}

func (l *Leaf) Size() int { return 1 }

func (l *Leaf) appendNodes(nodes []Node) []Node { return append(nodes, l) }

// Flatten returns the subtree's nodes as an in-order list, used to pick a
// uniformly random node for point mutation.
func Flatten(root Node) []Node {
	return root.appendNodes(nil)
}
