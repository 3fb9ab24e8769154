package functree

import (
	"math"
	"testing"
)

// stubEnv resolves references with fixed functions, defaulting to zero.
type stubEnv struct {
	fn     func(int) float64
	gene   func(int) float64
	sensor func(int) float64
}

func (e stubEnv) CallFunction(i int) float64 {
	if e.fn != nil {
		return e.fn(i)
	}
	return 0
}

func (e stubEnv) CallGene(i int) float64 {
	if e.gene != nil {
		return e.gene(i)
	}
	return 0
}

func (e stubEnv) PollSensor(i int) float64 {
	if e.sensor != nil {
		return e.sensor(i)
	}
	return 0
}

func mustParse(t *testing.T, expr string) Node {
	t.Helper()
	root, err := ParseAll(tokens(expr))
	if err != nil {
		t.Fatalf("parsing %q: %v", expr, err)
	}
	return root
}

func TestCrispEval(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"+ 2 3", 5},
		{"- 2 3", -1},
		{"* 2 3", 6},
		{"/ 6 3", 2},
		{"/ 4 0", 4},  // division by zero yields the left operand
		{"% 7 4", 3},
		{"% 5 0", 5},  // modulo by zero yields the left operand
		{"^ 2 3", 8},
		{"^ 0 -2", 0}, // zero base never explodes
		{"= 2 2", 1},
		{"= 2 3", 0},
		{"< 1 2", 1},
		{"< 2 1", 0},
		{"> 2 1", 1},
		{"> 1 2", 0},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := mustParse(t, tt.expr).Eval(stubEnv{})
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Eval(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvalCoercesNonFinite(t *testing.T) {
	tests := []string{
		"^ 10 100000",      // +Inf
		"* 1e308 1e308",    // +Inf
		"* -1e308 1e308",   // -Inf
	}
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			if got := mustParse(t, expr).Eval(stubEnv{}); got != 0 {
				t.Errorf("Eval(%q) = %v, want 0", expr, got)
			}
		})
	}
}

func TestLeafEvalDispatch(t *testing.T) {
	env := stubEnv{
		fn:     func(i int) float64 { return 100 + float64(i) },
		gene:   func(i int) float64 { return 200 + float64(i) },
		sensor: func(i int) float64 { return 300 + float64(i) },
	}

	tests := []struct {
		kind RefType
		want float64
	}{
		{PureCall, 103},
		{ImpureCall, 203},
		{Sensor, 303},
		{Constant, 7.5},
	}
	for _, tt := range tests {
		leaf := NewLeaf(tt.kind, 7.5)
		leaf.Index = 3
		if got := leaf.Eval(env); got != tt.want {
			t.Errorf("kind %d: Eval() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestFuzzify(t *testing.T) {
	const f = 2.0

	tests := []struct {
		name string
		op   Op
		l, r float64
		want float64
	}{
		{"equal exact", Equ, 5, 5, 1},
		{"equal within band", Equ, 5, 6, 0.5},
		{"equal outside band", Equ, 5, 9, 0},
		{"less full", Les, 1, 5, 1},
		{"less partial", Les, 4, 5, 0.5},
		{"less inverted", Les, 5, 1, 0},
		{"greater partial", Gre, 5, 4, 0.5},
		{"greater inverted", Gre, 1, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewOpNode(tt.op, NewLeaf(Constant, tt.l), NewLeaf(Constant, tt.r))
			Fuzzify(root, f)
			got := root.Eval(stubEnv{})
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("fuzzy %v(%v, %v) = %v, want %v", tt.op, tt.l, tt.r, got, tt.want)
			}
		})
	}
}

func TestFuzzifyRecursesIntoChildren(t *testing.T) {
	// = nested under +: both comparisons must become fuzzy.
	root := mustParse(t, "+ = 5 6 = 1 1")
	Fuzzify(root, 2)
	got := root.Eval(stubEnv{})
	if math.Abs(got-1.5) > 1e-12 {
		t.Errorf("Eval() = %v, want 1.5", got)
	}
}

func TestCloneIndependence(t *testing.T) {
	root := mustParse(t, "+ [1 $2")
	clone := root.Clone()

	if clone.Parent() != nil {
		t.Error("clone parent should be nil")
	}
	if clone.Size() != root.Size() {
		t.Fatalf("clone size %d, want %d", clone.Size(), root.Size())
	}

	// Mutating the original must not touch the clone.
	orig := Flatten(root)[0].(*Leaf)
	orig.Val = 99
	cloned := Flatten(clone)[0].(*Leaf)
	if cloned.Val == 99 {
		t.Error("clone shares leaf with original")
	}
}

func TestFlattenOrderAndSize(t *testing.T) {
	root := mustParse(t, "- * 1 2 3")
	nodes := Flatten(root)
	if len(nodes) != root.Size() {
		t.Fatalf("Flatten returned %d nodes, Size is %d", len(nodes), root.Size())
	}
	if root.Size() != 5 {
		t.Errorf("Size = %d, want 5", root.Size())
	}
}

func TestReplaceSubtree(t *testing.T) {
	t.Run("at root", func(t *testing.T) {
		root := mustParse(t, "+ 1 2")
		repl := NewLeaf(Constant, 9)
		got := ReplaceSubtree(root, root, repl)
		if got != Node(repl) {
			t.Error("replacing the root should return the replacement")
		}
		if repl.Parent() != nil {
			t.Error("new root must have nil parent")
		}
	})

	t.Run("at child", func(t *testing.T) {
		root := mustParse(t, "+ 1 2")
		target := root.(*OpNode).Left
		repl := NewLeaf(Constant, 9)
		got := ReplaceSubtree(root, target, repl)
		if got != root {
			t.Error("replacing a child should keep the root")
		}
		if got.Eval(stubEnv{}) != 11 {
			t.Errorf("Eval = %v, want 11", got.Eval(stubEnv{}))
		}
		if repl.Parent() != root {
			t.Error("replacement parent not rewired")
		}
	})
}

func TestInsertOperator(t *testing.T) {
	t.Run("at root", func(t *testing.T) {
		root := NewLeaf(Constant, 2)
		fresh := NewLeaf(Constant, 3)
		got := InsertOperator(root, root, Mul, fresh, false)
		if got.Eval(stubEnv{}) != 6 {
			t.Errorf("Eval = %v, want 6", got.Eval(stubEnv{}))
		}
		if got.Size() != 3 {
			t.Errorf("Size = %d, want 3", got.Size())
		}
	})

	t.Run("fresh on left", func(t *testing.T) {
		root := NewLeaf(Constant, 2)
		fresh := NewLeaf(Constant, 8)
		got := InsertOperator(root, root, Sub, fresh, true)
		if got.Eval(stubEnv{}) != 6 {
			t.Errorf("Eval = %v, want 6", got.Eval(stubEnv{}))
		}
	})

	t.Run("at child", func(t *testing.T) {
		root := mustParse(t, "+ 2 10")
		target := root.(*OpNode).Left
		fresh := NewLeaf(Constant, 3)
		got := InsertOperator(root, target, Mul, fresh, false)
		if got != root {
			t.Error("inserting at a child should keep the root")
		}
		if got.Eval(stubEnv{}) != 16 {
			t.Errorf("Eval = %v, want 16", got.Eval(stubEnv{}))
		}
	})
}

func TestSwapOperandsAt(t *testing.T) {
	t.Run("on operator", func(t *testing.T) {
		root := mustParse(t, "- 5 2")
		SwapOperandsAt(root)
		if got := root.Eval(stubEnv{}); got != -3 {
			t.Errorf("Eval = %v, want -3", got)
		}
	})

	t.Run("on leaf swaps parent", func(t *testing.T) {
		root := mustParse(t, "- 5 2")
		SwapOperandsAt(root.(*OpNode).Left)
		if got := root.Eval(stubEnv{}); got != -3 {
			t.Errorf("Eval = %v, want -3", got)
		}
	})

	t.Run("root leaf is a no-op", func(t *testing.T) {
		leaf := NewLeaf(Constant, 1)
		SwapOperandsAt(leaf) // must not panic
	})
}
