package functree

import (
	"fmt"
	"strconv"
	"strings"
)

// Leaf kind serialization prefixes. Constants render bare.
const (
	pureDelim   = '['
	impureDelim = '{'
	sensorDelim = '$'
)

var stringOps = map[string]Op{
	"+": Add, "-": Sub, "*": Mul, "/": Div, "%": Mod,
	"^": Pow, "=": Equ, "<": Les, ">": Gre,
}

// Serialize renders the tree in Polish (prefix) notation: operator symbol
// then left then right, space-separated. Offset leaves render as "[n" (pure)
// or "{n" (impure), sensor leaves as "$n", constants as a bare number.
func Serialize(root Node) string {
	return strings.Join(root.appendTokens(nil), " ")
}

func (n *OpNode) appendTokens(toks []string) []string {
	toks = append(toks, n.Op.String())
	toks = n.Left.appendTokens(toks)
	return n.Right.appendTokens(toks)
}

func (l *Leaf) appendTokens(toks []string) []string {
	num := formatValue(l.Val)
	switch l.Kind {
	case PureCall:
		return append(toks, string(pureDelim)+num)
	case ImpureCall:
		return append(toks, string(impureDelim)+num)
	case Sensor:
		return append(toks, string(sensorDelim)+num)
	}
	return append(toks, num)
}

// formatValue renders leaf values compactly; integral values drop the
// fraction so round-trips stay stable.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Parse consumes one complete expression from toks and returns the tree and
// the remaining tokens. Trees come back crisp and unlinked; genomes fuzzify
// and link them afterwards.
func Parse(toks []string) (Node, []string, error) {
	if len(toks) == 0 {
		return nil, nil, fmt.Errorf("unexpected end of expression")
	}
	sym := toks[0]
	rest := toks[1:]

	if op, ok := stringOps[sym]; ok {
		left, rest, err := Parse(rest)
		if err != nil {
			return nil, nil, err
		}
		right, rest, err := Parse(rest)
		if err != nil {
			return nil, nil, err
		}
		return NewOpNode(op, left, right), rest, nil
	}

	kind := Constant
	num := sym
	switch sym[0] {
	case pureDelim:
		kind, num = PureCall, sym[1:]
	case impureDelim:
		kind, num = ImpureCall, sym[1:]
	case sensorDelim:
		kind, num = Sensor, sym[1:]
	}

	val, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("bad token %q: %w", sym, err)
	}
	return NewLeaf(kind, val), rest, nil
}

// ParseAll parses toks as exactly one expression, rejecting trailing tokens.
func ParseAll(toks []string) (Node, error) {
	root, rest, err := Parse(toks)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("trailing tokens after expression: %v", rest)
	}
	return root, nil
}
