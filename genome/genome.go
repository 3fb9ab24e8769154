package genome

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/pthm-cable/goomba/functree"
)

// Gene pairs an action code with an expression tree.
type Gene struct {
	Action Action
	Root   functree.Node
}

// Clone deep-copies the gene.
func (g *Gene) Clone() *Gene {
	return &Gene{Action: g.Action, Root: g.Root.Clone()}
}

// Size counts the gene's tree nodes.
func (g *Gene) Size() int { return g.Root.Size() }

// Genome is an ordered, mutable-length sequence of genes plus a metagenome.
// A genome is owned by exactly one agent, or held transiently during
// breeding before an agent is constructed.
type Genome struct {
	Genes []*Gene
	Meta  *Metagenome
}

// New parses the two-string textual encoding: the fixed-order metagenome and
// the "|"-delimited coding region. Construction is all-or-nothing; malformed
// text never yields a partially built genome. The parsed genome is linked
// and fuzzified before it is returned.
func New(meta, coding string) (*Genome, error) {
	m, err := ParseMetagenome(meta)
	if err != nil {
		return nil, fmt.Errorf("parsing metagenome: %w", err)
	}

	parts := strings.Split(coding, "|")
	genes := make([]*Gene, 0, len(parts))
	for i, part := range parts {
		toks := strings.Fields(part)
		if len(toks) < 2 {
			return nil, fmt.Errorf("gene %d: need an action code and an expression", i)
		}
		code, err := strconv.Atoi(toks[0])
		if err != nil {
			return nil, fmt.Errorf("gene %d: bad action code %q: %w", i, toks[0], err)
		}
		if code < 0 || code >= NumActions {
			return nil, fmt.Errorf("gene %d: action code %d out of range", i, code)
		}
		root, err := functree.ParseAll(toks[1:])
		if err != nil {
			return nil, fmt.Errorf("gene %d: %w", i, err)
		}
		genes = append(genes, &Gene{Action: Action(code), Root: root})
	}
	if len(genes) == 0 {
		return nil, fmt.Errorf("coding region has no genes")
	}

	g := &Genome{Genes: genes, Meta: m}
	g.Link()
	g.Fuzzify()
	return g, nil
}

// RandomCoding builds a genome with the given metagenome text and a coding
// region of length random genes generated from the metagenome's parameters.
func RandomCoding(rng *rand.Rand, meta string, length int) (*Genome, error) {
	m, err := ParseMetagenome(meta)
	if err != nil {
		return nil, fmt.Errorf("parsing metagenome: %w", err)
	}
	if length < 1 {
		length = 1
	}
	genes := make([]*Gene, length)
	for i := range genes {
		genes[i] = m.randomGene(rng, length)
	}
	g := &Genome{Genes: genes, Meta: m}
	g.Link()
	g.Fuzzify()
	return g, nil
}

// randomGene draws an action uniformly and a tree from the metagenome's
// generation parameters.
func (m *Metagenome) randomGene(rng *rand.Rand, genomeLen int) *Gene {
	depth := int(math.Round(m.FunGenDepth))
	return &Gene{
		Action: Action(rng.Intn(NumActions)),
		Root:   functree.Random(rng, depth, m.GenParams(genomeLen)),
	}
}

// Len returns the number of genes.
func (g *Genome) Len() int { return len(g.Genes) }

// Size counts the tree nodes across all genes; it contributes negatively to
// an agent's fitness.
func (g *Genome) Size() int {
	n := 0
	for _, gene := range g.Genes {
		n += gene.Size()
	}
	return n
}

// Sequences renders the genome back to its two-string textual encoding.
func (g *Genome) Sequences() (meta, coding string) {
	return g.Meta.Serialize(), g.CodingString()
}

// CodingString serializes the coding region: "|"-delimited genes, each an
// action code followed by the tree in Polish notation.
func (g *Genome) CodingString() string {
	parts := make([]string, len(g.Genes))
	for i, gene := range g.Genes {
		parts[i] = fmt.Sprintf("%d %s", int(gene.Action), functree.Serialize(gene.Root))
	}
	return strings.Join(parts, " | ")
}

// Clone deep-copies the genome.
func (g *Genome) Clone() *Genome {
	genes := make([]*Gene, len(g.Genes))
	for i, gene := range g.Genes {
		genes[i] = gene.Clone()
	}
	return &Genome{Genes: genes, Meta: g.Meta.Clone()}
}

// Link resolves every offset and sensor leaf to a usable index: offsets wrap
// modulo the live gene count relative to the enclosing gene, sensors wrap
// modulo the sensor domain. The raw stored values are left untouched so that
// out-of-domain numbers can become meaningful again after later mutation.
// Must be re-run after any change to gene count or order.
func (g *Genome) Link() {
	n := len(g.Genes)
	for i, gene := range g.Genes {
		for _, node := range functree.Flatten(gene.Root) {
			leaf, ok := node.(*functree.Leaf)
			if !ok {
				continue
			}
			switch leaf.Kind {
			case functree.PureCall, functree.ImpureCall:
				leaf.Index = wrapFloat(math.Round(leaf.Val)+float64(i), n)
			case functree.Sensor:
				leaf.Index = wrapFloat(leaf.Val, NumSensors)
			}
		}
	}
}

// Fuzzify rebinds every comparison operator to its continuous form using the
// genome's current fuzziness. Must be re-run whenever fuzziness changes or a
// tree is structurally altered.
func (g *Genome) Fuzzify() {
	for _, gene := range g.Genes {
		functree.Fuzzify(gene.Root, g.Meta.Fuzziness)
	}
}

// fuzzifyGene re-fuzzifies a single gene's tree after a structural edit.
func (g *Genome) fuzzifyGene(gene *Gene) {
	functree.Fuzzify(gene.Root, g.Meta.Fuzziness)
}

// wrapFloat rounds v and wraps it into [0, n). The modulo happens in float
// space first so arbitrarily large raw values stay well-defined.
func wrapFloat(v float64, n int) int {
	r := math.Mod(math.Round(v), float64(n))
	if r < 0 {
		r += float64(n)
	}
	return int(r) % n
}
