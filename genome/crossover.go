package genome

import (
	"math/rand"

	"github.com/pthm-cable/goomba/functree"
)

// Crossover breeds two parent genomes into a new one.
//
// The metagenome numeric vectors are spliced at a shared random cut, except
// the color block, which is always sourced independently from each side so
// offspring stay visually distinguishable from either parent. The coding
// region takes genes before a random cut index from mum and from the cut
// onward from dad, and additionally swaps a randomly chosen subtree between
// the two parents' genes at the cut index itself.
//
// The spliced result is rendered to text and re-parsed, so the offspring
// comes back linked, fuzzified, and validated.
func Crossover(rng *rand.Rand, mum, dad *Genome) (*Genome, error) {
	meta := crossMeta(rng, mum.Meta, dad.Meta)

	shorter := len(mum.Genes)
	if len(dad.Genes) < shorter {
		shorter = len(dad.Genes)
	}
	cut := rng.Intn(shorter)

	genes := make([]*Gene, 0, cut+len(dad.Genes)-cut)
	for _, gene := range mum.Genes[:cut] {
		genes = append(genes, gene.Clone())
	}
	for _, gene := range dad.Genes[cut:] {
		genes = append(genes, gene.Clone())
	}

	// Swap a random subtree from mum's cut gene into the child's cut gene
	// (which came from dad). A root pick replaces the whole tree.
	donor := mum.Genes[cut].Clone()
	graft := pickNode(rng, donor.Root).Clone()
	site := genes[cut]
	site.Root = functree.ReplaceSubtree(site.Root, pickNode(rng, site.Root), graft)

	child := &Genome{Genes: genes, Meta: meta}
	return New(child.Sequences())
}

// crossMeta splices the flattened metagenome vectors at a shared cut index.
// The leading color block is excluded from the splice and instead blended
// two colors from each parent.
func crossMeta(rng *rand.Rand, mum, dad *Metagenome) *Metagenome {
	mv := mum.vector()
	dv := dad.vector()

	const colorLen = 12
	cut := colorLen + rng.Intn(MetaFieldCount-colorLen)

	vec := make([]float64, MetaFieldCount)
	copy(vec, mv[:cut])
	copy(vec[cut:], dv[cut:])
	copy(vec[:colorLen/2], mv[:colorLen/2])
	copy(vec[colorLen/2:colorLen], dv[colorLen/2:colorLen])

	m := &Metagenome{}
	m.fromVector(vec)
	m.normalize()
	return m
}

func pickNode(rng *rand.Rand, root functree.Node) functree.Node {
	nodes := functree.Flatten(root)
	return nodes[rng.Intn(len(nodes))]
}
