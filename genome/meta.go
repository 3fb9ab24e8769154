package genome

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/pthm-cable/goomba/functree"
)

// Weight table slots, in metagenome order.
//
// Genome edits (5):    Insert, Duplicate, Delete, Invert, MuteGene
// Constant kinds (4):  Increment, Decrement, Multiply, Divide
// Leaf kinds (4):      PureCall, ImpureCall, Sensor, Constant
// Enum kinds (3):      Increment, Decrement, Random
// Struct kinds (3):    ReplaceSubtree, InsertOperator, SwapOperands
const (
	editInsert = iota
	editDuplicate
	editDelete
	editInvert
	editMuteGene
)

const (
	constIncrement = iota
	constDecrement
	constMultiply
	constDivide
)

const (
	enumIncrement = iota
	enumDecrement
	enumRandom
)

const (
	structReplace = iota
	structInsert
	structSwap
)

// MetaFieldCount is the fixed number of floating-point fields in the
// metagenome's textual encoding.
const MetaFieldCount = 42

// Metagenome is the fixed-layout numeric parameter block controlling
// mutation rates, value ranges, and appearance. It does not code for
// behaviour directly.
type Metagenome struct {
	Colors      [4][3]float64
	Fuzziness   float64
	ConstBounds [2]float64
	FunGenDepth float64
	IncrRange   float64
	MultRange   float64

	// Scalar mutation probabilities.
	Mute       float64 // per-field metagenome perturbation rate
	GenomeRate float64 // per-position structural edit rate
	GeneAction float64 // action-code mutation rate within a gene
	StructMod  float64 // structural vs point mutation split
	LeafType   float64 // leaf kind change vs value perturbation split

	// Relative-weight tables.
	GenomeRel [5]float64
	ConstRel  [4]float64
	LeafRel   [4]float64
	EnumRel   [3]float64
	StructRel [3]float64
}

// ParseMetagenome reads the fixed-order whitespace-delimited encoding.
// A wrong field count or an unparseable number is a fatal construction error.
func ParseMetagenome(s string) (*Metagenome, error) {
	fields := strings.Fields(s)
	if len(fields) != MetaFieldCount {
		return nil, fmt.Errorf("metagenome has %d fields, want %d", len(fields), MetaFieldCount)
	}
	vec := make([]float64, MetaFieldCount)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("metagenome field %d: %w", i, err)
		}
		vec[i] = v
	}
	m := &Metagenome{}
	m.fromVector(vec)
	m.normalize()
	return m, nil
}

// Serialize renders the metagenome in its fixed field order.
func (m *Metagenome) Serialize() string {
	vec := m.vector()
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

// vector flattens the metagenome into its canonical numeric order.
func (m *Metagenome) vector() []float64 {
	vec := make([]float64, 0, MetaFieldCount)
	for _, c := range m.Colors {
		vec = append(vec, c[:]...)
	}
	vec = append(vec, m.Fuzziness, m.ConstBounds[0], m.ConstBounds[1],
		m.FunGenDepth, m.IncrRange, m.MultRange,
		m.Mute, m.GenomeRate, m.GeneAction, m.StructMod, m.LeafType)
	vec = append(vec, m.GenomeRel[:]...)
	vec = append(vec, m.ConstRel[:]...)
	vec = append(vec, m.LeafRel[:]...)
	vec = append(vec, m.EnumRel[:]...)
	vec = append(vec, m.StructRel[:]...)
	return vec
}

func (m *Metagenome) fromVector(vec []float64) {
	i := 0
	next := func() float64 { v := vec[i]; i++; return v }
	for ci := range m.Colors {
		for k := range m.Colors[ci] {
			m.Colors[ci][k] = next()
		}
	}
	m.Fuzziness = next()
	m.ConstBounds[0] = next()
	m.ConstBounds[1] = next()
	m.FunGenDepth = next()
	m.IncrRange = next()
	m.MultRange = next()
	m.Mute = next()
	m.GenomeRate = next()
	m.GeneAction = next()
	m.StructMod = next()
	m.LeafType = next()
	for k := range m.GenomeRel {
		m.GenomeRel[k] = next()
	}
	for k := range m.ConstRel {
		m.ConstRel[k] = next()
	}
	for k := range m.LeafRel {
		m.LeafRel[k] = next()
	}
	for k := range m.EnumRel {
		m.EnumRel[k] = next()
	}
	for k := range m.StructRel {
		m.StructRel[k] = next()
	}
}

// normalize restores the metagenome invariants: ordered const bounds,
// colors in [0,1], a positive fuzziness and sane ranges.
func (m *Metagenome) normalize() {
	if m.ConstBounds[0] > m.ConstBounds[1] {
		m.ConstBounds[0], m.ConstBounds[1] = m.ConstBounds[1], m.ConstBounds[0]
	}
	for ci := range m.Colors {
		for k := range m.Colors[ci] {
			m.Colors[ci][k] = clamp(m.Colors[ci][k], 0, 1)
		}
	}
	if m.Fuzziness < minFuzziness {
		m.Fuzziness = minFuzziness
	}
	if m.FunGenDepth < 1 {
		m.FunGenDepth = 1
	}
	if m.IncrRange < 0 {
		m.IncrRange = 0
	}
	if m.MultRange < 1 {
		m.MultRange = 1
	}
}

// Clone deep-copies the metagenome.
func (m *Metagenome) Clone() *Metagenome {
	c := *m
	return &c
}

// Perturbation step sizes and clamp domains. The textual encoding leaves
// these unspecified, so they are pinned here.
const (
	minFuzziness = 1e-3
	maxGenDepth  = 8

	rateDrift   = 0.05 // scalar mutation probabilities
	valueDrift  = 0.5  // fuzziness, const bounds, incr/mult ranges, tables
	colorDrift  = 0.05
	depthFactor = 0.2 // proportional drift for the generation depth
)

// Perturb stochastically drifts every metagenome field. Each field mutates
// independently with probability Mute, except the two meta-mutation-rate
// scalars, where each rate's mutation is gated by the other rate. Fields are
// clamped to their domains and inverted const bounds are swapped.
func (m *Metagenome) Perturb(rng *rand.Rand) {
	drift := func(p *float64, gate, step, lo, hi float64) {
		if rng.Float64() < gate {
			*p = clamp(*p+(rng.Float64()*2-1)*step, lo, hi)
		}
	}

	mute := m.Mute
	genome := m.GenomeRate
	drift(&m.Mute, genome, rateDrift, 0, 1)
	drift(&m.GenomeRate, mute, rateDrift, 0, 1)
	drift(&m.GeneAction, mute, rateDrift, 0, 1)
	drift(&m.StructMod, mute, rateDrift, 0, 1)
	drift(&m.LeafType, mute, rateDrift, 0, 1)

	drift(&m.Fuzziness, mute, valueDrift, minFuzziness, maxFloat)
	drift(&m.ConstBounds[0], mute, valueDrift, -maxFloat, maxFloat)
	drift(&m.ConstBounds[1], mute, valueDrift, -maxFloat, maxFloat)
	drift(&m.IncrRange, mute, valueDrift, 0, maxFloat)
	drift(&m.MultRange, mute, valueDrift, 1, maxFloat)

	if rng.Float64() < mute {
		m.FunGenDepth = clamp(m.FunGenDepth*(1+(rng.Float64()*2-1)*depthFactor), 1, maxGenDepth)
	}

	for ci := range m.Colors {
		for k := range m.Colors[ci] {
			drift(&m.Colors[ci][k], mute, colorDrift, 0, 1)
		}
	}

	for _, table := range [][]float64{
		m.GenomeRel[:], m.ConstRel[:], m.LeafRel[:], m.EnumRel[:], m.StructRel[:],
	} {
		for k := range table {
			drift(&table[k], mute, valueDrift, 0, maxFloat)
		}
	}

	m.normalize()
}

// GenParams derives the random-generation parameters for trees belonging to
// a coding region of the given length.
func (m *Metagenome) GenParams(genomeLen int) functree.GenParams {
	return functree.GenParams{
		GenomeLen:   genomeLen,
		ConstBounds: m.ConstBounds,
		LeafWeights: m.LeafRel,
		NumSensors:  NumSensors,
	}
}

const maxFloat = 1e308

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
