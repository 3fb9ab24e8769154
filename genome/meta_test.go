package genome

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// testMeta is a 42-field metagenome with uniform weight tables.
const testMeta = "0.8 0.2 0.2 0.2 0.8 0.2 0.2 0.2 0.8 0.9 0.9 0.1 " +
	"1 -5 5 3 5 2 " +
	"0.1 0.1 0.3 0.5 0.3 " +
	"1 1 1 1 1 " +
	"1 1 1 1 " +
	"1 1 1 1 " +
	"1 1 1 " +
	"1 1 1"

func TestParseMetagenomeRoundTrip(t *testing.T) {
	m, err := ParseMetagenome(testMeta)
	if err != nil {
		t.Fatalf("ParseMetagenome: %v", err)
	}

	again, err := ParseMetagenome(m.Serialize())
	if err != nil {
		t.Fatalf("re-parsing serialization: %v", err)
	}
	if diff := cmp.Diff(m, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMetagenomeErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"too few fields", "1 2 3"},
		{"too many fields", testMeta + " 0.5"},
		{"non-numeric field", strings.Replace(testMeta, "0.8", "x", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMetagenome(tt.text); err == nil {
				t.Error("ParseMetagenome succeeded, want error")
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	// Inverted const bounds and an out-of-range color.
	text := strings.Replace(testMeta, "-5 5", "5 -5", 1)
	text = strings.Replace(text, "0.8", "1.7", 1)

	m, err := ParseMetagenome(text)
	if err != nil {
		t.Fatalf("ParseMetagenome: %v", err)
	}

	if m.ConstBounds[0] > m.ConstBounds[1] {
		t.Errorf("const bounds not ordered: %v", m.ConstBounds)
	}
	if m.Colors[0][0] != 1 {
		t.Errorf("color not clamped: %v", m.Colors[0][0])
	}
}

func TestPerturbKeepsInvariants(t *testing.T) {
	m, err := ParseMetagenome(testMeta)
	if err != nil {
		t.Fatalf("ParseMetagenome: %v", err)
	}
	m.Mute = 1 // force every field to drift

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		m.Perturb(rng)

		for _, rate := range []float64{m.Mute, m.GenomeRate, m.GeneAction, m.StructMod, m.LeafType} {
			if rate < 0 || rate > 1 {
				t.Fatalf("iteration %d: rate %v outside [0,1]", i, rate)
			}
		}
		if m.ConstBounds[0] > m.ConstBounds[1] {
			t.Fatalf("iteration %d: bounds inverted: %v", i, m.ConstBounds)
		}
		if m.Fuzziness < 1e-3 {
			t.Fatalf("iteration %d: fuzziness %v below floor", i, m.Fuzziness)
		}
		if m.FunGenDepth < 1 || m.FunGenDepth > 8 {
			t.Fatalf("iteration %d: depth %v outside [1,8]", i, m.FunGenDepth)
		}
		if m.MultRange < 1 {
			t.Fatalf("iteration %d: mult range %v below 1", i, m.MultRange)
		}
		if m.IncrRange < 0 {
			t.Fatalf("iteration %d: incr range negative", i)
		}
		for ci := range m.Colors {
			for k := range m.Colors[ci] {
				if c := m.Colors[ci][k]; c < 0 || c > 1 {
					t.Fatalf("iteration %d: color %v outside [0,1]", i, c)
				}
			}
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m, err := ParseMetagenome(testMeta)
	if err != nil {
		t.Fatalf("ParseMetagenome: %v", err)
	}
	c := m.Clone()
	c.Fuzziness = 99
	c.GenomeRel[0] = 42
	if m.Fuzziness == 99 || m.GenomeRel[0] == 42 {
		t.Error("clone shares state with original")
	}
}
