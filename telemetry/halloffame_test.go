package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHallOfFameOrderingAndCapacity(t *testing.T) {
	hof := NewHallOfFame(3)

	for _, score := range []float64{5, 1, 3, 4, 2} {
		hof.Consider(HallEntry{Score: score})
	}

	if hof.Size() != 3 {
		t.Fatalf("Size = %d, want 3", hof.Size())
	}
	want := []float64{5, 4, 3}
	for i, e := range hof.Entries() {
		if e.Score != want[i] {
			t.Errorf("entry %d score = %v, want %v", i, e.Score, want[i])
		}
	}

	if hof.Consider(HallEntry{Score: 0}) {
		t.Error("Consider admitted a score below the full hall's worst")
	}
	if !hof.Consider(HallEntry{Score: 4.5}) {
		t.Error("Consider rejected a score that beats the worst member")
	}
	if top, _ := hof.Top(); top.Score != 5 {
		t.Errorf("Top score = %v, want 5", top.Score)
	}
}

func TestHallOfFameEmpty(t *testing.T) {
	hof := NewHallOfFame(2)
	if hof.Size() != 0 {
		t.Errorf("Size = %d, want 0", hof.Size())
	}
	if _, ok := hof.Top(); ok {
		t.Error("Top returned an entry from an empty hall")
	}
}

func TestHallOfFameFileRoundTrip(t *testing.T) {
	hof := NewHallOfFame(4)
	hof.Consider(HallEntry{Score: 10, Generation: 2, Coding: "1 $0", Metagenome: "meta"})
	hof.Consider(HallEntry{Score: 20, Generation: 5, Coding: "5 2", Metagenome: "meta"})

	data, err := hof.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	path := filepath.Join(t.TempDir(), "hall_of_fame.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	loaded, err := LoadHallOfFameFromFile(path, 4)
	if err != nil {
		t.Fatalf("LoadHallOfFameFromFile: %v", err)
	}
	if loaded.Size() != 2 {
		t.Fatalf("loaded Size = %d, want 2", loaded.Size())
	}
	top, _ := loaded.Top()
	if top.Score != 20 || top.Generation != 5 {
		t.Errorf("top = %+v, want score 20 gen 5", top)
	}
}

func TestLoadHallOfFameMissingFile(t *testing.T) {
	if _, err := LoadHallOfFameFromFile(filepath.Join(t.TempDir(), "nope.json"), 3); err == nil {
		t.Error("expected error for missing file")
	}
}
