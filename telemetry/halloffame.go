package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// HallEntry records one elite agent: its genome texts, final score, and the
// headline episode counters.
type HallEntry struct {
	Score        float64 `json:"score"`
	Generation   int     `json:"generation"`
	Dirt         int     `json:"dirt"`
	TilesCovered int     `json:"tiles_covered"`
	Moves        int     `json:"moves"`
	Metagenome   string  `json:"metagenome"`
	Coding       string  `json:"coding"`
}

// HallOfFame is the rolling elite archive: the best-scoring agents seen
// across all generations, regardless of current population membership. It
// persists for the whole run.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates an empty hall with the given capacity.
func NewHallOfFame(maxSize int) *HallOfFame {
	return &HallOfFame{
		entries: make([]HallEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Consider offers an entry to the hall. Returns true if it was admitted:
// either the hall has room, or the entry beats the current worst member.
func (hof *HallOfFame) Consider(entry HallEntry) bool {
	// Insertion point, sorted descending by score.
	idx := sort.Search(len(hof.entries), func(i int) bool {
		return hof.entries[i].Score < entry.Score
	})

	if len(hof.entries) >= hof.maxSize && idx >= hof.maxSize {
		return false
	}

	hof.entries = append(hof.entries, HallEntry{})
	copy(hof.entries[idx+1:], hof.entries[idx:])
	hof.entries[idx] = entry

	if len(hof.entries) > hof.maxSize {
		hof.entries = hof.entries[:hof.maxSize]
	}
	return true
}

// Size returns the number of entries in the hall.
func (hof *HallOfFame) Size() int {
	return len(hof.entries)
}

// Top returns the best entry, if any.
func (hof *HallOfFame) Top() (HallEntry, bool) {
	if len(hof.entries) == 0 {
		return HallEntry{}, false
	}
	return hof.entries[0], true
}

// Entries returns the hall contents in descending score order. The returned
// slice must not be mutated.
func (hof *HallOfFame) Entries() []HallEntry {
	return hof.entries
}

// MarshalJSON serializes the hall for the output directory.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hof.entries, "", "  ")
}

// LoadHallOfFameFromFile reads a hall of fame JSON file, re-ranking its
// entries into a hall of at least the file's size.
func LoadHallOfFameFromFile(path string, maxSize int) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var raw []HallEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing hall of fame JSON: %w", err)
	}

	if len(raw) > maxSize {
		maxSize = len(raw)
	}
	hof := NewHallOfFame(maxSize)
	for _, entry := range raw {
		hof.Consider(entry)
	}
	return hof, nil
}
