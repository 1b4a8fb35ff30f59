package competition

import (
	"sort"
	"sync"
)

type Result struct {
	Rank     int     `json:"rank"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Illustrative data shown until a results workbook is loaded.
var seedResults = []Result{
	{Rank: 1, Name: "Abdullah Ahmed", Category: HIFZ_FULL, Score: 98.5},
	{Rank: 2, Name: "Omar Farooq", Category: HIFZ_FULL, Score: 97.0},
	{Rank: 3, Name: "Zaid Ali", Category: HIFZ_FULL, Score: 96.5},
	{Rank: 1, Name: "Yusuf Khan", Category: HIFZ_20, Score: 99.0},
	{Rank: 2, Name: "Ibrahim Musa", Category: HIFZ_20, Score: 95.0},
	{Rank: 1, Name: "Bilal Hassan", Category: TILAWAH, Score: 98.0},
}

const DEFAULT_RESULTS_CATEGORY = HIFZ_FULL

// Board holds the result entries. It is read by every request and replaced as a whole.
type Board struct {
	mu      sync.RWMutex
	results []Result
}

func NewBoard(results []Result) *Board {
	b := &Board{}
	b.Replace(results)
	return b
}

func SeedBoard() *Board {
	return NewBoard(seedResults)
}

func (b *Board) Replace(results []Result) {
	cp := make([]Result, len(results))
	copy(cp, results)

	b.mu.Lock()
	b.results = cp
	b.mu.Unlock()
}

func (b *Board) All() []Result {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Result, len(b.results))
	copy(out, b.results)
	return out
}

// Filter returns the entries of one category ordered by rank.
func (b *Board) Filter(category string) []Result {
	b.mu.RLock()
	out := make([]Result, 0, 4)
	for _, r := range b.results {
		if r.Category == category {
			out = append(out, r)
		}
	}
	b.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

type Podium struct {
	First  *Result
	Second *Result
	Third  *Result
}

func (p Podium) Empty() bool {
	return p.First == nil && p.Second == nil && p.Third == nil
}

func MakePodium(results []Result) Podium {
	var p Podium
	for i := range results {
		r := &results[i]
		switch r.Rank {
		case 1:
			if p.First == nil {
				p.First = r
			}
		case 2:
			if p.Second == nil {
				p.Second = r
			}
		case 3:
			if p.Third == nil {
				p.Third = r
			}
		}
	}
	return p
}
