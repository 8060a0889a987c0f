package matching

import (
	"math"
	"strings"
)

const (
	ScoreExact = 100
	ScoreCore  = 95
	maxPartial = 94

	diceWeight  = 0.65
	tokenWeight = 0.35

	DefaultThreshold = 70
)

// Candidate is one reference entity the matcher may resolve to. ShortName is
// optional and scored alongside Name.
type Candidate struct {
	ID        uint
	Name      string
	ShortName string
}

// Result is the outcome of a single match attempt. Confidence is kept even
// when Matched is false so the caller can record how close the attempt got.
type Result struct {
	Matched    bool   `json:"matched"`
	EntityID   uint   `json:"entityId,omitempty"`
	EntityName string `json:"entityName,omitempty"`
	Confidence int    `json:"confidence"`
}

type Matcher struct {
	threshold int
}

func NewMatcher(threshold int) *Matcher {
	if threshold <= 0 || threshold > ScoreExact {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

func (m *Matcher) Threshold() int { return m.threshold }

// Match resolves raw against candidates. The highest score wins; on a tie
// the earlier candidate is kept.
func (m *Matcher) Match(raw string, candidates []Candidate) Result {
	query := Normalize(raw)
	if query == "" {
		return Result{}
	}

	best := -1
	bestScore := 0
	for i, c := range candidates {
		score := Score(query, Normalize(c.Name))
		if c.ShortName != "" {
			if s := Score(query, Normalize(c.ShortName)); s > score {
				score = s
			}
		}
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 || bestScore < m.threshold {
		return Result{Confidence: bestScore}
	}
	return Result{
		Matched:    true,
		EntityID:   candidates[best].ID,
		EntityName: candidates[best].Name,
		Confidence: bestScore,
	}
}

// Score compares two normalized names on a 0-100 scale. 100 is reserved for
// equal names, 95 for names equal once noise words are dropped.
func Score(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return ScoreExact
	}
	coreA, coreB := Core(a), Core(b)
	if coreA == coreB {
		return ScoreCore
	}

	dice := Dice(coreA, coreB)
	overlap := tokenOverlap(strings.Fields(coreA), strings.Fields(coreB))
	score := int(math.Round(100 * (diceWeight*dice + tokenWeight*overlap)))
	if score > maxPartial {
		score = maxPartial
	}
	if score < 0 {
		score = 0
	}
	return score
}
