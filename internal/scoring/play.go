package scoring

import (
	"regexp"
	"strings"
	"time"
)

// Play is one discrete in-game event as supplied by the game feed. Immutable
// for the duration of a matching request.
type Play struct {
	Description string
	Event       string
	BatterName  string
	PitcherName string
	AtBatIndex  int
	PlayIndex   int
	Timestamp   time.Time
}

// Name-run extraction operates on the raw description: normalization folds
// the scoring phrase into "rbi" and lowercases everything, losing the
// capitalized name runs these patterns rely on.
var (
	batterNamePattern  = regexp.MustCompile(`^([A-Z][A-Za-z'.-]+(?:\s+[A-Z][A-Za-z'.-]+)*)`)
	scorerNamePattern  = regexp.MustCompile(`([A-Z][A-Za-z'.-]+(?:\s+[A-Z][A-Za-z'.-]+)*)\s+scores?\b`)
	fielderNamePattern = regexp.MustCompile(`\b(?:to|by)\s+([A-Z][A-Za-z'.-]+(?:\s+[A-Z][A-Za-z'.-]+)*)`)
)

// playerName is one extracted name with its matching importance. Scoring
// runners carry the highest importance, fielders the lowest.
type playerName struct {
	full       string
	parts      []string
	importance float64
}

const (
	importanceBatter  = 1.0
	importanceScorer  = 1.2
	importanceFielder = 0.6
)

// extractNames pulls the batter, scoring runners, and fielders out of a play.
// The structured BatterName field wins over positional extraction when set.
// Duplicate names keep their first (highest-importance) occurrence.
func extractNames(play Play) []playerName {
	var names []playerName
	seen := make(map[string]bool)

	add := func(raw string, importance float64) {
		full := strings.TrimSpace(raw)
		if full == "" {
			return
		}
		key := strings.ToLower(full)
		if seen[key] {
			return
		}
		seen[key] = true
		names = append(names, playerName{
			full:       full,
			parts:      strings.Fields(full),
			importance: importance,
		})
	}

	for _, match := range scorerNamePattern.FindAllStringSubmatch(play.Description, -1) {
		add(match[1], importanceScorer)
	}
	if play.BatterName != "" {
		add(play.BatterName, importanceBatter)
	} else if match := batterNamePattern.FindStringSubmatch(play.Description); match != nil {
		add(match[1], importanceBatter)
	}
	for _, match := range fielderNamePattern.FindAllStringSubmatch(play.Description, -1) {
		add(match[1], importanceFielder)
	}
	return names
}
