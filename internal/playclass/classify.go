package playclass

import (
	"strings"

	"dinger/internal/textnorm"
)

// categoryPattern pairs a category with the normalized-token set that
// identifies it. Ordered: sacrifice plays before RBI outs so "sacrifice fly
// ... scores" lands on sac_fly rather than rbi_flyout.
type categoryPattern struct {
	category Category
	keywords []string
}

var categoryTable = []categoryPattern{
	{CategorySacFly, []string{"sacrifice", "fly"}},
	{CategorySacBunt, []string{"sacrifice", "bunt"}},
	{CategoryForceOutRBI, []string{"force", "out", "rbi"}},
	{CategoryFieldersChoiceRBI, []string{"fielders", "choice", "rbi"}},
	{CategoryRBIGroundout, []string{"grounds", "out", "rbi"}},
	{CategoryRBIGroundout, []string{"groundout", "rbi"}},
	{CategoryRBIFlyout, []string{"flies", "out", "rbi"}},
	{CategoryRBIFlyout, []string{"flyout", "rbi"}},
}

var outIndicators = []string{"out", "groundout", "flyout", "lineout", "popout", "forceout"}

// IsProductiveOut reports whether the described play is an out that advanced
// or scored a runner: an out with run-scoring language, or any sacrifice.
func IsProductiveOut(description string) bool {
	if strings.TrimSpace(description) == "" {
		return false
	}
	normalized := textnorm.Normalize(description)
	tokens := tokenSet(normalized)

	if tokens["sacrifice"] || tokens["sac"] {
		return true
	}

	var hasOut bool
	for _, indicator := range outIndicators {
		if tokens[indicator] {
			hasOut = true
			break
		}
	}
	// A fielder's choice records an out even when the description omits the word.
	if tokens["fielders"] && tokens["choice"] {
		hasOut = true
	}
	if !hasOut {
		return false
	}

	if tokens["rbi"] || tokens["run"] || tokens["runs"] || tokens["home"] {
		return true
	}
	// Normalization folds "scores" into rbi, but tolerate raw text too.
	return strings.Contains(strings.ToLower(description), "scores")
}

// Classify returns the productive-out category for the description, or
// CategoryNone. The ordered table is consulted first; keyword heuristics
// cover descriptions the table misses. Never panics; empty input yields
// CategoryNone.
func Classify(description string) Category {
	if strings.TrimSpace(description) == "" {
		return CategoryNone
	}
	if !IsProductiveOut(description) {
		return CategoryNone
	}

	normalized := textnorm.Normalize(description)
	tokens := tokenSet(normalized)

	for _, entry := range categoryTable {
		if containsAll(tokens, entry.keywords) {
			return entry.category
		}
	}

	// Heuristic fallbacks for table misses.
	scoring := tokens["rbi"] || tokens["run"] || tokens["runs"]
	switch {
	case tokens["sacrifice"] && (tokens["bunt"] || tokens["bunts"]):
		return CategorySacBunt
	case tokens["sacrifice"]:
		return CategorySacFly
	case tokens["force"] && scoring:
		return CategoryForceOutRBI
	case tokens["fielders"] && tokens["choice"] && scoring:
		return CategoryFieldersChoiceRBI
	case hasPrefixToken(tokens, "ground") && scoring:
		return CategoryRBIGroundout
	case (hasPrefixToken(tokens, "fl") || hasPrefixToken(tokens, "line") || hasPrefixToken(tokens, "pop")) && scoring:
		return CategoryRBIFlyout
	default:
		return CategoryNone
	}
}

func tokenSet(normalized string) map[string]bool {
	fields := strings.Fields(normalized)
	set := make(map[string]bool, len(fields))
	for _, field := range fields {
		set[field] = true
	}
	return set
}

func containsAll(tokens map[string]bool, keywords []string) bool {
	for _, keyword := range keywords {
		if !tokens[keyword] {
			return false
		}
	}
	return true
}

func hasPrefixToken(tokens map[string]bool, prefix string) bool {
	for token := range tokens {
		if strings.HasPrefix(token, prefix) {
			return true
		}
	}
	return false
}
