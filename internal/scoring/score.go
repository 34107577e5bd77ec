package scoring

import (
	"strings"

	"dinger/internal/playclass"
	"dinger/internal/statsapi"
	"dinger/internal/textnorm"
)

// Factor is one named contribution to a match score.
type Factor struct {
	Name  string
	Value float64
}

// MatchResult is the outcome of scoring one play against one candidate, or of
// a full matching request (Video nil means no acceptable match). Immutable
// once cached.
type MatchResult struct {
	Video     *statsapi.Highlight
	Score     float64
	Breakdown []Factor
	Category  playclass.Category
	Strategy  string
}

// Matched reports whether the result carries an accepted video.
func (r *MatchResult) Matched() bool {
	return r != nil && r.Video != nil
}

// Factor weights. Identifier overlap dominates; productive outs shift weight
// toward title text because their slugs tend to describe the runner, not the
// batter.
const (
	idWeight              = 0.70
	idWeightProductive    = 0.65
	nameWeight            = 0.20
	titleWeight           = 0.05
	titleWeightProductive = 0.10
	typeWeight            = 0.05

	partialMatchCredit = 0.7

	categoryBonus  = 0.25
	rbiBonus       = 0.20
	sacrificeBonus = 0.30
)

// keyActionWords are exact play-outcome words worth the highest token weight.
var keyActionWords = buildSet("groundout", "flyout", "single", "double", "triple", "homer")

// productiveIndicators get elevated weight only when the play itself is a
// productive out.
var productiveIndicators = buildSet("sacrifice", "sac", "force", "fielders", "choice", "bunt")

// videoScoringWords signal run-scoring language in clip metadata.
var videoScoringWords = buildSet("rbi", "scores", "scoring", "run", "runs")

// Score rates how well a candidate clip depicts the play. The result is in
// [0, 1], deterministic, and zero for animated or graphic content regardless
// of textual overlap. Empty play descriptions contribute zero to every factor
// rather than erroring.
func Score(play Play, video statsapi.Highlight) MatchResult {
	category := playclass.Classify(play.Description)

	if video.Animated {
		return MatchResult{
			Score:     0,
			Breakdown: []Factor{{Name: "animated_exclusion", Value: 0}},
			Category:  category,
		}
	}

	productive := playclass.IsProductiveOut(play.Description)
	playTokens := textnorm.Tokens(play.Description)
	videoIDTokens := textnorm.SlugTokens(video.ID)
	haystackTokens := tokenSet(textnorm.SlugTokens(video.ID + " " + video.Title))
	haystackText := strings.ToLower(textnorm.FoldDiacritics(video.ID + " " + video.Title))

	idW := idWeight
	titleW := titleWeight
	if productive {
		idW = idWeightProductive
		titleW = titleWeightProductive
	}

	breakdown := make([]Factor, 0, 7)
	total := 0.0

	idScore := identifierScore(playTokens, videoIDTokens, productive) * idW
	breakdown = append(breakdown, Factor{Name: "identifier_tokens", Value: idScore})
	total += idScore

	namesScore := nameScore(play, haystackTokens, haystackText) * nameWeight
	breakdown = append(breakdown, Factor{Name: "player_names", Value: namesScore})
	total += namesScore

	titleScore := titleOverlap(playTokens, textnorm.Tokens(video.Title)) * titleW
	breakdown = append(breakdown, Factor{Name: "title_overlap", Value: titleScore})
	total += titleScore

	typeScore := playTypeScore(play, category, haystackTokens) * typeWeight
	breakdown = append(breakdown, Factor{Name: "play_type", Value: typeScore})
	total += typeScore

	if productive {
		if hasComplexPattern(category, haystackTokens) {
			breakdown = append(breakdown, Factor{Name: "category_bonus", Value: categoryBonus})
			total += categoryBonus
		}
		if playMentionsScoring(play, playTokens) && anyToken(haystackTokens, videoScoringWords) {
			breakdown = append(breakdown, Factor{Name: "rbi_bonus", Value: rbiBonus})
			total += rbiBonus
		}
		if category.IsSacrifice() && (haystackTokens["sacrifice"] || haystackTokens["sac"]) {
			breakdown = append(breakdown, Factor{Name: "sacrifice_bonus", Value: sacrificeBonus})
			total += sacrificeBonus
		}
	}

	return MatchResult{
		Score:     clamp01(total),
		Breakdown: breakdown,
		Category:  category,
	}
}

// identifierScore compares play tokens against the clip's slug tokens.
// Tokens of length <= 2 and the literal "rbi" are dropped; surviving tokens
// weigh 1 by default, 2 when long enough to be a probable proper noun, 3 for
// exact key action words, and 2.5 for productive-out indicators on productive
// plays. A containment match earns partial credit.
func identifierScore(playTokens, videoTokens []string, productive bool) float64 {
	videoSet := tokenSet(videoTokens)

	var totalWeight, matchedWeight float64
	for _, token := range playTokens {
		if len(token) <= 2 || token == "rbi" {
			continue
		}

		weight := 1.0
		switch {
		case keyActionWords[token]:
			weight = 3.0
		case productive && productiveIndicators[token]:
			weight = 2.5
		case len(token) > 4:
			weight = 2.0
		}
		totalWeight += weight

		if videoSet[token] {
			matchedWeight += weight
			continue
		}
		for _, videoToken := range videoTokens {
			if containmentMatch(token, videoToken) {
				matchedWeight += weight * partialMatchCredit
				break
			}
		}
	}

	if totalWeight == 0 {
		return 0
	}
	return matchedWeight / totalWeight
}

// containmentMatch reports a partial match: one token contains the other and
// the contained token is long enough to be meaningful.
func containmentMatch(a, b string) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	return len(a) > 3 && strings.Contains(b, a)
}

// nameScore checks each extracted player name against the clip's id and
// title. Last names weigh 0.8, first names 0.5, and an intact hyphenated
// name adds 0.3.
func nameScore(play Play, haystackTokens map[string]bool, haystackText string) float64 {
	names := extractNames(play)
	if len(names) == 0 {
		return 0
	}

	const (
		lastNameWeight   = 0.8
		firstNameWeight  = 0.5
		hyphenatedWeight = 0.3
	)

	var totalWeight, matchedWeight float64
	for _, name := range names {
		if len(name.parts) == 0 {
			continue
		}
		last := strings.ToLower(textnorm.FoldDiacritics(name.parts[len(name.parts)-1]))

		totalWeight += lastNameWeight * name.importance
		if haystackTokens[strings.Trim(last, ".'")] || (len(last) > 3 && strings.Contains(haystackText, last)) {
			matchedWeight += lastNameWeight * name.importance
		}

		if len(name.parts) > 1 {
			first := strings.ToLower(textnorm.FoldDiacritics(name.parts[0]))
			totalWeight += firstNameWeight * name.importance
			if haystackTokens[strings.Trim(first, ".'")] {
				matchedWeight += firstNameWeight * name.importance
			}
		}

		if strings.Contains(last, "-") {
			totalWeight += hyphenatedWeight * name.importance
			if strings.Contains(haystackText, last) {
				matchedWeight += hyphenatedWeight * name.importance
			}
		}
	}

	if totalWeight == 0 {
		return 0
	}
	return matchedWeight / totalWeight
}

// titleOverlap is the token-overlap ratio between the normalized play
// description and the normalized clip title, over the larger token count.
func titleOverlap(playTokens, titleTokens []string) float64 {
	if len(playTokens) == 0 || len(titleTokens) == 0 {
		return 0
	}
	titleSet := tokenSet(titleTokens)
	overlap := 0
	for _, token := range playTokens {
		if titleSet[token] {
			overlap++
		}
	}
	larger := len(playTokens)
	if len(titleTokens) > larger {
		larger = len(titleTokens)
	}
	return float64(overlap) / float64(larger)
}

// playTypeScore credits the fraction of the play type's keyword pattern that
// appears in the clip metadata. Falls back to the event label when
// classification yields nothing.
func playTypeScore(play Play, category playclass.Category, haystackTokens map[string]bool) float64 {
	pattern := category.VideoPattern()
	if len(pattern) == 0 {
		pattern = textnorm.Tokens(play.Event)
	}
	if len(pattern) == 0 {
		return 0
	}
	present := 0
	for _, word := range pattern {
		if haystackTokens[word] {
			present++
		}
	}
	return float64(present) / float64(len(pattern))
}

// complexPlayMarkers identify clip metadata describing the same complex play
// shape as the category. Plain RBI outs carry no marker.
var complexPlayMarkers = map[playclass.Category][]string{
	playclass.CategoryForceOutRBI:       {"force"},
	playclass.CategorySacFly:            {"sacrifice", "sac"},
	playclass.CategorySacBunt:           {"sacrifice", "sac"},
	playclass.CategoryFieldersChoiceRBI: {"fielders", "choice"},
}

func hasComplexPattern(category playclass.Category, haystackTokens map[string]bool) bool {
	for _, marker := range complexPlayMarkers[category] {
		if haystackTokens[marker] {
			return true
		}
	}
	return false
}

func playMentionsScoring(play Play, playTokens []string) bool {
	for _, token := range playTokens {
		if token == "rbi" || token == "run" || token == "runs" {
			return true
		}
	}
	return strings.Contains(strings.ToLower(play.Description), "scores")
}

func anyToken(haystack map[string]bool, words map[string]bool) bool {
	for word := range words {
		if haystack[word] {
			return true
		}
	}
	return false
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		set[token] = true
	}
	return set
}

func buildSet(values ...string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, value := range values {
		set[value] = true
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
