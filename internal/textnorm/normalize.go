package textnorm

import (
	"regexp"
	"strings"
)

var (
	uniformNumberPattern = regexp.MustCompile(`\(\d+\)`)

	// scoresPattern matches a run-scoring phrase with up to two preceding
	// capitalized name words ("Sam Lee scores", "scores"). It runs on the
	// original-cased text so ordinary words ahead of the verb survive.
	scoresPattern = regexp.MustCompile(`(?:\b[A-Z][A-Za-z'.-]*\s+){0,2}\b(?i:scores?)\b`)

	toBasePattern  = regexp.MustCompile(`\bto (1st|2nd|3rd|first|second|third)( base)?\b`)
	outAtPattern   = regexp.MustCompile(`\bout at (1st|2nd|3rd|first|second|third|home)( base)?\b`)
	stopwordSet    = buildSet("on", "a", "an", "the", "to", "for", "in", "at", "by", "with", "into")
	positionNouns  = buildSet("baseman", "fielder", "shortstop", "catcher", "pitcher")
	punctStripper  = regexp.MustCompile(`[^a-z0-9 ]+`)
	spaceCollapser = regexp.MustCompile(`\s+`)
)

// phraseCanon rewrites compound baseball phrases into stable canonical forms.
// Longer phrases first so substrings cannot pre-empt them.
var phraseCanon = strings.NewReplacer(
	"grounds into a force out", "force out",
	"grounds into force out", "force out",
	"grounds into a forceout", "force out",
	"fielder's choice", "fielders choice",
	"reaches on an error", "error",
	"reaches on a throwing error", "error",
	"reaches on a fielding error", "error",
	"reaches on error", "error",
	"sacrifice fly", "sacrifice fly",
	"sacrifice bunt", "sacrifice bunt",
)

// Normalize canonicalizes raw play or video text into a comparable token
// form. The result is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	s := FoldDiacritics(text)
	s = scoresPattern.ReplaceAllString(s, " rbi ")
	s = strings.ToLower(s)
	s = uniformNumberPattern.ReplaceAllString(s, " ")
	s = phraseCanon.Replace(s)
	s = toBasePattern.ReplaceAllString(s, " ")
	s = outAtPattern.ReplaceAllString(s, " out ")

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, field := range fields {
		bare := strings.Trim(field, ".,;:!?'\"()")
		if stopwordSet[bare] || positionNouns[bare] {
			continue
		}
		kept = append(kept, field)
	}
	s = strings.Join(kept, " ")

	s = punctStripper.ReplaceAllString(s, " ")
	s = spaceCollapser.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokens returns the whitespace-separated tokens of the normalized form.
func Tokens(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

var slugSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// SlugTokens splits a video identifier on word-separator characters,
// lowercasing and folding diacritics first.
func SlugTokens(slug string) []string {
	lowered := strings.ToLower(FoldDiacritics(slug))
	raw := slugSplitPattern.Split(lowered, -1)
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

func buildSet(values ...string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, value := range values {
		set[value] = true
	}
	return set
}
