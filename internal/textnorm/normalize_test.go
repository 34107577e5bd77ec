package textnorm

import (
	"reflect"
	"testing"
)

func TestNormalizeCanonicalForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"lowercases", "Home Run", "home run"},
		{"strips uniform numbers", "flies out to right fielder Mike Trout (27)", "flies out right mike trout"},
		{"force out phrase", "Jose Altuve grounds into a force out", "jose altuve force out"},
		{"fielders choice possessive", "reaches on a fielder's choice", "reaches fielders choice"},
		{"reaches on error", "Smith reaches on error", "smith error"},
		{"named scorer becomes rbi", "Alex Rivera singles to center, Sam Lee scores.", "alex rivera singles center rbi"},
		{"bare scores becomes rbi", "sacrifice fly, scores", "sacrifice fly rbi"},
		{"unpunctuated name before scores", "sacrifice fly Jones scores", "sacrifice fly rbi"},
		{"lowercase words before scores kept", "Smith sacrifice fly scores Jones", "smith sacrifice fly rbi jones"},
		{"base noise stripped", "Jones singles, runner to 2nd base", "jones singles runner"},
		{"out at base keeps out", "Diaz out at 2nd", "diaz out"},
		{"position nouns stripped", "grounds out to second baseman", "grounds out"},
		{"fielder noun stripped", "lines out to left fielder", "lines out left"},
		{"stopwords stripped", "a single into the gap for Jones", "single gap jones"},
		{"diacritics folded", "José Ramírez doubles", "jose ramirez doubles"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Alex Rivera singles to center, Sam Lee scores.",
		"Jose Altuve grounds into a force out, shortstop to second baseman",
		"reaches on a fielder's choice",
		"Sacrifice fly to deep center, Trout scores",
		"sacrifice fly Jones scores",
		"José Ramírez (11) homers (22) to left",
		"out at 3rd, catcher to third baseman",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("Alex Rivera singles, Lee scores")
	want := []string{"alex", "rivera", "singles", "rbi"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens = %v, want %v", got, want)
	}
	if Tokens("") != nil {
		t.Error("expected nil tokens for empty input")
	}
}

func TestSlugTokens(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"alex-rivera-rbi-single", []string{"alex", "rivera", "rbi", "single"}},
		{"c-1234-homer_x", []string{"c", "1234", "homer", "x"}},
		{"", nil},
		{"---", nil},
	}
	for _, tt := range tests {
		got := SlugTokens(tt.in)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SlugTokens(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFoldDiacritics(t *testing.T) {
	if got := FoldDiacritics("Andrés Giménez"); got != "Andres Gimenez" {
		t.Errorf("FoldDiacritics = %q", got)
	}
}
