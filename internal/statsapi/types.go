package statsapi

import (
	"strconv"
	"strings"
	"time"
)

// Playback is one playback variant of a highlight clip.
type Playback struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Highlight carries the metadata dinger needs from one highlight clip.
// Immutable once extracted from a fetch response.
type Highlight struct {
	ID          string
	Title       string
	Description string
	Keywords    []string
	Duration    time.Duration
	PublishedAt time.Time
	Playbacks   []Playback

	// Derived at decode time.
	Animated bool
	Category string
}

// GameContent is the usable slice of a game's content payload.
type GameContent struct {
	GamePK     int64
	Highlights []Highlight
}

// Raw payload shapes. Only the fields dinger reads are modeled; the upstream
// payload carries far more.
type contentResponse struct {
	Highlights struct {
		Highlights struct {
			Items []highlightItem `json:"items"`
		} `json:"highlights"`
	} `json:"highlights"`
}

type highlightItem struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	SlugID      string `json:"slug"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	KeywordsAll []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"keywordsAll"`
	Playbacks []Playback `json:"playbacks"`
}

// animatedMarkers flag clips that are rendered graphics rather than game
// footage. Such clips are never valid matches.
var animatedMarkers = []string{"animated", "animation", "statcast", "visualization", "breaks down"}

func (item highlightItem) toHighlight() Highlight {
	id := strings.TrimSpace(item.SlugID)
	if id == "" {
		id = strings.TrimSpace(item.ID)
	}
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = strings.TrimSpace(item.Headline)
	}

	keywords := make([]string, 0, len(item.KeywordsAll))
	for _, keyword := range item.KeywordsAll {
		value := strings.TrimSpace(keyword.Value)
		if value != "" {
			keywords = append(keywords, value)
		}
	}

	h := Highlight{
		ID:          id,
		Title:       title,
		Description: strings.TrimSpace(item.Description),
		Keywords:    keywords,
		Duration:    parseClockDuration(item.Duration),
		PublishedAt: parseTimestamp(item.Date),
		Playbacks:   item.Playbacks,
		Category:    contentCategory(item),
	}
	h.Animated = isAnimatedContent(h)
	return h
}

func contentCategory(item highlightItem) string {
	t := strings.ToLower(strings.TrimSpace(item.Type))
	if t == "" {
		return "video"
	}
	return t
}

func isAnimatedContent(h Highlight) bool {
	haystack := strings.ToLower(h.ID + " " + h.Title + " " + strings.Join(h.Keywords, " "))
	for _, marker := range animatedMarkers {
		if strings.Contains(haystack, marker) {
			return true
		}
	}
	return false
}

// parseClockDuration parses "HH:MM:SS" or "MM:SS" clip durations, returning
// zero on anything malformed.
func parseClockDuration(value string) time.Duration {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	var total int
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700", "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
