package classify

import (
	"strings"

	"plansync/internal/models"
)

// Rule is one row of the classification cascade. Rules are evaluated in
// order and the first match wins; overlapping vocabularies across rows are
// resolved by position, nothing else.
type Rule struct {
	Name     string
	Category models.Category
	Match    func(kind models.ItemKind, title string, isHeader bool) bool
}

// Rules is the full cascade. The final row always matches, so Classify is
// total over any input triple.
var Rules = []Rule{
	{
		Name:     "header-pre-service",
		Category: models.CategoryPreService,
		Match: func(_ models.ItemKind, title string, isHeader bool) bool {
			return isHeader && hasPrefixAny(title, "pre-service", "pre service", "preservice")
		},
	},
	{
		Name:     "header-post-service",
		Category: models.CategoryPostService,
		Match: func(_ models.ItemKind, title string, isHeader bool) bool {
			return isHeader && hasPrefixAny(title, "post-service", "post service", "postservice")
		},
	},
	{
		Name:     "pre-service-keywords",
		Category: models.CategoryPreService,
		Match: func(_ models.ItemKind, title string, _ bool) bool {
			return containsAny(title,
				"pre-service", "pre service", "prelude", "countdown",
				"walk-in", "walk in", "lobby", "pre-show", "pre show")
		},
	},
	{
		Name:     "post-service-keywords",
		Category: models.CategoryPostService,
		Match: func(_ models.ItemKind, title string, _ bool) bool {
			if containsAny(title, "post-service", "post service", "walk-out", "walk out", "dismissal", "outro", "exit") {
				return true
			}
			// Pairings that only read as post-service together
			return containsAll(title, "bumper", "ending") ||
				containsAll(title, "bumper", "exit") ||
				containsAll(title, "ending", "exit")
		},
	},
	{
		Name:     "song",
		Category: models.CategorySong,
		Match: func(kind models.ItemKind, title string, _ bool) bool {
			return kind == models.KindSong ||
				containsAny(title, "worship", "praise", "anthem", "hymn")
		},
	},
	{
		Name:     "video",
		Category: models.CategoryVideos,
		Match: func(kind models.ItemKind, title string, _ bool) bool {
			return kind == models.KindVideo ||
				containsAny(title, "bumper", "clip", "lyric video", "church news")
		},
	},
	{
		Name:     "message-keywords",
		Category: models.CategoryMessage,
		Match: func(_ models.ItemKind, title string, _ bool) bool {
			return containsAny(title, "sermon", "homily", "teaching", "communion", "testimony", "message")
		},
	},
	{
		Name:     "transition-keywords",
		Category: models.CategoryTransitions,
		Match: func(_ models.ItemKind, title string, _ bool) bool {
			return containsAny(title,
				"prayer", "welcome", "host", "announcements", "giving",
				"offering", "response", "benediction", "dismissal")
		},
	},
	{
		Name:     "fallback-announcement",
		Category: models.CategoryTransitions,
		Match: func(kind models.ItemKind, _ string, _ bool) bool {
			return kind == models.KindAnnouncement
		},
	},
	{
		Name:     "fallback",
		Category: models.CategoryMessage,
		Match: func(models.ItemKind, string, bool) bool {
			return true
		},
	},
}

// Classify resolves a plan item to exactly one category
func Classify(kind models.ItemKind, title string, isHeader bool) models.Category {
	cat, _ := ClassifyRule(kind, title, isHeader)
	return cat
}

// ClassifyRule additionally reports which cascade row decided, for
// diagnostics and rule-level tests
func ClassifyRule(kind models.ItemKind, title string, isHeader bool) (models.Category, string) {
	lowered := strings.ToLower(strings.TrimSpace(title))
	for _, r := range Rules {
		if r.Match(kind, lowered, isHeader) {
			return r.Category, r.Name
		}
	}
	return models.CategoryMessage, "fallback"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func hasPrefixAny(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
