package match

import (
	"regexp"
	"strings"
	"time"

	"plansync/internal/models"
	"plansync/internal/normalize"
)

// MinScore is the floor below which a media selection is treated as
// no-match rather than risk attaching the wrong asset
const MinScore = 15.0

// overrideScore marks a selection forced by the override table
const overrideScore = 100.0

// Override forces a fixed target asset for topics matching a pattern,
// bypassing scoring. Used for phrasings scoring never gets right, like
// dismissal-by-age-group lines.
type Override struct {
	Pattern *regexp.Regexp
	Target  string
}

// stopWords are tokens too common to signal anything on their own
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true,
	"from": true, "our": true, "your": true,
}

// SelectMedia picks the best media playlist item for a topic phrase by
// weighted keyword scoring. Returns nil when nothing reaches MinScore; the
// returned score is reported either way for logging.
func SelectMedia(topic string, items []models.MediaPlaylistItem, now time.Time, overrides []Override) (*models.MediaPlaylistItem, float64) {
	if len(items) == 0 {
		return nil, 0
	}

	for _, ov := range overrides {
		if ov.Pattern == nil || !ov.Pattern.MatchString(topic) {
			continue
		}
		want := normalize.Title(ov.Target)
		for i := range items {
			if normalize.Title(items[i].Name) == want {
				return &items[i], overrideScore
			}
		}
		// Forced target absent from the playlist: fall back to scoring
		break
	}

	nq := normalize.Title(topic)
	if nq == "" {
		return nil, 0
	}
	nqCollapsed := strings.ReplaceAll(nq, " ", "")
	tokens := significantTokens(nq)

	var best *models.MediaPlaylistItem
	var bestScore float64
	for i := range items {
		score := scoreItem(nq, nqCollapsed, tokens, &items[i], now)
		if best == nil || score > bestScore ||
			(score == bestScore && items[i].Updated().After(best.Updated())) {
			best = &items[i]
			bestScore = score
		}
	}
	if bestScore < MinScore {
		return nil, bestScore
	}
	return best, bestScore
}

func scoreItem(nq, nqCollapsed string, tokens []string, it *models.MediaPlaylistItem, now time.Time) float64 {
	text := normalize.Title(strings.Join(it.Keywords, " "))
	if text == "" {
		text = normalize.Title(it.Name)
	}
	collapsed := strings.ReplaceAll(text, " ", "")

	var score float64
	if strings.Contains(text, nq) {
		score += 30
	}
	if nqCollapsed != "" && strings.Contains(collapsed, nqCollapsed) {
		score += 15
	}
	for _, tok := range tokens {
		switch {
		case strings.Contains(text, tok):
			score += 10
		case strings.Contains(collapsed, tok):
			score += 6
		case len(tok) >= 5 && prefixHit(text, tok):
			score += 2
		}
	}
	if updated := it.Updated(); !updated.IsZero() {
		ageDays := now.Sub(updated).Hours() / 24
		if bonus := 10 - ageDays; bonus > 0 {
			score += bonus
		}
	}
	return score
}

func significantTokens(nq string) []string {
	var out []string
	for _, tok := range strings.Fields(nq) {
		if len(tok) < 3 || stopWords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// prefixHit accepts a prefix of the token down to 60% of its length
func prefixHit(text, tok string) bool {
	minLen := (len(tok)*6 + 9) / 10
	for l := len(tok) - 1; l >= minLen; l-- {
		if strings.Contains(text, tok[:l]) {
			return true
		}
	}
	return false
}
