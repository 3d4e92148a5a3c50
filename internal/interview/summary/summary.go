// Package summary guarantees every terminated conversation carries a
// structured bullet summary, synthesizing one when the model never produced
// it.
package summary

import (
	"strings"
	"time"

	"beliefshift/internal/interview/classify"
	"beliefshift/internal/interview/entity"
)

const (
	synthPrefix = "Thank you for sharing your story with me. Let me summarize the key themes from our conversation:"
	synthSuffix = "This covers the main points we discussed about your belief change journey."
)

var summaryKeywords = []string{"summarize", "summary", "key themes", "based on our conversation"}

// LooksLikeSummary applies the bullets-plus-keywords heuristic to one
// assistant reply. Replies recognized as summaries bypass drift rewriting.
func LooksLikeSummary(reply string) bool {
	return bulletCount(reply) >= 2 && containsKeyword(reply)
}

// HasSummary reports whether one of the last five assistant turns already
// carries a structured summary: two or more bullet markers, or a summary
// keyword.
func HasSummary(turns []entity.Turn) bool {
	seen := 0
	for i := len(turns) - 1; i >= 0 && seen < 5; i-- {
		t := turns[i]
		if t.Role != entity.RoleAssistant {
			continue
		}
		seen++
		if bulletCount(t.Content) >= 2 || containsKeyword(t.Content) {
			return true
		}
	}
	return false
}

func bulletCount(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "•") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "- ") {
			n++
		}
	}
	return n
}

func containsKeyword(s string) bool {
	n := strings.ToLower(s)
	for _, k := range summaryKeywords {
		if strings.Contains(n, k) {
			return true
		}
	}
	return false
}

// theme is one scored summary angle.
type theme struct {
	bullet   string
	keywords []string
}

var themes = []theme{
	{
		bullet:   "• Evidence and information played a part in how your views developed",
		keywords: []string{"evidence", "data", "science", "scientist", "study", "research", "report", "news", "article", "documentary"},
	},
	{
		bullet:   "• Personal experiences shaped your perspective",
		keywords: []string{"experience", "saw", "seen", "felt", "lived", "happened to me", "bushfire", "fire", "flood", "drought", "weather"},
	},
	{
		bullet:   "• People around you influenced your thinking",
		keywords: []string{"friend", "family", "uncle", "aunt", "parent", "mum", "dad", "colleague", "people", "everyone", "community"},
	},
	{
		bullet:   "• Media and public conversation featured in your story",
		keywords: []string{"media", "tv", "radio", "social media", "online", "internet", "podcast", "facebook", "twitter"},
	},
	{
		bullet:   "• Your views went through a gradual process of change",
		keywords: []string{"changed", "change", "gradually", "over time", "slowly", "started to", "began to", "realised", "realized", "shifted"},
	},
}

// Synthesize builds a bullet summary from the participant's change
// description and their longer user turns. Always returns at least two
// bullets and at most maxBullets.
func Synthesize(profile entity.Profile, turns []entity.Turn, maxBullets int) string {
	if maxBullets <= 0 {
		maxBullets = 5
	}
	var material []string
	if d := strings.TrimSpace(profile.ChangeDescription); d != "" {
		material = append(material, strings.ToLower(d))
	}
	for _, t := range turns {
		if t.Role != entity.RoleUser {
			continue
		}
		content := strings.TrimSpace(t.Content)
		if len(content) <= 10 || classify.IsTermination(content) {
			continue
		}
		material = append(material, strings.ToLower(content))
	}
	corpus := strings.Join(material, "\n")

	var bullets []string
	for _, th := range themes {
		if len(bullets) >= maxBullets {
			break
		}
		for _, k := range th.keywords {
			if strings.Contains(corpus, k) {
				bullets = append(bullets, th.bullet)
				break
			}
		}
	}
	// The floor: even an empty conversation closes with two generic themes.
	fallback := []string{
		"• You reflected on how your views about climate change developed",
		"• You shared your perspective on what climate change means to you",
	}
	for _, f := range fallback {
		if len(bullets) >= 2 {
			break
		}
		if !contains(bullets, f) {
			bullets = append(bullets, f)
		}
	}

	return synthPrefix + "\n\n" + strings.Join(bullets, "\n\n") + "\n\n" + synthSuffix
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Ensure appends a synthesized summary turn unless the transcript already
// carries a structured summary. Idempotent: calling it twice adds at most one
// generated turn. Returns the possibly extended transcript and whether a
// turn was appended.
func Ensure(profile entity.Profile, turns []entity.Turn, maxBullets int, now time.Time) ([]entity.Turn, bool) {
	if HasSummary(turns) {
		return turns, false
	}
	turn := entity.Turn{
		Role:             entity.RoleAssistant,
		Content:          Synthesize(profile, turns, maxBullets),
		Timestamp:        now,
		GeneratedSummary: true,
	}
	return append(turns, turn), true
}
