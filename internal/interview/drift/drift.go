// Package drift inspects a candidate assistant reply for departures from the
// belief-change narrative and supplies the fixed redirect strings.
package drift

import (
	"strings"
	"unicode"

	"beliefshift/internal/interview/entity"
)

// Kind enumerates the drift axes. Detection order in the conductor is
// off-topic, then political, then action/role, then belief drift; the first
// match wins.
type Kind string

const (
	KindOffTopic    Kind = "off_topic"
	KindPolitical   Kind = "political"
	KindActionRole  Kind = "action_role"
	KindBeliefDrift Kind = "belief_drift"
)

// Redirects carries the per-kind replacement strings. Zero fields fall back
// to the defaults.
type Redirects struct {
	OffTopic    string
	Political   string
	ActionRole  string
	BeliefDrift string
}

// DefaultRedirects returns the stock redirect strings.
func DefaultRedirects() Redirects {
	return Redirects{
		OffTopic:    "I'd love to hear more about your climate change story. What else do you remember about how your views developed?",
		Political:   "Let's keep the focus on your own experience. What moments or experiences shaped how you think about climate change?",
		ActionRole:  "Rather than what should happen next, I'm curious about your journey so far. What led your thinking to where it is today?",
		BeliefDrift: "Coming back to your views on climate change, what do you remember about how they took shape?",
	}
}

// Redirect returns the replacement string for a drift kind.
func (r Redirects) Redirect(kind Kind) string {
	d := DefaultRedirects()
	pick := func(v, fallback string) string {
		if strings.TrimSpace(v) != "" {
			return v
		}
		return fallback
	}
	switch kind {
	case KindOffTopic:
		return pick(r.OffTopic, d.OffTopic)
	case KindPolitical:
		return pick(r.Political, d.Political)
	case KindActionRole:
		return pick(r.ActionRole, d.ActionRole)
	case KindBeliefDrift:
		return pick(r.BeliefDrift, d.BeliefDrift)
	}
	return d.OffTopic
}

var offTopicPhrases = []string{
	"another topic",
	"different topic",
	"talk about something else",
	"change the subject",
	"change subjects",
	"something other than climate",
	"move on to something else",
}

// IsOffTopic reports whether the reply offers to change the subject.
func IsOffTopic(r string) bool {
	return containsAny(r, offTopicPhrases)
}

var politicalPhrases = []string{
	"political party", "which party", "who did you support",
	"left wing", "right wing",
}

// Single words match on word boundaries only; "devoted" is not "voted".
var politicalWords = []string{
	"vote", "voted", "voting", "votes",
	"election", "elections", "campaign", "campaigns",
	"politician", "politicians", "politics",
}

// IsPoliticalDrift reports whether the reply asks about party or voting
// behaviour.
func IsPoliticalDrift(r string) bool {
	if containsAny(r, politicalPhrases) {
		return true
	}
	n := strings.ToLower(strings.TrimSpace(r))
	for _, w := range politicalWords {
		if hasWord(n, w) {
			return true
		}
	}
	return false
}

var actionRolePhrases = []string{
	"what actions should", "what action should",
	"what should you do", "what should we do", "what should society",
	"what can you do", "what can we do", "what can people do",
	"how can you help", "how can we help", "how will you contribute",
	"make a difference", "reduce your carbon", "your carbon footprint",
	"take action",
}

// IsActionRoleDrift reports whether the reply slides from narrative
// elicitation into action advocacy.
func IsActionRoleDrift(r string) bool {
	return containsAny(r, actionRolePhrases)
}

var eventQuestionPhrases = []string{
	"specific event", "particular event", "specific moment", "particular moment",
	"what event", "which event", "an event that",
	"specific experience", "particular experience",
	"turning point", "pivotal moment",
}

// IsEventQuestion reports whether the reply is probing for a concrete event,
// moment, or experience.
func IsEventQuestion(r string) bool {
	return containsAny(r, eventQuestionPhrases)
}

func hasWord(n, w string) bool {
	for _, f := range strings.FieldsFunc(n, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		if f == w {
			return true
		}
	}
	return false
}

func containsAny(r string, phrases []string) bool {
	n := strings.ToLower(strings.TrimSpace(r))
	if n == "" {
		return false
	}
	for _, p := range phrases {
		if strings.Contains(n, p) {
			return true
		}
	}
	return false
}

// alternativeQuestions probe impact, emotion, and timeline instead of
// re-asking for an event the participant already confirmed.
var alternativeQuestions = []struct {
	intent entity.QuestionIntent
	text   string
}{
	{entity.IntentAskImpact, "How did that experience affect your day-to-day thinking about climate change?"},
	{entity.IntentAskEmotion, "How did you feel when your views started to shift?"},
	{entity.IntentAskTimeline, "Over what period of time did this change in your views happen?"},
	{entity.IntentAskImpact, "What difference has this change of view made in your life?"},
}

// Alternative returns a non-event question and the intent it carries. The
// rotation index lets callers avoid repeating the same alternative.
func Alternative(rotation int) (string, entity.QuestionIntent) {
	if rotation < 0 {
		rotation = 0
	}
	q := alternativeQuestions[rotation%len(alternativeQuestions)]
	return q.text, q.intent
}

// InferIntent classifies what a committed assistant reply was asking about.
func InferIntent(r string) entity.QuestionIntent {
	n := strings.ToLower(strings.TrimSpace(r))
	if n == "" {
		return entity.IntentUnknown
	}
	switch {
	case IsEventQuestion(n):
		return entity.IntentAskEvent
	case strings.Contains(n, "feel") || strings.Contains(n, "emotion"):
		return entity.IntentAskEmotion
	case strings.Contains(n, "when") || strings.Contains(n, "how long") || strings.Contains(n, "over time"):
		return entity.IntentAskTimeline
	case strings.Contains(n, "affect") || strings.Contains(n, "impact") || strings.Contains(n, "difference"):
		return entity.IntentAskImpact
	case strings.Contains(n, "do about") || strings.Contains(n, "action"):
		return entity.IntentAskAction
	default:
		return entity.IntentUnknown
	}
}
