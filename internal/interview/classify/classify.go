// Package classify holds the pure classifiers applied to a single user
// utterance. Everything here is stateless and tolerant of empty input.
package classify

import (
	"strings"

	"beliefshift/internal/interview/entity"
)

var fillerPhrases = []string{
	"that's all",
	"thats all",
	"nothing else",
	"don't know",
	"dont know",
	"dunno",
	"not sure",
	"i guess",
}

var exhaustionPhrases = []string{
	"that's all i've got",
	"thats all ive got",
	"that's everything",
	"nothing more to say",
	"nothing else to say",
	"can't think of anything",
	"cant think of anything",
	"nothing comes to mind",
	"i've said everything",
	"that covers it",
}

// Single-word signals count only as the whole utterance; "done" inside a
// sentence is the verb, not a signal.
var exhaustionWords = []string{"done", "finished"}

var terminationPhrases = []string{
	"end the chat",
	"end this chat",
	"end the conversation",
	"stop the chat",
	"wrap up",
	"wrap it up",
	"i'm done",
	"im done",
	"i am done",
	"finish this",
	"let's finish",
	"lets finish",
	"can we stop",
	"i want to stop",
}

func normalize(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func wordCount(t string) int {
	return len(strings.Fields(t))
}

// IsMinimal reports whether the utterance is too short to carry content.
// A lone "no" or "yes" is a normal conversational move, not a minimal
// response; counting it as minimal makes fatigue-based termination fire after
// two polite acknowledgements.
func IsMinimal(t string) bool {
	n := normalize(t)
	if n == "" {
		return false
	}
	if n == "no" || n == "yes" {
		return false
	}
	words := wordCount(n)
	if words == 1 {
		return true
	}
	if words <= 2 {
		for _, f := range fillerPhrases {
			if n == f {
				return true
			}
		}
	}
	return false
}

// IsExhaustion reports whether the participant signalled they have nothing
// left to add.
func IsExhaustion(t string) bool {
	n := normalize(t)
	if n == "" {
		return false
	}
	bare := strings.Trim(n, " .!")
	for _, w := range exhaustionWords {
		if bare == w {
			return true
		}
	}
	for _, p := range exhaustionPhrases {
		if strings.Contains(n, p) {
			return true
		}
	}
	return false
}

// IsTermination reports whether the utterance explicitly asks to end the
// interview.
func IsTermination(t string) bool {
	n := normalize(t)
	if n == "" {
		return false
	}
	for _, p := range terminationPhrases {
		if strings.Contains(n, p) {
			return true
		}
	}
	return false
}

// IsRepeatedNegative reports a second consecutive bare "no". One "no" is an
// answer; two in a row reads as a request to stop.
func IsRepeatedNegative(t, lastUser string) bool {
	cur := normalize(t)
	prev := normalize(lastUser)
	neg := func(s string) bool { return s == "no" || s == "nah" }
	return neg(cur) && neg(prev)
}

var topicKeywords = []struct {
	topic entity.Topic
	words []string
}{
	{entity.TopicBushfires, []string{"bushfire", "bushfires", "fire", "fires", "smoke", "black summer"}},
	{entity.TopicNews, []string{"news", "article", "media", "documentary", "tv", "radio", "podcast"}},
	{entity.TopicEvidence, []string{"evidence", "data", "science", "scientist", "study", "research", "report", "graph"}},
	{entity.TopicSocial, []string{"friend", "family", "uncle", "aunt", "parent", "mum", "dad", "colleague", "neighbour", "people around"}},
}

// ExtractTopic maps an utterance onto the closed topic vocabulary, defaulting
// to general.
func ExtractTopic(t string) entity.Topic {
	n := normalize(t)
	if n == "" {
		return entity.TopicGeneral
	}
	for _, tk := range topicKeywords {
		for _, w := range tk.words {
			if strings.Contains(n, w) {
				return tk.topic
			}
		}
	}
	return entity.TopicGeneral
}

var relationalActors = []string{
	"uncle", "aunt", "aunty",
	"mother", "mum", "mom", "father", "dad",
	"brother", "sister", "cousin", "grandma", "grandpa", "grandmother", "grandfather",
	"friend", "mate", "partner", "wife", "husband",
	"family", "colleague", "coworker", "neighbour", "neighbor", "teacher", "boss",
}

var awayCues = []string{
	"got sick of", "sick of", "turned me off", "put me off",
	"pushed me away", "made me doubt", "stopped believing because of",
	"fed up with", "annoyed me",
}

var towardCues = []string{
	"convinced me", "helped me believe", "persuaded me", "showed me",
	"made me realise", "made me realize", "made me see", "opened my eyes",
	"got me thinking", "influenced me",
}

// ExtractInfluence detects a relational actor in the utterance and, from a
// small cue list, which way they pushed. Returns nil when no actor appears.
func ExtractInfluence(t string) *entity.Influence {
	n := normalize(t)
	if n == "" {
		return nil
	}
	var person string
	for _, actor := range relationalActors {
		if strings.Contains(n, actor) {
			person = actor
			break
		}
	}
	if person == "" {
		return nil
	}
	direction := entity.InfluenceUnknown
	for _, cue := range awayCues {
		if strings.Contains(n, cue) {
			direction = entity.InfluenceAwayFrom
			break
		}
	}
	if direction == entity.InfluenceUnknown {
		for _, cue := range towardCues {
			if strings.Contains(n, cue) {
				direction = entity.InfluenceToward
				break
			}
		}
	}
	return &entity.Influence{Person: person, Direction: direction}
}

var causeMarkers = []string{"because", "so ", " since ", "made me"}

const causeFragmentMax = 120

// ExtractCauseEffect returns a truncated fragment when the utterance contains
// a causal marker, or "" otherwise.
func ExtractCauseEffect(t string) string {
	n := normalize(t)
	if n == "" {
		return ""
	}
	matched := false
	for _, m := range causeMarkers {
		if strings.Contains(n, m) || strings.HasPrefix(n, strings.TrimSpace(m)+" ") {
			matched = true
			break
		}
	}
	if !matched {
		return ""
	}
	frag := strings.TrimSpace(t)
	if len(frag) > causeFragmentMax {
		frag = strings.TrimSpace(frag[:causeFragmentMax]) + "..."
	}
	return frag
}

const mainStoryMinLen = 80

var beliefChangeWords = []string{"changed", "change", "believe", "believed", "think", "thought", "realised", "realized"}

// IsMainStoryCandidate reports whether the utterance is long enough and
// on-theme enough to serve as the participant's core story.
func IsMainStoryCandidate(t string) bool {
	n := normalize(t)
	if len(n) < mainStoryMinLen {
		return false
	}
	for _, w := range beliefChangeWords {
		if strings.Contains(n, w) {
			return true
		}
	}
	return false
}

var beliefDriftPhrases = []string{
	"not about climate",
	"off topic",
	"different topic",
	"talk about something else",
	"don't want to talk about climate",
	"dont want to talk about climate",
	"rather talk about",
}

// DetectBeliefDrift reports whether the user signalled they have left the
// belief-change topic.
func DetectBeliefDrift(t string) bool {
	n := normalize(t)
	if n == "" {
		return false
	}
	for _, p := range beliefDriftPhrases {
		if strings.Contains(n, p) {
			return true
		}
	}
	return false
}
