package conductor

import (
	"strings"
	"time"

	"beliefshift/internal/interview/classify"
	"beliefshift/internal/interview/entity"
)

// classifyUserTurn applies the C4 classifiers to one user utterance and folds
// the results into the conductor state. Counter rules: minimal and
// substantive are mutually exclusive; exhaustion decays by one on any
// non-exhaustion turn.
func classifyUserTurn(state *entity.ConductorState, userText string, now time.Time) {
	state.TurnCount++

	if classify.IsMinimal(userText) {
		state.MinimalResponseCount++
		state.SubstantiveResponseCount = 0
	} else if strings.TrimSpace(userText) != "" {
		state.SubstantiveResponseCount++
		state.MinimalResponseCount = 0
	}

	if classify.IsExhaustion(userText) {
		state.ExhaustionSignals++
	} else if state.ExhaustionSignals > 0 {
		state.ExhaustionSignals--
	}

	state.RecordTopic(classify.ExtractTopic(userText))

	if inf := classify.ExtractInfluence(userText); inf != nil {
		state.AddInfluence(*inf)
	}
	if frag := classify.ExtractCauseEffect(userText); frag != "" {
		state.Narrative.CauseEffect = append(state.Narrative.CauseEffect, frag)
	}
	if classify.IsMainStoryCandidate(userText) && len(userText) > len(state.Narrative.MainStory) {
		state.Narrative.MainStory = userText
	}

	// A substantive answer to an event question confirms the event; further
	// event probing gets suppressed by the anti-loop.
	if state.EventProbe.LastQuestionIntent == entity.IntentAskEvent && !classify.IsMinimal(userText) && strings.TrimSpace(userText) != "" {
		state.EventProbe.EventConfirmed = true
		event := strings.TrimSpace(userText)
		if len(event) > 80 {
			event = strings.TrimSpace(event[:80])
		}
		state.AddIdentifiedEvent(event)
	}

	state.LastUserResponse = userText
	state.UpdatedAt = now
}

func isTerminationTurn(userText, lastUser string) bool {
	return classify.IsTermination(userText) || classify.IsRepeatedNegative(userText, lastUser)
}

// recordResponsePatterns tracks consecutive assistant replies that open the
// same way, feeding the vary-opening warning.
func recordResponsePatterns(state *entity.ConductorState, reply string) {
	opening := firstClause(reply)
	if opening != "" && strings.EqualFold(opening, state.ResponsePatterns.LastOpeningPhrase) {
		state.ResponsePatterns.ConsecutiveSimilarResponses++
	} else {
		state.ResponsePatterns.ConsecutiveSimilarResponses = 0
	}
	state.ResponsePatterns.LastOpeningPhrase = opening
}

const firstClauseMax = 40

func firstClause(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ",.!?;\n"); i > 0 {
		s = s[:i]
	}
	if len(s) > firstClauseMax {
		s = s[:firstClauseMax]
	}
	return strings.TrimSpace(s)
}

// parseUpdateShortcut matches "update: field=value(;field=value)*" and
// returns the parsed fields.
func parseUpdateShortcut(userText string) (map[string]string, bool) {
	trimmed := strings.TrimSpace(userText)
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "update") {
		return nil, false
	}
	rest := trimmed[len("update"):]
	rest = strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(rest, ":") {
		return nil, false
	}
	rest = rest[1:]

	fields := make(map[string]string)
	for _, pair := range strings.Split(rest, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if len(fields) == 0 {
		return nil, false
	}
	return fields, true
}
