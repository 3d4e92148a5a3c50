// Package stage advances the interview phase machine. Transitions are one-way
// and at most one fires per turn.
package stage

import "beliefshift/internal/interview/entity"

// Thresholds are the counters that gate automatic stage advancement. With
// AutoAdvance false the machine never moves on its own and the conversation is
// bounded by wall clock alone; one deployed variant runs that way.
type Thresholds struct {
	AutoAdvance bool

	// exploration -> elaboration
	ExploreSubstantive int // substantive count required (with ExploreTurns)
	ExploreTurns       int
	ExploreMinimal     int // minimal count shortcut (with ExploreMinTurns)
	ExploreMinTurns    int

	// elaboration -> recap
	ElaborateExhaustion  int
	ElaborateMinimal     int
	ElaborateTurns       int
	ElaborateSubstantive int

	// shouldForceSummary
	ForceExhaustion int
	ForceMinimal    int
	ForceTopicTurns int
}

// DefaultThresholds returns the aggressive variant.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AutoAdvance:          true,
		ExploreSubstantive:   3,
		ExploreTurns:         5,
		ExploreMinimal:       2,
		ExploreMinTurns:      4,
		ElaborateExhaustion:  2,
		ElaborateMinimal:     3,
		ElaborateTurns:       8,
		ElaborateSubstantive: 2,
		ForceExhaustion:      3,
		ForceMinimal:         3,
		ForceTopicTurns:      4,
	}
}

// Disabled returns thresholds that never auto-advance.
func Disabled() Thresholds {
	t := DefaultThresholds()
	t.AutoAdvance = false
	return t
}

// Next returns the stage the conversation should be in after the latest
// classified user turn. It never regresses and moves at most one step.
func Next(th Thresholds, s entity.ConductorState) entity.Stage {
	if !th.AutoAdvance {
		return s.Stage
	}
	switch s.Stage {
	case entity.StageExploration:
		if (s.SubstantiveResponseCount >= th.ExploreSubstantive && s.TurnCount >= th.ExploreTurns) ||
			(s.MinimalResponseCount >= th.ExploreMinimal && s.TurnCount >= th.ExploreMinTurns) {
			return entity.StageElaboration
		}
	case entity.StageElaboration:
		if s.ExhaustionSignals >= th.ElaborateExhaustion ||
			s.MinimalResponseCount >= th.ElaborateMinimal ||
			(s.TurnCount >= th.ElaborateTurns && s.SubstantiveResponseCount >= th.ElaborateSubstantive) {
			return entity.StageRecap
		}
	}
	// recap -> complete happens only via the completion marker or an explicit
	// termination, never by counters.
	return s.Stage
}

// ShouldForceSummary reports whether the conductor should stop probing and
// close out with a summary now.
func ShouldForceSummary(th Thresholds, s entity.ConductorState) bool {
	if !th.AutoAdvance {
		return false
	}
	if s.Stage == entity.StageRecap {
		return true
	}
	if s.ExhaustionSignals >= th.ForceExhaustion {
		return true
	}
	if s.MinimalResponseCount >= th.ForceMinimal {
		return true
	}
	if s.TopicTurnCount >= th.ForceTopicTurns && s.Stage != entity.StageExploration {
		return true
	}
	return false
}
