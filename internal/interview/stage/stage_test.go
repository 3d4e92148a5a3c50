package stage

import (
	"testing"

	"beliefshift/internal/interview/entity"
)

func state(st entity.Stage) entity.ConductorState {
	return entity.ConductorState{Stage: st}
}

func TestNextExplorationToElaboration(t *testing.T) {
	th := DefaultThresholds()

	s := state(entity.StageExploration)
	s.SubstantiveResponseCount = 3
	s.TurnCount = 5
	if got := Next(th, s); got != entity.StageElaboration {
		t.Fatalf("substantive path: got %v, want elaboration", got)
	}

	s = state(entity.StageExploration)
	s.MinimalResponseCount = 2
	s.TurnCount = 4
	if got := Next(th, s); got != entity.StageElaboration {
		t.Fatalf("minimal shortcut: got %v, want elaboration", got)
	}

	s = state(entity.StageExploration)
	s.SubstantiveResponseCount = 3
	s.TurnCount = 4 // below ExploreTurns
	if got := Next(th, s); got != entity.StageExploration {
		t.Fatalf("early advance: got %v, want exploration", got)
	}
}

func TestNextElaborationToRecap(t *testing.T) {
	th := DefaultThresholds()

	s := state(entity.StageElaboration)
	s.ExhaustionSignals = 2
	if got := Next(th, s); got != entity.StageRecap {
		t.Fatalf("exhaustion path: got %v, want recap", got)
	}

	s = state(entity.StageElaboration)
	s.MinimalResponseCount = 3
	if got := Next(th, s); got != entity.StageRecap {
		t.Fatalf("minimal path: got %v, want recap", got)
	}

	s = state(entity.StageElaboration)
	s.TurnCount = 8
	s.SubstantiveResponseCount = 2
	if got := Next(th, s); got != entity.StageRecap {
		t.Fatalf("turn path: got %v, want recap", got)
	}

	s = state(entity.StageElaboration)
	s.TurnCount = 8 // substantive below threshold
	if got := Next(th, s); got != entity.StageElaboration {
		t.Fatalf("turns alone: got %v, want elaboration", got)
	}
}

func TestNextNeverRegressesOrSkips(t *testing.T) {
	th := DefaultThresholds()

	// Counters satisfying both transitions still move only one step.
	s := state(entity.StageExploration)
	s.SubstantiveResponseCount = 10
	s.TurnCount = 20
	s.ExhaustionSignals = 5
	if got := Next(th, s); got != entity.StageElaboration {
		t.Fatalf("got %v, want single-step elaboration", got)
	}

	// Recap and complete never move by counters.
	s = state(entity.StageRecap)
	s.ExhaustionSignals = 10
	if got := Next(th, s); got != entity.StageRecap {
		t.Fatalf("got %v, want recap", got)
	}
	s = state(entity.StageComplete)
	if got := Next(th, s); got != entity.StageComplete {
		t.Fatalf("got %v, want complete", got)
	}
}

func TestNextDisabled(t *testing.T) {
	th := Disabled()
	s := state(entity.StageExploration)
	s.SubstantiveResponseCount = 10
	s.TurnCount = 20
	if got := Next(th, s); got != entity.StageExploration {
		t.Fatalf("disabled thresholds must never advance, got %v", got)
	}
	if ShouldForceSummary(th, state(entity.StageRecap)) {
		t.Fatalf("disabled thresholds must never force a summary")
	}
}

func TestShouldForceSummary(t *testing.T) {
	th := DefaultThresholds()

	if !ShouldForceSummary(th, state(entity.StageRecap)) {
		t.Fatalf("recap stage should force")
	}

	s := state(entity.StageExploration)
	s.ExhaustionSignals = 3
	if !ShouldForceSummary(th, s) {
		t.Fatalf("exhaustion >= 3 should force")
	}

	s = state(entity.StageExploration)
	s.MinimalResponseCount = 3
	if !ShouldForceSummary(th, s) {
		t.Fatalf("minimal >= 3 should force")
	}

	// Topic-turn saturation does not force during exploration.
	s = state(entity.StageExploration)
	s.TopicTurnCount = 4
	if ShouldForceSummary(th, s) {
		t.Fatalf("topic saturation must not force in exploration")
	}
	s.Stage = entity.StageElaboration
	if !ShouldForceSummary(th, s) {
		t.Fatalf("topic saturation should force in elaboration")
	}

	if ShouldForceSummary(th, state(entity.StageExploration)) {
		t.Fatalf("fresh state must not force")
	}
}
