package drift

import (
	"testing"

	"beliefshift/internal/interview/entity"
)

func TestDetectionOrderPredicates(t *testing.T) {
	if !IsOffTopic("Would you like to talk about something else instead?") {
		t.Fatalf("expected off-topic match")
	}
	if !IsPoliticalDrift("Which party did you vote for back then?") {
		t.Fatalf("expected political match")
	}
	if !IsPoliticalDrift("Did the election change how you saw it?") {
		t.Fatalf("expected political match on election")
	}
	if IsPoliticalDrift("You seem really devoted to understanding the science behind this. What first drew you in?") {
		t.Fatalf("devoted must not read as voting talk")
	}
	if !IsActionRoleDrift("What actions should you take to make a difference?") {
		t.Fatalf("expected action/role match")
	}
	if IsOffTopic("What do you remember about the fires?") ||
		IsPoliticalDrift("What do you remember about the fires?") ||
		IsActionRoleDrift("What do you remember about the fires?") {
		t.Fatalf("neutral question must not match any axis")
	}
}

func TestIsEventQuestion(t *testing.T) {
	if !IsEventQuestion("Was there a specific event that changed your mind?") {
		t.Fatalf("expected event-question match")
	}
	if !IsEventQuestion("What was the turning point for you?") {
		t.Fatalf("expected event-question match on turning point")
	}
	if IsEventQuestion("How did you feel about it?") {
		t.Fatalf("emotion question is not an event question")
	}
}

func TestRedirectFallsBackToDefaults(t *testing.T) {
	var r Redirects // all zero
	d := DefaultRedirects()
	if got := r.Redirect(KindPolitical); got != d.Political {
		t.Fatalf("got %q, want default political redirect", got)
	}
	r.Political = "custom"
	if got := r.Redirect(KindPolitical); got != "custom" {
		t.Fatalf("got %q, want custom", got)
	}
	if got := r.Redirect(KindOffTopic); got != d.OffTopic {
		t.Fatalf("got %q, want default off-topic redirect", got)
	}
}

func TestAlternativeRotatesAndNeverAsksForEvents(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 8; i++ {
		q, intent := Alternative(i)
		if IsEventQuestion(q) {
			t.Fatalf("alternative %d is itself an event question: %q", i, q)
		}
		if intent == entity.IntentAskEvent {
			t.Fatalf("alternative %d carries ask_event intent", i)
		}
		seen[q] = true
	}
	if len(seen) < 2 {
		t.Fatalf("rotation should produce distinct questions, saw %d", len(seen))
	}
	if q1, _ := Alternative(1); q1 == "" {
		t.Fatalf("empty alternative")
	}
	qNeg, _ := Alternative(-3)
	q0, _ := Alternative(0)
	if qNeg != q0 {
		t.Fatalf("negative rotation should clamp to zero")
	}
}

func TestInferIntent(t *testing.T) {
	cases := []struct {
		in   string
		want entity.QuestionIntent
	}{
		{"Was there a specific event behind that?", entity.IntentAskEvent},
		{"How did you feel when that happened?", entity.IntentAskEmotion},
		{"When did your views start to shift?", entity.IntentAskTimeline},
		{"What impact did that have on you?", entity.IntentAskImpact},
		{"", entity.IntentUnknown},
	}
	for _, c := range cases {
		if got := InferIntent(c.in); got != c.want {
			t.Fatalf("InferIntent(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
