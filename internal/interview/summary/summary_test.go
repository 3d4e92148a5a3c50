package summary

import (
	"strings"
	"testing"
	"time"

	"beliefshift/internal/interview/entity"
)

func userTurn(content string) entity.Turn {
	return entity.Turn{Role: entity.RoleUser, Content: content, Timestamp: time.Now()}
}

func assistantTurn(content string) entity.Turn {
	return entity.Turn{Role: entity.RoleAssistant, Content: content, Timestamp: time.Now()}
}

func TestLooksLikeSummary(t *testing.T) {
	bulleted := "Let me summarize the key themes:\n\n• One thing\n\n• Another thing"
	if !LooksLikeSummary(bulleted) {
		t.Fatalf("bullets plus keyword should read as a summary")
	}
	if LooksLikeSummary("• Just one bullet\n\nsummary") {
		t.Fatalf("one bullet is not a summary")
	}
	if LooksLikeSummary("• One\n• Two") {
		t.Fatalf("bullets without a keyword are not a summary")
	}
}

func TestHasSummaryScansLastFiveAssistantTurns(t *testing.T) {
	turns := []entity.Turn{
		assistantTurn("opening question"),
		userTurn("an answer"),
		assistantTurn("• a\n• b"),
	}
	if !HasSummary(turns) {
		t.Fatalf("recent bulleted turn should be found")
	}

	// Push the summary beyond the five-assistant-turn window.
	turns = []entity.Turn{assistantTurn("• a\n• b")}
	for i := 0; i < 5; i++ {
		turns = append(turns, userTurn("reply"), assistantTurn("plain question"))
	}
	if HasSummary(turns) {
		t.Fatalf("summary outside the window must be ignored")
	}
}

func TestSynthesizeMatchesThemes(t *testing.T) {
	profile := entity.Profile{ParticipantID: "p1", ChangeDescription: "the evidence finally convinced me"}
	turns := []entity.Turn{
		userTurn("I saw the fires come over the ridge and it terrified me"),
	}
	got := Synthesize(profile, turns, 5)

	if !strings.HasPrefix(got, "Thank you for sharing your story with me.") {
		t.Fatalf("missing fixed prefix: %q", got)
	}
	if !strings.HasSuffix(got, "This covers the main points we discussed about your belief change journey.") {
		t.Fatalf("missing fixed suffix: %q", got)
	}
	if !strings.Contains(got, "• Evidence and information") {
		t.Fatalf("evidence theme not matched: %q", got)
	}
	if !strings.Contains(got, "• Personal experiences") {
		t.Fatalf("experience theme not matched: %q", got)
	}
	if n := bulletCount(got); n < 2 || n > 5 {
		t.Fatalf("bullet count %d outside 2..5", n)
	}
	if !strings.Contains(got, "\n\n• ") {
		t.Fatalf("bullets must be blank-line separated: %q", got)
	}
}

func TestSynthesizeFallbackFloor(t *testing.T) {
	got := Synthesize(entity.GenericProfile("p1"), nil, 5)
	if n := bulletCount(got); n != 2 {
		t.Fatalf("empty conversation should synthesize exactly the two fallback bullets, got %d", n)
	}
}

func TestSynthesizeIgnoresShortAndTerminationTurns(t *testing.T) {
	// The first is too short to be material, the second a termination request.
	turns := []entity.Turn{
		userTurn("ok"),
		userTurn("please end the chat now, my uncle is here"),
	}
	got := Synthesize(entity.GenericProfile("p1"), turns, 5)
	if strings.Contains(got, "• People around you") {
		t.Fatalf("termination turn leaked into the material: %q", got)
	}
}

func TestSynthesizeRespectsMaxBullets(t *testing.T) {
	turns := []entity.Turn{
		userTurn("the science and the news and my family and social media all changed me gradually over time"),
	}
	got := Synthesize(entity.GenericProfile("p1"), turns, 3)
	if n := bulletCount(got); n != 3 {
		t.Fatalf("got %d bullets, want 3", n)
	}
}

func TestEnsureIdempotent(t *testing.T) {
	now := time.Now().UTC()
	turns := []entity.Turn{
		assistantTurn("opening"),
		userTurn("the evidence changed my mind after the fires"),
	}

	out, added := Ensure(entity.GenericProfile("p1"), turns, 5, now)
	if !added {
		t.Fatalf("first ensure should append a summary")
	}
	last := out[len(out)-1]
	if last.Role != entity.RoleAssistant || !last.GeneratedSummary {
		t.Fatalf("appended turn not flagged as generated summary: %+v", last)
	}

	out2, added := Ensure(entity.GenericProfile("p1"), out, 5, now)
	if added {
		t.Fatalf("second ensure must be a no-op")
	}
	if len(out2) != len(out) {
		t.Fatalf("transcript grew on repeat ensure: %d -> %d", len(out), len(out2))
	}
}

func TestEnsureSkipsWhenModelAlreadySummarized(t *testing.T) {
	turns := []entity.Turn{
		assistantTurn("Based on our conversation, here are the key themes:\n\n• a\n\n• b"),
	}
	if _, added := Ensure(entity.GenericProfile("p1"), turns, 5, time.Now()); added {
		t.Fatalf("existing model summary must suppress synthesis")
	}
}
