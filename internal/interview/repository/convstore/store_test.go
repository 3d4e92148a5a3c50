package convstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"beliefshift/internal/interview/entity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(t.TempDir(), Options{})
}

func seedConversation(t *testing.T, s *Store, id string) entity.Conversation {
	t.Helper()
	conv := entity.Conversation{
		ConversationID: id,
		ParticipantID:  "p1",
		Turns: []entity.Turn{
			{Role: entity.RoleAssistant, Content: "opening", Timestamp: time.Now().UTC()},
		},
		StartedAt: time.Now().UTC(),
	}
	if err := s.CreateConversation(context.Background(), conv); err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	return conv
}

func TestConversationRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedConversation(t, s, "c1")

	got, err := s.GetConversation(ctx, "c1")
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if got.ParticipantID != "p1" || len(got.Turns) != 1 {
		t.Fatalf("got %+v", got)
	}

	if _, err := s.GetConversation(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestAppendTurnPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedConversation(t, s, "c1")

	for _, content := range []string{"first", "second", "third"} {
		turn := entity.Turn{Role: entity.RoleUser, Content: content, Timestamp: time.Now().UTC()}
		if err := s.AppendTurn(ctx, "c1", turn); err != nil {
			t.Fatalf("AppendTurn(%q): %v", content, err)
		}
	}

	turns, err := s.LoadTurns(ctx, "c1")
	if err != nil {
		t.Fatalf("LoadTurns: %v", err)
	}
	want := []string{"opening", "first", "second", "third"}
	if len(turns) != len(want) {
		t.Fatalf("got %d turns, want %d", len(turns), len(want))
	}
	for i, w := range want {
		if turns[i].Content != w {
			t.Fatalf("turn %d = %q, want %q", i, turns[i].Content, w)
		}
	}
}

func TestSystemTurnsNeverPersisted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedConversation(t, s, "c1")

	sys := entity.Turn{Role: entity.RoleSystem, Content: "prompt text"}
	if err := s.AppendTurn(ctx, "c1", sys); !errors.Is(err, ErrSystemTurn) {
		t.Fatalf("AppendTurn: got %v, want ErrSystemTurn", err)
	}
	if err := s.SaveTurns(ctx, "p1", "c1", []entity.Turn{sys}); !errors.Is(err, ErrSystemTurn) {
		t.Fatalf("SaveTurns: got %v, want ErrSystemTurn", err)
	}
	if err := s.CreateConversation(ctx, entity.Conversation{
		ConversationID: "c2",
		Turns:          []entity.Turn{sys},
	}); !errors.Is(err, ErrSystemTurn) {
		t.Fatalf("CreateConversation: got %v, want ErrSystemTurn", err)
	}
}

func TestCreateConversationDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedConversation(t, s, "c1")

	dup := entity.Conversation{ConversationID: "c1", ParticipantID: "someone-else"}
	if err := s.CreateConversation(ctx, dup); err != nil {
		t.Fatalf("CreateConversation dup: %v", err)
	}
	got, err := s.GetConversation(ctx, "c1")
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if got.ParticipantID != "p1" {
		t.Fatalf("existing record overwritten: %+v", got)
	}
}

func TestEndConversation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedConversation(t, s, "c1")

	endedAt := time.Now().UTC().Truncate(time.Second)
	if err := s.EndConversation(ctx, "c1", endedAt); err != nil {
		t.Fatalf("EndConversation: %v", err)
	}
	got, err := s.GetConversation(ctx, "c1")
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if got.EndedAt == nil || !got.EndedAt.Equal(endedAt) {
		t.Fatalf("got EndedAt %v, want %v", got.EndedAt, endedAt)
	}
}

func TestStateRoundTripAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	st := entity.NewConductorState("c1", "p1", time.Now().UTC())
	st.TurnCount = 3
	st.Stage = entity.StageElaboration
	if err := s.UpsertState(ctx, st); err != nil {
		t.Fatalf("UpsertState: %v", err)
	}

	got, err := s.GetState(ctx, "c1")
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if got.TurnCount != 3 || got.Stage != entity.StageElaboration {
		t.Fatalf("got %+v", got)
	}

	if err := s.DeleteState(ctx, "c1"); err != nil {
		t.Fatalf("DeleteState: %v", err)
	}
	if _, err := s.GetState(ctx, "c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound after delete", err)
	}
}

func TestStateCacheServesAfterDurableWrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(dir, Options{CacheSize: 8, CacheTTL: time.Minute})

	st := entity.NewConductorState("c1", "p1", time.Now().UTC())
	st.MinimalResponseCount = 2
	if err := s.UpsertState(ctx, st); err != nil {
		t.Fatalf("UpsertState: %v", err)
	}

	// A reopened store misses the cache and falls through to the snapshot.
	reopened := New(dir, Options{CacheSize: 8, CacheTTL: time.Minute})
	got, err := reopened.GetState(ctx, "c1")
	if err != nil {
		t.Fatalf("GetState after reopen: %v", err)
	}
	if got.MinimalResponseCount != 2 {
		t.Fatalf("got %+v, want persisted counters", got)
	}
}

func TestSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := New(dir, Options{})
	seedConversation(t, s, "c1")
	turn := entity.Turn{Role: entity.RoleUser, Content: "an answer", Timestamp: time.Now().UTC()}
	if err := s.AppendTurn(ctx, "c1", turn); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
	if err := s.UpsertState(ctx, entity.NewConductorState("c1", "p1", time.Now().UTC())); err != nil {
		t.Fatalf("UpsertState: %v", err)
	}

	reopened := New(dir, Options{})
	turns, err := reopened.LoadTurns(ctx, "c1")
	if err != nil {
		t.Fatalf("LoadTurns after restart: %v", err)
	}
	if len(turns) != 2 || turns[1].Content != "an answer" {
		t.Fatalf("transcript lost across restart: %+v", turns)
	}
	if _, err := reopened.GetState(ctx, "c1"); err != nil {
		t.Fatalf("GetState after restart: %v", err)
	}
}
