package llmclient

import (
	"context"
	"errors"
	"testing"
)

func TestStubClientReplaysScript(t *testing.T) {
	s := NewStubClient("one", "two")
	ctx := context.Background()

	for _, want := range []string{"one", "two", "two", "two"} {
		got, err := s.Chat(ctx, nil)
		if err != nil {
			t.Fatalf("Chat: %v", err)
		}
		if got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

func TestStubClientEmptyScriptHasFallback(t *testing.T) {
	s := NewStubClient()
	got, err := s.Chat(context.Background(), nil)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got == "" {
		t.Fatalf("empty fallback reply")
	}
}

func TestStubClientErr(t *testing.T) {
	s := NewStubClient("unused")
	s.Err = errors.New("down")
	if _, err := s.Chat(context.Background(), nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestStubClientPush(t *testing.T) {
	s := NewStubClient()
	s.Push("queued")
	got, err := s.Chat(context.Background(), nil)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "queued" {
		t.Fatalf("got %q", got)
	}
}
