package llmclient

import (
	"context"
	"sync"
)

// StubClient replays scripted replies in order, repeating the last one once
// the script runs out. Used in tests and as the offline provider.
type StubClient struct {
	mu      sync.Mutex
	replies []string
	next    int

	// Err, when set, fails every call.
	Err error
}

func NewStubClient(replies ...string) *StubClient {
	return &StubClient{replies: replies}
}

func (s *StubClient) Name() string { return "Stub" }

func (s *StubClient) Chat(_ context.Context, _ []Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.replies) == 0 {
		return "Could you tell me more about that?", nil
	}
	reply := s.replies[s.next]
	if s.next < len(s.replies)-1 {
		s.next++
	}
	return reply, nil
}

// Push appends replies to the script.
func (s *StubClient) Push(replies ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}
