package convstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"beliefshift/internal/interview/entity"
)

type fileSnapshot struct {
	Conversations []entity.Conversation   `json:"conversations"`
	States        []entity.ConductorState `json:"states"`
}

func (s *Store) snapshotPath() string {
	return filepath.Join(s.path, "conversations.json")
}

func (s *Store) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.snapshotPath())
		if err != nil {
			return
		}
		var snap fileSnapshot
		if err := json.Unmarshal(b, &snap); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, conv := range snap.Conversations {
			id := strings.TrimSpace(conv.ConversationID)
			if id == "" {
				continue
			}
			conv.Turns = entity.StripSystemTurns(conv.Turns)
			s.convs[id] = conv
		}
		for _, st := range snap.States {
			id := strings.TrimSpace(st.ConversationID)
			if id == "" {
				continue
			}
			s.states[id] = st
		}
	})
}

func (s *Store) saveFileLocked() error {
	snap := fileSnapshot{
		Conversations: make([]entity.Conversation, 0, len(s.convs)),
		States:        make([]entity.ConductorState, 0, len(s.states)),
	}
	for _, conv := range s.convs {
		snap.Conversations = append(snap.Conversations, conv)
	}
	for _, st := range s.states {
		snap.States = append(snap.States, st)
	}
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.snapshotPath(), b, 0o644)
}

func (s *Store) createConversationFile(conv entity.Conversation) error {
	s.ensureLoadedFile()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.convs[conv.ConversationID]; exists {
		return nil
	}
	s.convs[conv.ConversationID] = conv
	return s.saveFileLocked()
}

func (s *Store) getConversationFile(conversationID string) (entity.Conversation, error) {
	s.ensureLoadedFile()
	s.mu.RLock()
	conv, ok := s.convs[conversationID]
	s.mu.RUnlock()
	if !ok {
		return entity.Conversation{}, ErrNotFound
	}
	return conv, nil
}

func (s *Store) appendTurnFile(conversationID string, turn entity.Turn) error {
	s.ensureLoadedFile()
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[conversationID]
	if !ok {
		return ErrNotFound
	}
	conv.Turns = append(conv.Turns, turn)
	s.convs[conversationID] = conv
	return s.saveFileLocked()
}

func (s *Store) saveTurnsFile(participantID, conversationID string, turns []entity.Turn) error {
	s.ensureLoadedFile()
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[conversationID]
	if !ok {
		conv = entity.Conversation{
			ConversationID: conversationID,
			ParticipantID:  participantID,
			StartedAt:      time.Now().UTC(),
		}
	}
	if strings.TrimSpace(participantID) != "" {
		conv.ParticipantID = participantID
	}
	conv.Turns = turns
	s.convs[conversationID] = conv
	return s.saveFileLocked()
}

func (s *Store) endConversationFile(conversationID string, endedAt time.Time) error {
	s.ensureLoadedFile()
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[conversationID]
	if !ok {
		return ErrNotFound
	}
	conv.EndedAt = &endedAt
	s.convs[conversationID] = conv
	return s.saveFileLocked()
}

func (s *Store) getStateFile(conversationID string) (entity.ConductorState, error) {
	s.ensureLoadedFile()
	s.mu.RLock()
	st, ok := s.states[conversationID]
	s.mu.RUnlock()
	if !ok {
		return entity.ConductorState{}, ErrNotFound
	}
	return st, nil
}

func (s *Store) upsertStateFile(st entity.ConductorState) error {
	s.ensureLoadedFile()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[st.ConversationID] = st
	return s.saveFileLocked()
}

func (s *Store) deleteStateFile(conversationID string) error {
	s.ensureLoadedFile()
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, conversationID)
	return s.saveFileLocked()
}
