package profilestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"beliefshift/internal/interview/entity"
)

func (s *Store) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows []record
		if err := json.Unmarshal(b, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, row := range rows {
			id := strings.TrimSpace(row.Profile.ParticipantID)
			if id == "" {
				continue
			}
			row.Profile = normalizeProfile(row.Profile)
			s.byID[id] = row
		}
	})
}

func (s *Store) saveFileLocked() error {
	rows := make([]record, 0, len(s.byID))
	for _, row := range s.byID {
		rows = append(rows, row)
	}
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (s *Store) getFile(participantID string) (entity.Profile, error) {
	s.ensureLoadedFile()
	s.mu.RLock()
	row, ok := s.byID[participantID]
	s.mu.RUnlock()
	if !ok {
		return entity.Profile{}, ErrNotFound
	}
	return row.Profile, nil
}

func (s *Store) putFile(p entity.Profile) error {
	s.ensureLoadedFile()
	p = normalizeProfile(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.byID[p.ParticipantID]
	row.Profile = p
	s.byID[p.ParticipantID] = row
	return s.saveFileLocked()
}

func (s *Store) setMessagesFile(participantID string, turns []entity.Turn) error {
	s.ensureLoadedFile()
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.byID[participantID]
	if !ok {
		return ErrNotFound
	}
	row.Messages = turns
	s.byID[participantID] = row
	return s.saveFileLocked()
}
