package profilestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"beliefshift/internal/interview/entity"
)

func (s *Store) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS participant_profiles (
  participant_id TEXT PRIMARY KEY,
  views_changed TEXT NOT NULL DEFAULT '',
  change_direction TEXT NOT NULL DEFAULT '',
  change_other TEXT NOT NULL DEFAULT '',
  change_description TEXT NOT NULL DEFAULT '',
  change_confidence INTEGER NOT NULL DEFAULT 0,
  chat_messages JSONB NOT NULL DEFAULT '[]'::jsonb
);
`)
	})
	return s.schemaErr
}

func scanProfile(row rowScanner) (entity.Profile, error) {
	var p entity.Profile
	var direction string
	err := row.Scan(
		&p.ParticipantID,
		&p.ViewsChanged,
		&direction,
		&p.ChangeOther,
		&p.ChangeDescription,
		&p.ChangeConfidence,
	)
	if err != nil {
		return entity.Profile{}, err
	}
	p.ChangeDirection = entity.ChangeDirection(direction)
	return normalizeProfile(p), nil
}

func (s *Store) getDB(ctx context.Context, participantID string) (entity.Profile, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return entity.Profile{}, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT participant_id, views_changed, change_direction, change_other, change_description, change_confidence
FROM participant_profiles WHERE participant_id = $1`, participantID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Profile{}, ErrNotFound
	}
	return p, err
}

func (s *Store) putDB(ctx context.Context, p entity.Profile) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO participant_profiles (
  participant_id, views_changed, change_direction, change_other, change_description, change_confidence
)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (participant_id)
DO UPDATE SET views_changed=EXCLUDED.views_changed,
  change_direction=EXCLUDED.change_direction,
  change_other=EXCLUDED.change_other,
  change_description=EXCLUDED.change_description,
  change_confidence=EXCLUDED.change_confidence`,
		p.ParticipantID, p.ViewsChanged, string(p.ChangeDirection), p.ChangeOther, p.ChangeDescription, p.ChangeConfidence)
	return err
}

func (s *Store) setMessagesDB(ctx context.Context, participantID string, turns []entity.Turn) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	if turns == nil {
		turns = []entity.Turn{}
	}
	b, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE participant_profiles SET chat_messages = $2 WHERE participant_id = $1`,
		participantID, b)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
