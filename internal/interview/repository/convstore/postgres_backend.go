package convstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"beliefshift/internal/interview/entity"
)

func (s *Store) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS conversations (
  conversation_id TEXT PRIMARY KEY,
  participant_id TEXT NOT NULL DEFAULT '',
  turns JSONB NOT NULL DEFAULT '[]'::jsonb,
  started_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  ended_at TIMESTAMP WITH TIME ZONE
);

CREATE TABLE IF NOT EXISTS conductor_states (
  conversation_id TEXT PRIMARY KEY,
  state JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_participant_id ON conversations (participant_id);
`)
	})
	return s.schemaErr
}

func (s *Store) createConversationDB(ctx context.Context, conv entity.Conversation) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	turns, err := json.Marshal(conv.Turns)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO conversations (conversation_id, participant_id, turns, started_at, ended_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (conversation_id) DO NOTHING`,
		conv.ConversationID, conv.ParticipantID, turns, conv.StartedAt, conv.EndedAt)
	return err
}

func (s *Store) getConversationDB(ctx context.Context, conversationID string) (entity.Conversation, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return entity.Conversation{}, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT conversation_id, participant_id, turns, started_at, ended_at
FROM conversations WHERE conversation_id = $1`, conversationID)

	var (
		conv    entity.Conversation
		rawTurn []byte
		endedAt sql.NullTime
	)
	err := row.Scan(&conv.ConversationID, &conv.ParticipantID, &rawTurn, &conv.StartedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Conversation{}, ErrNotFound
	}
	if err != nil {
		return entity.Conversation{}, err
	}
	if err := json.Unmarshal(rawTurn, &conv.Turns); err != nil {
		return entity.Conversation{}, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		conv.EndedAt = &t
	}
	return conv, nil
}

func (s *Store) appendTurnDB(ctx context.Context, conversationID string, turn entity.Turn) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	b, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE conversations SET turns = turns || $2::jsonb WHERE conversation_id = $1`,
		conversationID, b)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) saveTurnsDB(ctx context.Context, participantID, conversationID string, turns []entity.Turn) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	b, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO conversations (conversation_id, participant_id, turns)
VALUES ($1,$2,$3)
ON CONFLICT (conversation_id)
DO UPDATE SET turns=EXCLUDED.turns,
  participant_id=CASE WHEN EXCLUDED.participant_id <> '' THEN EXCLUDED.participant_id ELSE conversations.participant_id END`,
		conversationID, participantID, b)
	return err
}

func (s *Store) endConversationDB(ctx context.Context, conversationID string, endedAt time.Time) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE conversations SET ended_at = $2 WHERE conversation_id = $1`, conversationID, endedAt)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) getStateDB(ctx context.Context, conversationID string) (entity.ConductorState, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return entity.ConductorState{}, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT state FROM conductor_states WHERE conversation_id = $1`, conversationID)
	var raw []byte
	err := row.Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ConductorState{}, ErrNotFound
	}
	if err != nil {
		return entity.ConductorState{}, err
	}
	var st entity.ConductorState
	if err := json.Unmarshal(raw, &st); err != nil {
		return entity.ConductorState{}, err
	}
	return st, nil
}

func (s *Store) upsertStateDB(ctx context.Context, st entity.ConductorState) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO conductor_states (conversation_id, state)
VALUES ($1,$2)
ON CONFLICT (conversation_id) DO UPDATE SET state=EXCLUDED.state`,
		st.ConversationID, b)
	return err
}

func (s *Store) deleteStateDB(ctx context.Context, conversationID string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
DELETE FROM conductor_states WHERE conversation_id = $1`, conversationID)
	return err
}
