// Package profilestore persists participant profiles collected by the
// pre-interview survey. The interview path reads them; the only writes are
// the update: shortcut and the best-effort denormalized messages copy.
package profilestore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"beliefshift/internal/interview/entity"
)

// ErrNotFound reports an unknown participant key.
var ErrNotFound = errors.New("profilestore: participant not found")

// ErrUnknownField reports an unrecognized update: shortcut field.
var ErrUnknownField = errors.New("profilestore: unknown profile field")

type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	byID     map[string]record

	schemaOnce sync.Once
	schemaErr  error
}

// New returns a file-backed store rooted at path.
func New(path string) *Store {
	return &Store{
		path: path,
		byID: make(map[string]record),
	}
}

// NewPostgres returns a store backed by the given DSN.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewFromEnv prefers postgres when PROFILE_STORE_PG_DSN is set, falling back
// to the file backend.
func NewFromEnv(path string) *Store {
	dsn := strings.TrimSpace(os.Getenv("PROFILE_STORE_PG_DSN"))
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

// Get returns the participant's profile or ErrNotFound.
func (s *Store) Get(ctx context.Context, participantID string) (entity.Profile, error) {
	id := strings.TrimSpace(participantID)
	if id == "" {
		return entity.Profile{}, ErrNotFound
	}
	if s.db != nil {
		return s.getDB(ctx, id)
	}
	return s.getFile(id)
}

// Put stores or replaces a profile. Used by survey intake and by tests.
func (s *Store) Put(ctx context.Context, p entity.Profile) error {
	p.ParticipantID = strings.TrimSpace(p.ParticipantID)
	if p.ParticipantID == "" {
		return errors.New("profilestore: participant id required")
	}
	if s.db != nil {
		return s.putDB(ctx, p)
	}
	return s.putFile(p)
}

// Apply mutates recognized profile fields in place. It is the update hook
// behind the "update: field=value" chat shortcut. Unknown fields error
// without touching the record.
func (s *Store) Apply(ctx context.Context, participantID string, fields map[string]string) (entity.Profile, error) {
	p, err := s.Get(ctx, participantID)
	if err != nil {
		return entity.Profile{}, err
	}
	for k, v := range fields {
		v = strings.TrimSpace(v)
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "views_changed":
			p.ViewsChanged = v
		case "change_direction":
			p.ChangeDirection = entity.ChangeDirection(v)
		case "change_other":
			p.ChangeOther = v
		case "change_description":
			p.ChangeDescription = v
		case "change_confidence":
			n, convErr := parseConfidence(v)
			if convErr != nil {
				return entity.Profile{}, convErr
			}
			p.ChangeConfidence = n
		default:
			return entity.Profile{}, ErrUnknownField
		}
	}
	if err := s.Put(ctx, p); err != nil {
		return entity.Profile{}, err
	}
	return p, nil
}

// SetMessages refreshes the denormalized chat-message copy on the participant
// record. Best effort; callers ignore the error beyond logging.
func (s *Store) SetMessages(ctx context.Context, participantID string, turns []entity.Turn) error {
	id := strings.TrimSpace(participantID)
	if id == "" {
		return ErrNotFound
	}
	if s.db != nil {
		return s.setMessagesDB(ctx, id, turns)
	}
	return s.setMessagesFile(id, turns)
}
