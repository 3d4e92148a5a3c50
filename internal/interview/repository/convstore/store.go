// Package convstore persists the two per-conversation collections: the
// ordered transcript and the conductor control state. Both survive restarts;
// state reads go through a bounded LRU with TTL, refreshed on every durable
// write.
package convstore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	_ "github.com/jackc/pgx/v5/stdlib"

	"beliefshift/internal/interview/entity"
)

// ErrNotFound reports an unknown conversation key.
var ErrNotFound = errors.New("convstore: conversation not found")

// ErrSystemTurn rejects attempts to persist system-role content.
var ErrSystemTurn = errors.New("convstore: system turns are never persisted")

// Options sizes the in-memory state cache.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

func (o Options) withDefaults() Options {
	if o.CacheSize <= 0 {
		o.CacheSize = 1000
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	return o
}

type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	convs    map[string]entity.Conversation
	states   map[string]entity.ConductorState

	schemaOnce sync.Once
	schemaErr  error

	stateCache *expirable.LRU[string, entity.ConductorState]
}

// New returns a file-backed store rooted at path (a directory holding a
// single conversations.json snapshot).
func New(path string, opts Options) *Store {
	opts = opts.withDefaults()
	return &Store{
		path:       path,
		convs:      make(map[string]entity.Conversation),
		states:     make(map[string]entity.ConductorState),
		stateCache: expirable.NewLRU[string, entity.ConductorState](opts.CacheSize, nil, opts.CacheTTL),
	}
}

// NewPostgres returns a store backed by the given DSN.
func NewPostgres(dsn string, opts Options) (*Store, error) {
	opts = opts.withDefaults()
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{
		db:         db,
		stateCache: expirable.NewLRU[string, entity.ConductorState](opts.CacheSize, nil, opts.CacheTTL),
	}, nil
}

// NewFromEnv prefers postgres when CONV_STORE_PG_DSN is set, falling back to
// the file backend.
func NewFromEnv(path string, opts Options) *Store {
	dsn := strings.TrimSpace(os.Getenv("CONV_STORE_PG_DSN"))
	if dsn == "" {
		return New(path, opts)
	}
	s, err := NewPostgres(dsn, opts)
	if err != nil {
		return New(path, opts)
	}
	return s
}

// CreateConversation registers a new conversation record. Overwrites nothing:
// an existing record is left untouched.
func (s *Store) CreateConversation(ctx context.Context, conv entity.Conversation) error {
	conv.ConversationID = strings.TrimSpace(conv.ConversationID)
	if conv.ConversationID == "" {
		return errors.New("convstore: conversation id required")
	}
	for _, t := range conv.Turns {
		if t.Role == entity.RoleSystem {
			return ErrSystemTurn
		}
	}
	if s.db != nil {
		return s.createConversationDB(ctx, conv)
	}
	return s.createConversationFile(conv)
}

// GetConversation returns the conversation record with system turns stripped.
func (s *Store) GetConversation(ctx context.Context, conversationID string) (entity.Conversation, error) {
	id := strings.TrimSpace(conversationID)
	if id == "" {
		return entity.Conversation{}, ErrNotFound
	}
	var (
		conv entity.Conversation
		err  error
	)
	if s.db != nil {
		conv, err = s.getConversationDB(ctx, id)
	} else {
		conv, err = s.getConversationFile(id)
	}
	if err != nil {
		return entity.Conversation{}, err
	}
	conv.Turns = entity.StripSystemTurns(conv.Turns)
	return conv, nil
}

// LoadTurns returns the ordered transcript, system turns stripped.
func (s *Store) LoadTurns(ctx context.Context, conversationID string) ([]entity.Turn, error) {
	conv, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return conv.Turns, nil
}

// AppendTurn appends one turn to the transcript, durably, in insertion order.
func (s *Store) AppendTurn(ctx context.Context, conversationID string, turn entity.Turn) error {
	if turn.Role == entity.RoleSystem {
		return ErrSystemTurn
	}
	id := strings.TrimSpace(conversationID)
	if id == "" {
		return ErrNotFound
	}
	if s.db != nil {
		return s.appendTurnDB(ctx, id, turn)
	}
	return s.appendTurnFile(id, turn)
}

// SaveTurns replaces the whole transcript for the conversation.
func (s *Store) SaveTurns(ctx context.Context, participantID, conversationID string, turns []entity.Turn) error {
	id := strings.TrimSpace(conversationID)
	if id == "" {
		return ErrNotFound
	}
	for _, t := range turns {
		if t.Role == entity.RoleSystem {
			return ErrSystemTurn
		}
	}
	if s.db != nil {
		return s.saveTurnsDB(ctx, participantID, id, turns)
	}
	return s.saveTurnsFile(participantID, id, turns)
}

// EndConversation stamps the end time on the conversation record.
func (s *Store) EndConversation(ctx context.Context, conversationID string, endedAt time.Time) error {
	id := strings.TrimSpace(conversationID)
	if id == "" {
		return ErrNotFound
	}
	if s.db != nil {
		return s.endConversationDB(ctx, id, endedAt)
	}
	return s.endConversationFile(id, endedAt)
}

// GetState returns the conductor state, consulting the cache first.
func (s *Store) GetState(ctx context.Context, conversationID string) (entity.ConductorState, error) {
	id := strings.TrimSpace(conversationID)
	if id == "" {
		return entity.ConductorState{}, ErrNotFound
	}
	if cached, ok := s.stateCache.Get(id); ok {
		return cached, nil
	}
	var (
		st  entity.ConductorState
		err error
	)
	if s.db != nil {
		st, err = s.getStateDB(ctx, id)
	} else {
		st, err = s.getStateFile(id)
	}
	if err != nil {
		return entity.ConductorState{}, err
	}
	s.stateCache.Add(id, st)
	return st, nil
}

// UpsertState writes the state durably and refreshes the cache entry.
func (s *Store) UpsertState(ctx context.Context, st entity.ConductorState) error {
	id := strings.TrimSpace(st.ConversationID)
	if id == "" {
		return errors.New("convstore: state conversation id required")
	}
	var err error
	if s.db != nil {
		err = s.upsertStateDB(ctx, st)
	} else {
		err = s.upsertStateFile(st)
	}
	if err != nil {
		return err
	}
	s.stateCache.Add(id, st)
	return nil
}

// DeleteState removes both the cached and the durable copy.
func (s *Store) DeleteState(ctx context.Context, conversationID string) error {
	id := strings.TrimSpace(conversationID)
	if id == "" {
		return ErrNotFound
	}
	s.stateCache.Remove(id)
	if s.db != nil {
		return s.deleteStateDB(ctx, id)
	}
	return s.deleteStateFile(id)
}
