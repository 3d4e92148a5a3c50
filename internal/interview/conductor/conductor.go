// Package conductor composes the profile store, conversation store,
// classifiers, drift detection, prompt assembly, stage machine and summary
// guarantor into the two public interview operations: Start and Reply.
package conductor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"beliefshift/internal/interview/drift"
	"beliefshift/internal/interview/entity"
	"beliefshift/internal/interview/prompt"
	"beliefshift/internal/interview/repository/convstore"
	"beliefshift/internal/interview/repository/profilestore"
	"beliefshift/internal/interview/stage"
	"beliefshift/internal/llmclient"
)

// ErrConversationComplete rejects replies on an already finished interview.
var ErrConversationComplete = errors.New("conductor: conversation already complete")

// ErrWallClockExceeded rejects replies after the chat duration budget.
var ErrWallClockExceeded = errors.New("conductor: chat duration exceeded")

// ErrMissingParticipant surfaces an unknown participant at start.
var ErrMissingParticipant = errors.New("conductor: participant not found")

// ErrMissingConversation surfaces an unknown conversation at reply.
var ErrMissingConversation = errors.New("conductor: conversation not found")

const (
	apologyReply    = "I'm sorry, I had trouble responding just now. Could you say that again?"
	thankYouReply   = "Thank you so much for sharing your story with me today. Your insights are a valuable contribution to this research."
	transitionReply = "Thank you, that gives me a really good picture of your story. Let me pull together what you've shared."
)

// ProfileStore is the read-mostly participant view the conductor consumes.
type ProfileStore interface {
	Get(ctx context.Context, participantID string) (entity.Profile, error)
	Apply(ctx context.Context, participantID string, fields map[string]string) (entity.Profile, error)
	SetMessages(ctx context.Context, participantID string, turns []entity.Turn) error
}

// ConversationStore is the durable transcript plus conductor-state store.
type ConversationStore interface {
	CreateConversation(ctx context.Context, conv entity.Conversation) error
	GetConversation(ctx context.Context, conversationID string) (entity.Conversation, error)
	AppendTurn(ctx context.Context, conversationID string, turn entity.Turn) error
	EndConversation(ctx context.Context, conversationID string, endedAt time.Time) error
	GetState(ctx context.Context, conversationID string) (entity.ConductorState, error)
	UpsertState(ctx context.Context, st entity.ConductorState) error
	DeleteState(ctx context.Context, conversationID string) error
}

// Archiver receives completed conversations, best effort.
type Archiver interface {
	Archive(ctx context.Context, conv entity.Conversation) error
}

// Options fixes the conductor's tunables.
type Options struct {
	ChatDuration      time.Duration
	MaxSummaryBullets int
	StageThresholds   stage.Thresholds
	Redirects         drift.Redirects
	OpeningTemplates  prompt.OpeningTemplates
	LLMCallTimeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.ChatDuration <= 0 {
		o.ChatDuration = 10 * time.Minute
	}
	if o.MaxSummaryBullets <= 0 {
		o.MaxSummaryBullets = 5
	}
	if o.LLMCallTimeout <= 0 {
		o.LLMCallTimeout = 30 * time.Second
	}
	return o
}

// Conductor owns all state writes for its conversations. Replies on the same
// conversation key are strictly serialized.
type Conductor struct {
	profiles ProfileStore
	convs    ConversationStore
	llm      llmclient.Client
	archiver Archiver
	now      func() time.Time
	opts     Options

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// New wires a conductor from explicit dependencies. archiver and clock may be
// nil.
func New(profiles ProfileStore, convs ConversationStore, llm llmclient.Client, archiver Archiver, clock func() time.Time, opts Options) *Conductor {
	if clock == nil {
		clock = time.Now
	}
	return &Conductor{
		profiles: profiles,
		convs:    convs,
		llm:      llm,
		archiver: archiver,
		now:      clock,
		opts:     opts.withDefaults(),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (c *Conductor) lock(conversationID string) *sync.Mutex {
	c.lockMu.Lock()
	defer c.lockMu.Unlock()
	mu, ok := c.locks[conversationID]
	if !ok {
		mu = &sync.Mutex{}
		c.locks[conversationID] = mu
	}
	return mu
}

// StartResult is the response to a start call.
type StartResult struct {
	ConversationID string
	Messages       []entity.Turn
}

// Start loads the participant profile, initializes state, and persists the
// opening assistant turn. An unknown participant is fatal here.
func (c *Conductor) Start(ctx context.Context, participantID, conversationID string) (StartResult, error) {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return StartResult{}, ErrMissingParticipant
	}
	profile, err := c.profiles.Get(ctx, participantID)
	if err != nil {
		if errors.Is(err, profilestore.ErrNotFound) {
			return StartResult{}, ErrMissingParticipant
		}
		return StartResult{}, fmt.Errorf("load profile: %w", err)
	}

	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		conversationID = "conv-" + uuid.NewString()
	}

	now := c.now().UTC()
	opening := entity.Turn{
		Role:      entity.RoleAssistant,
		Content:   prompt.OpeningLine(c.opts.OpeningTemplates, profile),
		Timestamp: now,
	}
	conv := entity.Conversation{
		ConversationID: conversationID,
		ParticipantID:  participantID,
		Turns:          []entity.Turn{opening},
		StartedAt:      now,
	}
	if err := c.convs.CreateConversation(ctx, conv); err != nil {
		return StartResult{}, fmt.Errorf("create conversation: %w", err)
	}
	if err := c.convs.UpsertState(ctx, entity.NewConductorState(conversationID, participantID, now)); err != nil {
		return StartResult{}, fmt.Errorf("init state: %w", err)
	}
	return StartResult{ConversationID: conversationID, Messages: conv.Turns}, nil
}

// ReplyResult is the response to a reply call.
type ReplyResult struct {
	Reply        string
	SessionEnded bool
	Updated      bool
}

// Reply runs one full interview turn. Calls on the same conversation key are
// serialized; the second caller observes the first's writes.
func (c *Conductor) Reply(ctx context.Context, conversationID, userText string, isSummaryRequest bool) (ReplyResult, error) {
	mu := c.lock(strings.TrimSpace(conversationID))
	mu.Lock()
	defer mu.Unlock()
	return c.reply(ctx, conversationID, userText, isSummaryRequest)
}

func (c *Conductor) reply(ctx context.Context, conversationID, userText string, isSummaryRequest bool) (ReplyResult, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return ReplyResult{}, ErrMissingConversation
	}

	conv, err := c.convs.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, convstore.ErrNotFound) {
			return ReplyResult{}, ErrMissingConversation
		}
		return ReplyResult{}, fmt.Errorf("load transcript: %w", err)
	}

	state, err := c.loadOrRecoverState(ctx, conv)
	if err != nil {
		return ReplyResult{}, fmt.Errorf("load state: %w", err)
	}
	if state.Stage == entity.StageComplete {
		return ReplyResult{}, ErrConversationComplete
	}

	now := c.now().UTC()
	if now.Sub(conv.StartedAt) > c.opts.ChatDuration {
		// Terminal for the caller, but the summary guarantee still holds.
		profile := c.profileOrGeneric(ctx, conv.ParticipantID)
		c.finalize(ctx, conv, state, profile, "")
		return ReplyResult{}, ErrWallClockExceeded
	}

	profile := c.profileOrGeneric(ctx, conv.ParticipantID)
	lastUser := state.LastUserResponse
	classifyUserTurn(&state, userText, now)

	userTurn := entity.Turn{Role: entity.RoleUser, Content: userText, Timestamp: now}

	// Explicit termination or a second consecutive bare "no" ends the
	// session with a guaranteed summary.
	if isTerminationTurn(userText, lastUser) {
		if err := c.convs.AppendTurn(ctx, conversationID, userTurn); err != nil {
			return ReplyResult{}, fmt.Errorf("append user turn: %w", err)
		}
		conv.Turns = append(conv.Turns, userTurn)
		c.finalize(ctx, conv, state, profile, thankYouReply)
		return ReplyResult{Reply: thankYouReply, SessionEnded: true}, nil
	}

	if stage.ShouldForceSummary(c.opts.StageThresholds, state) {
		if err := c.convs.AppendTurn(ctx, conversationID, userTurn); err != nil {
			return ReplyResult{}, fmt.Errorf("append user turn: %w", err)
		}
		conv.Turns = append(conv.Turns, userTurn)
		c.finalize(ctx, conv, state, profile, transitionReply)
		return ReplyResult{Reply: transitionReply, SessionEnded: true}, nil
	}

	// Profile-update shortcut replaces the LLM call for this turn.
	if fields, ok := parseUpdateShortcut(userText); ok {
		return c.applyUpdate(ctx, conv, state, userTurn, fields)
	}

	reply, sessionEnded, llmFailed := c.generateReply(ctx, profile, &state, conv.Turns, userText, isSummaryRequest)

	if err := c.convs.AppendTurn(ctx, conversationID, userTurn); err != nil {
		return ReplyResult{}, fmt.Errorf("append user turn: %w", err)
	}
	conv.Turns = append(conv.Turns, userTurn)

	assistantTurn := entity.Turn{Role: entity.RoleAssistant, Content: reply, Timestamp: c.now().UTC()}
	if err := c.convs.AppendTurn(ctx, conversationID, assistantTurn); err != nil {
		return ReplyResult{}, fmt.Errorf("append assistant turn: %w", err)
	}
	conv.Turns = append(conv.Turns, assistantTurn)

	if !llmFailed {
		recordResponsePatterns(&state, reply)
		state.LastAssistantResponse = reply
	}

	if sessionEnded {
		c.finalize(ctx, conv, state, profile, "")
		return ReplyResult{Reply: reply, SessionEnded: true}, nil
	}

	// At most one stage transition per turn, and none on a failed model call:
	// the apology leaves everything but the user-side counters as it was.
	if !llmFailed {
		state.Stage = stage.Next(c.opts.StageThresholds, state)
	}
	state.UpdatedAt = c.now().UTC()
	if err := c.convs.UpsertState(ctx, state); err != nil {
		return ReplyResult{}, fmt.Errorf("persist state: %w", err)
	}

	c.denormalizeMessages(ctx, conv)
	return ReplyResult{Reply: reply}, nil
}
