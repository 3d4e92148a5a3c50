package conductor

import (
	"context"
	"errors"
	"log"

	"beliefshift/internal/interview/entity"
	"beliefshift/internal/interview/repository/convstore"
	"beliefshift/internal/interview/summary"
)

// profileOrGeneric recovers from a missing participant mid-interview: the
// anchors render placeholders and the interview continues.
func (c *Conductor) profileOrGeneric(ctx context.Context, participantID string) entity.Profile {
	p, err := c.profiles.Get(ctx, participantID)
	if err != nil {
		log.Printf("conductor: falling back to generic profile for %s: %v", participantID, err)
		return entity.GenericProfile(participantID)
	}
	return p
}

// loadOrRecoverState returns the conductor state, rebuilding a coarse record
// from the transcript when the state row is missing. The rebuild is a
// heuristic, never authoritative: only the turn counter and timestamps come
// back.
func (c *Conductor) loadOrRecoverState(ctx context.Context, conv entity.Conversation) (entity.ConductorState, error) {
	st, err := c.convs.GetState(ctx, conv.ConversationID)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, convstore.ErrNotFound) {
		return entity.ConductorState{}, err
	}
	log.Printf("conductor: state missing for %s, recovering from transcript", conv.ConversationID)
	st = entity.NewConductorState(conv.ConversationID, conv.ParticipantID, conv.StartedAt)
	st.TurnCount = entity.UserTurnCount(conv.Turns)
	if len(conv.Turns) > 0 {
		last := conv.Turns[len(conv.Turns)-1]
		if last.Role == entity.RoleAssistant {
			st.LastAssistantResponse = last.Content
		} else if last.Role == entity.RoleUser {
			st.LastUserResponse = last.Content
		}
	}
	return st, nil
}

// finalize closes out a conversation: optional closing assistant turn, the
// summary guarantee, the completed state write, the end-of-conversation
// stamp, and the best-effort exports. Safe to call on an already summarized
// transcript.
func (c *Conductor) finalize(ctx context.Context, conv entity.Conversation, state entity.ConductorState, profile entity.Profile, closingReply string) {
	now := c.now().UTC()

	if closingReply != "" {
		closing := entity.Turn{Role: entity.RoleAssistant, Content: closingReply, Timestamp: now}
		if err := c.convs.AppendTurn(ctx, conv.ConversationID, closing); err != nil {
			log.Printf("conductor: append closing turn for %s: %v", conv.ConversationID, err)
		} else {
			conv.Turns = append(conv.Turns, closing)
		}
	}

	turns, added := summary.Ensure(profile, conv.Turns, c.opts.MaxSummaryBullets, now)
	if added {
		if err := c.convs.AppendTurn(ctx, conv.ConversationID, turns[len(turns)-1]); err != nil {
			log.Printf("conductor: append summary turn for %s: %v", conv.ConversationID, err)
		} else {
			conv.Turns = turns
		}
	}

	state.Stage = entity.StageComplete
	state.UpdatedAt = now
	if err := c.convs.UpsertState(ctx, state); err != nil {
		log.Printf("conductor: persist final state for %s: %v", conv.ConversationID, err)
	}
	if err := c.convs.EndConversation(ctx, conv.ConversationID, now); err != nil {
		log.Printf("conductor: stamp end for %s: %v", conv.ConversationID, err)
	}
	conv.EndedAt = &now

	c.denormalizeMessages(ctx, conv)
	if c.archiver != nil {
		if err := c.archiver.Archive(ctx, conv); err != nil {
			log.Printf("conductor: archive %s: %v", conv.ConversationID, err)
		}
	}
}

// denormalizeMessages refreshes the filtered transcript copy on the
// participant record. Best effort: never on the critical path.
func (c *Conductor) denormalizeMessages(ctx context.Context, conv entity.Conversation) {
	turns := entity.StripSystemTurns(conv.Turns)
	// Until the participant has spoken, the opening line alone is noise in
	// the export.
	if entity.UserTurnCount(turns) == 0 {
		return
	}
	if err := c.profiles.SetMessages(ctx, conv.ParticipantID, turns); err != nil {
		log.Printf("conductor: denormalize messages for %s: %v", conv.ParticipantID, err)
	}
}
