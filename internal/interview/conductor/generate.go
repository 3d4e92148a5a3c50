package conductor

import (
	"context"
	"fmt"
	"log"

	"beliefshift/internal/interview/classify"
	"beliefshift/internal/interview/drift"
	"beliefshift/internal/interview/entity"
	"beliefshift/internal/interview/prompt"
	"beliefshift/internal/interview/summary"
	"beliefshift/internal/llmclient"
)

// generateReply assembles the prompt, calls the model under its sub-budget,
// and post-processes the candidate: completion-marker stripping, ordered
// drift rewriting, and event-probe loop suppression. Summary replies bypass
// the rewriting entirely. completed is true when the completion marker ended
// the interview; failed is true when the apology stood in for the model.
func (c *Conductor) generateReply(ctx context.Context, profile entity.Profile, state *entity.ConductorState, turns []entity.Turn, userText string, isSummaryRequest bool) (reply string, completed, failed bool) {
	sys := prompt.Assemble(prompt.Input{
		Profile:          profile,
		State:            *state,
		IsSummaryRequest: isSummaryRequest,
		MaxBullets:       c.opts.MaxSummaryBullets,
	})

	messages := make([]llmclient.Message, 0, len(turns)+2)
	messages = append(messages, llmclient.Message{Role: "system", Content: sys})
	for _, t := range turns {
		if t.Role == entity.RoleSystem {
			continue
		}
		messages = append(messages, llmclient.Message{Role: string(t.Role), Content: t.Content})
	}
	messages = append(messages, llmclient.Message{Role: "user", Content: userText})

	callCtx, cancel := context.WithTimeout(ctx, c.opts.LLMCallTimeout)
	defer cancel()
	candidate, err := c.llm.Chat(callCtx, messages)
	if err != nil {
		// No retry: a deterministic apology keeps state consistent.
		log.Printf("conductor: llm call failed for %s: %v", state.ConversationID, err)
		return apologyReply, false, true
	}

	candidate, done := prompt.StripCompletionMarker(candidate)
	if done {
		return candidate, true, false
	}

	if isSummaryRequest || summary.LooksLikeSummary(candidate) {
		return candidate, false, false
	}

	// Ordered drift rewriting: the first matching axis wins.
	switch {
	case drift.IsOffTopic(candidate):
		candidate = c.opts.Redirects.Redirect(drift.KindOffTopic)
	case drift.IsPoliticalDrift(candidate):
		candidate = c.opts.Redirects.Redirect(drift.KindPolitical)
	case drift.IsActionRoleDrift(candidate):
		candidate = c.opts.Redirects.Redirect(drift.KindActionRole)
	case classify.DetectBeliefDrift(userText):
		candidate = c.opts.Redirects.Redirect(drift.KindBeliefDrift)
	}

	// Anti-loop: once an event is confirmed or identified, further event
	// probing is replaced with a non-event question.
	if drift.IsEventQuestion(candidate) &&
		(state.EventProbe.EventConfirmed || len(state.EventProbe.IdentifiedEvents) > 0) {
		alt, intent := drift.Alternative(state.TurnCount)
		candidate = alt
		state.EventProbe.LastQuestionIntent = intent
	} else {
		state.EventProbe.LastQuestionIntent = drift.InferIntent(candidate)
	}

	return candidate, false, false
}

// applyUpdate handles the "update: field=value" shortcut in place of a model
// call.
func (c *Conductor) applyUpdate(ctx context.Context, conv entity.Conversation, state entity.ConductorState, userTurn entity.Turn, fields map[string]string) (ReplyResult, error) {
	if err := c.convs.AppendTurn(ctx, conv.ConversationID, userTurn); err != nil {
		return ReplyResult{}, fmt.Errorf("append user turn: %w", err)
	}
	conv.Turns = append(conv.Turns, userTurn)

	var (
		ack     string
		applied bool
	)
	if _, err := c.profiles.Apply(ctx, conv.ParticipantID, fields); err != nil {
		log.Printf("conductor: profile update failed for %s: %v", conv.ParticipantID, err)
		ack = "I couldn't apply that update. Could you check the field names and try again?"
	} else {
		ack = "Thanks, I've updated your details. Now, where were we with your story?"
		applied = true
	}

	ackTurn := entity.Turn{Role: entity.RoleAssistant, Content: ack, Timestamp: c.now().UTC()}
	if err := c.convs.AppendTurn(ctx, conv.ConversationID, ackTurn); err != nil {
		return ReplyResult{}, fmt.Errorf("append assistant turn: %w", err)
	}
	conv.Turns = append(conv.Turns, ackTurn)

	state.UpdatedAt = c.now().UTC()
	if err := c.convs.UpsertState(ctx, state); err != nil {
		return ReplyResult{}, fmt.Errorf("persist state: %w", err)
	}
	c.denormalizeMessages(ctx, conv)
	return ReplyResult{Reply: ack, Updated: applied}, nil
}
