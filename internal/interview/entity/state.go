package entity

import "time"

// Stage is the coarse phase of the interview.
type Stage string

const (
	StageExploration Stage = "exploration"
	StageElaboration Stage = "elaboration"
	StageRecap       Stage = "recap"
	StageComplete    Stage = "complete"
)

// Topic is the closed internal vocabulary for what a user turn is about.
type Topic string

const (
	TopicBushfires Topic = "bushfires"
	TopicNews      Topic = "news"
	TopicEvidence  Topic = "evidence"
	TopicSocial    Topic = "social"
	TopicGeneral   Topic = "general"
)

// InfluenceDirection records whether a mentioned person pushed the
// participant toward or away from a belief.
type InfluenceDirection string

const (
	InfluenceToward   InfluenceDirection = "toward"
	InfluenceAwayFrom InfluenceDirection = "away_from"
	InfluenceUnknown  InfluenceDirection = "unknown"
)

// QuestionIntent classifies what the assistant's last question was probing.
type QuestionIntent string

const (
	IntentAskEvent    QuestionIntent = "ask_event"
	IntentAskImpact   QuestionIntent = "ask_impact"
	IntentAskEmotion  QuestionIntent = "ask_emotion"
	IntentAskTimeline QuestionIntent = "ask_timeline"
	IntentAskAction   QuestionIntent = "ask_action"
	IntentUnknown     QuestionIntent = "unknown"
)

// Influence is a relational actor the participant credited (or blamed) for a
// belief shift, unique per person.
type Influence struct {
	Person    string             `json:"person"`
	Direction InfluenceDirection `json:"direction"`
}

// Narrative accumulates story facts extracted from user turns.
type Narrative struct {
	Influences  []Influence `json:"influences,omitempty"`
	CauseEffect []string    `json:"cause_effect,omitempty"`
	MainStory   string      `json:"main_story,omitempty"`
}

// ResponsePatterns tracks assistant-side repetition for the vary-opening rule.
type ResponsePatterns struct {
	LastOpeningPhrase           string `json:"last_opening_phrase,omitempty"`
	ConsecutiveSimilarResponses int    `json:"consecutive_similar_responses"`
}

// EventProbe is the anti-loop bookkeeping around event questions.
type EventProbe struct {
	EventConfirmed     bool           `json:"event_confirmed"`
	IdentifiedEvents   []string       `json:"identified_events,omitempty"`
	LastQuestionIntent QuestionIntent `json:"last_question_intent,omitempty"`
}

// ConductorState is the durable per-conversation control record. Exactly one
// exists per conversation; only the conductor writes it.
type ConductorState struct {
	ConversationID string `json:"conversation_id"`
	ParticipantID  string `json:"participant_id"`

	Stage Stage `json:"stage"`

	TurnCount                int `json:"turn_count"`
	TopicTurnCount           int `json:"topic_turn_count"`
	MinimalResponseCount     int `json:"minimal_response_count"`
	SubstantiveResponseCount int `json:"substantive_response_count"`
	ExhaustionSignals        int `json:"exhaustion_signals"`

	LastTopic             Topic   `json:"last_topic,omitempty"`
	LastUserResponse      string  `json:"last_user_response,omitempty"`
	LastAssistantResponse string  `json:"last_assistant_response,omitempty"`
	ExploredTopics        []Topic `json:"explored_topics,omitempty"`

	Narrative        Narrative        `json:"narrative"`
	ResponsePatterns ResponsePatterns `json:"response_patterns"`
	EventProbe       EventProbe       `json:"event_probe"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConductorState returns the initial state for a fresh conversation.
func NewConductorState(conversationID, participantID string, now time.Time) ConductorState {
	return ConductorState{
		ConversationID: conversationID,
		ParticipantID:  participantID,
		Stage:          StageExploration,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// HasExploredTopic reports whether the topic was already visited.
func (s *ConductorState) HasExploredTopic(topic Topic) bool {
	for _, t := range s.ExploredTopics {
		if t == topic {
			return true
		}
	}
	return false
}

// RecordTopic updates lastTopic, the on-topic streak counter and the explored
// set for one classified user turn.
func (s *ConductorState) RecordTopic(topic Topic) {
	if topic == s.LastTopic {
		s.TopicTurnCount++
	} else {
		s.TopicTurnCount = 1
		s.LastTopic = topic
	}
	if !s.HasExploredTopic(topic) {
		s.ExploredTopics = append(s.ExploredTopics, topic)
	}
}

// AddInfluence inserts an influence unless the person is already known.
func (s *ConductorState) AddInfluence(inf Influence) {
	for _, known := range s.Narrative.Influences {
		if known.Person == inf.Person {
			return
		}
	}
	s.Narrative.Influences = append(s.Narrative.Influences, inf)
}

// AddIdentifiedEvent records an event mention once.
func (s *ConductorState) AddIdentifiedEvent(event string) {
	for _, e := range s.EventProbe.IdentifiedEvents {
		if e == event {
			return
		}
	}
	s.EventProbe.IdentifiedEvents = append(s.EventProbe.IdentifiedEvents, event)
}
