package entity

// ChangeDirection is the closed set of belief-change direction tags collected
// by the pre-interview survey.
type ChangeDirection string

const (
	DirectionSkepticToBeliever ChangeDirection = "skeptic_to_believer"
	DirectionBelieverToSkeptic ChangeDirection = "believer_to_skeptic"
	DirectionNotUrgentToUrgent ChangeDirection = "not_urgent_to_urgent"
	DirectionUrgentToNotUrgent ChangeDirection = "urgent_to_not_urgent"
	DirectionHumanToNatural    ChangeDirection = "human_to_natural"
	DirectionNaturalToHuman    ChangeDirection = "natural_to_human"
	DirectionOther             ChangeDirection = "other"
)

// Profile is the read-only view of a participant's pre-interview answers that
// seeds the per-turn prompt.
type Profile struct {
	ParticipantID     string          `json:"participant_id"`
	ViewsChanged      string          `json:"views_changed"` // "Yes" | "No" | ""
	ChangeDirection   ChangeDirection `json:"change_direction,omitempty"`
	ChangeOther       string          `json:"change_other,omitempty"`
	ChangeDescription string          `json:"change_description,omitempty"`
	ChangeConfidence  int             `json:"change_confidence,omitempty"`
}

// GenericProfile is the fallback used when the profile store cannot resolve a
// participant mid-interview. The anchor section renders placeholders.
func GenericProfile(participantID string) Profile {
	return Profile{ParticipantID: participantID, ViewsChanged: ""}
}
