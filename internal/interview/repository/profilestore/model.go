package profilestore

import (
	"fmt"
	"strconv"
	"strings"

	"beliefshift/internal/interview/entity"
)

// record is the persisted row: the survey profile plus the denormalized chat
// messages export artifact.
type record struct {
	Profile  entity.Profile `json:"profile"`
	Messages []entity.Turn  `json:"messages,omitempty"`
}

func normalizeProfile(p entity.Profile) entity.Profile {
	p.ParticipantID = strings.TrimSpace(p.ParticipantID)
	p.ViewsChanged = strings.TrimSpace(p.ViewsChanged)
	p.ChangeDescription = strings.TrimSpace(p.ChangeDescription)
	p.ChangeOther = strings.TrimSpace(p.ChangeOther)
	return p
}

func parseConfidence(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("profilestore: change_confidence must be an integer: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
