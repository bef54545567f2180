package models

import (
	"fmt"
	"strings"
)

// ParticipantRole distinguishes auditee staff from the audit team
type ParticipantRole string

const (
	RoleCompany ParticipantRole = "company"
	RoleAuditor ParticipantRole = "auditor"
)

// Participants table column order
var ParticipantColumns = []string{"company", "frame_id", "fullname", "position", "role"}

// Participant is a person attending the audit of one frame
type Participant struct {
	Company  string          `json:"company"`
	FrameID  string          `json:"frame_id"`
	FullName string          `json:"fullname"`
	Position string          `json:"position"`
	Role     ParticipantRole `json:"role"`
}

// Validate checks a participant before it is written
func (p Participant) Validate() error {
	if strings.TrimSpace(p.Company) == "" || strings.TrimSpace(p.FrameID) == "" {
		return fmt.Errorf("%w: company/frame_id", ErrMissingField)
	}
	if strings.TrimSpace(p.FullName) == "" || strings.TrimSpace(p.Position) == "" {
		return fmt.Errorf("%w: fullname/position", ErrMissingField)
	}
	if p.Role != RoleCompany && p.Role != RoleAuditor {
		return fmt.Errorf("%w: %q", ErrInvalidRole, string(p.Role))
	}
	return nil
}

// Row serializes the participant in ParticipantColumns order
func (p Participant) Row() []string {
	return []string{p.Company, p.FrameID, p.FullName, p.Position, string(p.Role)}
}

// ParticipantFromRow parses a Participants row
func ParticipantFromRow(row map[string]string) (Participant, error) {
	p := Participant{
		Company:  row["company"],
		FrameID:  row["frame_id"],
		FullName: row["fullname"],
		Position: row["position"],
		Role:     ParticipantRole(strings.ToLower(strings.TrimSpace(row["role"]))),
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	return p, nil
}

// Person is a name/position pair entered in the session before it is
// attached to a company and frame.
type Person struct {
	FullName string `json:"fullname"`
	Position string `json:"position"`
}

// Complete reports whether both fields are filled in
func (p Person) Complete() bool {
	return strings.TrimSpace(p.FullName) != "" && strings.TrimSpace(p.Position) != ""
}
