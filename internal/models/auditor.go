package models

import (
	"fmt"
	"strings"
)

// Auditors table column order
var AuditorColumns = []string{"fullname", "position", "email", "password", "last_login"}

// Column positions targeted by single-cell updates
const (
	AuditorPasswordColumn  = 3
	AuditorLastLoginColumn = 4
)

// Auditor is a credential record. Email is the unique key.
type Auditor struct {
	FullName  string `json:"fullname"`
	Position  string `json:"position"`
	Email     string `json:"email"`
	Password  string `json:"-"`
	LastLogin string `json:"last_login"`
}

// Row serializes the auditor in AuditorColumns order
func (a Auditor) Row() []string {
	return []string{a.FullName, a.Position, a.Email, a.Password, a.LastLogin}
}

// Validate checks the identity fields required at registration
func (a Auditor) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"fullname", a.FullName},
		{"position", a.Position},
		{"email", a.Email},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	return nil
}

// AuditorFromRow parses an Auditors row. Rows without an email are rejected.
func AuditorFromRow(row map[string]string) (Auditor, error) {
	a := Auditor{
		FullName:  row["fullname"],
		Position:  row["position"],
		Email:     strings.TrimSpace(row["email"]),
		Password:  strings.TrimSpace(row["password"]),
		LastLogin: row["last_login"],
	}
	if a.Email == "" {
		return a, fmt.Errorf("%w: email", ErrMalformedRow)
	}
	return a, nil
}

// SameEmail compares emails the way lookups do
func SameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Identity is the session identity established at login
type Identity struct {
	Email    string `json:"email"`
	FullName string `json:"fullname"`
	Position string `json:"position"`
}

// ToIdentity returns the public identity of the auditor
func (a Auditor) ToIdentity() Identity {
	return Identity{Email: a.Email, FullName: a.FullName, Position: a.Position}
}
