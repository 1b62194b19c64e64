// Package models defines client-side data models used by the portal CLI.
package models

import "strings"

// VerificationStage tracks how far a newly registered account has progressed
// through onboarding. A session counts as fully onboarded only at
// StagePhoneVerified.
type VerificationStage string

const (
	StageRegistered    VerificationStage = "registered"
	StageEmailVerified VerificationStage = "email_verified"
	StagePhoneVerified VerificationStage = "phone_verified"
)

// User is the client's view of an account record returned by the backend.
//
// The backend may return a single combined Name instead of FirstName/LastName;
// Normalize derives the split fields in that case.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
	PhoneVerified bool   `json:"phoneVerified"`
	Role          string `json:"role,omitempty"`
}

// Normalize fills FirstName/LastName from a combined Name when the backend
// did not supply them: the first word becomes FirstName, the rest LastName.
func (u *User) Normalize() {
	if u == nil {
		return
	}
	if u.Name == "" || u.FirstName != "" {
		return
	}
	parts := strings.Fields(u.Name)
	if len(parts) == 0 {
		return
	}
	u.FirstName = parts[0]
	u.LastName = strings.Join(parts[1:], " ")
}

// Stage reports the onboarding stage implied by the verification flags.
func (u *User) Stage() VerificationStage {
	switch {
	case u == nil:
		return StageRegistered
	case u.EmailVerified && u.PhoneVerified:
		return StagePhoneVerified
	case u.EmailVerified:
		return StageEmailVerified
	default:
		return StageRegistered
	}
}

// DisplayName returns the best human-readable name available.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FirstName != "" {
		return strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return u.Name
}
