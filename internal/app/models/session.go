package models

import "time"

// Session is the explicit identity object threaded through every core call.
type Session struct {
	SessionID   string    `json:"sessionId"`
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *Session) IsDoctor() bool {
	return s != nil && s.Role == RoleDoctor
}

func (s *Session) IsPatient() bool {
	return s != nil && s.Role == RolePatient
}

type IdentityChangeType string

const (
	IdentityCreated   IdentityChangeType = "created"
	IdentitySignedIn  IdentityChangeType = "signed_in"
	IdentitySignedOut IdentityChangeType = "signed_out"
)

type IdentityChange struct {
	Type      IdentityChangeType
	UID       string
	SessionID string
	Role      Role
	At        time.Time
}

type CreateAccountInput struct {
	Email       string          `validate:"required,email"`
	Password    string          `validate:"required,password"`
	DisplayName string          `validate:"required,max=100"`
	Role        Role            `validate:"required,role"`
	Patient     *PatientDetails `validate:"omitempty"`
	Doctor      *DoctorDetails  `validate:"omitempty"`
}

// AuthResult is returned by a successful sign-in.
type AuthResult struct {
	Session *Session
	Token   string
}

// Identity is the public part of a signed in account.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	DisplayName string `json:"displayName"`
}

func (s *Session) Identity() *Identity {
	return &Identity{
		UID:         s.UID,
		Email:       s.Email,
		Role:        s.Role,
		DisplayName: s.DisplayName,
	}
}
