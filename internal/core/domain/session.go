package domain

import (
	"errors"
	"time"
)

var (
	ErrCredentialNotFound  = errors.New("credential not found")
	ErrMalformedCredential = errors.New("malformed credential")
	ErrSessionRejected     = errors.New("session rejected by upstream")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrAuthInProgress      = errors.New("authentication already in progress")
)

// Session is a point-in-time view of a client's authentication state.
type Session struct {
	User    *UserProfile
	Token   string
	Loading bool
}

// IsAuthenticated holds iff both the user and the token are present.
func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// Credential is the persisted token/user pair.
type Credential struct {
	Token string
	User  *UserProfile
}

// SessionEventKind names an auditable session transition.
type SessionEventKind string

const (
	EventLoginSucceeded    SessionEventKind = "login_succeeded"
	EventLoginFailed       SessionEventKind = "login_failed"
	EventRegisterSucceeded SessionEventKind = "register_succeeded"
	EventRegisterFailed    SessionEventKind = "register_failed"
	EventLogout            SessionEventKind = "logout"
	EventSessionRejected   SessionEventKind = "session_rejected"
	EventProfileUpdated    SessionEventKind = "profile_updated"
)

// SessionEvent is an audit record of a session transition.
type SessionEvent struct {
	ClientID   string
	Kind       SessionEventKind
	UserID     string
	Email      string
	Role       Role
	Reason     string
	OccurredAt time.Time
}
