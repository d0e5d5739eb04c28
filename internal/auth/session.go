package auth

import "time"

// Session is the authenticated actor as seen by a single authorization
// decision. It is passed by value so a decision can never observe a mutation.
type Session struct {
	Authenticated bool
	Role          Role
	// Subject identifies the actor for logs and audit only.
	Subject string
	// ExpiresAt is when the credential backing the session lapses. Zero means
	// the reader did not report an expiry.
	ExpiresAt time.Time
}

// Anonymous returns the unauthenticated session.
func Anonymous() Session {
	return Session{}
}

// NewSession returns an authenticated session for subject holding role.
func NewSession(subject string, role Role) Session {
	return Session{Authenticated: true, Role: role, Subject: subject}
}

// Normalize enforces that an unauthenticated session carries no role or subject.
func (s Session) Normalize() Session {
	if !s.Authenticated {
		return Anonymous()
	}
	return s
}

// Malformed reports an authenticated session without a recognized role.
func (s Session) Malformed() bool {
	return s.Authenticated && !s.Role.Valid()
}
