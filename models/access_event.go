package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessEvent records a denied navigation or a malformed session
type AccessEvent struct {
	ID             uuid.UUID `json:"id" db:"id"`
	RequestID      string    `json:"request_id,omitempty" db:"request_id"`
	Subject        string    `json:"subject,omitempty" db:"subject"` // empty for anonymous visitors
	Authenticated  bool      `json:"authenticated" db:"authenticated"`
	Role           string    `json:"role" db:"role"` // raw role, may be unrecognized
	Path           string    `json:"path" db:"path"`
	RequiredRole   string    `json:"required_role,omitempty" db:"required_role"`
	Verdict        string    `json:"verdict" db:"verdict"`
	Reason         string    `json:"reason" db:"reason"`
	RedirectTarget string    `json:"redirect_target" db:"redirect_target"`
	UnknownRoute   bool      `json:"unknown_route" db:"unknown_route"`
	OccurredAt     time.Time `json:"occurred_at" db:"occurred_at"`
}

// TableName returns the table name for the AccessEvent model
func (AccessEvent) TableName() string {
	return "access_events"
}

// NewAccessEvent creates a new AccessEvent for path
func NewAccessEvent(path, verdict, reason string) *AccessEvent {
	return &AccessEvent{
		ID:         uuid.New(),
		Path:       path,
		Verdict:    verdict,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}

// WithSession sets the actor fields
func (e *AccessEvent) WithSession(subject, role string, authenticated bool) *AccessEvent {
	e.Subject = subject
	e.Role = role
	e.Authenticated = authenticated
	return e
}

// WithRequest sets request metadata
func (e *AccessEvent) WithRequest(requestID, requiredRole string) *AccessEvent {
	e.RequestID = requestID
	e.RequiredRole = requiredRole
	return e
}

// WithRedirect sets the navigation outcome
func (e *AccessEvent) WithRedirect(target string, unknownRoute bool) *AccessEvent {
	e.RedirectTarget = target
	e.UnknownRoute = unknownRoute
	return e
}

// AccessEventFilter narrows ListRecent results
type AccessEventFilter struct {
	Subject string `validate:"omitempty,max=255"`
	Reason  string `validate:"omitempty,oneof=unauthenticated role_mismatch malformed_session"`
	Limit   int    `validate:"min=1,max=500"`
}
