package models

// SessionContext is the per-request identity attached by the session guard.
// User never carries a password hash.
type SessionContext struct {
	User User
}

// UserID is a convenience accessor for the authenticated user id string.
func (s *SessionContext) UserID() string {
	return s.User.ID.String()
}
