package domain

import "time"

// Session ties a browser client to an authenticated Discord identity.
// It is minted at sign-in, carried as a signed cookie, and read-only
// everywhere else.
type Session struct {
	UserID      string
	Name        string
	AvatarURL   string
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether the session can authorize a request.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.AccessToken != "" && now.Before(s.ExpiresAt)
}
