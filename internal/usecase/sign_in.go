package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/thirdweb-example/community-rewards/internal/domain"
)

// SignIn finishes the OAuth flow: code exchange, profile fetch, session
// issuance.
type SignIn struct {
	exchanger  domain.CodeExchanger
	profiles   domain.ProfileFetcher
	sessions   domain.SessionCodec
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewSignIn creates a new SignIn usecase.
func NewSignIn(e domain.CodeExchanger, p domain.ProfileFetcher, s domain.SessionCodec, ttl time.Duration, l *slog.Logger) *SignIn {
	return &SignIn{exchanger: e, profiles: p, sessions: s, sessionTTL: ttl, logger: l}
}

// Execute exchanges the callback code and returns the session plus its
// encoded cookie value. The session never outlives the provider token.
func (uc *SignIn) Execute(ctx context.Context, code string) (*domain.Session, string, error) {
	grant, err := uc.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		return nil, "", err
	}

	profile, err := uc.profiles.FetchProfile(ctx, grant.AccessToken)
	if err != nil {
		return nil, "", err
	}

	expiresAt := time.Now().Add(uc.sessionTTL)
	if !grant.ExpiresAt.IsZero() && grant.ExpiresAt.Before(expiresAt) {
		expiresAt = grant.ExpiresAt
	}

	session := &domain.Session{
		UserID:      profile.ID,
		Name:        profile.Username,
		AvatarURL:   profile.AvatarURL,
		AccessToken: grant.AccessToken,
		ExpiresAt:   expiresAt,
	}

	value, err := uc.sessions.Encode(session)
	if err != nil {
		return nil, "", err
	}

	uc.logger.InfoContext(ctx, "user signed in", "user_id", profile.ID)
	return session, value, nil
}
