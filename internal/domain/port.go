package domain

import (
	"context"
	"time"
)

// GuildLister fetches the guilds the token's user belongs to.
type GuildLister interface {
	ListUserGuilds(ctx context.Context, accessToken string) ([]Guild, error)
}

// ProfileFetcher resolves the signed-in user's display profile.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// MintSigner is the signing authority holding the server key. It assembles
// fresh mint requests and produces signed payloads for them.
type MintSigner interface {
	BuildMintRequest(recipient string, metadata TokenMetadata) (MintRequest, error)
	SignMintRequest(ctx context.Context, req MintRequest) (*SignedPayload, error)
}

// SessionCodec encodes and decodes the session cookie value.
type SessionCodec interface {
	Encode(session *Session) (string, error)
	Decode(value string) (*Session, error)
}

// IssuanceGuard serializes concurrent issuance per recipient address.
type IssuanceGuard interface {
	TryAcquire(recipient string) bool
	Release(recipient string)
}

// CodeExchanger swaps an OAuth authorization code for an access token.
type CodeExchanger interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*AccessGrant, error)
}

// AccessGrant is the outcome of an OAuth code exchange.
type AccessGrant struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Profile holds the identity provider's display fields for a user.
type Profile struct {
	ID        string
	Username  string
	AvatarURL string
}
