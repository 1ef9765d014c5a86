package session

import (
	"errors"
	"time"

	"github.com/thirdweb-example/community-rewards/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie set at sign-in.
const CookieName = "rewards_session"

// Config holds session token configuration.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// sessionClaims is the JWT form of a domain.Session. The identity
// provider access token rides inside the signed cookie, the same way a
// JWT-strategy web session keeps it out of server-side storage.
type sessionClaims struct {
	Name        string `json:"name,omitempty"`
	AvatarURL   string `json:"picture,omitempty"`
	AccessToken string `json:"access_token"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session cookie values.
// Implements domain.SessionCodec.
type Codec struct {
	cfg Config
}

// NewCodec creates a new session codec.
func NewCodec(cfg Config) *Codec {
	if cfg.Issuer == "" {
		cfg.Issuer = "community-rewards"
	}
	return &Codec{cfg: cfg}
}

// Encode signs a session into a compact cookie value.
func (c *Codec) Encode(s *domain.Session) (string, error) {
	now := time.Now()
	expiresAt := s.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(c.cfg.TTL)
	}

	claims := sessionClaims{
		Name:        s.Name,
		AvatarURL:   s.AvatarURL,
		AccessToken: s.AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.cfg.Issuer,
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.cfg.Secret))
}

// Decode verifies a cookie value and returns the session it carries.
func (c *Codec) Decode(value string) (*domain.Session, error) {
	if value == "" {
		return nil, domain.ErrSessionNotFound
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(value, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrSessionInvalid
		}
		return []byte(c.cfg.Secret), nil
	}, jwt.WithIssuer(c.cfg.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrSessionExpired
		}
		return nil, domain.ErrSessionInvalid
	}
	if !token.Valid {
		return nil, domain.ErrSessionInvalid
	}

	return &domain.Session{
		UserID:      claims.Subject,
		Name:        claims.Name,
		AvatarURL:   claims.AvatarURL,
		AccessToken: claims.AccessToken,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}
