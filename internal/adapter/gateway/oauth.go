package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/thirdweb-example/community-rewards/internal/domain"

	"golang.org/x/oauth2"
)

// OAuthConfig holds the Discord OAuth application settings.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	APIBaseURL   string
}

// DiscordOAuth implements domain.CodeExchanger via the standard
// authorization-code flow. Scopes match what the membership check needs:
// identify for the profile, guilds for the server list.
type DiscordOAuth struct {
	cfg oauth2.Config
}

// NewDiscordOAuth creates a new Discord OAuth exchanger.
func NewDiscordOAuth(cfg OAuthConfig) *DiscordOAuth {
	return &DiscordOAuth{
		cfg: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"identify", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.APIBaseURL + "/oauth2/authorize",
				TokenURL: cfg.APIBaseURL + "/oauth2/token",
			},
		},
	}
}

// AuthCodeURL builds the authorize redirect target for the given state.
func (o *DiscordOAuth) AuthCodeURL(state string) string {
	return o.cfg.AuthCodeURL(state)
}

// ExchangeCode swaps the callback code for an access token.
func (o *DiscordOAuth) ExchangeCode(ctx context.Context, code string) (*domain.AccessGrant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	token, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrOAuthExchange, err)
	}

	return &domain.AccessGrant{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.Expiry,
	}, nil
}
