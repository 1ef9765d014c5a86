package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/thirdweb-example/community-rewards/internal/domain"
)

// DiscordGateway implements domain.GuildLister and domain.ProfileFetcher
// against the Discord REST API.
type DiscordGateway struct {
	baseURL    string
	cdnBaseURL string
	httpClient *http.Client
}

// NewDiscordGateway creates a new Discord gateway with tuned HTTP transport.
func NewDiscordGateway(baseURL, cdnBaseURL string, timeout time.Duration) *DiscordGateway {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	return &DiscordGateway{
		baseURL:    baseURL,
		cdnBaseURL: cdnBaseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// ListUserGuilds fetches the guilds the access token's user belongs to.
// Any transport failure, non-200 status (including rate limiting) or
// malformed body is reported as ErrDiscordUnavailable; callers must not
// confuse that with an empty guild list.
func (g *DiscordGateway) ListUserGuilds(ctx context.Context, accessToken string) ([]domain.Guild, error) {
	if accessToken == "" {
		return nil, domain.ErrSessionInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/users/@me/guilds", g.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDiscordUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDiscordUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.ErrSessionInvalid
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: guilds endpoint returned status %d", domain.ErrDiscordUnavailable, resp.StatusCode)
	}

	var guilds []domain.Guild
	if err := json.NewDecoder(resp.Body).Decode(&guilds); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDiscordUnavailable, err)
	}

	return guilds, nil
}

// discordUser represents the Discord /users/@me response.
type discordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// FetchProfile resolves the signed-in user's display profile.
func (g *DiscordGateway) FetchProfile(ctx context.Context, accessToken string) (*domain.Profile, error) {
	if accessToken == "" {
		return nil, domain.ErrSessionInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/users/@me", g.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDiscordUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDiscordUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.ErrSessionInvalid
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: users endpoint returned status %d", domain.ErrDiscordUnavailable, resp.StatusCode)
	}

	var user discordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDiscordUnavailable, err)
	}

	profile := &domain.Profile{
		ID:       user.ID,
		Username: user.Username,
	}
	if user.Avatar != "" {
		profile.AvatarURL = fmt.Sprintf("%s/avatars/%s/%s.png", g.cdnBaseURL, user.ID, user.Avatar)
	}
	return profile, nil
}
