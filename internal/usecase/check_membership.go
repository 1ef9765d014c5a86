package usecase

import (
	"context"
	"log/slog"

	"github.com/thirdweb-example/community-rewards/internal/domain"
)

// CheckMembership reports whether an access token's user belongs to the
// target server. The result is recomputed on every call; nothing is cached.
type CheckMembership struct {
	guilds  domain.GuildLister
	guildID string
	logger  *slog.Logger
}

// NewCheckMembership creates a new CheckMembership usecase.
func NewCheckMembership(g domain.GuildLister, guildID string, l *slog.Logger) *CheckMembership {
	return &CheckMembership{guilds: g, guildID: guildID, logger: l}
}

// Execute looks the user's guilds up and returns the matched record, or nil
// when the user is not a member. Not-member is a success outcome; a failed
// lookup is an error and must never be read as proof of non-membership.
func (uc *CheckMembership) Execute(ctx context.Context, accessToken string) (*domain.Membership, error) {
	if accessToken == "" {
		return nil, domain.ErrSessionInvalid
	}

	guilds, err := uc.guilds.ListUserGuilds(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	for _, g := range guilds {
		if g.ID == uc.guildID {
			return &domain.Membership{Guild: g}, nil
		}
	}

	uc.logger.DebugContext(ctx, "user not in target guild", "guild_id", uc.guildID, "guild_count", len(guilds))
	return nil, nil
}
