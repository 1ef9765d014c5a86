package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/thirdweb-example/community-rewards/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

// namePlaceholder in the metadata templates expands to the session's
// display name, so each member gets a token named after them.
const namePlaceholder = "{name}"

// IssueMintAuthorization gates mint signature issuance: a valid session, a
// well-formed recipient address and a server-side membership re-check are
// all required before the signing authority is touched.
type IssueMintAuthorization struct {
	membership *CheckMembership
	signer     domain.MintSigner
	guard      domain.IssuanceGuard
	metadata   domain.TokenMetadata
	logger     *slog.Logger
}

// NewIssueMintAuthorization creates a new IssueMintAuthorization usecase.
// metadata carries the reward token's name and description templates; the
// {name} placeholders and the image are filled per-session at issuance.
func NewIssueMintAuthorization(m *CheckMembership, s domain.MintSigner, g domain.IssuanceGuard, metadata domain.TokenMetadata, l *slog.Logger) *IssueMintAuthorization {
	return &IssueMintAuthorization{membership: m, signer: s, guard: g, metadata: metadata, logger: l}
}

// Execute issues a single-use signed payload authorizing one mint to the
// claimer address.
//
// Membership is re-verified here on every call. Whatever eligibility the
// client displayed is advisory only and never trusted for the authorization
// decision.
func (uc *IssueMintAuthorization) Execute(ctx context.Context, session *domain.Session, claimerAddress string) (*domain.SignedPayload, error) {
	if !session.Valid(time.Now()) {
		return nil, domain.ErrSessionInvalid
	}

	if !common.IsHexAddress(claimerAddress) {
		return nil, domain.ErrInvalidAddress
	}

	if !uc.guard.TryAcquire(claimerAddress) {
		uc.logger.WarnContext(ctx, "duplicate issuance attempt", "claimer", claimerAddress)
		return nil, domain.ErrIssuanceInFlight
	}

	membership, err := uc.membership.Execute(ctx, session.AccessToken)
	if err != nil {
		uc.guard.Release(claimerAddress)
		return nil, err
	}
	if membership == nil {
		uc.guard.Release(claimerAddress)
		return nil, domain.ErrNotGuildMember
	}

	req, err := uc.signer.BuildMintRequest(claimerAddress, personalizeMetadata(uc.metadata, session))
	if err != nil {
		uc.guard.Release(claimerAddress)
		return nil, err
	}

	payload, err := uc.signer.SignMintRequest(ctx, req)
	if err != nil {
		uc.guard.Release(claimerAddress)
		uc.logger.ErrorContext(ctx, "mint request signing failed", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrSigningFailed, err)
	}

	// The slot stays held for the rest of the window so a burst of repeat
	// requests for one wallet yields exactly one payload.
	uc.logger.InfoContext(ctx, "mint authorization issued",
		"claimer", claimerAddress,
		"guild_id", membership.ID,
		"uid", payload.Payload.UID)
	return payload, nil
}

// personalizeMetadata fills the per-member fields of the token metadata:
// the display name into the {name} placeholders and the session avatar as
// the image.
func personalizeMetadata(base domain.TokenMetadata, session *domain.Session) domain.TokenMetadata {
	base.Name = strings.ReplaceAll(base.Name, namePlaceholder, session.Name)
	base.Description = strings.ReplaceAll(base.Description, namePlaceholder, session.Name)
	base.Image = session.AvatarURL
	return base
}
