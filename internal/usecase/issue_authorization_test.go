package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/thirdweb-example/community-rewards/internal/domain"

	"github.com/stretchr/testify/assert"
)

const claimer = "0x8626f6940E2eb28930eFb4CeF49B2d1F2C9C1199"

// mockSigner implements domain.MintSigner for testing.
type mockSigner struct {
	buildErr    error
	signErr     error
	signCalled  int
	lastRequest domain.MintRequest
}

func (m *mockSigner) BuildMintRequest(recipient string, metadata domain.TokenMetadata) (domain.MintRequest, error) {
	if m.buildErr != nil {
		return domain.MintRequest{}, m.buildErr
	}
	return domain.MintRequest{
		To:       recipient,
		Metadata: metadata,
		UID:      fmt.Sprintf("0x%064d", m.signCalled),
	}, nil
}

func (m *mockSigner) SignMintRequest(_ context.Context, req domain.MintRequest) (*domain.SignedPayload, error) {
	m.signCalled++
	m.lastRequest = req
	if m.signErr != nil {
		return nil, m.signErr
	}
	return &domain.SignedPayload{Payload: req, Signature: fmt.Sprintf("0xsig%d", m.signCalled)}, nil
}

// mockGuard implements domain.IssuanceGuard for testing.
type mockGuard struct {
	deny     bool
	acquired []string
	released []string
}

func (m *mockGuard) TryAcquire(recipient string) bool {
	if m.deny {
		return false
	}
	m.acquired = append(m.acquired, recipient)
	return true
}

func (m *mockGuard) Release(recipient string) {
	m.released = append(m.released, recipient)
}

func memberSession() *domain.Session {
	return &domain.Session{
		UserID:      "user-42",
		Name:        "vitalik",
		AvatarURL:   "https://cdn.example.com/avatars/42/a.png",
		AccessToken: "token-abc",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func newIssuer(lister *mockGuildLister, signer *mockSigner, guard *mockGuard) *IssueMintAuthorization {
	membership := NewCheckMembership(lister, targetGuild, slog.Default())
	metadata := domain.TokenMetadata{
		Name:        "{name}'s thirdweb Discord Member NFT",
		Description: "An NFT rewarded to {name} for being a part of the thirdweb community!",
	}
	return NewIssueMintAuthorization(membership, signer, guard, metadata, slog.Default())
}

func TestIssueMintAuthorization_Eligible(t *testing.T) {
	lister := &mockGuildLister{guilds: []domain.Guild{{ID: "111"}, {ID: targetGuild, Name: "thirdweb"}}}
	signer := &mockSigner{}
	guard := &mockGuard{}

	uc := newIssuer(lister, signer, guard)
	payload, err := uc.Execute(context.Background(), memberSession(), claimer)

	assert.NoError(t, err)
	assert.NotNil(t, payload)
	assert.Equal(t, claimer, payload.Payload.To)
	// The session avatar becomes the token image.
	assert.Equal(t, "https://cdn.example.com/avatars/42/a.png", payload.Payload.Metadata.Image)
	assert.Equal(t, 1, signer.signCalled)
	// The successful issuance holds the window; no release.
	assert.Empty(t, guard.released)
}

func TestIssueMintAuthorization_PersonalizedMetadata(t *testing.T) {
	lister := &mockGuildLister{guilds: []domain.Guild{{ID: targetGuild}}}
	signer := &mockSigner{}
	guard := &mockGuard{}

	uc := newIssuer(lister, signer, guard)
	payload, err := uc.Execute(context.Background(), memberSession(), claimer)

	assert.NoError(t, err)
	// Each member's token carries their display name, not the bare template.
	assert.Equal(t, "vitalik's thirdweb Discord Member NFT", payload.Payload.Metadata.Name)
	assert.Equal(t, "An NFT rewarded to vitalik for being a part of the thirdweb community!",
		payload.Payload.Metadata.Description)
	assert.NotContains(t, payload.Payload.Metadata.Name, "{name}")
}

func TestIssueMintAuthorization_NotMember(t *testing.T) {
	lister := &mockGuildLister{guilds: []domain.Guild{{ID: "111"}, {ID: "222"}}}
	signer := &mockSigner{}
	guard := &mockGuard{}

	uc := newIssuer(lister, signer, guard)
	payload, err := uc.Execute(context.Background(), memberSession(), claimer)

	assert.Nil(t, payload)
	assert.True(t, errors.Is(err, domain.ErrNotGuildMember))
	assert.Equal(t, 0, signer.signCalled, "signer must never run for an ineligible user")
	assert.Equal(t, []string{claimer}, guard.released)
}

func TestIssueMintAuthorization_NoSession(t *testing.T) {
	lister := &mockGuildLister{}
	signer := &mockSigner{}
	guard := &mockGuard{}

	uc := newIssuer(lister, signer, guard)

	for _, session := range []*domain.Session{
		nil,
		{AccessToken: "", ExpiresAt: time.Now().Add(time.Hour)},
		{AccessToken: "stale", ExpiresAt: time.Now().Add(-time.Minute)},
	} {
		payload, err := uc.Execute(context.Background(), session, claimer)

		assert.Nil(t, payload)
		assert.True(t, errors.Is(err, domain.ErrSessionInvalid))
	}
	assert.False(t, lister.called, "no network call without a valid session")
	assert.Equal(t, 0, signer.signCalled)
}

func TestIssueMintAuthorization_InvalidAddress(t *testing.T) {
	lister := &mockGuildLister{}
	signer := &mockSigner{}
	guard := &mockGuard{}

	uc := newIssuer(lister, signer, guard)
	payload, err := uc.Execute(context.Background(), memberSession(), "not-an-address")

	assert.Nil(t, payload)
	assert.True(t, errors.Is(err, domain.ErrInvalidAddress))
	assert.False(t, lister.called)
	assert.Empty(t, guard.acquired)
}

func TestIssueMintAuthorization_LookupFailedIsNotForbidden(t *testing.T) {
	lister := &mockGuildLister{err: domain.ErrDiscordUnavailable}
	signer := &mockSigner{}
	guard := &mockGuard{}

	uc := newIssuer(lister, signer, guard)
	payload, err := uc.Execute(context.Background(), memberSession(), claimer)

	assert.Nil(t, payload)
	assert.True(t, errors.Is(err, domain.ErrDiscordUnavailable))
	assert.False(t, errors.Is(err, domain.ErrNotGuildMember),
		"a failed lookup must not read as non-membership")
	assert.Equal(t, 0, signer.signCalled)
	assert.Equal(t, []string{claimer}, guard.released)
}

func TestIssueMintAuthorization_DuplicateInFlight(t *testing.T) {
	lister := &mockGuildLister{guilds: []domain.Guild{{ID: targetGuild}}}
	signer := &mockSigner{}
	guard := &mockGuard{deny: true}

	uc := newIssuer(lister, signer, guard)
	payload, err := uc.Execute(context.Background(), memberSession(), claimer)

	assert.Nil(t, payload)
	assert.True(t, errors.Is(err, domain.ErrIssuanceInFlight))
	assert.False(t, lister.called)
	assert.Equal(t, 0, signer.signCalled)
}

func TestIssueMintAuthorization_SignerFailure(t *testing.T) {
	lister := &mockGuildLister{guilds: []domain.Guild{{ID: targetGuild}}}
	signer := &mockSigner{signErr: errors.New("hsm on fire")}
	guard := &mockGuard{}

	uc := newIssuer(lister, signer, guard)
	payload, err := uc.Execute(context.Background(), memberSession(), claimer)

	assert.Nil(t, payload)
	assert.True(t, errors.Is(err, domain.ErrSigningFailed))
	assert.Equal(t, []string{claimer}, guard.released)
}

func TestIssueMintAuthorization_IndependentPayloads(t *testing.T) {
	lister := &mockGuildLister{guilds: []domain.Guild{{ID: targetGuild}}}
	signer := &mockSigner{}
	guard := &mockGuard{}

	uc := newIssuer(lister, signer, guard)

	first, err := uc.Execute(context.Background(), memberSession(), claimer)
	assert.NoError(t, err)
	second, err := uc.Execute(context.Background(), memberSession(), claimer)
	assert.NoError(t, err)

	assert.NotEqual(t, first.Signature, second.Signature)
}
