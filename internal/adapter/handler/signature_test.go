package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/thirdweb-example/community-rewards/internal/domain"
	"github.com/thirdweb-example/community-rewards/internal/infrastructure/issuance"
	"github.com/thirdweb-example/community-rewards/internal/infrastructure/session"
	"github.com/thirdweb-example/community-rewards/internal/infrastructure/signer"
	"github.com/thirdweb-example/community-rewards/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	claimer = "0x8626f6940E2eb28930eFb4CeF49B2d1F2C9C1199"
)

func newSignatureHandler(t *testing.T, lister *mockGuildLister) (*SignatureHandler, *session.Codec) {
	t.Helper()
	codec := testCodec()

	s, err := signer.NewMintRequestSigner(signer.Config{
		PrivateKeyHex:   testKey,
		ContractAddress: "0xb1F25E125Bb0fA25E4a1d7c1Bf8BE3BbD4b9a7f3",
		ChainID:         80001,
		SignatureTTL:    5 * time.Minute,
	})
	require.NoError(t, err)

	membership := usecase.NewCheckMembership(lister, targetGuild, slog.Default())
	uc := usecase.NewIssueMintAuthorization(
		membership,
		s,
		issuance.NewGuard(30*time.Second),
		domain.TokenMetadata{Name: "thirdweb Discord Member NFT", Description: "community reward"},
		slog.Default(),
	)
	return NewSignatureHandler(uc, codec), codec
}

func signatureContext(t *testing.T, codec *session.Codec, body string, withSession bool) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/generate-signature", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if withSession {
		req.AddCookie(sessionCookie(t, codec))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSignatureHandler_Member(t *testing.T) {
	lister := &mockGuildLister{guilds: []domain.Guild{{ID: targetGuild, Name: "thirdweb"}}}
	h, codec := newSignatureHandler(t, lister)
	c, rec := signatureContext(t, codec, `{"claimerAddress":"`+claimer+`"}`, true)

	err := h.Handle(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SignedPayload domain.SignedPayload `json:"signedPayload"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, claimer, resp.SignedPayload.Payload.To)
	assert.True(t, strings.HasPrefix(resp.SignedPayload.Signature, "0x"))
}

func TestSignatureHandler_NotMember(t *testing.T) {
	lister := &mockGuildLister{guilds: []domain.Guild{{ID: "111"}, {ID: "222"}}}
	h, codec := newSignatureHandler(t, lister)
	c, rec := signatureContext(t, codec, `{"claimerAddress":"`+claimer+`"}`, true)

	err := h.Handle(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "User is not a member of the discord server.", rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "signedPayload")
}

func TestSignatureHandler_NoSession(t *testing.T) {
	lister := &mockGuildLister{}
	h, codec := newSignatureHandler(t, lister)
	c, _ := signatureContext(t, codec, `{"claimerAddress":"`+claimer+`"}`, false)

	err := h.Handle(c)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.False(t, lister.called)
}

func TestSignatureHandler_InvalidAddress(t *testing.T) {
	lister := &mockGuildLister{guilds: []domain.Guild{{ID: targetGuild}}}
	h, codec := newSignatureHandler(t, lister)
	c, _ := signatureContext(t, codec, `{"claimerAddress":"mallory"}`, true)

	err := h.Handle(c)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestSignatureHandler_MalformedBody(t *testing.T) {
	lister := &mockGuildLister{}
	h, codec := newSignatureHandler(t, lister)
	c, _ := signatureContext(t, codec, `{"claimerAddress":`, true)

	err := h.Handle(c)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestSignatureHandler_LookupFailed(t *testing.T) {
	lister := &mockGuildLister{err: domain.ErrDiscordUnavailable}
	h, codec := newSignatureHandler(t, lister)
	c, _ := signatureContext(t, codec, `{"claimerAddress":"`+claimer+`"}`, true)

	err := h.Handle(c)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	// Could-not-determine is never presented as forbidden.
	assert.Equal(t, http.StatusBadGateway, httpErr.Code)
}

func TestSignatureHandler_DuplicateInFlight(t *testing.T) {
	lister := &mockGuildLister{guilds: []domain.Guild{{ID: targetGuild}}}
	h, codec := newSignatureHandler(t, lister)

	first, rec := signatureContext(t, codec, `{"claimerAddress":"`+claimer+`"}`, true)
	require.NoError(t, h.Handle(first))
	require.Equal(t, http.StatusOK, rec.Code)

	second, _ := signatureContext(t, codec, `{"claimerAddress":"`+claimer+`"}`, true)
	err := h.Handle(second)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}
