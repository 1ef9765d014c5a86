package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/thirdweb-example/community-rewards/internal/domain"
	"github.com/thirdweb-example/community-rewards/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SignatureHandler handles /api/generate-signature.
type SignatureHandler struct {
	uc    *usecase.IssueMintAuthorization
	codec domain.SessionCodec
}

// NewSignatureHandler creates a new signature handler.
func NewSignatureHandler(uc *usecase.IssueMintAuthorization, codec domain.SessionCodec) *SignatureHandler {
	return &SignatureHandler{uc: uc, codec: codec}
}

// signatureRequest is the expected POST body.
type signatureRequest struct {
	ClaimerAddress string `json:"claimerAddress"`
}

// signatureResponse wraps the signed payload; its internals are opaque to
// this layer.
type signatureResponse struct {
	SignedPayload *domain.SignedPayload `json:"signedPayload"`
}

// Handle processes the /api/generate-signature endpoint.
func (h *SignatureHandler) Handle(c echo.Context) error {
	ctx := c.Request().Context()

	sess, err := sessionFromRequest(c, h.codec)
	if err != nil {
		return mapDomainError(err)
	}

	var req signatureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	payload, err := h.uc.Execute(ctx, sess, req.ClaimerAddress)
	if err != nil {
		if errors.Is(err, domain.ErrNotGuildMember) {
			// Plain-text 403, no signedPayload field at all.
			return c.String(http.StatusForbidden, "User is not a member of the discord server.")
		}
		slog.ErrorContext(ctx, "mint authorization refused", "error", err, "claimer", req.ClaimerAddress)
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, signatureResponse{SignedPayload: payload})
}
