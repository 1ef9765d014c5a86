package handler

import (
	"net/http"

	"github.com/thirdweb-example/community-rewards/internal/domain"
	"github.com/thirdweb-example/community-rewards/internal/usecase"

	"github.com/labstack/echo/v4"
)

// MembershipHandler handles /api/check-is-in-server. Its answer feeds the
// client's eligibility display only; issuance re-checks independently.
type MembershipHandler struct {
	uc    *usecase.CheckMembership
	codec domain.SessionCodec
}

// NewMembershipHandler creates a new membership handler.
func NewMembershipHandler(uc *usecase.CheckMembership, codec domain.SessionCodec) *MembershipHandler {
	return &MembershipHandler{uc: uc, codec: codec}
}

// membershipResponse mirrors the page's expected shape: the field is absent
// when the user is not a member.
type membershipResponse struct {
	Membership *domain.Membership `json:"thirdwebMembership,omitempty"`
}

// Handle processes the /api/check-is-in-server endpoint. A request without
// a session is rejected outright rather than forwarded upstream with an
// empty credential.
func (h *MembershipHandler) Handle(c echo.Context) error {
	sess, err := sessionFromRequest(c, h.codec)
	if err != nil {
		return mapDomainError(err)
	}

	membership, err := h.uc.Execute(c.Request().Context(), sess.AccessToken)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, membershipResponse{Membership: membership})
}
