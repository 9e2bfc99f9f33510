package delivery

import (
	"errors"
	"net/http"

	dispatchdomain "replyhub-backend/internal/dispatch/domain"
	"replyhub-backend/internal/dispatch/dto"
	"replyhub-backend/internal/dispatch/usecase"
	mailboxdomain "replyhub-backend/internal/mailbox/domain"

	"github.com/gin-gonic/gin"
)

type DispatchHandler struct {
	dispatchUsecase usecase.DispatchUsecase
}

func NewDispatchHandler(dispatchUsecase usecase.DispatchUsecase) *DispatchHandler {
	return &DispatchHandler{
		dispatchUsecase: dispatchUsecase,
	}
}

// SendReply handles POST /api/threads/:id/reply.
func (h *DispatchHandler) SendReply(c *gin.Context) {
	workspaceID := c.GetString("workspaceID")
	threadID := c.Param("id")

	var req dto.SendReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.dispatchUsecase.SendReply(c.Request.Context(), workspaceID, threadID, &req)
	if err != nil {
		h.respondSendError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// respondSendError maps dispatch failures onto statuses the frontend can act
// on: 401 means reconnect the mailbox, 422 means the sending domain is not
// approved yet.
func (h *DispatchHandler) respondSendError(c *gin.Context, err error) {
	var domainPending *dispatchdomain.DomainPendingError

	switch {
	case errors.Is(err, mailboxdomain.ErrAuthExpired):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":              err.Error(),
			"reconnect_required": true,
		})
	case errors.Is(err, dispatchdomain.ErrRecipientMissing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &domainPending):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             domainPending.Error(),
			"from_domain":       domainPending.FromDomain,
			"recipient_domains": domainPending.RecipientDomains,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
