package delivery

import (
	"encoding/base64"
	"net/http"
	"strings"

	mailboxdomain "replyhub-backend/internal/mailbox/domain"
	"replyhub-backend/internal/mailbox/usecase"

	"github.com/gin-gonic/gin"
)

type MailboxHandler struct {
	mailboxUsecase usecase.MailboxUsecase
}

func NewMailboxHandler(mailboxUsecase usecase.MailboxUsecase) *MailboxHandler {
	return &MailboxHandler{
		mailboxUsecase: mailboxUsecase,
	}
}

func (h *MailboxHandler) List(c *gin.Context) {
	accounts, err := h.mailboxUsecase.List(c.GetString("workspaceID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mailboxes": accounts})
}

func (h *MailboxHandler) Get(c *gin.Context) {
	account, err := h.mailboxUsecase.Get(c.GetString("workspaceID"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if account == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "mailbox not found"})
		return
	}
	c.JSON(http.StatusOK, account)
}

// Connect returns the provider consent URL for the operator's browser.
// The workspace and user ids ride along in the OAuth state so the callback,
// which arrives without an Authorization header, can attribute the mailbox.
func (h *MailboxHandler) Connect(c *gin.Context) {
	provider := mailboxdomain.ProviderKind(c.Param("provider"))
	state := encodeState(c.GetString("workspaceID"), c.GetString("userID"))

	url, err := h.mailboxUsecase.ConnectURL(provider, state)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Callback handles the provider redirect after consent.
func (h *MailboxHandler) Callback(c *gin.Context) {
	provider := mailboxdomain.ProviderKind(c.Param("provider"))
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	workspaceID, userID, ok := decodeState(c.Query("state"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}

	account, err := h.mailboxUsecase.HandleOAuthCallback(c.Request.Context(), workspaceID, userID, provider, code)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *MailboxHandler) ConnectRelay(c *gin.Context) {
	var req usecase.ConnectRelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.mailboxUsecase.ConnectRelay(c.GetString("workspaceID"), c.GetString("userID"), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *MailboxHandler) VerifyRelay(c *gin.Context) {
	status, err := h.mailboxUsecase.VerifyRelay(c.GetString("workspaceID"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "relay_status": status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"relay_status": status})
}

func (h *MailboxHandler) RequestDomainVerification(c *gin.Context) {
	var req struct {
		Domain string `json:"domain" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.mailboxUsecase.RequestDomainVerification(c.GetString("workspaceID"), c.Param("id"), req.Domain)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"txt_record": record,
		"status":     mailboxdomain.DomainPending,
	})
}

func (h *MailboxHandler) VerifyDomain(c *gin.Context) {
	verified, err := h.mailboxUsecase.VerifyDomain(c.Request.Context(), c.GetString("workspaceID"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	status := mailboxdomain.DomainPending
	if verified {
		status = mailboxdomain.DomainVerified
	}
	c.JSON(http.StatusOK, gin.H{"verified": verified, "status": status})
}

func (h *MailboxHandler) UpdateSendingIdentity(c *gin.Context) {
	var req usecase.SendingIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.mailboxUsecase.UpdateSendingIdentity(c.GetString("workspaceID"), c.Param("id"), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "sending identity updated"})
}

func (h *MailboxHandler) SetLearningEnabled(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.mailboxUsecase.SetLearningEnabled(c.GetString("workspaceID"), c.Param("id"), *req.Enabled); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"learning_enabled": *req.Enabled})
}

func (h *MailboxHandler) Disconnect(c *gin.Context) {
	if err := h.mailboxUsecase.Disconnect(c.GetString("workspaceID"), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "mailbox disconnected"})
}

func encodeState(workspaceID, userID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(workspaceID + "|" + userID))
}

func decodeState(state string) (workspaceID, userID string, ok bool) {
	raw, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return "", "", false
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
