package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	pkgAuth "github.com/polkiloo/routeshop/internal/pkg/auth"
	"github.com/polkiloo/routeshop/internal/server/http/dto"
)

// GatewayHandler serves the chat gateway and ledger callbacks.
type GatewayHandler struct {
	tokens   TokenFacade
	webhooks WebhookFacade
}

// NewGatewayHandler constructs GatewayHandler.
func NewGatewayHandler(tokens TokenFacade, webhooks WebhookFacade) *GatewayHandler {
	return &GatewayHandler{tokens: tokens, webhooks: webhooks}
}

// Token handles POST /api/gateway/token.
func (h *GatewayHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	scope := pkgAuth.Scope(req.Scope)
	if scope == "" {
		scope = pkgAuth.ScopeBuyer
	}
	token, err := h.tokens.IssueToken(req.ActorID, scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}

// Webhook handles POST /webhook.
func (h *GatewayHandler) Webhook(c *gin.Context) {
	var req dto.InvoiceWebhook
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	err := h.webhooks.HandleInvoice(c.Request.Context(), req.InvoiceID, req.Status)
	if err != nil && !errors.Is(err, domainErrors.ErrStaleAction) {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Health handles GET /healthz.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
