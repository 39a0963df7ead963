package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/routeshop/internal/server/http/dto"
)

// BuyerHandler manages buyer endpoints.
type BuyerHandler struct {
	facade BuyerFacade
}

// NewBuyerHandler constructs BuyerHandler.
func NewBuyerHandler(facade BuyerFacade) *BuyerHandler {
	return &BuyerHandler{facade: facade}
}

// Start handles POST /api/buyer/start.
func (h *BuyerHandler) Start(c *gin.Context) {
	var req dto.StartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	welcome, err := h.facade.Start(c.Request.Context(), CurrentActorID(c), req.Referral)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.WelcomeResponse{
		Items:      make([]dto.ItemResponse, 0, len(welcome.Items)),
		Purchased:  welcome.Purchased,
		Referral:   welcome.Referral,
		PayoutCard: welcome.PayoutCard,
	}
	for _, it := range welcome.Items {
		resp.Items = append(resp.Items, dto.ItemResponse{Key: it.Key, Title: it.Title, Products: it.Products, Amount: it.Amount})
	}
	c.JSON(http.StatusOK, resp)
}

// Checkout handles POST /api/buyer/checkout.
func (h *BuyerHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	draft, err := h.facade.StartCheckout(c.Request.Context(), CurrentActorID(c), req.BuyerName, req.Selection, req.Referral)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.DraftResponse{
		ID:        draft.ID,
		Products:  draft.Products,
		Amount:    draft.Amount,
		ExpiresAt: draft.ExpiresAt,
	})
}

// Proof handles POST /api/buyer/proof.
func (h *BuyerHandler) Proof(c *gin.Context) {
	var req dto.ProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sub, err := h.facade.SubmitProof(c.Request.Context(), CurrentActorID(c), req.Input)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.SubmissionResponse{Order: toOrderResponse(*sub.Order)}
	if sub.Invoice != nil {
		resp.InvoiceURL = sub.Invoice.PageURL
	}
	c.JSON(http.StatusCreated, resp)
}

// Purchases handles GET /api/buyer/purchases.
func (h *BuyerHandler) Purchases(c *gin.Context) {
	links, err := h.facade.MyPurchases(c.Request.Context(), CurrentActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if len(links) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.PurchasesResponse{Links: links})
}

// Support handles POST /api/buyer/support.
func (h *BuyerHandler) Support(c *gin.Context) {
	var req dto.SupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.facade.ContactSupport(c.Request.Context(), CurrentActorID(c), req.BuyerName, req.Text); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
