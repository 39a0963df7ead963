package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/routeshop/internal/domain/command"
	"github.com/polkiloo/routeshop/internal/server/http/dto"
)

// OperatorHandler manages operator endpoints.
type OperatorHandler struct {
	facade OperatorFacade
}

// NewOperatorHandler constructs OperatorHandler.
func NewOperatorHandler(facade OperatorFacade) *OperatorHandler {
	return &OperatorHandler{facade: facade}
}

// Approve handles POST /api/operator/orders/:id/approve.
func (h *OperatorHandler) Approve(c *gin.Context) {
	orderID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	completion, err := h.facade.Approve(c.Request.Context(), orderID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toApproveResponse(completion))
}

// Reject handles POST /api/operator/orders/:id/reject.
func (h *OperatorHandler) Reject(c *gin.Context) {
	orderID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.facade.RejectInit(c.Request.Context(), CurrentActorID(c), orderID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, toOrderResponse(*order))
}

// Rejection handles POST /api/operator/rejection.
func (h *OperatorHandler) Rejection(c *gin.Context) {
	var req dto.RejectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.facade.RejectApply(c.Request.Context(), CurrentActorID(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Action handles POST /api/operator/actions.
func (h *OperatorHandler) Action(c *gin.Context) {
	var req dto.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	action, err := command.Parse(req.Payload)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.facade.Dispatch(c.Request.Context(), CurrentActorID(c), action)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.ActionResponse{Kind: string(result.Kind), Settled: result.Settled, Prompt: result.Prompt}
	switch {
	case result.Completion != nil:
		order := toOrderResponse(*result.Completion.Order)
		resp.Order = &order
	case result.Order != nil:
		order := toOrderResponse(*result.Order)
		resp.Order = &order
	}
	c.JSON(http.StatusOK, resp)
}

// CancelPending handles POST /api/operator/orders/cancel-pending.
func (h *OperatorHandler) CancelPending(c *gin.Context) {
	orders, err := h.facade.CancelAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CancelResponse{Cancelled: len(orders), Orders: toOrderResponses(orders)})
}

// Stats handles GET /api/operator/stats.
func (h *OperatorHandler) Stats(c *gin.Context) {
	stats, err := h.facade.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.StatsResponse{
		Total:    stats.Total,
		Revenue:  stats.Revenue(),
		ByStatus: make(map[string]dto.StatusStatsResponse, len(stats.ByStatus)),
	}
	for status, s := range stats.ByStatus {
		resp.ByStatus[string(status)] = dto.StatusStatsResponse{Count: s.Count, Sum: s.Sum}
	}
	c.JSON(http.StatusOK, resp)
}

// AddInstructor handles POST /api/operator/instructors.
func (h *OperatorHandler) AddInstructor(c *gin.Context) {
	var req dto.InstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	reg, err := h.facade.AddInstructor(c.Request.Context(), req.Code, req.Contact, req.Card)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.RegistrationResponse{
		Instructor: toInstructorResponse(*reg.Instructor, 0),
		Link:       reg.Link,
		Card:       reg.Card,
	})
}

// Payouts handles GET /api/operator/payouts.
func (h *OperatorHandler) Payouts(c *gin.Context) {
	summary, err := h.facade.ListPayouts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.PayoutsResponse{
		Instructors: make([]dto.InstructorResponse, 0, len(summary.Instructors)),
		Total:       summary.Total,
		Threshold:   summary.Threshold,
	}
	for _, i := range summary.Instructors {
		resp.Instructors = append(resp.Instructors, toInstructorResponse(i, summary.Threshold))
	}
	c.JSON(http.StatusOK, resp)
}

// Settle handles POST /api/operator/payouts/:code/settle.
func (h *OperatorHandler) Settle(c *gin.Context) {
	code := c.Param("code")
	settled, err := h.facade.Settle(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SettleResponse{Code: code, Settled: settled})
}

// CloseDispute handles POST /api/operator/disputes/:buyer/close.
func (h *OperatorHandler) CloseDispute(c *gin.Context) {
	buyerID, ok := int64Param(c, "buyer")
	if !ok {
		return
	}
	if err := h.facade.CloseDispute(c.Request.Context(), buyerID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
