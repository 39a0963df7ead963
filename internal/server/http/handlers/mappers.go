package handlers

import (
	"github.com/polkiloo/routeshop/internal/domain/model"
	"github.com/polkiloo/routeshop/internal/server/http/dto"
)

func toOrderResponse(o model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:           o.ID,
		BuyerID:      o.BuyerID,
		Status:       string(o.Status),
		Amount:       o.Amount,
		Products:     o.Products,
		CardLast4:    o.Proof.Last4,
		ReferralCode: o.ReferralCode,
		RejectReason: o.RejectReason,
		Fulfillment:  o.Fulfillment,
		CreatedAt:    o.CreatedAt,
		ResolvedAt:   o.ResolvedAt,
	}
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	resp := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	return resp
}

func toInstructorResponse(i model.Instructor, threshold int64) dto.InstructorResponse {
	return dto.InstructorResponse{
		Code:      i.Code,
		Contact:   i.Contact,
		CardLast4: i.CardLast4,
		Balance:   i.Balance,
		Ready:     threshold > 0 && i.Balance >= threshold,
	}
}

func toApproveResponse(c *model.Completion) dto.ApproveResponse {
	resp := dto.ApproveResponse{Order: toOrderResponse(*c.Order), Commission: c.Commission}
	if c.Instructor != nil {
		resp.Instructor = c.Instructor.Code
	}
	return resp
}
