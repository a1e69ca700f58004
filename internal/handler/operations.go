package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tradegoal/internal/service"
)

type OperationHandler struct {
	Operations *service.OperationService
}

func (h *OperationHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/api/v1/operations", auth)
	g.POST("", h.record)
	g.GET("", h.list)
}

type recordOperationRequest struct {
	SessionID   uint64           `json:"session_id"`
	Result      string           `json:"result"`
	RiskPercent int              `json:"risk_percent"`
	Amount      *decimal.Decimal `json:"amount"`
	Profit      *decimal.Decimal `json:"profit"`
	Comment     *string          `json:"comment"`
}

func (h *OperationHandler) record(c *gin.Context) {
	userID, email, ok := currentUser(c)
	if !ok {
		return
	}
	var req recordOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	op, err := h.Operations.RecordOperation(c.Request.Context(), userID, email, service.RecordOperationInput{
		SessionID:   req.SessionID,
		Result:      req.Result,
		RiskPercent: req.RiskPercent,
		Amount:      req.Amount,
		Profit:      req.Profit,
		Comment:     req.Comment,
	})
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, op, nil)
}

func (h *OperationHandler) list(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID := uint64QueryPtr(c, "session_id")
	if sessionID == nil {
		Error(c, http.StatusBadRequest, "session_id is required", nil)
		return
	}
	items, err := h.Operations.ListOperations(c.Request.Context(), userID, *sessionID)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, items, nil)
}
