package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tradegoal/internal/service"
)

type WithdrawalHandler struct {
	Withdrawals *service.WithdrawalService
}

func (h *WithdrawalHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/api/v1/withdrawals", auth)
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.remove)
}

type createWithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   *string         `json:"note"`
}

func (h *WithdrawalHandler) create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req createWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Withdrawals.CreateWithdrawal(c.Request.Context(), userID, req.Amount, req.Note)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *WithdrawalHandler) list(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.Withdrawals.ListWithdrawals(c.Request.Context(), userID,
		uint64QueryPtr(c, "goal_id"), intQuery(c, "limit", 100))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, out.Items, map[string]any{"total": out.Total})
}

func (h *WithdrawalHandler) get(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	item, err := h.Withdrawals.GetWithdrawal(c.Request.Context(), userID, uint64Param(c, "id"))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *WithdrawalHandler) remove(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Withdrawals.DeleteWithdrawal(c.Request.Context(), userID, uint64Param(c, "id")); err != nil {
		fail(c, err)
		return
	}
	Ok(c, gin.H{"deleted": true}, nil)
}
