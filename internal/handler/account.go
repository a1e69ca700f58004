package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tradegoal/internal/service"
)

type AccountHandler struct {
	Accounts *service.AccountService
}

func (h *AccountHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/api/v1/account", auth)
	g.POST("", h.create)
	g.GET("", h.get)
	g.PUT("", h.update)
}

type createAccountRequest struct {
	Capital decimal.Decimal `json:"capital"`
	Payout  float64         `json:"payout"`
}

type updateAccountRequest struct {
	Capital *decimal.Decimal `json:"capital"`
	Payout  *float64         `json:"payout"`
}

func (h *AccountHandler) create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	account, err := h.Accounts.CreateAccount(c.Request.Context(), userID, req.Capital, req.Payout)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, account, nil)
}

func (h *AccountHandler) get(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	account, err := h.Accounts.GetAccount(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, account, nil)
}

func (h *AccountHandler) update(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	account, err := h.Accounts.UpdateAccount(c.Request.Context(), userID, service.UpdateAccountInput{
		Capital: req.Capital,
		Payout:  req.Payout,
	})
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, account, nil)
}
