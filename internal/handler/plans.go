package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradegoal/internal/service"
)

type PlanHandler struct {
	Plans *service.PlanService
	Caps  *service.CapabilityService
}

func (h *PlanHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/api/v1/plans", auth)
	g.GET("", h.list)
	g.GET("/me", h.me)
	g.POST("/subscribe", h.subscribe)
}

func (h *PlanHandler) list(c *gin.Context) {
	items, err := h.Plans.ListPlans(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, items, nil)
}

func (h *PlanHandler) me(c *gin.Context) {
	userID, email, ok := currentUser(c)
	if !ok {
		return
	}
	caps := h.Caps.Resolve(c.Request.Context(), userID, email)
	Ok(c, caps, nil)
}

type subscribeRequest struct {
	Plan string `json:"plan"`
}

func (h *PlanHandler) subscribe(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	sub, err := h.Plans.Subscribe(c.Request.Context(), userID, req.Plan)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, sub, nil)
}
