package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradegoal/internal/service"
)

type PlannerHandler struct {
	Planner *service.PlannerService
	Caps    *service.CapabilityService
}

func (h *PlannerHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/api/v1", auth)
	g.POST("/planner/calculate", h.calculate)
	g.GET("/projections", h.projections)
}

type plannerRequest struct {
	RiskPercent    float64 `json:"risk_percent"`
	SessionsPerDay int     `json:"sessions_per_day"`
	OpsPerSession  int     `json:"ops_per_session"`
	Winrate        float64 `json:"winrate"`
}

func (h *PlannerHandler) calculate(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req plannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	result, err := h.Planner.Calculate(c.Request.Context(), userID, service.PlannerInput{
		RiskPercent:    req.RiskPercent,
		SessionsPerDay: req.SessionsPerDay,
		OpsPerSession:  req.OpsPerSession,
		Winrate:        req.Winrate,
	})
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, result, nil)
}

func (h *PlannerHandler) projections(c *gin.Context) {
	userID, email, ok := currentUser(c)
	if !ok {
		return
	}
	if h.Caps != nil {
		caps := h.Caps.Resolve(c.Request.Context(), userID, email)
		if !caps.CanSeeProjections {
			Error(c, http.StatusForbidden, "projections require a paid plan", nil)
			return
		}
	}
	view, err := h.Planner.Project(c.Request.Context(), userID, intQuery(c, "days", 30))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, view, nil)
}
