package handler

import (
	"github.com/gin-gonic/gin"

	"tradegoal/internal/service"
)

type ReportsHandler struct {
	Reports *service.ReportsService
}

func (h *ReportsHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/api/v1/reports", auth)
	g.GET("", h.build)
}

func (h *ReportsHandler) build(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	report, err := h.Reports.Build(c.Request.Context(), userID, intQuery(c, "days", 30))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, report, nil)
}
