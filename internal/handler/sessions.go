package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradegoal/internal/service"
)

type SessionHandler struct {
	Sessions *service.SessionService
}

func (h *SessionHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/api/v1/sessions", auth)
	g.POST("", h.start)
	g.GET("", h.listToday)
	g.POST("/:id/close", h.close)
}

func (h *SessionHandler) start(c *gin.Context) {
	userID, email, ok := currentUser(c)
	if !ok {
		return
	}
	session, err := h.Sessions.StartSession(c.Request.Context(), userID, email)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, session, nil)
}

func (h *SessionHandler) listToday(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	sessions, day, err := h.Sessions.ListToday(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	var meta map[string]any
	if day != nil {
		meta = map[string]any{
			"day_status":  day.Status,
			"day_date":    day.Date.Format(dateLayout),
			"loss_count":  day.LossCount,
			"blocked_til": day.BlockedUntil,
		}
	}
	Ok(c, sessions, meta)
}

func (h *SessionHandler) close(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id := uint64Param(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid session id", nil)
		return
	}
	session, err := h.Sessions.CloseSession(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, session, nil)
}
