package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tradegoal/internal/models"
	"tradegoal/internal/service"
)

type GoalHandler struct {
	Goals    *service.GoalService
	Calendar *service.CalendarService
}

func (h *GoalHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/api/v1/goals", auth)
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.remove)
	g.GET("/:id/progress", h.progress)
	g.GET("/:id/calendar", h.calendar)
	g.POST("/:id/calendar/close-day", h.closeDay)
}

type createGoalRequest struct {
	TargetCapital   decimal.Decimal `json:"target_capital"`
	RiskPercent     int             `json:"risk_percent"`
	SessionsPerDay  int             `json:"sessions_per_day"`
	OpsPerSession   int             `json:"ops_per_session"`
	WinrateEstimate float64         `json:"winrate_estimate"`
}

type updateGoalRequest struct {
	TargetCapital   *decimal.Decimal `json:"target_capital"`
	RiskPercent     *int             `json:"risk_percent"`
	SessionsPerDay  *int             `json:"sessions_per_day"`
	OpsPerSession   *int             `json:"ops_per_session"`
	WinrateEstimate *float64         `json:"winrate_estimate"`
	Status          *string          `json:"status"`
}

type goalView struct {
	models.Goal
	CurrentCapital  decimal.Decimal `json:"current_capital"`
	ProgressPercent float64         `json:"progress_percent"`
}

func goalToView(goal *models.Goal, account *models.Account) goalView {
	view := goalView{Goal: *goal, CurrentCapital: account.Capital.Round(2)}
	span := goal.TargetCapital.Sub(goal.StartCapitalSnapshot)
	if span.IsPositive() {
		gained := account.Capital.Sub(goal.StartCapitalSnapshot)
		view.ProgressPercent, _ = gained.Div(span).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}
	return view
}

func (h *GoalHandler) create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	goal, err := h.Goals.CreateGoal(c.Request.Context(), userID, service.CreateGoalInput{
		TargetCapital:   req.TargetCapital,
		RiskPercent:     req.RiskPercent,
		SessionsPerDay:  req.SessionsPerDay,
		OpsPerSession:   req.OpsPerSession,
		WinrateEstimate: req.WinrateEstimate,
	})
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, goal, nil)
}

func (h *GoalHandler) list(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	goals, err := h.Goals.ListGoals(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, goals, nil)
}

func (h *GoalHandler) get(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	goal, account, err := h.Goals.GetGoal(c.Request.Context(), userID, uint64Param(c, "id"))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, goalToView(goal, account), nil)
}

func (h *GoalHandler) update(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req updateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	goal, err := h.Goals.UpdateGoal(c.Request.Context(), userID, uint64Param(c, "id"), service.UpdateGoalInput{
		TargetCapital:   req.TargetCapital,
		RiskPercent:     req.RiskPercent,
		SessionsPerDay:  req.SessionsPerDay,
		OpsPerSession:   req.OpsPerSession,
		WinrateEstimate: req.WinrateEstimate,
		Status:          req.Status,
	})
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, goal, nil)
}

func (h *GoalHandler) remove(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Goals.DeleteGoal(c.Request.Context(), userID, uint64Param(c, "id")); err != nil {
		fail(c, err)
		return
	}
	Ok(c, gin.H{"deleted": true}, nil)
}

func (h *GoalHandler) progress(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	progress, err := h.Goals.Progress(c.Request.Context(), userID, uint64Param(c, "id"))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, progress, nil)
}

func (h *GoalHandler) calendar(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	view, err := h.Calendar.GetCalendar(c.Request.Context(), userID, uint64Param(c, "id"), service.CalendarRange{
		From: dateQueryPtr(c, "from"),
		To:   dateQueryPtr(c, "to"),
		Days: intQueryPtr(c, "days"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, view, nil)
}

type closeDayRequest struct {
	Date          *string          `json:"date"`
	Notes         *string          `json:"notes"`
	BlockedReason *string          `json:"blocked_reason"`
	RealizedPnL   *decimal.Decimal `json:"realized_pnl"`
}

func (h *GoalHandler) closeDay(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req closeDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	input := service.CloseDayInput{
		Notes:         req.Notes,
		BlockedReason: req.BlockedReason,
		RealizedPnL:   req.RealizedPnL,
	}
	if req.Date != nil {
		t, err := parseDate(*req.Date)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD", nil)
			return
		}
		input.Date = &t
	}
	plan, err := h.Calendar.CloseDay(c.Request.Context(), userID, uint64Param(c, "id"), input)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, plan, nil)
}
