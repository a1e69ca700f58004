package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradegoal/internal/service"
)

type AuthHandler struct {
	Auth *service.AuthService
}

func (h *AuthHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
}

func (h *AuthHandler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	result, err := h.Auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, authResponse{Token: result.Token, UserID: result.User.ID, Email: result.User.Email}, nil)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	result, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, authResponse{Token: result.Token, UserID: result.User.ID, Email: result.User.Email}, nil)
}
