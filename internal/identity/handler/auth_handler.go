package handler

import (
	"github.com/codigix/passion-clothing-sub000/internal/identity/service"
	"github.com/codigix/passion-clothing-sub000/internal/shared/httpkit"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login exchanges credentials for a JWT
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	result, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		httpkit.Error(c, 40101, err.Error())
		return
	}
	httpkit.Success(c, result)
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), httpkit.GetUserID(c))
	if err != nil {
		httpkit.NotFound(c, "User not found")
		return
	}
	httpkit.Success(c, user)
}

// CreateUser registers an operator account (admin only)
// POST /api/v1/users
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), &req)
	if err != nil {
		httpkit.BadRequest(c, err.Error())
		return
	}
	httpkit.Created(c, user)
}
