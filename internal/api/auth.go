package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/forkful/backend/internal/service"
	"github.com/pageza/forkful/backend/internal/types"
)

type AuthHandler struct {
	authService    service.IAuthService
	profileService service.IProfileService
}

func NewAuthHandler(authService service.IAuthService, profileService service.IProfileService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		profileService: profileService,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	auth := router.Group("/auth", limit)
	{
		auth.POST("/register/", h.Register)
		auth.POST("/login/", h.Login)
		auth.POST("/token/refresh/", h.Refresh)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := h.profileService.GetOwnProfile(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully!",
		"user":    profile,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	tokens, err := h.authService.Login(c.Request.Context(), req.Identifier(), req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req types.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	access, err := h.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}
