package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/forkful/backend/internal/middleware"
	"github.com/pageza/forkful/backend/internal/service"
	"github.com/pageza/forkful/backend/internal/types"
)

type ProfileHandler struct {
	profileService service.IProfileService
}

func NewProfileHandler(profileService service.IProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup, validator middleware.TokenValidator, limit gin.HandlerFunc) {
	users := router.Group("/users")

	own := users.Group("/profile", middleware.RequireAuth(validator))
	{
		own.GET("/", h.GetOwnProfile)
		own.PUT("/", h.UpdateOwnProfile)
		own.PATCH("/", h.UpdateOwnProfile)
		own.DELETE("/", h.DeleteAccount)
		own.POST("/picture/", h.UploadPicture)
	}

	user := users.Group("/:username", middleware.AnonymousReads(validator))
	{
		user.GET("/", h.GetProfile)
		user.PUT("/", h.UpdateProfile)
		user.PATCH("/", h.UpdateProfile)
		user.POST("/follow/", limit, h.ToggleFollow)
		user.GET("/followers/", h.Followers)
		user.GET("/following/", h.Following)
	}
}

func (h *ProfileHandler) GetOwnProfile(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetOwnProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateOwnProfile(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	var req types.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.UpdateOwnProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	if err := h.profileService.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully!"})
}

func (h *ProfileHandler) UploadPicture(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	upload, done, err := formUpload(c, "profile_picture")
	if err != nil {
		respondError(c, &service.ValidationError{Message: "Upload a valid image.", Fields: map[string][]string{"profile_picture": {err.Error()}}})
		return
	}
	defer done()

	profile, err := h.profileService.UploadPicture(c.Request.Context(), userID, upload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile picture updated successfully!",
		"user":    profile,
	})
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Request.Context(), middleware.Viewer(c), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	var req types.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, c.Param("username"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) ToggleFollow(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	username := c.Param("username")
	result, err := h.profileService.ToggleFollow(c.Request.Context(), userID, username)
	if err != nil {
		respondError(c, err)
		return
	}

	msg := fmt.Sprintf("You unfollowed %s", username)
	if result.IsFollowing {
		msg = fmt.Sprintf("You are now following %s", username)
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         msg,
		"is_following":    result.IsFollowing,
		"followers_count": result.FollowersCount,
	})
}

func (h *ProfileHandler) Followers(c *gin.Context) {
	page, ok := pageRequest(c)
	if !ok {
		return
	}

	result, err := h.profileService.Followers(c.Request.Context(), middleware.Viewer(c), c.Param("username"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, result)
}

func (h *ProfileHandler) Following(c *gin.Context) {
	page, ok := pageRequest(c)
	if !ok {
		return
	}

	result, err := h.profileService.Following(c.Request.Context(), middleware.Viewer(c), c.Param("username"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, result)
}
