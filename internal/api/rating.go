package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/forkful/backend/internal/middleware"
	"github.com/pageza/forkful/backend/internal/service"
	"github.com/pageza/forkful/backend/internal/types"
)

type RatingHandler struct {
	ratingService service.IRatingService
}

func NewRatingHandler(ratingService service.IRatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

func (h *RatingHandler) RegisterRoutes(router *gin.RouterGroup, validator middleware.TokenValidator, limit gin.HandlerFunc) {
	recipe := router.Group("/recipes/:id")
	{
		rate := recipe.Group("/rate", middleware.RequireAuth(validator))
		rate.GET("/", h.MyRating)
		rate.POST("/", limit, h.Rate)
		rate.DELETE("/", h.Unrate)

		recipe.GET("/ratings/", middleware.OptionalAuth(validator), h.ListRatings)
	}
}

func (h *RatingHandler) Rate(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.RateRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.ratingService.Rate(c.Request.Context(), userID, recipeID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	status, msg := http.StatusOK, "Rating updated successfully!"
	if result.Created {
		status, msg = http.StatusCreated, "Rating submitted successfully!"
	}
	c.JSON(status, gin.H{
		"message":               msg,
		"rating":                result.Rating,
		"recipe_average_rating": result.RecipeAverageRating,
		"recipe_ratings_count":  result.RecipeRatingsCount,
	})
}

func (h *RatingHandler) MyRating(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	rating, err := h.ratingService.MyRating(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

func (h *RatingHandler) Unrate(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	avg, err := h.ratingService.Unrate(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":               "Rating deleted successfully!",
		"recipe_average_rating": avg,
	})
}

func (h *RatingHandler) ListRatings(c *gin.Context) {
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, ok := pageRequest(c)
	if !ok {
		return
	}

	result, err := h.ratingService.ListRatings(c.Request.Context(), middleware.Viewer(c), recipeID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, result)
}
