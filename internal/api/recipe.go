package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/forkful/backend/internal/middleware"
	"github.com/pageza/forkful/backend/internal/service"
	"github.com/pageza/forkful/backend/internal/types"
	"github.com/pageza/forkful/backend/internal/validation"
)

type RecipeHandler struct {
	recipeService service.IRecipeService
}

func NewRecipeHandler(recipeService service.IRecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

// RecipeLimits are the rate limiters applied to recipe writes
type RecipeLimits struct {
	Create      gin.HandlerFunc
	Interaction gin.HandlerFunc
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, validator middleware.TokenValidator, limits RecipeLimits) {
	recipes := router.Group("/recipes", middleware.AnonymousReads(validator))
	{
		recipes.GET("/", h.ListRecipes)
		recipes.POST("/", limits.Create, h.CreateRecipe)
		recipes.GET("/choices/", h.Choices)
		recipes.GET("/my-recipes/", middleware.RequireAuth(validator), h.MyRecipes)
		recipes.GET("/saved-recipes/", middleware.RequireAuth(validator), h.SavedRecipes)

		recipes.GET("/:id/", h.GetRecipe)
		recipes.PUT("/:id/", h.UpdateRecipe)
		recipes.PATCH("/:id/", h.PatchRecipe)
		recipes.DELETE("/:id/", h.DeleteRecipe)
		recipes.POST("/:id/image/", h.UploadImage)
		recipes.POST("/:id/save/", limits.Interaction, h.ToggleSave)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var filter types.RecipeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, &service.ValidationError{Fields: validation.FieldErrors(err)})
		return
	}
	page, ok := pageRequest(c)
	if !ok {
		return
	}

	result, err := h.recipeService.List(c.Request.Context(), &filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, result)
}

func (h *RecipeHandler) MyRecipes(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	page, ok := pageRequest(c)
	if !ok {
		return
	}

	result, err := h.recipeService.MyRecipes(c.Request.Context(), userID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, result)
}

func (h *RecipeHandler) SavedRecipes(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	page, ok := pageRequest(c)
	if !ok {
		return
	}

	result, err := h.recipeService.SavedRecipes(c.Request.Context(), userID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, result)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Recipe created successfully!",
		"recipe":  recipe,
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), middleware.Viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	h.update(c, false)
}

func (h *RecipeHandler) PatchRecipe(c *gin.Context) {
	h.update(c, true)
}

func (h *RecipeHandler) update(c *gin.Context, partial bool) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), userID, id, &req, partial)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe updated successfully!",
		"recipe":  recipe,
	})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	title, err := h.recipeService.Delete(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Recipe '%s' deleted successfully!", title),
	})
}

func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	upload, done, err := formUpload(c, "image")
	if err != nil {
		respondError(c, &service.ValidationError{Message: "Upload a valid image.", Fields: map[string][]string{"image": {err.Error()}}})
		return
	}
	defer done()

	recipe, err := h.recipeService.UploadImage(c.Request.Context(), userID, id, upload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Image uploaded successfully!",
		"recipe":  recipe,
	})
}

func (h *RecipeHandler) ToggleSave(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.recipeService.ToggleSave(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	msg := "Recipe removed from saved recipes."
	if result.IsSaved {
		msg = "Recipe saved successfully!"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     msg,
		"is_saved":    result.IsSaved,
		"saves_count": result.SavesCount,
	})
}

func (h *RecipeHandler) Choices(c *gin.Context) {
	c.JSON(http.StatusOK, h.recipeService.Choices())
}
