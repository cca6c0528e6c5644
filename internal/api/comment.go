package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/forkful/backend/internal/middleware"
	"github.com/pageza/forkful/backend/internal/service"
	"github.com/pageza/forkful/backend/internal/types"
)

type CommentHandler struct {
	commentService service.ICommentService
}

func NewCommentHandler(commentService service.ICommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup, validator middleware.TokenValidator, limit gin.HandlerFunc) {
	onRecipe := router.Group("/recipes/:id/comments", middleware.AnonymousReads(validator))
	{
		onRecipe.GET("/", h.ListComments)
		onRecipe.POST("/", limit, h.CreateComment)
	}

	comments := router.Group("/comments/:id", middleware.AnonymousReads(validator))
	{
		comments.GET("/", h.GetComment)
		comments.PUT("/", h.UpdateComment)
		comments.PATCH("/", h.PatchComment)
		comments.DELETE("/", h.DeleteComment)
	}
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, ok := pageRequest(c)
	if !ok {
		return
	}

	result, err := h.commentService.List(c.Request.Context(), middleware.Viewer(c), recipeID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, result)
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), userID, recipeID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment added successfully!",
		"comment": comment,
	})
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	comment, err := h.commentService.Get(c.Request.Context(), middleware.Viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	h.update(c, false)
}

func (h *CommentHandler) PatchComment(c *gin.Context) {
	h.update(c, true)
}

func (h *CommentHandler) update(c *gin.Context, partial bool) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), userID, id, &req, partial)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment updated successfully!",
		"comment": comment,
	})
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully!"})
}
