package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/forkful/backend/internal/metrics"
	"github.com/pageza/forkful/backend/internal/models"
	"github.com/pageza/forkful/backend/internal/types"
)

const minCommentLength = 2

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// List returns a page of a recipe's comments, newest first
func (s *CommentService) List(ctx context.Context, viewer *uuid.UUID, recipeID uuid.UUID, page types.PageRequest) (*types.Page[types.CommentResponse], error) {
	recipe, err := findRecipe(ctx, s.db, recipeID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	q := db.Model(&models.Comment{}).Where("recipe_id = ?", recipe.ID).Session(&gorm.Session{})

	var comments []models.Comment
	result, err := paginate(q, page, "created_at DESC", &comments, "User")
	if err != nil {
		return nil, err
	}

	out := &types.Page[types.CommentResponse]{Count: result.Count, Request: result.Request}
	out.Results = make([]types.CommentResponse, 0, len(comments))
	for i := range comments {
		comments[i].Recipe = *recipe
		c, err := commentResponse(db, viewer, &comments[i])
		if err != nil {
			return nil, err
		}
		out.Results = append(out.Results, *c)
	}
	return out, nil
}

// Create adds a comment by the actor to a recipe
func (s *CommentService) Create(ctx context.Context, actorID, recipeID uuid.UUID, req *types.CommentRequest) (*types.CommentResponse, error) {
	recipe, err := findRecipe(ctx, s.db, recipeID)
	if err != nil {
		return nil, err
	}
	text, err := commentText(req, false)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	comment := &models.Comment{UserID: actorID, RecipeID: recipe.ID, Text: text}
	if err := db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	metrics.CommentsCreated.Inc()

	return s.load(db, &actorID, comment.ID)
}

// Get returns a single comment
func (s *CommentService) Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.CommentResponse, error) {
	return s.load(s.db.WithContext(ctx), viewer, id)
}

// Update edits the text of the actor's own comment
func (s *CommentService) Update(ctx context.Context, actorID, id uuid.UUID, req *types.CommentRequest, partial bool) (*types.CommentResponse, error) {
	db := s.db.WithContext(ctx)
	comment, err := s.owned(db, actorID, id)
	if err != nil {
		return nil, err
	}

	if req.Text != nil || !partial {
		text, err := commentText(req, partial)
		if err != nil {
			return nil, err
		}
		if err := db.Model(comment).Update("text", text).Error; err != nil {
			return nil, fmt.Errorf("failed to update comment: %w", err)
		}
	}
	return s.load(db, &actorID, comment.ID)
}

// Delete removes the actor's own comment
func (s *CommentService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	db := s.db.WithContext(ctx)
	comment, err := s.owned(db, actorID, id)
	if err != nil {
		return err
	}
	if err := db.Delete(comment).Error; err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

func (s *CommentService) owned(db *gorm.DB, actorID, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := db.First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Comment not found.")
		}
		return nil, err
	}
	if comment.UserID != actorID {
		return nil, forbidden("You can only edit/delete your own comments.")
	}
	return &comment, nil
}

func (s *CommentService) load(db *gorm.DB, viewer *uuid.UUID, id uuid.UUID) (*types.CommentResponse, error) {
	var comment models.Comment
	if err := db.Preload("User").Preload("Recipe").First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Comment not found.")
		}
		return nil, err
	}
	return commentResponse(db, viewer, &comment)
}

func commentResponse(db *gorm.DB, viewer *uuid.UUID, c *models.Comment) (*types.CommentResponse, error) {
	user, err := buildProfile(db, viewer, &c.User)
	if err != nil {
		return nil, err
	}
	return &types.CommentResponse{
		ID:          c.ID,
		User:        *user,
		Recipe:      c.RecipeID,
		RecipeTitle: c.Recipe.Title,
		Text:        c.Text,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}

// commentText trims and checks the submitted text
func commentText(req *types.CommentRequest, partial bool) (string, error) {
	if req.Text == nil {
		if partial {
			return "", nil
		}
		return "", fieldError("text", "This field is required.")
	}
	text := strings.TrimSpace(*req.Text)
	if utf8.RuneCountInString(text) < minCommentLength {
		return "", fieldError("text", "Comment must be at least 2 characters long.")
	}
	return text, nil
}
