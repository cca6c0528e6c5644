package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/forkful/backend/internal/metrics"
	"github.com/pageza/forkful/backend/internal/models"
	"github.com/pageza/forkful/backend/internal/types"
)

const notRatedMessage = "You haven't rated this recipe."

type RatingService struct {
	db *gorm.DB
}

func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// Rate creates the actor's rating of a recipe or updates it in place.
// The insert relies on idx_rating_user_recipe: a conflicting row means the rating exists.
func (s *RatingService) Rate(ctx context.Context, actorID, recipeID uuid.UUID, req *types.RateRequest) (*types.RateResult, error) {
	recipe, err := findRecipe(ctx, s.db, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID == actorID {
		return nil, requestError("You cannot rate your own recipe.")
	}
	if req.Score == nil {
		return nil, fieldError("score", "This field is required.")
	}
	score := *req.Score
	if score < models.MinScore || score > models.MaxScore {
		return nil, fieldError("score", "Rating must be between 1 and 5.")
	}

	var created bool
	db := s.db.WithContext(ctx)
	err = db.Transaction(func(tx *gorm.DB) error {
		rating := &models.Rating{
			UserID:   actorID,
			RecipeID: recipe.ID,
			Score:    score,
			Review:   req.Review,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
			DoNothing: true,
		}).Create(rating)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			created = true
			return nil
		}

		return tx.Model(&models.Rating{}).
			Where("user_id = ? AND recipe_id = ?", actorID, recipe.ID).
			Updates(map[string]interface{}{
				"score":      score,
				"review":     req.Review,
				"updated_at": time.Now(),
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}
	metrics.RecordRating(created)

	rating, err := s.load(db, actorID, recipe)
	if err != nil {
		return nil, err
	}
	stats, err := ratingStats(db, []uuid.UUID{recipe.ID})
	if err != nil {
		return nil, err
	}

	return &types.RateResult{
		Created:             created,
		Rating:              *rating,
		RecipeAverageRating: stats[recipe.ID].Average(),
		RecipeRatingsCount:  stats[recipe.ID].Count,
	}, nil
}

// MyRating returns the actor's rating of a recipe
func (s *RatingService) MyRating(ctx context.Context, actorID, recipeID uuid.UUID) (*types.RatingResponse, error) {
	recipe, err := findRecipe(ctx, s.db, recipeID)
	if err != nil {
		return nil, err
	}
	return s.load(s.db.WithContext(ctx), actorID, recipe)
}

// Unrate deletes the actor's rating and returns the recipe's new average
func (s *RatingService) Unrate(ctx context.Context, actorID, recipeID uuid.UUID) (float64, error) {
	recipe, err := findRecipe(ctx, s.db, recipeID)
	if err != nil {
		return 0, err
	}

	db := s.db.WithContext(ctx)
	res := db.Where("user_id = ? AND recipe_id = ?", actorID, recipe.ID).Delete(&models.Rating{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete rating: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, notFound(notRatedMessage)
	}

	stats, err := ratingStats(db, []uuid.UUID{recipe.ID})
	if err != nil {
		return 0, err
	}
	return stats[recipe.ID].Average(), nil
}

// ListRatings returns a page of a recipe's ratings, newest first
func (s *RatingService) ListRatings(ctx context.Context, viewer *uuid.UUID, recipeID uuid.UUID, page types.PageRequest) (*types.Page[types.RatingResponse], error) {
	recipe, err := findRecipe(ctx, s.db, recipeID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	q := db.Model(&models.Rating{}).Where("recipe_id = ?", recipe.ID).Session(&gorm.Session{})

	var ratings []models.Rating
	result, err := paginate(q, page, "created_at DESC", &ratings, "User")
	if err != nil {
		return nil, err
	}

	out := &types.Page[types.RatingResponse]{Count: result.Count, Request: result.Request}
	out.Results = make([]types.RatingResponse, 0, len(ratings))
	for i := range ratings {
		r, err := ratingResponse(db, viewer, &ratings[i], recipe)
		if err != nil {
			return nil, err
		}
		out.Results = append(out.Results, *r)
	}
	return out, nil
}

func (s *RatingService) load(db *gorm.DB, actorID uuid.UUID, recipe *models.Recipe) (*types.RatingResponse, error) {
	var rating models.Rating
	err := db.Preload("User").Where("user_id = ? AND recipe_id = ?", actorID, recipe.ID).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(notRatedMessage)
		}
		return nil, err
	}
	return ratingResponse(db, &actorID, &rating, recipe)
}

func ratingResponse(db *gorm.DB, viewer *uuid.UUID, rating *models.Rating, recipe *models.Recipe) (*types.RatingResponse, error) {
	user, err := buildProfile(db, viewer, &rating.User)
	if err != nil {
		return nil, err
	}
	return &types.RatingResponse{
		ID:          rating.ID,
		User:        *user,
		Recipe:      recipe.ID,
		RecipeTitle: recipe.Title,
		Score:       rating.Score,
		Review:      rating.Review,
		CreatedAt:   rating.CreatedAt,
		UpdatedAt:   rating.UpdatedAt,
	}, nil
}
