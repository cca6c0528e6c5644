package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/forkful/backend/internal/models"
	"github.com/pageza/forkful/backend/internal/types"
)

// paginate counts q, then loads the requested page of it into dest.
// q must already be a fresh session. Preloads are applied to the page query only.
func paginate[T any](q *gorm.DB, page types.PageRequest, order string, dest *[]T, preloads ...string) (*types.Page[T], error) {
	page = page.Normalize()

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count: %w", err)
	}
	if page.Page > 1 && int64(page.Offset()) >= count {
		return nil, notFound("Invalid page.")
	}

	if order != "" {
		q = q.Order(order)
	}
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Offset(page.Offset()).Limit(page.PageSize).Find(dest).Error; err != nil {
		return nil, fmt.Errorf("failed to list: %w", err)
	}

	return &types.Page[T]{Count: count, Request: page}, nil
}

type idCount struct {
	RefID uuid.UUID
	Total int64
}

// countBy returns COUNT(*) grouped by column for the given ids
func countBy(db *gorm.DB, table, column string, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []idCount
	err := db.Table(table).
		Select(column+" AS ref_id, COUNT(*) AS total").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", table, err)
	}
	for _, r := range rows {
		out[r.RefID] = r.Total
	}
	return out, nil
}

func countRows(db *gorm.DB, model interface{}, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// ratingStats aggregates scores for each recipe id
func ratingStats(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.RatingStats, error) {
	out := make(map[uuid.UUID]models.RatingStats, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.RatingStats
	err := db.Model(&models.Rating{}).
		Select("recipe_id, COALESCE(SUM(score), 0) AS sum, COUNT(*) AS count").
		Where("recipe_id IN ?", ids).
		Group("recipe_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	for _, r := range rows {
		out[r.RecipeID] = r
	}
	return out, nil
}

func findUserByName(ctx context.Context, db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User not found.")
		}
		return nil, err
	}
	return &user, nil
}

func findRecipe(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.WithContext(ctx).Preload("Author").First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Recipe not found.")
		}
		return nil, err
	}
	return &recipe, nil
}

// buildProfile serializes user as seen by viewer
func buildProfile(db *gorm.DB, viewer *uuid.UUID, user *models.User) (*types.UserProfile, error) {
	followers, err := countRows(db, &models.Follow{}, "followee_id = ?", user.ID)
	if err != nil {
		return nil, err
	}
	following, err := countRows(db, &models.Follow{}, "follower_id = ?", user.ID)
	if err != nil {
		return nil, err
	}
	isFollowing := false
	if viewer != nil && *viewer != user.ID {
		n, err := countRows(db, &models.Follow{}, "follower_id = ? AND followee_id = ?", *viewer, user.ID)
		if err != nil {
			return nil, err
		}
		isFollowing = n > 0
	}

	return &types.UserProfile{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Bio:            user.Bio,
		ProfilePicture: optional(user.ProfilePicture),
		FollowersCount: followers,
		FollowingCount: following,
		IsFollowing:    isFollowing,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
