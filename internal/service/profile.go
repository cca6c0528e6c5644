package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/forkful/backend/internal/logging"
	"github.com/pageza/forkful/backend/internal/metrics"
	"github.com/pageza/forkful/backend/internal/models"
	"github.com/pageza/forkful/backend/internal/types"
	"github.com/pageza/forkful/backend/internal/validation"
)

type ProfileService struct {
	db    *gorm.DB
	store ObjectStore
}

func NewProfileService(db *gorm.DB, store ObjectStore) *ProfileService {
	return &ProfileService{db: db, store: store}
}

// GetProfile returns the profile of username as seen by viewer (nil when anonymous)
func (s *ProfileService) GetProfile(ctx context.Context, viewer *uuid.UUID, username string) (*types.UserProfile, error) {
	user, err := findUserByName(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	return buildProfile(s.db.WithContext(ctx), viewer, user)
}

// GetOwnProfile returns the actor's own profile
func (s *ProfileService) GetOwnProfile(ctx context.Context, actorID uuid.UUID) (*types.UserProfile, error) {
	user, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return buildProfile(s.db.WithContext(ctx), &actorID, user)
}

// UpdateProfile changes bio and profile picture of username; only the owner may do so
func (s *ProfileService) UpdateProfile(ctx context.Context, actorID uuid.UUID, username string, req *types.UpdateProfileRequest) (*types.UserProfile, error) {
	user, err := findUserByName(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	if user.ID != actorID {
		return nil, forbidden("You can only edit your own profile.")
	}
	return s.applyUpdate(ctx, user, req)
}

// UpdateOwnProfile is UpdateProfile for the actor's own account
func (s *ProfileService) UpdateOwnProfile(ctx context.Context, actorID uuid.UUID, req *types.UpdateProfileRequest) (*types.UserProfile, error) {
	user, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, user, req)
}

func (s *ProfileService) applyUpdate(ctx context.Context, user *models.User, req *types.UpdateProfileRequest) (*types.UserProfile, error) {
	updates := map[string]interface{}{}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.ProfilePicture != nil {
		pic := strings.TrimSpace(*req.ProfilePicture)
		if pic != "" {
			if err := validation.Var(pic, "max=500,url"); err != nil {
				return nil, fieldError("profile_picture", "Enter a valid URL.")
			}
		}
		updates["profile_picture"] = pic
	}

	db := s.db.WithContext(ctx)
	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}
	return buildProfile(db, &user.ID, user)
}

// UploadPicture stores an image and points the actor's profile_picture at it
func (s *ProfileService) UploadPicture(ctx context.Context, actorID uuid.UUID, upload *Upload) (*types.UserProfile, error) {
	if err := validateUpload("profile_picture", upload); err != nil {
		return nil, err
	}
	user, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	url, err := storeImage(ctx, s.store, "profile_pictures", user.ID, upload)
	metrics.RecordImageUpload("profile", err)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(user).Update("profile_picture", url).Error; err != nil {
		return nil, fmt.Errorf("failed to save profile picture: %w", err)
	}
	return buildProfile(db, &user.ID, user)
}

// DeleteAccount removes the actor and everything they own
func (s *ProfileService) DeleteAccount(ctx context.Context, actorID uuid.UUID) error {
	user, err := s.loadUser(ctx, actorID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Recipe{}).Select("id").Where("author_id = ?", user.ID)

		steps := []struct {
			model interface{}
			query string
			args  []interface{}
		}{
			{&models.Rating{}, "user_id = ? OR recipe_id IN (?)", []interface{}{user.ID, owned}},
			{&models.Comment{}, "user_id = ? OR recipe_id IN (?)", []interface{}{user.ID, owned}},
			{&models.SavedRecipe{}, "user_id = ? OR recipe_id IN (?)", []interface{}{user.ID, owned}},
			{&models.Follow{}, "follower_id = ? OR followee_id = ?", []interface{}{user.ID, user.ID}},
			{&models.Recipe{}, "author_id = ?", []interface{}{user.ID}},
		}
		for _, step := range steps {
			if err := tx.Where(step.query, step.args...).Delete(step.model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	logging.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("account deleted")
	return nil
}

// ToggleFollow follows username if the actor does not already, otherwise unfollows
func (s *ProfileService) ToggleFollow(ctx context.Context, actorID uuid.UUID, username string) (*types.FollowResult, error) {
	target, err := findUserByName(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	if target.ID == actorID {
		return nil, requestError("You cannot follow yourself.")
	}

	var following bool
	db := s.db.WithContext(ctx)
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND followee_id = ?", actorID, target.ID).Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			following = false
			return nil
		}

		follow := &models.Follow{FollowerID: actorID, FolloweeID: target.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(follow).Error; err != nil {
			return err
		}
		following = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle follow: %w", err)
	}
	metrics.RecordFollow(following)

	followers, err := countRows(db, &models.Follow{}, "followee_id = ?", target.ID)
	if err != nil {
		return nil, err
	}
	return &types.FollowResult{IsFollowing: following, FollowersCount: followers}, nil
}

// Followers lists the users following username
func (s *ProfileService) Followers(ctx context.Context, viewer *uuid.UUID, username string, page types.PageRequest) (*types.Page[types.FollowEntry], error) {
	return s.followList(ctx, viewer, username, page, "follows.follower_id", "follows.followee_id")
}

// Following lists the users username follows
func (s *ProfileService) Following(ctx context.Context, viewer *uuid.UUID, username string, page types.PageRequest) (*types.Page[types.FollowEntry], error) {
	return s.followList(ctx, viewer, username, page, "follows.followee_id", "follows.follower_id")
}

func (s *ProfileService) followList(ctx context.Context, viewer *uuid.UUID, username string, page types.PageRequest, joinCol, targetCol string) (*types.Page[types.FollowEntry], error) {
	target, err := findUserByName(ctx, s.db, username)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	q := db.Model(&models.User{}).
		Joins("JOIN follows ON "+joinCol+" = users.id").
		Where(targetCol+" = ?", target.ID).
		Session(&gorm.Session{})

	var users []models.User
	result, err := paginate(q, page, "follows.created_at DESC", &users)
	if err != nil {
		return nil, err
	}

	entries, err := s.followEntries(db, viewer, users)
	if err != nil {
		return nil, err
	}
	return &types.Page[types.FollowEntry]{Count: result.Count, Request: result.Request, Results: entries}, nil
}

func (s *ProfileService) followEntries(db *gorm.DB, viewer *uuid.UUID, users []models.User) ([]types.FollowEntry, error) {
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	recipes, err := countBy(db, "recipes", "author_id", ids)
	if err != nil {
		return nil, err
	}
	followers, err := countBy(db, "follows", "followee_id", ids)
	if err != nil {
		return nil, err
	}
	following, err := countBy(db, "follows", "follower_id", ids)
	if err != nil {
		return nil, err
	}

	followed := map[uuid.UUID]bool{}
	if viewer != nil && len(ids) > 0 {
		var rows []uuid.UUID
		err := db.Model(&models.Follow{}).
			Where("follower_id = ? AND followee_id IN ?", *viewer, ids).
			Pluck("followee_id", &rows).Error
		if err != nil {
			return nil, err
		}
		for _, id := range rows {
			followed[id] = true
		}
	}

	entries := make([]types.FollowEntry, len(users))
	for i, u := range users {
		entries[i] = types.FollowEntry{
			ID:             u.ID,
			Username:       u.Username,
			Bio:            u.Bio,
			ProfilePicture: optional(u.ProfilePicture),
			RecipesCount:   recipes[u.ID],
			FollowersCount: followers[u.ID],
			FollowingCount: following[u.ID],
			IsFollowing:    followed[u.ID],
		}
	}
	return entries, nil
}

func (s *ProfileService) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User not found.")
		}
		return nil, err
	}
	return &user, nil
}
