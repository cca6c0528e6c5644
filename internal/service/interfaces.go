package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/forkful/backend/internal/models"
	"github.com/pageza/forkful/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, identifier, password string) (*types.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// IProfileService defines the interface for user profile and follow operations
type IProfileService interface {
	GetProfile(ctx context.Context, viewer *uuid.UUID, username string) (*types.UserProfile, error)
	GetOwnProfile(ctx context.Context, actorID uuid.UUID) (*types.UserProfile, error)
	UpdateProfile(ctx context.Context, actorID uuid.UUID, username string, req *types.UpdateProfileRequest) (*types.UserProfile, error)
	UpdateOwnProfile(ctx context.Context, actorID uuid.UUID, req *types.UpdateProfileRequest) (*types.UserProfile, error)
	UploadPicture(ctx context.Context, actorID uuid.UUID, upload *Upload) (*types.UserProfile, error)
	DeleteAccount(ctx context.Context, actorID uuid.UUID) error
	ToggleFollow(ctx context.Context, actorID uuid.UUID, username string) (*types.FollowResult, error)
	Followers(ctx context.Context, viewer *uuid.UUID, username string, page types.PageRequest) (*types.Page[types.FollowEntry], error)
	Following(ctx context.Context, viewer *uuid.UUID, username string, page types.PageRequest) (*types.Page[types.FollowEntry], error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	List(ctx context.Context, f *types.RecipeFilter, page types.PageRequest) (*types.Page[types.RecipeListItem], error)
	MyRecipes(ctx context.Context, actorID uuid.UUID, page types.PageRequest) (*types.Page[types.RecipeListItem], error)
	SavedRecipes(ctx context.Context, actorID uuid.UUID, page types.PageRequest) (*types.Page[types.RecipeListItem], error)
	Create(ctx context.Context, actorID uuid.UUID, req *types.RecipeRequest) (*types.RecipeDetail, error)
	Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.RecipeDetail, error)
	Update(ctx context.Context, actorID, id uuid.UUID, req *types.RecipeRequest, partial bool) (*types.RecipeDetail, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) (string, error)
	ToggleSave(ctx context.Context, actorID, id uuid.UUID) (*types.SaveResult, error)
	UploadImage(ctx context.Context, actorID, id uuid.UUID, upload *Upload) (*types.RecipeDetail, error)
	Choices() types.RecipeChoices
}

// IRatingService defines the interface for rating operations
type IRatingService interface {
	Rate(ctx context.Context, actorID, recipeID uuid.UUID, req *types.RateRequest) (*types.RateResult, error)
	MyRating(ctx context.Context, actorID, recipeID uuid.UUID) (*types.RatingResponse, error)
	Unrate(ctx context.Context, actorID, recipeID uuid.UUID) (float64, error)
	ListRatings(ctx context.Context, viewer *uuid.UUID, recipeID uuid.UUID, page types.PageRequest) (*types.Page[types.RatingResponse], error)
}

// ICommentService defines the interface for comment operations
type ICommentService interface {
	List(ctx context.Context, viewer *uuid.UUID, recipeID uuid.UUID, page types.PageRequest) (*types.Page[types.CommentResponse], error)
	Create(ctx context.Context, actorID, recipeID uuid.UUID, req *types.CommentRequest) (*types.CommentResponse, error)
	Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.CommentResponse, error)
	Update(ctx context.Context, actorID, id uuid.UUID, req *types.CommentRequest, partial bool) (*types.CommentResponse, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
}

var (
	_ IAuthService    = (*AuthService)(nil)
	_ IProfileService = (*ProfileService)(nil)
	_ IRecipeService  = (*RecipeService)(nil)
	_ IRatingService  = (*RatingService)(nil)
	_ ICommentService = (*CommentService)(nil)
)
