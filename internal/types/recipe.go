package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageza/forkful/backend/internal/models"
)

type RecipeDetail struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Author          UserProfile `json:"author"`
	AuthorUsername  string      `json:"author_username"`
	Ingredients     string      `json:"ingredients"`
	Instructions    string      `json:"instructions"`
	CuisineType     string      `json:"cuisine_type"`
	MealType        string      `json:"meal_type"`
	DietaryTags     string      `json:"dietary_tags"`
	PrepTime        *int        `json:"prep_time"`
	CookTime        *int        `json:"cook_time"`
	TotalTime       int         `json:"total_time"`
	Servings        int         `json:"servings"`
	DifficultyLevel string      `json:"difficulty_level"`
	Image           *string     `json:"image"`
	AverageRating   float64     `json:"average_rating"`
	RatingsCount    int64       `json:"ratings_count"`
	CommentsCount   int64       `json:"comments_count"`
	SavesCount      int64       `json:"saves_count"`
	ViewsCount      int         `json:"views_count"`
	IsSaved         bool        `json:"is_saved"`
	UserRating      *int        `json:"user_rating"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type RecipeListItem struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	AuthorUsername  string    `json:"author_username"`
	CuisineType     string    `json:"cuisine_type"`
	MealType        string    `json:"meal_type"`
	DifficultyLevel string    `json:"difficulty_level"`
	Image           *string   `json:"image"`
	AverageRating   float64   `json:"average_rating"`
	TotalTime       int       `json:"total_time"`
	Servings        int       `json:"servings"`
	CreatedAt       time.Time `json:"created_at"`
}

type RecipeChoices struct {
	CuisineTypes     []models.Choice `json:"cuisine_types"`
	MealTypes        []models.Choice `json:"meal_types"`
	DietaryTags      []models.Choice `json:"dietary_tags"`
	DifficultyLevels []models.Choice `json:"difficulty_levels"`
}

type SaveResult struct {
	IsSaved    bool  `json:"is_saved"`
	SavesCount int64 `json:"saves_count"`
}

type RatingResponse struct {
	ID          uuid.UUID   `json:"id"`
	User        UserProfile `json:"user"`
	Recipe      uuid.UUID   `json:"recipe"`
	RecipeTitle string      `json:"recipe_title"`
	Score       int         `json:"score"`
	Review      string      `json:"review"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// RateResult reports whether the rating was created or updated and the new mean
type RateResult struct {
	Created             bool           `json:"-"`
	Rating              RatingResponse `json:"rating"`
	RecipeAverageRating float64        `json:"recipe_average_rating"`
	RecipeRatingsCount  int64          `json:"recipe_ratings_count"`
}

type CommentResponse struct {
	ID          uuid.UUID   `json:"id"`
	User        UserProfile `json:"user"`
	Recipe      uuid.UUID   `json:"recipe"`
	RecipeTitle string      `json:"recipe_title"`
	Text        string      `json:"text"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
