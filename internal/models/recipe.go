package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recipe struct {
	ID              uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	Description     string    `gorm:"type:text;not null" json:"description"`
	Ingredients     string    `gorm:"type:text;not null" json:"ingredients"`
	Instructions    string    `gorm:"type:text;not null" json:"instructions"`
	CuisineType     string    `gorm:"size:50;not null;default:other;index" json:"cuisine_type"`
	MealType        string    `gorm:"size:50;not null;default:dinner;index" json:"meal_type"`
	DietaryTags     string    `gorm:"size:50;not null;default:none" json:"dietary_tags"`
	PrepTime        *int      `json:"prep_time"`
	CookTime        *int      `json:"cook_time"`
	Servings        int       `gorm:"not null;default:1" json:"servings"`
	DifficultyLevel string    `gorm:"size:20;not null;default:medium" json:"difficulty_level"`
	Image           string    `gorm:"size:500" json:"image"`
	ViewsCount      int       `gorm:"not null;default:0" json:"views_count"`
	AuthorID        uuid.UUID `gorm:"type:varchar(36);not null;index" json:"author_id"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TotalTime is prep plus cook time, counting a missing value as zero.
func (r *Recipe) TotalTime() int {
	total := 0
	if r.PrepTime != nil {
		total += *r.PrepTime
	}
	if r.CookTime != nil {
		total += *r.CookTime
	}
	return total
}

// SavedRecipe is the join row behind a user's saved recipes.
type SavedRecipe struct {
	UserID    uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);primaryKey;index" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SavedRecipe) TableName() string {
	return "saved_recipes"
}

// RatingStats holds the aggregate of a recipe's ratings.
type RatingStats struct {
	RecipeID uuid.UUID
	Sum      int64
	Count    int64
}

// Average is the mean score rounded to one decimal, or 0 with no ratings.
func (s RatingStats) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return math.Round(float64(s.Sum)/float64(s.Count)*10) / 10
}
