package testhelpers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/forkful/backend/internal/models"
)

// TestPassword is the plain-text password of every user made by CreateUser.
const TestPassword = "testpassword123"

var testPasswordHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// CreateUser inserts a user with the given username and TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: testPasswordHash,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// RecipeOption adjusts a recipe before CreateRecipe inserts it.
type RecipeOption func(*models.Recipe)

func WithCuisine(c string) RecipeOption { return func(r *models.Recipe) { r.CuisineType = c } }
func WithPrepTime(m int) RecipeOption  { return func(r *models.Recipe) { r.PrepTime = &m } }
func WithCookTime(m int) RecipeOption  { return func(r *models.Recipe) { r.CookTime = &m } }
func WithTitle(s string) RecipeOption  { return func(r *models.Recipe) { r.Title = s } }
func WithServings(n int) RecipeOption  { return func(r *models.Recipe) { r.Servings = n } }

// CreateRecipe inserts a valid recipe authored by authorID.
func CreateRecipe(t *testing.T, db *gorm.DB, authorID uuid.UUID, opts ...RecipeOption) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		Title:           "Weeknight Pasta",
		Description:     "A quick tomato pasta",
		Ingredients:     "pasta\ntomatoes\ngarlic",
		Instructions:    "Boil pasta. Make sauce. Combine.",
		CuisineType:     models.DefaultCuisine,
		MealType:        models.DefaultMealType,
		DietaryTags:     models.DefaultDietary,
		DifficultyLevel: models.DefaultDifficulty,
		Servings:        2,
		AuthorID:        authorID,
	}
	for _, opt := range opts {
		opt(recipe)
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}
