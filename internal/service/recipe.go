package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/forkful/backend/internal/logging"
	"github.com/pageza/forkful/backend/internal/metrics"
	"github.com/pageza/forkful/backend/internal/models"
	"github.com/pageza/forkful/backend/internal/types"
)

const (
	minTitleLength = 5
	maxTitleLength = 200
	defaultOrder   = "recipes.created_at DESC"
)

// orderable maps ordering query values to columns
var orderable = map[string]string{
	"created_at": "recipes.created_at",
	"title":      "recipes.title",
	"prep_time":  "recipes.prep_time",
	"cook_time":  "recipes.cook_time",
}

// recipeColumns are written by create and update
var recipeColumns = []string{
	"title", "description", "ingredients", "instructions", "cuisine_type", "meal_type",
	"dietary_tags", "prep_time", "cook_time", "servings", "difficulty_level", "image", "updated_at",
}

type RecipeService struct {
	db    *gorm.DB
	store ObjectStore
}

func NewRecipeService(db *gorm.DB, store ObjectStore) *RecipeService {
	return &RecipeService{db: db, store: store}
}

// List returns one page of recipes matching f
func (s *RecipeService) List(ctx context.Context, f *types.RecipeFilter, page types.PageRequest) (*types.Page[types.RecipeListItem], error) {
	db := s.db.WithContext(ctx)
	q := applyFilter(db.Model(&models.Recipe{}), db, f).Session(&gorm.Session{})

	var recipes []models.Recipe
	result, err := paginate(q, page, ParseOrdering(f.Ordering), &recipes)
	if err != nil {
		return nil, err
	}
	return s.listPage(db, result, recipes)
}

// MyRecipes lists the actor's own recipes, newest first
func (s *RecipeService) MyRecipes(ctx context.Context, actorID uuid.UUID, page types.PageRequest) (*types.Page[types.RecipeListItem], error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Recipe{}).Where("author_id = ?", actorID).Session(&gorm.Session{})

	var recipes []models.Recipe
	result, err := paginate(q, page, defaultOrder, &recipes)
	if err != nil {
		return nil, err
	}
	return s.listPage(db, result, recipes)
}

// SavedRecipes lists the recipes the actor saved, most recently saved first
func (s *RecipeService) SavedRecipes(ctx context.Context, actorID uuid.UUID, page types.PageRequest) (*types.Page[types.RecipeListItem], error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Recipe{}).
		Joins("JOIN saved_recipes ON saved_recipes.recipe_id = recipes.id").
		Where("saved_recipes.user_id = ?", actorID).
		Session(&gorm.Session{})

	var recipes []models.Recipe
	result, err := paginate(q, page, "saved_recipes.created_at DESC", &recipes)
	if err != nil {
		return nil, err
	}
	return s.listPage(db, result, recipes)
}

// Create validates req and stores a recipe authored by the actor
func (s *RecipeService) Create(ctx context.Context, actorID uuid.UUID, req *types.RecipeRequest) (*types.RecipeDetail, error) {
	recipe := &models.Recipe{
		CuisineType:     models.DefaultCuisine,
		MealType:        models.DefaultMealType,
		DietaryTags:     models.DefaultDietary,
		DifficultyLevel: models.DefaultDifficulty,
		Servings:        1,
		AuthorID:        actorID,
	}
	if err := applyRecipe(recipe, req, false); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := db.Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	metrics.RecipesCreated.Inc()
	logging.Ctx(ctx).Info().
		Str("recipe_id", recipe.ID.String()).
		Str("author_id", actorID.String()).
		Msg("recipe created")

	return s.loadDetail(ctx, &actorID, recipe.ID)
}

// Get counts a view and returns the recipe as seen by viewer
func (s *RecipeService) Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.RecipeDetail, error) {
	res := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to count view: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("Recipe not found.")
	}
	metrics.RecipeViews.Inc()

	return s.loadDetail(ctx, viewer, id)
}

// Update changes a recipe; partial selects PATCH semantics
func (s *RecipeService) Update(ctx context.Context, actorID, id uuid.UUID, req *types.RecipeRequest, partial bool) (*types.RecipeDetail, error) {
	recipe, err := s.authored(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := applyRecipe(recipe, req, partial); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(recipe).Select(recipeColumns).Updates(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	return s.loadDetail(ctx, &actorID, recipe.ID)
}

// Delete removes a recipe with its ratings, comments and saves. It returns the title.
func (s *RecipeService) Delete(ctx context.Context, actorID, id uuid.UUID) (string, error) {
	recipe, err := s.authored(ctx, actorID, id)
	if err != nil {
		return "", err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Rating{}, &models.Comment{}, &models.SavedRecipe{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete recipe: %w", err)
	}

	logging.Ctx(ctx).Info().Str("recipe_id", recipe.ID.String()).Msg("recipe deleted")
	return recipe.Title, nil
}

// ToggleSave saves the recipe for the actor, or unsaves it when already saved
func (s *RecipeService) ToggleSave(ctx context.Context, actorID, id uuid.UUID) (*types.SaveResult, error) {
	db := s.db.WithContext(ctx)
	recipe, err := findRecipe(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	var saved bool
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND recipe_id = ?", actorID, recipe.ID).Delete(&models.SavedRecipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			saved = false
			return nil
		}

		row := &models.SavedRecipe{UserID: actorID, RecipeID: recipe.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
			return err
		}
		saved = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle save: %w", err)
	}
	metrics.RecordSave(saved)

	saves, err := countRows(db, &models.SavedRecipe{}, "recipe_id = ?", recipe.ID)
	if err != nil {
		return nil, err
	}
	return &types.SaveResult{IsSaved: saved, SavesCount: saves}, nil
}

// UploadImage stores an image for the recipe; author only
func (s *RecipeService) UploadImage(ctx context.Context, actorID, id uuid.UUID, upload *Upload) (*types.RecipeDetail, error) {
	recipe, err := s.authored(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := validateUpload("image", upload); err != nil {
		return nil, err
	}

	url, err := storeImage(ctx, s.store, "recipe_images", recipe.ID, upload)
	metrics.RecordImageUpload("recipe", err)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(recipe).Update("image", url).Error; err != nil {
		return nil, fmt.Errorf("failed to save recipe image: %w", err)
	}
	return s.loadDetail(ctx, &actorID, recipe.ID)
}

// Choices lists every enumeration with its display label
func (s *RecipeService) Choices() types.RecipeChoices {
	return types.RecipeChoices{
		CuisineTypes:     models.Choices(models.CuisineTypes),
		MealTypes:        models.Choices(models.MealTypes),
		DietaryTags:      models.Choices(models.DietaryTags),
		DifficultyLevels: models.Choices(models.DifficultyLevels),
	}
}

// authored loads a recipe the actor is allowed to modify
func (s *RecipeService) authored(ctx context.Context, actorID, id uuid.UUID) (*models.Recipe, error) {
	recipe, err := findRecipe(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, forbidden("You do not have permission to perform this action.")
	}
	return recipe, nil
}

func (s *RecipeService) loadDetail(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.RecipeDetail, error) {
	recipe, err := findRecipe(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return recipeDetail(s.db.WithContext(ctx), viewer, recipe)
}

func recipeDetail(db *gorm.DB, viewer *uuid.UUID, recipe *models.Recipe) (*types.RecipeDetail, error) {
	author, err := buildProfile(db, viewer, &recipe.Author)
	if err != nil {
		return nil, err
	}
	stats, err := ratingStats(db, []uuid.UUID{recipe.ID})
	if err != nil {
		return nil, err
	}
	comments, err := countRows(db, &models.Comment{}, "recipe_id = ?", recipe.ID)
	if err != nil {
		return nil, err
	}
	saves, err := countRows(db, &models.SavedRecipe{}, "recipe_id = ?", recipe.ID)
	if err != nil {
		return nil, err
	}

	var isSaved bool
	var userRating *int
	if viewer != nil {
		n, err := countRows(db, &models.SavedRecipe{}, "user_id = ? AND recipe_id = ?", *viewer, recipe.ID)
		if err != nil {
			return nil, err
		}
		isSaved = n > 0

		var scores []int
		if err := db.Model(&models.Rating{}).
			Where("user_id = ? AND recipe_id = ?", *viewer, recipe.ID).
			Limit(1).
			Pluck("score", &scores).Error; err != nil {
			return nil, err
		}
		if len(scores) > 0 {
			userRating = &scores[0]
		}
	}

	st := stats[recipe.ID]
	return &types.RecipeDetail{
		ID:              recipe.ID,
		Title:           recipe.Title,
		Description:     recipe.Description,
		Author:          *author,
		AuthorUsername:  recipe.Author.Username,
		Ingredients:     recipe.Ingredients,
		Instructions:    recipe.Instructions,
		CuisineType:     recipe.CuisineType,
		MealType:        recipe.MealType,
		DietaryTags:     recipe.DietaryTags,
		PrepTime:        recipe.PrepTime,
		CookTime:        recipe.CookTime,
		TotalTime:       recipe.TotalTime(),
		Servings:        recipe.Servings,
		DifficultyLevel: recipe.DifficultyLevel,
		Image:           optional(recipe.Image),
		AverageRating:   st.Average(),
		RatingsCount:    st.Count,
		CommentsCount:   comments,
		SavesCount:      saves,
		ViewsCount:      recipe.ViewsCount,
		IsSaved:         isSaved,
		UserRating:      userRating,
		CreatedAt:       recipe.CreatedAt,
		UpdatedAt:       recipe.UpdatedAt,
	}, nil
}

// listPage attaches author names and rating averages to a page of recipes
func (s *RecipeService) listPage(db *gorm.DB, result *types.Page[models.Recipe], recipes []models.Recipe) (*types.Page[types.RecipeListItem], error) {
	page := &types.Page[types.RecipeListItem]{Count: result.Count, Request: result.Request}
	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	seen := map[uuid.UUID]bool{}
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		if !seen[r.AuthorID] {
			seen[r.AuthorID] = true
			authorIDs = append(authorIDs, r.AuthorID)
		}
	}

	stats, err := ratingStats(db, recipeIDs)
	if err != nil {
		return nil, err
	}

	names := map[uuid.UUID]string{}
	if len(authorIDs) > 0 {
		var authors []models.User
		if err := db.Select("id", "username").Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
			return nil, fmt.Errorf("failed to load authors: %w", err)
		}
		for _, a := range authors {
			names[a.ID] = a.Username
		}
	}

	page.Results = make([]types.RecipeListItem, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		page.Results[i] = types.RecipeListItem{
			ID:              r.ID,
			Title:           r.Title,
			Description:     r.Description,
			AuthorUsername:  names[r.AuthorID],
			CuisineType:     r.CuisineType,
			MealType:        r.MealType,
			DifficultyLevel: r.DifficultyLevel,
			Image:           optional(r.Image),
			AverageRating:   stats[r.ID].Average(),
			TotalTime:       r.TotalTime(),
			Servings:        r.Servings,
			CreatedAt:       r.CreatedAt,
		}
	}
	return page, nil
}

// applyFilter narrows q by the list filters. Matching on choices and author is case-insensitive.
func applyFilter(q, db *gorm.DB, f *types.RecipeFilter) *gorm.DB {
	if f == nil {
		return q
	}

	exact := []struct{ column, value string }{
		{"cuisine_type", f.Cuisine},
		{"meal_type", f.Meal},
		{"dietary_tags", f.Dietary},
		{"difficulty_level", f.Difficulty},
	}
	for _, e := range exact {
		if v := strings.TrimSpace(e.value); v != "" {
			q = q.Where("LOWER(recipes."+e.column+") = ?", strings.ToLower(v))
		}
	}

	if author := strings.TrimSpace(f.Author); author != "" {
		authors := db.Model(&models.User{}).Select("id").Where("LOWER(username) = ?", strings.ToLower(author))
		q = q.Where("recipes.author_id IN (?)", authors)
	}

	ranges := []struct {
		column string
		op     string
		value  *int
	}{
		{"prep_time", ">=", f.PrepTimeMin},
		{"prep_time", "<=", f.PrepTimeMax},
		{"cook_time", ">=", f.CookTimeMin},
		{"cook_time", "<=", f.CookTimeMax},
		{"servings", ">=", f.ServingsMin},
		{"servings", "<=", f.ServingsMax},
	}
	for _, r := range ranges {
		if r.value != nil {
			q = q.Where("recipes."+r.column+" "+r.op+" ?", *r.value)
		}
	}

	if title := strings.TrimSpace(f.TitleContains); title != "" {
		q = q.Where(`LOWER(recipes.title) LIKE ? ESCAPE '\'`, likePattern(title))
	}

	// every search term must appear in at least one of the searched fields
	for _, term := range strings.FieldsFunc(f.Search, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' }) {
		like := likePattern(term)
		q = q.Where(`(LOWER(recipes.title) LIKE ? ESCAPE '\' OR LOWER(recipes.description) LIKE ? ESCAPE '\' OR LOWER(recipes.ingredients) LIKE ? ESCAPE '\')`, like, like, like)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern matches s as a literal, case-insensitive substring
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// ParseOrdering turns "-prep_time,title" into an ORDER BY list, ignoring unknown fields
func ParseOrdering(ordering string) string {
	var parts []string
	for _, field := range strings.Split(ordering, ",") {
		field = strings.TrimSpace(field)
		desc := strings.HasPrefix(field, "-")
		column, ok := orderable[strings.TrimPrefix(field, "-")]
		if !ok {
			continue
		}
		if desc {
			parts = append(parts, column+" DESC")
		} else {
			parts = append(parts, column+" ASC")
		}
	}
	if len(parts) == 0 {
		return defaultOrder
	}
	return strings.Join(parts, ", ")
}

// applyRecipe validates req and copies it onto recipe. Without partial, the
// text fields are required.
func applyRecipe(recipe *models.Recipe, req *types.RecipeRequest, partial bool) error {
	verr := &ValidationError{}
	require := func(field string, v *string) bool {
		if v == nil {
			if !partial {
				verr.Add(field, "This field is required.")
			}
			return false
		}
		return true
	}

	if require("title", req.Title) {
		title := *req.Title
		switch {
		case utf8.RuneCountInString(strings.TrimSpace(title)) < minTitleLength:
			verr.Add("title", "Title must be at least 5 characters long.")
		case utf8.RuneCountInString(title) > maxTitleLength:
			verr.Add("title", fmt.Sprintf("Ensure this field has no more than %d characters.", maxTitleLength))
		default:
			recipe.Title = title
		}
	}
	if require("description", req.Description) {
		if strings.TrimSpace(*req.Description) == "" {
			verr.Add("description", "This field may not be blank.")
		} else {
			recipe.Description = *req.Description
		}
	}
	if require("ingredients", req.Ingredients) {
		if strings.TrimSpace(*req.Ingredients) == "" {
			verr.Add("ingredients", "Ingredients cannot be empty.")
		} else {
			recipe.Ingredients = *req.Ingredients
		}
	}
	if require("instructions", req.Instructions) {
		if strings.TrimSpace(*req.Instructions) == "" {
			verr.Add("instructions", "Instructions cannot be empty.")
		} else {
			recipe.Instructions = *req.Instructions
		}
	}

	choice := func(field string, v *string, allowed []string, dst *string, blankOK bool) {
		if v == nil {
			return
		}
		if (*v == "" && blankOK) || models.IsChoice(allowed, *v) {
			*dst = *v
			return
		}
		verr.Add(field, fmt.Sprintf("\"%s\" is not a valid choice.", *v))
	}
	choice("cuisine_type", req.CuisineType, models.CuisineTypes, &recipe.CuisineType, false)
	choice("meal_type", req.MealType, models.MealTypes, &recipe.MealType, false)
	choice("dietary_tags", req.DietaryTags, models.DietaryTags, &recipe.DietaryTags, true)
	choice("difficulty_level", req.DifficultyLevel, models.DifficultyLevels, &recipe.DifficultyLevel, false)

	minutes := func(field, negative string, v *int, dst **int) {
		if v == nil {
			return
		}
		switch {
		case *v < 0:
			verr.Add(field, negative)
		case *v == 0:
			verr.Add(field, "Ensure this value is greater than or equal to 1.")
		default:
			m := *v
			*dst = &m
		}
	}
	minutes("prep_time", "Preparation time cannot be negative.", req.PrepTime, &recipe.PrepTime)
	minutes("cook_time", "Cooking time cannot be negative.", req.CookTime, &recipe.CookTime)

	if req.Servings != nil {
		if *req.Servings < 1 {
			verr.Add("servings", "Servings must be at least 1.")
		} else {
			recipe.Servings = *req.Servings
		}
	}
	if req.Image != nil {
		recipe.Image = strings.TrimSpace(*req.Image)
	}

	return verr.OrNil()
}
