package types

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=150,username"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
	Bio       string `json:"bio"`
}

// LoginRequest accepts either a username or an email as the identifier
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// Identifier returns whichever of username or email was supplied
func (r *LoginRequest) Identifier() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type UpdateProfileRequest struct {
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture" binding:"omitempty,max=500,url"`
}

// RecipeRequest carries create, PUT and PATCH bodies. Nil fields were not sent.
type RecipeRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Ingredients     *string `json:"ingredients"`
	Instructions    *string `json:"instructions"`
	CuisineType     *string `json:"cuisine_type"`
	MealType        *string `json:"meal_type"`
	DietaryTags     *string `json:"dietary_tags"`
	PrepTime        *int    `json:"prep_time"`
	CookTime        *int    `json:"cook_time"`
	Servings        *int    `json:"servings"`
	DifficultyLevel *string `json:"difficulty_level"`
	Image           *string `json:"image" binding:"omitempty,max=500"`
}

// RecipeFilter holds the recipe list query string
type RecipeFilter struct {
	Cuisine       string `form:"cuisine"`
	Meal          string `form:"meal"`
	Dietary       string `form:"dietary"`
	Difficulty    string `form:"difficulty"`
	Author        string `form:"author"`
	TitleContains string `form:"title_contains"`
	Search        string `form:"search"`
	Ordering      string `form:"ordering"`
	PrepTimeMin   *int   `form:"prep_time_min"`
	PrepTimeMax   *int   `form:"prep_time_max"`
	CookTimeMin   *int   `form:"cook_time_min"`
	CookTimeMax   *int   `form:"cook_time_max"`
	ServingsMin   *int   `form:"servings_min"`
	ServingsMax   *int   `form:"servings_max"`
}

type RateRequest struct {
	Score  *int   `json:"score" binding:"required"`
	Review string `json:"review"`
}

type CommentRequest struct {
	Text *string `json:"text"`
}
