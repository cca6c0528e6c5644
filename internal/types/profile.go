package types

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the public view of a user, relative to the viewer
type UserProfile struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Bio            string    `json:"bio"`
	ProfilePicture *string   `json:"profile_picture"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	IsFollowing    bool      `json:"is_following"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FollowEntry is one row of a followers or following list
type FollowEntry struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Bio            string    `json:"bio"`
	ProfilePicture *string   `json:"profile_picture"`
	RecipesCount   int64     `json:"recipes_count"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	IsFollowing    bool      `json:"is_following"`
}

type FollowResult struct {
	IsFollowing    bool  `json:"is_following"`
	FollowersCount int64 `json:"followers_count"`
}
