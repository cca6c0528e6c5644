package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Username       string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email          string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	Bio            string    `gorm:"type:text" json:"bio"`
	ProfilePicture string    `gorm:"size:500" json:"profile_picture"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Follow is one edge of the asymmetric following relation: FollowerID follows FolloweeID.
type Follow struct {
	FollowerID uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"follower_id"`
	FolloweeID uuid.UUID `gorm:"type:varchar(36);primaryKey;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followee User `gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Follow) TableName() string {
	return "follows"
}
