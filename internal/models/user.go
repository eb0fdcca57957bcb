// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User is a microblog account. Username is unique across all users.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email     *string   `gorm:"size:120;uniqueIndex" json:"email,omitempty"`
	FirstName string    `gorm:"size:64" json:"first_name"`
	LastName  string    `gorm:"size:64" json:"last_name"`
	AboutMe   string    `gorm:"size:140" json:"about_me"`
	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// FollowersCount is not persisted; filled in by the profile lookup
	FollowersCount int64 `gorm:"-" json:"followers_count"`
	// FollowingCount is not persisted; filled in by the profile lookup
	FollowingCount int64 `gorm:"-" json:"following_count"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
