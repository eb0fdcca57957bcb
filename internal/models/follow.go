package models

import (
	"time"
)

// Follow is a directed edge: Follower sees Followed's posts in the home feed.
// The composite primary key keeps the association set-like.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowedID uint      `gorm:"primaryKey;autoIncrement:false;index:idx_follows_followed" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID" json:"-"`
	Followed User `gorm:"foreignKey:FollowedID" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
