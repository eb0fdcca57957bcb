package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxPostLength is the longest post body accepted, counted in characters.
const MaxPostLength = 140

// Post is a short status update. Posts are immutable once created.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Body      string    `gorm:"size:140;not null" json:"body"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Author    User      `gorm:"foreignKey:UserID" json:"author"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// BeforeCreate stamps the post with the creation time when the caller did not.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}
	return nil
}
