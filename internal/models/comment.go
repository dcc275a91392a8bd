package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a reply attached to exactly one post. It is visible whenever
// its parent post is visible; only its author may edit or delete it.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Text      string         `gorm:"type:text;not null" json:"text"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	Author    User           `gorm:"foreignKey:AuthorID" json:"author"`
	Post      Post           `gorm:"foreignKey:PostID" json:"post,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
