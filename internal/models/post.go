package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a publishable content item with an author, an optional category
// and location, and a scheduled publish time. A post is publicly visible
// only when it is published, its category is published, and its publish
// time is not in the future; its author can always see it on the detail
// page.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	PubDate     time.Time `gorm:"not null;index" json:"pub_date"`
	IsPublished bool      `gorm:"not null;default:true" json:"is_published"`
	ImageURL    string    `json:"image_url"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID" json:"author"`
	CategoryID  *uint     `gorm:"index" json:"category_id,omitempty"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	LocationID  *uint     `json:"location_id,omitempty"`
	Location    *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	// CommentCount is not persisted; computed at query time
	CommentCount int64          `gorm:"->" json:"comment_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// VisibleTo reports whether the post's detail page may be shown to the
// given viewer (0 for anonymous) at the given instant.
func (p *Post) VisibleTo(viewerID uint, now time.Time) bool {
	if viewerID != 0 && viewerID == p.AuthorID {
		return true
	}
	return p.IsPublished &&
		!p.PubDate.After(now) &&
		p.Category != nil && p.Category.IsPublished
}
