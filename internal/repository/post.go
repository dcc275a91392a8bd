// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetVisibleByID(ctx context.Context, id uint, now time.Time) (*models.Post, error)
	ListPublished(ctx context.Context, limit, offset int, now time.Time) ([]*models.Post, int64, error)
	ListByCategory(ctx context.Context, categoryID uint, limit, offset int, now time.Time) ([]*models.Post, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int, includeHidden bool, now time.Time) ([]*models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	return r.db.WithContext(ctx).Create(post).Error
}

// GetByID fetches a post by primary key with no visibility filtering.
// Callers that serve anonymous readers must use GetVisibleByID instead.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()
	var post models.Post
	err := r.withCommentCount(r.db.WithContext(ctx)).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetVisibleByID fetches a post by primary key, restricted to the published
// scope: the post and its category are published and pub_date is not in the
// future. Posts without a category are never in the scope.
func (r *postRepository) GetVisibleByID(ctx context.Context, id uint, now time.Time) (*models.Post, error) {
	defer observability.TrackQuery("get_visible", "posts")()
	var post models.Post
	err := r.publishedScope(r.db.WithContext(ctx), now).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListPublished(ctx context.Context, limit, offset int, now time.Time) ([]*models.Post, int64, error) {
	defer observability.TrackQuery("list_published", "posts")()
	base := r.publishedScope(r.db.WithContext(ctx), now)
	return r.page(base, limit, offset)
}

func (r *postRepository) ListByCategory(ctx context.Context, categoryID uint, limit, offset int, now time.Time) ([]*models.Post, int64, error) {
	defer observability.TrackQuery("list_by_category", "posts")()
	base := r.publishedScope(r.db.WithContext(ctx), now).
		Where("posts.category_id = ?", categoryID)
	return r.page(base, limit, offset)
}

// ListByAuthor returns an author's posts. With includeHidden the published
// scope is skipped entirely, so the author sees unpublished and future-dated
// posts on their own profile page.
func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int, includeHidden bool, now time.Time) ([]*models.Post, int64, error) {
	defer observability.TrackQuery("list_by_author", "posts")()
	base := r.db.WithContext(ctx)
	if includeHidden {
		base = r.withCommentCount(base).Model(&models.Post{})
	} else {
		base = r.publishedScope(base, now)
	}
	base = base.Where("posts.author_id = ?", authorID)
	return r.page(base, limit, offset)
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

// publishedScope joins categories and filters to the single visibility
// predicate used everywhere: post published, category published, pub_date not
// in the future. The join is INNER, so uncategorized posts drop out.
func (r *postRepository) publishedScope(db *gorm.DB, now time.Time) *gorm.DB {
	return r.withCommentCount(db).
		Model(&models.Post{}).
		Joins("JOIN categories ON categories.id = posts.category_id").
		Where("posts.is_published = ?", true).
		Where("categories.is_published = ?", true).
		Where("posts.pub_date <= ?", now)
}

// withCommentCount adds a correlated subquery so each post row carries its
// comment count without an N+1.
func (r *postRepository) withCommentCount(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comment_count")
}

// page counts the scoped rows, then fetches one page ordered newest-first.
func (r *postRepository) page(base *gorm.DB, limit, offset int) ([]*models.Post, int64, error) {
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.Post
	err := base.
		Preload("Author").
		Preload("Category").
		Preload("Location").
		Order("posts.pub_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}
