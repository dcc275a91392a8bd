package repository

import (
	"context"

	"blogicum/internal/models"
	"blogicum/internal/observability"

	"gorm.io/gorm"
)

// CategoryRepository defines interface for category operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListPublished(ctx context.Context) ([]*models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	defer observability.TrackQuery("create", "categories")()
	return r.db.WithContext(ctx).Create(category).Error
}

// GetPublishedBySlug resolves a category page slug. Unpublished categories are
// indistinguishable from absent ones: both return gorm.ErrRecordNotFound.
func (r *categoryRepository) GetPublishedBySlug(ctx context.Context, slug string) (*models.Category, error) {
	defer observability.TrackQuery("get_by_slug", "categories")()
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_published = ?", slug, true).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListPublished(ctx context.Context) ([]*models.Category, error) {
	defer observability.TrackQuery("list", "categories")()
	var categories []*models.Category
	err := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("title asc").
		Find(&categories).Error
	return categories, err
}
