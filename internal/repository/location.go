package repository

import (
	"context"

	"blogicum/internal/models"
	"blogicum/internal/observability"

	"gorm.io/gorm"
)

// LocationRepository defines interface for location operations. Locations are
// an optional tag on posts and only surface in the post form's select box.
type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	ListPublished(ctx context.Context) ([]*models.Location, error)
}

type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new LocationRepository
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	defer observability.TrackQuery("create", "locations")()
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *locationRepository) ListPublished(ctx context.Context) ([]*models.Location, error) {
	defer observability.TrackQuery("list", "locations")()
	var locations []*models.Location
	err := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("name asc").
		Find(&locations).Error
	return locations, err
}
