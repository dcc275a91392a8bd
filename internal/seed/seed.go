package seed

import (
	"fmt"
	"log"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	NumPosts       int
	MaxCommentsPer int
	MaxDays        int
	ShouldClean    bool
	Categories     []CategorySpec
	Locations      []string
}

// CategorySpec names one category to create.
type CategorySpec struct {
	Title     string `yaml:"title"`
	Slug      string `yaml:"slug"`
	Published *bool  `yaml:"published"`
}

// DefaultCategories is used when no preset supplies its own.
var DefaultCategories = []CategorySpec{
	{Title: "Travel", Slug: "travel"},
	{Title: "Food", Slug: "food"},
	{Title: "Technology", Slug: "technology"},
	{Title: "Books", Slug: "books"},
	{Title: "Daily life", Slug: "daily-life"},
}

// DefaultLocations is used when no preset supplies its own.
var DefaultLocations = []string{
	"Amsterdam", "Berlin", "Lisbon", "Prague", "Tbilisi", "Tokyo",
}

// Seed populates the database with demo data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding database: %d users, %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	factory := NewFactory(db)

	categories := opts.Categories
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	createdCategories := make([]*models.Category, 0, len(categories))
	for _, spec := range categories {
		published := spec.Published == nil || *spec.Published
		category, err := factory.CreateCategory(spec.Title, spec.Slug, published)
		if err != nil {
			return fmt.Errorf("failed to create category %q: %w", spec.Slug, err)
		}
		createdCategories = append(createdCategories, category)
	}

	locations := opts.Locations
	if len(locations) == 0 {
		locations = DefaultLocations
	}
	createdLocations := make([]*models.Location, 0, len(locations))
	for _, name := range locations {
		location, err := factory.CreateLocation(name, true)
		if err != nil {
			return fmt.Errorf("failed to create location %q: %w", name, err)
		}
		createdLocations = append(createdLocations, location)
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return fmt.Errorf("cannot seed posts without users")
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[factory.rand.Intn(len(users))]

		var category *models.Category
		if len(createdCategories) > 0 && factory.rand.Intn(20) != 0 {
			category = createdCategories[factory.rand.Intn(len(createdCategories))]
		}
		var location *models.Location
		if len(createdLocations) > 0 && factory.rand.Intn(2) == 0 {
			location = createdLocations[factory.rand.Intn(len(createdLocations))]
		}

		post, err := factory.CreatePost(author, category, location, opts.MaxDays)
		if err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
	}

	maxComments := opts.MaxCommentsPer
	if maxComments <= 0 {
		maxComments = 5
	}
	commentCount := 0
	for _, post := range posts {
		n := factory.rand.Intn(maxComments + 1)
		for i := 0; i < n; i++ {
			commenter := users[factory.rand.Intn(len(users))]
			if _, err := factory.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("failed to create comment: %w", err)
			}
			commentCount++
		}
	}

	log.Printf("Seeding complete: %d categories, %d locations, %d users, %d posts, %d comments",
		len(createdCategories), len(createdLocations), len(users), len(posts), commentCount)
	return nil
}

// clearData removes all seeded rows. Order matters for foreign keys.
func clearData(db *gorm.DB) error {
	for _, model := range []any{
		&models.Comment{},
		&models.Post{},
		&models.Location{},
		&models.Category{},
		&models.User{},
	} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
