// Package seed provides database seeding utilities for development and
// testing.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"blogicum/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database. It is a
// thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a user with a realistic name and a known password
// ("password" hashed), so seeded accounts can be logged into.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	user := &models.User{
		Username:  strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, f.rand.Intn(1000))),
		Email:     gofakeit.Email(),
		Password:  string(hashed),
		FirstName: first,
		LastName:  last,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCategory persists a category with a unique slug.
func (f *Factory) CreateCategory(title, slug string, published bool) (*models.Category, error) {
	category := &models.Category{
		Title:       title,
		Slug:        slug,
		Description: gofakeit.Sentence(8),
		IsPublished: published,
	}
	if err := f.db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// CreateLocation persists a location.
func (f *Factory) CreateLocation(name string, published bool) (*models.Location, error) {
	location := &models.Location{
		Name:        name,
		IsPublished: published,
	}
	if err := f.db.Create(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

// CreatePost persists a post with a pub date spread over the past maxDays.
// Roughly one post in ten stays a draft and one in ten is scheduled in the
// future, so seeded data exercises the visibility rules.
func (f *Factory) CreatePost(author *models.User, category *models.Category, location *models.Location, maxDays int, overrides ...func(*models.Post)) (*models.Post, error) {
	if maxDays <= 0 {
		maxDays = 90
	}

	pubDate := time.Now().UTC().
		Add(-time.Duration(f.rand.Intn(maxDays*24)) * time.Hour).
		Add(-time.Duration(f.rand.Intn(60)) * time.Minute)

	post := &models.Post{
		Title:       gofakeit.Sentence(5),
		Text:        gofakeit.Paragraph(2, 4, 8, "\n\n"),
		PubDate:     pubDate,
		IsPublished: true,
		AuthorID:    author.ID,
	}
	if category != nil {
		post.CategoryID = &category.ID
	}
	if location != nil {
		post.LocationID = &location.ID
	}

	switch f.rand.Intn(10) {
	case 0:
		post.IsPublished = false
	case 1:
		post.PubDate = time.Now().UTC().Add(time.Duration(1+f.rand.Intn(30*24)) * time.Hour)
	}
	if f.rand.Intn(3) == 0 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
	}

	for _, override := range overrides {
		override(post)
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment dated after the post's publication.
func (f *Factory) CreateComment(author *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		Text:     gofakeit.Sentence(12),
		AuthorID: author.ID,
		PostID:   post.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
