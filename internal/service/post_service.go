// Package service implements the application's business rules on top of the
// repository layer.
package service

import (
	"context"
	"errors"
	"time"

	"blogicum/internal/forms"
	"blogicum/internal/models"
	"blogicum/internal/repository"

	"gorm.io/gorm"
)

// notFound converts gorm's record-not-found into a domain error, leaving
// other errors untouched.
func notFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(message)
	}
	return err
}

type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
}

func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
	}
}

// CreatePost stores a new post for the given author. The author comes from
// the session, never from the form, so a forged author field cannot stick a
// post on someone else.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, form *forms.PostForm, now time.Time) (*models.Post, error) {
	post := &models.Post{
		Title:       form.Title,
		Text:        form.Text,
		PubDate:     form.ParsedPubDate(now),
		IsPublished: true,
		ImageURL:    form.ImageURL,
		AuthorID:    authorID,
		CategoryID:  form.ParsedCategoryID(),
		LocationID:  form.ParsedLocationID(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost fetches a post with no visibility filtering. Used by the edit and
// delete flows, where the ownership guard decides what happens next.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Post not found")
	}
	return post, nil
}

// GetPostForViewer fetches a post for the detail page. Hidden posts (draft,
// future-dated, or in a hidden category) are visible to their author only;
// everyone else gets not-found.
func (s *PostService) GetPostForViewer(ctx context.Context, id, viewerID uint, now time.Time) (*models.Post, error) {
	post, err := s.postRepo.GetVisibleByID(ctx, id, now)
	if err == nil {
		return post, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if viewerID == 0 {
		return nil, models.NewNotFoundError("Post not found")
	}

	post, err = s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Post not found")
	}
	if !post.VisibleTo(viewerID, now) {
		return nil, models.NewNotFoundError("Post not found")
	}
	return post, nil
}

// UpdatePost applies the form to an already-fetched post. Publication status
// is not form-controlled.
func (s *PostService) UpdatePost(ctx context.Context, post *models.Post, form *forms.PostForm, now time.Time) error {
	post.Title = form.Title
	post.Text = form.Text
	post.PubDate = form.ParsedPubDate(now)
	post.ImageURL = form.ImageURL
	post.CategoryID = form.ParsedCategoryID()
	post.LocationID = form.ParsedLocationID()
	return s.postRepo.Update(ctx, post)
}

func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	return s.postRepo.Delete(ctx, id)
}

// Feed returns one page of the public home feed.
func (s *PostService) Feed(ctx context.Context, limit, offset int, now time.Time) ([]*models.Post, int64, error) {
	return s.postRepo.ListPublished(ctx, limit, offset, now)
}

// CategoryFeed resolves the category slug and returns one page of its
// published posts. A hidden or missing category is not-found.
func (s *PostService) CategoryFeed(ctx context.Context, slug string, limit, offset int, now time.Time) (*models.Category, []*models.Post, int64, error) {
	category, err := s.categoryRepo.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, nil, 0, notFound(err, "Category not found")
	}
	posts, total, err := s.postRepo.ListByCategory(ctx, category.ID, limit, offset, now)
	if err != nil {
		return nil, nil, 0, err
	}
	return category, posts, total, nil
}

// ProfileFeed returns the profile owner and one page of their posts. Owners
// viewing their own profile see drafts and scheduled posts too.
func (s *PostService) ProfileFeed(ctx context.Context, username string, viewerID uint, limit, offset int, now time.Time) (*models.User, []*models.Post, int64, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, 0, notFound(err, "User not found")
	}
	includeHidden := viewerID != 0 && viewerID == user.ID
	posts, total, err := s.postRepo.ListByAuthor(ctx, user.ID, limit, offset, includeHidden, now)
	if err != nil {
		return nil, nil, 0, err
	}
	return user, posts, total, nil
}
