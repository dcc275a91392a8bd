package service

import (
	"context"
	"testing"
	"time"

	"blogicum/internal/forms"
	"blogicum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Hand-written stubs keep these tests free of a database. Each field
// defaults to a panic so a test only wires what it expects to be called.

type stubPostRepo struct {
	createFn         func(ctx context.Context, post *models.Post) error
	getByIDFn        func(ctx context.Context, id uint) (*models.Post, error)
	getVisibleByIDFn func(ctx context.Context, id uint, now time.Time) (*models.Post, error)
	listPublishedFn  func(ctx context.Context, limit, offset int, now time.Time) ([]*models.Post, int64, error)
	listByCategoryFn func(ctx context.Context, categoryID uint, limit, offset int, now time.Time) ([]*models.Post, int64, error)
	listByAuthorFn   func(ctx context.Context, authorID uint, limit, offset int, includeHidden bool, now time.Time) ([]*models.Post, int64, error)
	updateFn         func(ctx context.Context, post *models.Post) error
	deleteFn         func(ctx context.Context, id uint) error
}

func (s *stubPostRepo) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *stubPostRepo) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *stubPostRepo) GetVisibleByID(ctx context.Context, id uint, now time.Time) (*models.Post, error) {
	return s.getVisibleByIDFn(ctx, id, now)
}
func (s *stubPostRepo) ListPublished(ctx context.Context, limit, offset int, now time.Time) ([]*models.Post, int64, error) {
	return s.listPublishedFn(ctx, limit, offset, now)
}
func (s *stubPostRepo) ListByCategory(ctx context.Context, categoryID uint, limit, offset int, now time.Time) ([]*models.Post, int64, error) {
	return s.listByCategoryFn(ctx, categoryID, limit, offset, now)
}
func (s *stubPostRepo) ListByAuthor(ctx context.Context, authorID uint, limit, offset int, includeHidden bool, now time.Time) ([]*models.Post, int64, error) {
	return s.listByAuthorFn(ctx, authorID, limit, offset, includeHidden, now)
}
func (s *stubPostRepo) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *stubPostRepo) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

type stubCommentRepo struct {
	createFn     func(ctx context.Context, comment *models.Comment) error
	getByIDFn    func(ctx context.Context, id uint) (*models.Comment, error)
	listByPostFn func(ctx context.Context, postID uint) ([]*models.Comment, error)
	updateFn     func(ctx context.Context, comment *models.Comment) error
	deleteFn     func(ctx context.Context, id uint) error
}

func (s *stubCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *stubCommentRepo) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *stubCommentRepo) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *stubCommentRepo) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *stubCommentRepo) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

type stubUserRepo struct {
	createFn        func(ctx context.Context, user *models.User) error
	getByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	updateFn        func(ctx context.Context, user *models.User) error
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *stubUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func TestGetPostForViewerAuthorSeesHiddenPost(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	hidden := &models.Post{Title: "draft", AuthorID: 42, IsPublished: false}
	hidden.ID = 7

	repo := &stubPostRepo{
		getVisibleByIDFn: func(_ context.Context, _ uint, _ time.Time) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			require.Equal(t, uint(7), id)
			return hidden, nil
		},
	}
	svc := NewPostService(repo, nil, nil)

	t.Run("Author", func(t *testing.T) {
		post, err := svc.GetPostForViewer(context.Background(), 7, 42, now)
		require.NoError(t, err)
		assert.Equal(t, uint(7), post.ID)
	})

	t.Run("Other User", func(t *testing.T) {
		_, err := svc.GetPostForViewer(context.Background(), 7, 99, now)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("Anonymous", func(t *testing.T) {
		_, err := svc.GetPostForViewer(context.Background(), 7, 0, now)
		assert.True(t, models.IsNotFound(err))
	})
}

func TestCreatePostForcesSessionAuthor(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	var created *models.Post
	repo := &stubPostRepo{
		createFn: func(_ context.Context, post *models.Post) error {
			created = post
			return nil
		},
	}
	svc := NewPostService(repo, nil, nil)

	form := &forms.PostForm{Title: "Hello", Text: "World"}
	require.Empty(t, form.Validate())

	post, err := svc.CreatePost(context.Background(), 5, form, now)
	require.NoError(t, err)
	assert.Equal(t, uint(5), post.AuthorID)
	assert.True(t, post.IsPublished)
	assert.Equal(t, now, post.PubDate)
	assert.Same(t, created, post)
}

func TestCreateCommentRequiresVisiblePost(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	t.Run("Hidden Post Rejected Even For Author", func(t *testing.T) {
		posts := &stubPostRepo{
			getVisibleByIDFn: func(_ context.Context, _ uint, _ time.Time) (*models.Post, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := NewCommentService(&stubCommentRepo{}, posts)

		_, err := svc.CreateComment(context.Background(), 7, 42, &forms.CommentForm{Text: "hi"}, now)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("Visible Post Accepted", func(t *testing.T) {
		posts := &stubPostRepo{
			getVisibleByIDFn: func(_ context.Context, id uint, _ time.Time) (*models.Post, error) {
				post := &models.Post{IsPublished: true}
				post.ID = id
				return post, nil
			},
		}
		comments := &stubCommentRepo{
			createFn: func(_ context.Context, comment *models.Comment) error {
				comment.ID = 1
				return nil
			},
			getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
				return &models.Comment{Text: "hi", AuthorID: 42, PostID: 7}, nil
			},
		}
		svc := NewCommentService(comments, posts)

		comment, err := svc.CreateComment(context.Background(), 7, 42, &forms.CommentForm{Text: "hi"}, now)
		require.NoError(t, err)
		assert.Equal(t, uint(42), comment.AuthorID)
	})
}

func TestGetCommentChecksPostBinding(t *testing.T) {
	t.Parallel()
	comments := &stubCommentRepo{
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			comment := &models.Comment{PostID: 7}
			comment.ID = id
			return comment, nil
		},
	}
	svc := NewCommentService(comments, &stubPostRepo{})

	_, err := svc.GetComment(context.Background(), 3, 7)
	assert.NoError(t, err)

	_, err = svc.GetComment(context.Background(), 3, 8)
	assert.True(t, models.IsNotFound(err))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	t.Parallel()
	existing := &models.User{Username: "taken", Email: "taken@example.com"}

	repo := &stubUserRepo{
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			if username == "taken" {
				return existing, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			if email == "taken@example.com" {
				return existing, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		createFn: func(_ context.Context, user *models.User) error {
			user.ID = 1
			return nil
		},
	}
	svc := NewUserService(repo)

	_, err := svc.Register(context.Background(), &forms.SignupForm{
		Username: "taken", Email: "fresh@example.com", Password: "Password1",
	})
	assert.True(t, models.IsValidation(err))

	_, err = svc.Register(context.Background(), &forms.SignupForm{
		Username: "fresh", Email: "taken@example.com", Password: "Password1",
	})
	assert.True(t, models.IsValidation(err))

	user, err := svc.Register(context.Background(), &forms.SignupForm{
		Username: "fresh", Email: "fresh@example.com", Password: "Password1",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "Password1", user.Password, "password must be stored hashed")
}

func TestAuthenticateGenericError(t *testing.T) {
	t.Parallel()
	repo := &stubUserRepo{
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewUserService(repo)

	_, err := svc.Authenticate(context.Background(), "ghost", "whatever")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeUnauthorized, appErr.Code)
	assert.Equal(t, "Invalid username or password", appErr.Message)
}

func TestUpdateProfileEditsOnlySessionUser(t *testing.T) {
	t.Parallel()
	me := &models.User{Username: "me", Email: "me@example.com"}
	me.ID = 5

	var saved *models.User
	repo := &stubUserRepo{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			require.Equal(t, uint(5), id)
			return me, nil
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
		updateFn: func(_ context.Context, user *models.User) error {
			saved = user
			return nil
		},
	}
	svc := NewUserService(repo)

	updated, err := svc.UpdateProfile(context.Background(), 5, &forms.ProfileForm{
		Username: "renamed", FirstName: "Ann",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(5), updated.ID)
	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, "Ann", updated.FirstName)
	// Email untouched when the field was left blank.
	assert.Equal(t, "me@example.com", updated.Email)
	assert.Same(t, saved, updated)
}

func TestProfileFeedIncludesHiddenForOwnerOnly(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	owner := &models.User{Username: "owner"}
	owner.ID = 9

	var sawIncludeHidden bool
	posts := &stubPostRepo{
		listByAuthorFn: func(_ context.Context, authorID uint, _, _ int, includeHidden bool, _ time.Time) ([]*models.Post, int64, error) {
			sawIncludeHidden = includeHidden
			return nil, 0, nil
		},
	}
	users := &stubUserRepo{
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
			return owner, nil
		},
	}
	svc := NewPostService(posts, nil, users)

	_, _, _, err := svc.ProfileFeed(context.Background(), "owner", 9, 10, 0, now)
	require.NoError(t, err)
	assert.True(t, sawIncludeHidden)

	_, _, _, err = svc.ProfileFeed(context.Background(), "owner", 4, 10, 0, now)
	require.NoError(t, err)
	assert.False(t, sawIncludeHidden)
}
