package service

import (
	"context"
	"time"

	"blogicum/internal/forms"
	"blogicum/internal/models"
	"blogicum/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// CreateComment adds a comment to a post. The post must be in the published
// scope: unlike the detail page, authors get no exception here, so nobody can
// comment on a hidden post, not even its owner.
func (s *CommentService) CreateComment(ctx context.Context, postID, authorID uint, form *forms.CommentForm, now time.Time) (*models.Comment, error) {
	if _, err := s.postRepo.GetVisibleByID(ctx, postID, now); err != nil {
		return nil, notFound(err, "Post not found")
	}

	comment := &models.Comment{
		Text:     form.Text,
		AuthorID: authorID,
		PostID:   postID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// GetComment fetches a comment, checking it belongs to the given post so a
// crafted URL cannot edit a comment through another post's route.
func (s *CommentService) GetComment(ctx context.Context, id, postID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Comment not found")
	}
	if comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment not found")
	}
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *CommentService) UpdateComment(ctx context.Context, comment *models.Comment, form *forms.CommentForm) error {
	comment.Text = form.Text
	return s.commentRepo.Update(ctx, comment)
}

func (s *CommentService) DeleteComment(ctx context.Context, id uint) error {
	return s.commentRepo.Delete(ctx, id)
}
