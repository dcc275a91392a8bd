package server

import (
	"fmt"

	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// AddCommentPage renders a standalone comment form for a visible post. The
// same strict visibility rule as AddComment applies: a hidden post has no
// comment form, author or not.
func (s *Server) AddCommentPage(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.postRepo.GetVisibleByID(c.UserContext(), postID, nowUTC()); err != nil {
		return s.renderNotFound(c, models.NewNotFoundError("Post not found"))
	}

	return s.render(c, "comments/form", fiber.Map{
		"Title":   "Add comment",
		"Heading": "Add comment",
		"Action":  commentURL(postID),
		"Form":    &forms.CommentForm{},
		"Errors":  map[string]string{},
		"PostID":  postID,
	})
}

// AddComment attaches a comment to a visible post and returns to the detail
// page. The published check here is strict: unlike the detail view, the
// post's author gets no exception, so hidden posts take no comments at all.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	form := new(forms.CommentForm)
	if err := c.BodyParser(form); err != nil {
		return s.rerenderDetailWithCommentErrors(c, postID, form, map[string]string{"text": "Could not read the form"})
	}
	if errs := form.Validate(); len(errs) > 0 {
		return s.rerenderDetailWithCommentErrors(c, postID, form, errs)
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), postID, currentUserID(c), form, nowUTC())
	if err != nil {
		if models.IsNotFound(err) {
			return s.renderNotFound(c, err)
		}
		return err
	}

	observability.CommentsCreated.Inc()
	middleware.Logger.InfoContext(c.UserContext(), "comment created",
		"commentID", comment.ID,
		"postID", postID,
	)
	return c.Redirect(postURL(postID), fiber.StatusSeeOther)
}

// EditCommentPage renders the edit form for one comment. Non-owners are
// redirected to the post.
func (s *Server) EditCommentPage(c *fiber.Ctx) error {
	postID, _, comment, done := s.loadOwnedComment(c)
	if done {
		return nil
	}

	return s.render(c, "comments/form", fiber.Map{
		"Title":   "Edit comment",
		"Heading": "Edit comment",
		"Action":  editCommentURL(postID, comment.ID),
		"Form":    &forms.CommentForm{Text: comment.Text},
		"Errors":  map[string]string{},
		"PostID":  postID,
	})
}

// EditComment applies the form and returns to the post.
func (s *Server) EditComment(c *fiber.Ctx) error {
	postID, _, comment, done := s.loadOwnedComment(c)
	if done {
		return nil
	}

	form := new(forms.CommentForm)
	if err := c.BodyParser(form); err != nil {
		return s.render(c, "comments/form", fiber.Map{
			"Title":   "Edit comment",
			"Heading": "Edit comment",
			"Action":  editCommentURL(postID, comment.ID),
			"Form":    form,
			"Errors":  map[string]string{"text": "Could not read the form"},
			"PostID":  postID,
		})
	}
	if errs := form.Validate(); len(errs) > 0 {
		return s.render(c, "comments/form", fiber.Map{
			"Title":   "Edit comment",
			"Heading": "Edit comment",
			"Action":  editCommentURL(postID, comment.ID),
			"Form":    form,
			"Errors":  errs,
			"PostID":  postID,
		})
	}

	if err := s.commentService.UpdateComment(c.UserContext(), comment, form); err != nil {
		return err
	}
	return c.Redirect(postURL(postID), fiber.StatusSeeOther)
}

// DeleteCommentPage renders the delete confirmation.
func (s *Server) DeleteCommentPage(c *fiber.Ctx) error {
	_, _, comment, done := s.loadOwnedComment(c)
	if done {
		return nil
	}

	return s.render(c, "comments/confirm_delete", fiber.Map{
		"Title":   "Delete comment",
		"Comment": comment,
	})
}

// DeleteComment removes the comment and returns to the post.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, commentID, _, done := s.loadOwnedComment(c)
	if done {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), commentID); err != nil {
		return err
	}

	middleware.Logger.InfoContext(c.UserContext(), "comment deleted",
		"commentID", commentID,
		"postID", postID,
	)
	return c.Redirect(postURL(postID), fiber.StatusSeeOther)
}

// loadOwnedComment parses the route, fetches the comment, and applies the
// ownership guard. When done is true the response has been written (404 page
// or redirect) and the handler must return nil.
func (s *Server) loadOwnedComment(c *fiber.Ctx) (postID, commentID uint, comment *models.Comment, done bool) {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return 0, 0, nil, true
	}
	commentID, err = s.parseID(c, "commentId")
	if err != nil {
		return 0, 0, nil, true
	}

	comment, err = s.commentService.GetComment(c.UserContext(), commentID, postID)
	if err != nil {
		if models.IsNotFound(err) {
			_ = s.renderNotFound(c, err)
			return 0, 0, nil, true
		}
		_ = s.renderError(c, err)
		return 0, 0, nil, true
	}

	if handled, _ := s.guardOwner(c, comment.AuthorID, postID); handled {
		return 0, 0, nil, true
	}
	return postID, commentID, comment, false
}

func commentURL(postID uint) string {
	return fmt.Sprintf("/posts/%d/comment/", postID)
}

func editCommentURL(postID, commentID uint) string {
	return fmt.Sprintf("/posts/%d/edit_comment/%d/", postID, commentID)
}

// rerenderDetailWithCommentErrors shows the detail page again with the
// rejected comment form inline. The strict visibility rule applies here too.
func (s *Server) rerenderDetailWithCommentErrors(c *fiber.Ctx, postID uint, form *forms.CommentForm, errs map[string]string) error {
	post, err := s.postRepo.GetVisibleByID(c.UserContext(), postID, nowUTC())
	if err != nil {
		return s.renderNotFound(c, models.NewNotFoundError("Post not found"))
	}

	comments, err := s.commentService.ListComments(c.UserContext(), post.ID)
	if err != nil {
		return err
	}

	return s.render(c, "posts/detail", fiber.Map{
		"Title":         post.Title,
		"Post":          post,
		"Comments":      comments,
		"IsOwner":       currentUserID(c) == post.AuthorID,
		"CommentText":   form.Text,
		"CommentErrors": errs,
	})
}
