package server

import (
	"strconv"

	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Index renders the home feed: published posts, newest first, ten per page.
func (s *Server) Index(c *fiber.Ctx) error {
	page := parsePage(c)
	posts, total, err := s.postService.Feed(c.UserContext(), page.Size, page.Offset(), nowUTC())
	if err != nil {
		return err
	}

	return s.render(c, "posts/index", fiber.Map{
		"Posts":   posts,
		"Page":    paginate(posts, page, total),
		"BaseURL": "/",
	})
}

// PostDetail renders a single post with its comments. Hidden posts are
// served to their author only; everyone else gets the 404 page.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPostForViewer(c.UserContext(), id, currentUserID(c), nowUTC())
	if err != nil {
		if models.IsNotFound(err) {
			return s.renderNotFound(c, err)
		}
		return err
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
		"CommentText":   "",
		"CommentErrors": map[string]string{},
	})
}

// CreatePostPage renders an empty post form.
func (s *Server) CreatePostPage(c *fiber.Ctx) error {
	return s.renderPostForm(c, &forms.PostForm{}, map[string]string{}, false, "/posts/create/")
}

// CreatePost stores a new post and sends the author to their profile.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	form := new(forms.PostForm)
	if err := c.BodyParser(form); err != nil {
		return s.renderPostForm(c, form, map[string]string{"title": "Could not read the form"}, false, "/posts/create/")
	}
	if errs := form.Validate(); len(errs) > 0 {
		return s.renderPostForm(c, form, errs, false, "/posts/create/")
	}

	user := s.viewer(c)
	if user == nil {
		return c.Redirect("/auth/login/", fiber.StatusSeeOther)
	}

	post, err := s.postService.CreatePost(c.UserContext(), user.ID, form, nowUTC())
	if err != nil {
		return err
	}

	observability.PostsCreated.Inc()
	middleware.Logger.InfoContext(c.UserContext(), "post created",
		"postID", post.ID,
		"userID", user.ID,
	)
	return c.Redirect(profileURL(user.Username), fiber.StatusSeeOther)
}

// EditPostPage renders the form prefilled with the post. Non-owners are
// redirected to the post instead.
func (s *Server) EditPostPage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		if models.IsNotFound(err) {
			return s.renderNotFound(c, err)
		}
		return err
	}
	if handled, err := s.guardOwner(c, post.AuthorID, post.ID); handled {
		return err
	}

	return s.renderPostForm(c, postToForm(post), map[string]string{}, true, editPostURL(post.ID))
}

// EditPost applies the form and returns to the post's detail page.
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		if models.IsNotFound(err) {
			return s.renderNotFound(c, err)
		}
		return err
	}
	if handled, err := s.guardOwner(c, post.AuthorID, post.ID); handled {
		return err
	}

	form := new(forms.PostForm)
	if err := c.BodyParser(form); err != nil {
		return s.renderPostForm(c, form, map[string]string{"title": "Could not read the form"}, true, editPostURL(post.ID))
	}
	if errs := form.Validate(); len(errs) > 0 {
		return s.renderPostForm(c, form, errs, true, editPostURL(post.ID))
	}

	if err := s.postService.UpdatePost(c.UserContext(), post, form, nowUTC()); err != nil {
		return err
	}
	return c.Redirect(postURL(post.ID), fiber.StatusSeeOther)
}

// DeletePostPage renders the delete confirmation.
func (s *Server) DeletePostPage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		if models.IsNotFound(err) {
			return s.renderNotFound(c, err)
		}
		return err
	}
	if handled, err := s.guardOwner(c, post.AuthorID, post.ID); handled {
		return err
	}

	return s.render(c, "posts/confirm_delete", fiber.Map{
		"Title": "Delete post",
		"Post":  post,
	})
}

// DeletePost removes the post and sends the author to their profile.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		if models.IsNotFound(err) {
			return s.renderNotFound(c, err)
		}
		return err
	}
	if handled, err := s.guardOwner(c, post.AuthorID, post.ID); handled {
		return err
	}

	if err := s.postService.DeletePost(c.UserContext(), post.ID); err != nil {
		return err
	}

	middleware.Logger.InfoContext(c.UserContext(), "post deleted",
		"postID", post.ID,
		"userID", currentUserID(c),
	)
	user := s.viewer(c)
	if user == nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.Redirect(profileURL(user.Username), fiber.StatusSeeOther)
}

// renderPostForm renders the post form with category and location choices.
func (s *Server) renderPostForm(c *fiber.Ctx, form *forms.PostForm, errs map[string]string, editing bool, action string) error {
	categories, err := s.categoryRepo.ListPublished(c.UserContext())
	if err != nil {
		return err
	}
	locations, err := s.locationRepo.ListPublished(c.UserContext())
	if err != nil {
		return err
	}

	return s.render(c, "posts/form", fiber.Map{
		"Title":      "Post",
		"Form":       form,
		"Errors":     errs,
		"Editing":    editing,
		"Action":     action,
		"Categories": categories,
		"Locations":  locations,
	})
}

// postToForm prefills the form from a stored post.
func postToForm(post *models.Post) *forms.PostForm {
	form := &forms.PostForm{
		Title:    post.Title,
		Text:     post.Text,
		PubDate:  post.PubDate.Format(forms.PubDateLayout),
		ImageURL: post.ImageURL,
	}
	if post.CategoryID != nil {
		form.CategoryID = strconv.FormatUint(uint64(*post.CategoryID), 10)
	}
	if post.LocationID != nil {
		form.LocationID = strconv.FormatUint(uint64(*post.LocationID), 10)
	}
	return form
}

func editPostURL(postID uint) string {
	return postURL(postID) + "edit/"
}
