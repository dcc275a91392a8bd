package server

import (
	"errors"

	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Profile renders a user's page with their posts. Owners see their hidden
// posts here; visitors see only published ones.
func (s *Server) Profile(c *fiber.Ctx) error {
	username := c.Params("username")
	page := parsePage(c)

	profile, posts, total, err := s.postService.ProfileFeed(
		c.UserContext(), username, currentUserID(c), page.Size, page.Offset(), nowUTC())
	if err != nil {
		if models.IsNotFound(err) {
			return s.renderNotFound(c, err)
		}
		return err
	}

	return s.render(c, "profile/detail", fiber.Map{
		"Title":   profile.Username,
		"Profile": profile,
		"IsOwner": currentUserID(c) == profile.ID,
		"Posts":   posts,
		"Page":    paginate(posts, page, total),
		"BaseURL": profileURL(profile.Username),
	})
}

// EditProfilePage renders the profile form prefilled with the session user.
// There is no user ID in the route: you can only ever edit yourself.
func (s *Server) EditProfilePage(c *fiber.Ctx) error {
	user := s.viewer(c)
	if user == nil {
		return c.Redirect("/auth/login/", fiber.StatusSeeOther)
	}

	form := &forms.ProfileForm{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	return s.render(c, "profile/form", fiber.Map{
		"Title":  "Edit profile",
		"Form":   form,
		"Errors": map[string]string{},
	})
}

// EditProfile applies the form to the session user and returns to their page.
func (s *Server) EditProfile(c *fiber.Ctx) error {
	form := new(forms.ProfileForm)
	if err := c.BodyParser(form); err != nil {
		return s.render(c, "profile/form", fiber.Map{
			"Title":  "Edit profile",
			"Form":   form,
			"Errors": map[string]string{"username": "Could not read the form"},
		})
	}
	if errs := form.Validate(); len(errs) > 0 {
		return s.render(c, "profile/form", fiber.Map{
			"Title":  "Edit profile",
			"Form":   form,
			"Errors": errs,
		})
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), currentUserID(c), form)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeValidation {
			return s.render(c, "profile/form", fiber.Map{
				"Title":  "Edit profile",
				"Form":   form,
				"Errors": map[string]string{"username": appErr.Message},
			})
		}
		return err
	}

	middleware.Logger.InfoContext(c.UserContext(), "profile updated",
		"userID", user.ID,
	)
	// The viewer cache is stale after a username change.
	c.Locals("viewer", user)
	return c.Redirect(profileURL(user.Username), fiber.StatusSeeOther)
}
