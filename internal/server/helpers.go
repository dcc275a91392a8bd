package server

import (
	"errors"
	"fmt"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// pageSize is the number of posts on every listing page.
const pageSize = 10

// parsePage reads the ?page= query parameter into a page request.
func parsePage(c *fiber.Ctx) pagination.PageRequest {
	number := c.QueryInt("page", 1)
	if number < 1 {
		number = 1
	}
	return pagination.PageRequest{Number: number, Size: pageSize}
}

// parseID extracts a route parameter by name as a positive uint. On failure
// it renders the 404 page and returns errResponseWritten; callers should
// check: if err != nil { return nil }.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = s.renderNotFound(c, nil)
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID returns the session user's ID, or 0 for anonymous visitors.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

// viewer loads the session user's record for rendering, caching it in locals
// so the layout and the handler share one lookup. Anonymous requests get nil.
func (s *Server) viewer(c *fiber.Ctx) *models.User {
	if cached, ok := c.Locals("viewer").(*models.User); ok {
		return cached
	}
	id := currentUserID(c)
	if id == 0 {
		return nil
	}
	user, err := s.userService.GetByID(c.UserContext(), id)
	if err != nil {
		return nil
	}
	c.Locals("viewer", user)
	return user
}

// guardOwner is the ownership check used by every edit and delete flow:
// when the session user does not own the object, the response is a redirect
// to the post's detail page rather than an error. Returns true when the
// redirect was written and the handler must stop.
func (s *Server) guardOwner(c *fiber.Ctx, ownerID, postID uint) (bool, error) {
	if currentUserID(c) == ownerID {
		return false, nil
	}
	return true, c.Redirect(postURL(postID), fiber.StatusSeeOther)
}

// render wraps c.Render, always supplying the keys the layout expects and
// counting the render for metrics.
func (s *Server) render(c *fiber.Ctx, template string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if _, ok := data["CurrentUser"]; !ok {
		data["CurrentUser"] = s.viewer(c)
	}
	observability.PageRenders.WithLabelValues(template).Inc()
	return c.Render(template, data)
}

// renderNotFound renders the 404 page. The optional error supplies the
// message shown to the reader.
func (s *Server) renderNotFound(c *fiber.Ctx, err error) error {
	message := ""
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{
		"CurrentUser": s.viewer(c),
		"Message":     message,
	})
}

// paginate assembles the page metadata for a fetched slice of posts.
func paginate(posts []*models.Post, req pagination.PageRequest, total int64) pagination.Page[*models.Post] {
	return pagination.New(posts, req, total)
}

func postURL(postID uint) string {
	return fmt.Sprintf("/posts/%d/", postID)
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
