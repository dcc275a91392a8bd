package server

import (
	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CategoryPosts renders a category's published posts. A hidden or unknown
// slug is a 404; the two cases are indistinguishable from outside.
func (s *Server) CategoryPosts(c *fiber.Ctx) error {
	slug := c.Params("slug")
	page := parsePage(c)

	category, posts, total, err := s.postService.CategoryFeed(c.UserContext(), slug, page.Size, page.Offset(), nowUTC())
	if err != nil {
		if models.IsNotFound(err) {
			return s.renderNotFound(c, err)
		}
		return err
	}

	return s.render(c, "posts/index", fiber.Map{
		"Title":    category.Title,
		"Category": category,
		"Posts":    posts,
		"Page":     paginate(posts, page, total),
		"BaseURL":  "/category/" + category.Slug + "/",
	})
}
