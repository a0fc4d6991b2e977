package handlers

import (
	"errors"

	"lootmarket/internal/log"
	"lootmarket/internal/services"
	"lootmarket/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type BlogHandler struct {
	Blog *services.BlogService
}

// GET /blog
func (h *BlogHandler) List(c *fiber.Ctx) error {
	page, err := h.Blog.List(validate.Page(c.Query("page")))
	if err != nil {
		log.Error(c, "blog.list.fail", err, nil)
		return err
	}
	return render(c, "blog_list", fiber.Map{"Page": page})
}

// GET /blog/:slug
func (h *BlogHandler) Post(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Post not found")
	}
	p, err := h.Blog.Post(slug)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			log.Error(c, "blog.post.fail", err, map[string]any{"slug": slug})
		}
		return notFound(c, fiber.StatusNotFound, "Post not found")
	}
	return render(c, "blog_post", fiber.Map{"Post": p, "Tags": services.Keywords(p.MetaKeywords)})
}
