package handlers

import (
	"net/url"
	"strings"

	"lootmarket/internal/domain"
	applog "lootmarket/internal/log"
	"lootmarket/internal/services"
	"lootmarket/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// GET /admin/blog
func (h *AdminHandler) Posts(c *fiber.Ctx) error {
	posts, err := h.Admin.Blog.All(h.page(c))
	if err != nil {
		applog.Error(c, "admin.blog.list.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load posts")
	}
	return render(c, "admin_blog", fiber.Map{"Page": posts})
}

// GET /admin/blog/new, GET /admin/blog/:id/edit
func (h *AdminHandler) PostForm(c *fiber.Ctx) error {
	var p domain.BlogPost
	if id := c.Params("id"); id != "" {
		var err error
		if p, err = h.Admin.Blog.Post(id); err != nil {
			return notFound(c, fiber.StatusNotFound, "Post not found")
		}
	}
	return h.renderPostForm(c, fiber.StatusOK, p, "")
}

func (h *AdminHandler) renderPostForm(c *fiber.Ctx, status int, p domain.BlogPost, msg string) error {
	cats, err := h.Admin.Blog.Categories()
	if err != nil {
		return err
	}
	return render(c.Status(status), "admin_post_form", fiber.Map{"Post": p, "Categories": cats, "Err": msg})
}

func postFromForm(c *fiber.Ctx, p *domain.BlogPost) string {
	var ok bool
	if p.Title, ok = validate.Name(c.FormValue("title")); !ok {
		return "Title is required"
	}
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = validate.Slugify(p.Title)
	}
	if p.Slug, ok = validate.Slug(slug); !ok {
		return "Slug may contain lowercase letters, digits and dashes"
	}
	p.Content = strings.TrimSpace(c.FormValue("content"))
	if p.Content == "" {
		return "Content is required"
	}
	p.Excerpt = strings.TrimSpace(c.FormValue("excerpt"))
	p.MetaTitle = strings.TrimSpace(c.FormValue("meta_title"))
	p.MetaDescription = strings.TrimSpace(c.FormValue("meta_description"))
	p.MetaKeywords = strings.Join(services.Keywords(c.FormValue("meta_keywords")), ",")
	p.Published = c.FormValue("published") == "on"
	p.CategoryID = ""
	if cid := c.FormValue("category_id"); cid != "" {
		if p.CategoryID, ok = validate.ID(cid); !ok {
			return "Unknown category"
		}
	}
	if u := strings.TrimSpace(c.FormValue("featured_image")); u != "" {
		p.FeaturedImage = u
	}
	return ""
}

// POST /admin/blog
func (h *AdminHandler) CreatePost(c *fiber.Ctx) error {
	var p domain.BlogPost
	if msg := postFromForm(c, &p); msg != "" {
		applog.Security(c, "validation.fail", map[string]any{"form": "admin.blog"})
		return h.renderPostForm(c, fiber.StatusBadRequest, p, msg)
	}
	img, err := h.saveUpload(c, "image", "blog")
	if err != nil {
		return h.renderPostForm(c, fiber.StatusBadRequest, p, err.Error())
	}
	if img != "" {
		p.FeaturedImage = img
	}
	if err := h.Admin.Blog.CreatePost(&p); err != nil {
		applog.Error(c, "admin.blog.create.fail", err, nil)
		return h.renderPostForm(c, fiber.StatusBadRequest, p, "Could not save post (is the slug unique?)")
	}
	applog.Audit(c, "admin.blog.create", map[string]any{"post_id": p.ID, "published": p.Published})
	return c.Redirect("/admin/blog")
}

// POST /admin/blog/:id
func (h *AdminHandler) UpdatePost(c *fiber.Ctx) error {
	p, err := h.Admin.Blog.Post(c.Params("id"))
	if err != nil {
		return notFound(c, fiber.StatusNotFound, "Post not found")
	}
	if msg := postFromForm(c, &p); msg != "" {
		applog.Security(c, "validation.fail", map[string]any{"form": "admin.blog"})
		return h.renderPostForm(c, fiber.StatusBadRequest, p, msg)
	}
	img, err := h.saveUpload(c, "image", "blog")
	if err != nil {
		return h.renderPostForm(c, fiber.StatusBadRequest, p, err.Error())
	}
	if img != "" {
		p.FeaturedImage = img
	}
	if err := h.Admin.Blog.UpdatePost(p); err != nil {
		applog.Error(c, "admin.blog.update.fail", err, map[string]any{"post_id": p.ID})
		return h.renderPostForm(c, fiber.StatusBadRequest, p, "Could not save post")
	}
	applog.Audit(c, "admin.blog.update", map[string]any{"post_id": p.ID, "published": p.Published})
	return c.Redirect("/admin/blog")
}

// POST /admin/blog/:id/delete
func (h *AdminHandler) DeletePost(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Admin.Blog.DeletePost(id); err != nil {
		applog.Error(c, "admin.blog.delete.fail", err, map[string]any{"post_id": id})
		return notFound(c, fiber.StatusNotFound, "Post not found")
	}
	applog.Audit(c, "admin.blog.delete", map[string]any{"post_id": id})
	return c.Redirect("/admin/blog")
}

// GET /admin/blog/categories
func (h *AdminHandler) BlogCategories(c *fiber.Ctx) error {
	cats, err := h.Admin.Blog.Categories()
	if err != nil {
		applog.Error(c, "admin.blog.categories.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load blog categories")
	}
	var edit domain.BlogCategory
	if id := c.Query("edit"); id != "" {
		edit, _ = h.Admin.Blog.Category(id)
	}
	return render(c, "admin_blog_categories", fiber.Map{"Categories": cats, "Edit": edit, "Err": c.Query("err")})
}

func blogCategoryFromForm(c *fiber.Ctx, bc *domain.BlogCategory) bool {
	var ok bool
	if bc.Name, ok = validate.Name(c.FormValue("name")); !ok {
		return false
	}
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = validate.Slugify(bc.Name)
	}
	bc.Description = strings.TrimSpace(c.FormValue("description"))
	bc.Slug, ok = validate.Slug(slug)
	return ok
}

func (h *AdminHandler) blogCategoriesError(c *fiber.Ctx, msg string) error {
	return c.Redirect("/admin/blog/categories?err=" + url.QueryEscape(msg))
}

// POST /admin/blog/categories
func (h *AdminHandler) CreateBlogCategory(c *fiber.Ctx) error {
	var bc domain.BlogCategory
	if !blogCategoryFromForm(c, &bc) {
		applog.Security(c, "validation.fail", map[string]any{"form": "admin.blog.categories"})
		return h.blogCategoriesError(c, "Name and slug are required")
	}
	if err := h.Admin.Blog.CreateCategory(&bc); err != nil {
		applog.Error(c, "admin.blog.categories.create.fail", err, nil)
		return h.blogCategoriesError(c, "Could not save category (is the slug unique?)")
	}
	applog.Audit(c, "admin.blog.categories.create", map[string]any{"category_id": bc.ID})
	return c.Redirect("/admin/blog/categories")
}

// POST /admin/blog/categories/:id
func (h *AdminHandler) UpdateBlogCategory(c *fiber.Ctx) error {
	bc, err := h.Admin.Blog.Category(c.Params("id"))
	if err != nil {
		return notFound(c, fiber.StatusNotFound, "Category not found")
	}
	if !blogCategoryFromForm(c, &bc) {
		applog.Security(c, "validation.fail", map[string]any{"form": "admin.blog.categories"})
		return h.blogCategoriesError(c, "Name and slug are required")
	}
	if err := h.Admin.Blog.UpdateCategory(bc); err != nil {
		applog.Error(c, "admin.blog.categories.update.fail", err, map[string]any{"category_id": bc.ID})
		return h.blogCategoriesError(c, "Could not save category")
	}
	applog.Audit(c, "admin.blog.categories.update", map[string]any{"category_id": bc.ID})
	return c.Redirect("/admin/blog/categories")
}

// POST /admin/blog/categories/:id/delete
func (h *AdminHandler) DeleteBlogCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Admin.Blog.DeleteCategory(id); err != nil {
		applog.Error(c, "admin.blog.categories.delete.fail", err, map[string]any{"category_id": id})
		return h.blogCategoriesError(c, "Could not delete category")
	}
	applog.Audit(c, "admin.blog.categories.delete", map[string]any{"category_id": id})
	return c.Redirect("/admin/blog/categories")
}

// GET /admin/banners
func (h *AdminHandler) BannersPage(c *fiber.Ctx) error {
	bs, err := h.Banners.List()
	if err != nil {
		applog.Error(c, "admin.banners.list.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load banners")
	}
	return render(c, "admin_banners", fiber.Map{"Banners": bs, "Err": c.Query("err")})
}

// POST /admin/banners
func (h *AdminHandler) CreateBanner(c *fiber.Ctx) error {
	title, ok := validate.Name(c.FormValue("title"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"form": "admin.banners"})
		return c.Redirect("/admin/banners?err=" + url.QueryEscape("Title is required"))
	}
	b := domain.Banner{
		Title:     title,
		Subtitle:  strings.TrimSpace(c.FormValue("subtitle")),
		BannerURL: strings.TrimSpace(c.FormValue("banner_url")),
		Active:    c.FormValue("active") == "on",
	}
	img, err := h.saveUpload(c, "image", "banners")
	if err != nil {
		return c.Redirect("/admin/banners?err=" + url.QueryEscape(err.Error()))
	}
	if img != "" {
		b.BannerURL = img
	}
	if err := h.Banners.Create(&b); err != nil {
		applog.Error(c, "admin.banners.create.fail", err, nil)
		return err
	}
	applog.Audit(c, "admin.banners.create", map[string]any{"banner_id": b.ID, "active": b.Active})
	return c.Redirect("/admin/banners")
}

// POST /admin/banners/:id/activate
func (h *AdminHandler) ActivateBanner(c *fiber.Ctx) error {
	b, err := h.Banners.Get(c.Params("id"))
	if err != nil {
		return notFound(c, fiber.StatusNotFound, "Banner not found")
	}
	b.Active = true
	if err := h.Banners.Update(b); err != nil {
		applog.Error(c, "admin.banners.activate.fail", err, map[string]any{"banner_id": b.ID})
		return err
	}
	applog.Audit(c, "admin.banners.activate", map[string]any{"banner_id": b.ID})
	return c.Redirect("/admin/banners")
}

// POST /admin/banners/:id/delete
func (h *AdminHandler) DeleteBanner(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Banners.Delete(id); err != nil {
		applog.Error(c, "admin.banners.delete.fail", err, map[string]any{"banner_id": id})
		return notFound(c, fiber.StatusNotFound, "Banner not found")
	}
	applog.Audit(c, "admin.banners.delete", map[string]any{"banner_id": id})
	return c.Redirect("/admin/banners")
}
