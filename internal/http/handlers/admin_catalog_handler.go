package handlers

import (
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"lootmarket/internal/domain"
	applog "lootmarket/internal/log"
	"lootmarket/internal/repos"
	"lootmarket/internal/services"
	"lootmarket/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxImageBytes = 5 << 20

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true}

var errBadImage = errors.New("image must be png, jpg, webp or gif and at most 5 MiB")

// saveUpload stores the optional multipart file field under MEDIA_DIR/<sub>/ and returns
// its public URL, or "" when no file was sent.
func (h *AdminHandler) saveUpload(c *fiber.Ctx, field, sub string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil || fh.Size == 0 {
		return "", nil
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExts[ext] || fh.Size > maxImageBytes {
		return "", errBadImage
	}
	dir := filepath.Join(h.MediaDir, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	if err := c.SaveFile(fh, filepath.Join(dir, name)); err != nil {
		return "", err
	}
	applog.Audit(c, "admin.media.upload", map[string]any{"file": sub + "/" + name, "bytes": fh.Size})
	return "/media/" + sub + "/" + name, nil
}

// GET /admin/items
func (h *AdminHandler) Items(c *fiber.Ctx) error {
	f := repos.ItemFilter{CategoryID: c.Query("category")}
	if raw := c.Query("q"); strings.TrimSpace(raw) != "" {
		q, ok := validate.Q(raw)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q"})
			return c.Status(fiber.StatusBadRequest).SendString("invalid search")
		}
		f.Query = q
	}
	items, err := h.Admin.Items.List(f, h.page(c))
	if err != nil {
		applog.Error(c, "admin.items.list.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load items")
	}
	cats, _ := h.Admin.Cats.List()
	return render(c, "admin_items", fiber.Map{"Page": items, "Filter": f, "Categories": cats})
}

// GET /admin/items/new, GET /admin/items/:id/edit
func (h *AdminHandler) ItemForm(c *fiber.Ctx) error {
	var it domain.Item
	if id := c.Params("id"); id != "" {
		var err error
		if it, err = h.Admin.Items.Get(id); err != nil {
			return notFound(c, fiber.StatusNotFound, "Item not found")
		}
	}
	return h.renderItemForm(c, fiber.StatusOK, it, "")
}

func (h *AdminHandler) renderItemForm(c *fiber.Ctx, status int, it domain.Item, msg string) error {
	cats, err := h.Admin.Cats.List()
	if err != nil {
		return err
	}
	return render(c.Status(status), "admin_item_form", fiber.Map{"Item": it, "Categories": cats, "Err": msg})
}

// itemFromForm reads and validates the item form into it. Fields not on the form are kept.
func itemFromForm(c *fiber.Ctx, it *domain.Item) string {
	var ok bool
	if it.Name, ok = validate.Name(c.FormValue("name")); !ok {
		return "Name is required"
	}
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = validate.Slugify(it.Name)
	}
	if it.Slug, ok = validate.Slug(slug); !ok {
		return "Slug may contain lowercase letters, digits and dashes"
	}
	if it.CategoryID, ok = validate.ID(c.FormValue("category_id")); !ok {
		return "Pick a category"
	}
	if it.Price, ok = validate.Price(c.FormValue("price")); !ok {
		return "Price must be a non-negative amount with at most two decimals"
	}
	if it.Stock, ok = validate.Stock(c.FormValue("stock")); !ok {
		return "Stock must be a non-negative whole number"
	}
	it.Description = strings.TrimSpace(c.FormValue("description"))
	stats := strings.TrimSpace(c.FormValue("stats"))
	if stats == "" {
		stats = "{}"
	}
	var obj map[string]any
	if json.Unmarshal([]byte(stats), &obj) != nil {
		return "Stats must be a JSON object"
	}
	it.StatsJSON = stats
	if u := strings.TrimSpace(c.FormValue("image_url")); u != "" {
		it.ImageURL = u
	}
	return ""
}

// POST /admin/items
func (h *AdminHandler) CreateItem(c *fiber.Ctx) error {
	var it domain.Item
	if msg := itemFromForm(c, &it); msg != "" {
		applog.Security(c, "validation.fail", map[string]any{"form": "admin.items"})
		return h.renderItemForm(c, fiber.StatusBadRequest, it, msg)
	}
	img, err := h.saveUpload(c, "image", "items")
	if err != nil {
		return h.renderItemForm(c, fiber.StatusBadRequest, it, err.Error())
	}
	if img != "" {
		it.ImageURL = img
	}
	if err := h.Admin.Items.Create(&it); err != nil {
		applog.Error(c, "admin.items.create.fail", err, nil)
		return h.renderItemForm(c, fiber.StatusBadRequest, it, "Could not save item (is the slug unique?)")
	}
	applog.Audit(c, "admin.items.create", map[string]any{"item_id": it.ID, "slug": it.Slug})
	return c.Redirect("/admin/items")
}

// POST /admin/items/:id
func (h *AdminHandler) UpdateItem(c *fiber.Ctx) error {
	it, err := h.Admin.Items.Get(c.Params("id"))
	if err != nil {
		return notFound(c, fiber.StatusNotFound, "Item not found")
	}
	if msg := itemFromForm(c, &it); msg != "" {
		applog.Security(c, "validation.fail", map[string]any{"form": "admin.items"})
		return h.renderItemForm(c, fiber.StatusBadRequest, it, msg)
	}
	img, err := h.saveUpload(c, "image", "items")
	if err != nil {
		return h.renderItemForm(c, fiber.StatusBadRequest, it, err.Error())
	}
	if img != "" {
		it.ImageURL = img
	}
	if err := h.Admin.Items.Update(it); err != nil {
		applog.Error(c, "admin.items.update.fail", err, map[string]any{"item_id": it.ID})
		return h.renderItemForm(c, fiber.StatusBadRequest, it, "Could not save item (is the slug unique?)")
	}
	applog.Audit(c, "admin.items.update", map[string]any{"item_id": it.ID, "price": it.Price.StringFixed(2), "stock": it.Stock})
	return c.Redirect("/admin/items")
}

// POST /admin/items/:id/stock
func (h *AdminHandler) Restock(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	qty, ok := validate.Stock(c.FormValue("stock"))
	if !okID || !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "stock"})
		return c.Status(400).SendString("invalid input")
	}
	if err := h.Inv.Restock(id, qty); err != nil {
		applog.Error(c, "admin.inventory.save.fail", err, map[string]any{"item_id": id, "stock": qty})
		return c.Status(400).SendString("could not save stock")
	}
	applog.Audit(c, "admin.inventory.save", map[string]any{"item_id": id, "stock": qty})
	return c.Redirect("/admin/items")
}

// POST /admin/items/:id/delete
func (h *AdminHandler) DeleteItem(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Admin.Items.Delete(id); err != nil {
		applog.Error(c, "admin.items.delete.fail", err, map[string]any{"item_id": id})
		return notFound(c, fiber.StatusNotFound, "Item not found")
	}
	applog.Audit(c, "admin.items.delete", map[string]any{"item_id": id})
	return c.Redirect("/admin/items")
}

// GET /admin/categories
func (h *AdminHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Admin.Cats.List()
	if err != nil {
		applog.Error(c, "admin.categories.list.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load categories")
	}
	var edit domain.Category
	if id := c.Query("edit"); id != "" {
		edit, _ = h.Admin.Cats.Get(id)
	}
	return render(c, "admin_categories", fiber.Map{"Categories": cats, "Edit": edit, "Err": c.Query("err")})
}

func categoryFromForm(c *fiber.Ctx, cat *domain.Category) bool {
	var ok bool
	if cat.Name, ok = validate.Name(c.FormValue("name")); !ok {
		return false
	}
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = validate.Slugify(cat.Name)
	}
	if cat.Slug, ok = validate.Slug(slug); !ok {
		return false
	}
	cat.Description = strings.TrimSpace(c.FormValue("description"))
	if u := strings.TrimSpace(c.FormValue("image_url")); u != "" {
		cat.ImageURL = u
	}
	if u := strings.TrimSpace(c.FormValue("banner_url")); u != "" {
		cat.BannerURL = u
	}
	return true
}

func (h *AdminHandler) categoriesError(c *fiber.Ctx, msg string) error {
	return c.Redirect("/admin/categories?err=" + url.QueryEscape(msg))
}

// POST /admin/categories
func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	var cat domain.Category
	if !categoryFromForm(c, &cat) {
		applog.Security(c, "validation.fail", map[string]any{"form": "admin.categories"})
		return h.categoriesError(c, "Name and slug are required")
	}
	img, err := h.saveUpload(c, "image", "categories")
	if err != nil {
		return h.categoriesError(c, err.Error())
	}
	if img != "" {
		cat.ImageURL = img
	}
	if err := h.Admin.Cats.Create(&cat); err != nil {
		applog.Error(c, "admin.categories.create.fail", err, nil)
		return h.categoriesError(c, "Could not save category (is the slug unique?)")
	}
	applog.Audit(c, "admin.categories.create", map[string]any{"category_id": cat.ID})
	return c.Redirect("/admin/categories")
}

// POST /admin/categories/:id
func (h *AdminHandler) UpdateCategory(c *fiber.Ctx) error {
	cat, err := h.Admin.Cats.Get(c.Params("id"))
	if err != nil {
		return notFound(c, fiber.StatusNotFound, "Category not found")
	}
	if !categoryFromForm(c, &cat) {
		applog.Security(c, "validation.fail", map[string]any{"form": "admin.categories"})
		return h.categoriesError(c, "Name and slug are required")
	}
	img, err := h.saveUpload(c, "image", "categories")
	if err != nil {
		return h.categoriesError(c, err.Error())
	}
	if img != "" {
		cat.ImageURL = img
	}
	if err := h.Admin.Cats.Update(cat); err != nil {
		applog.Error(c, "admin.categories.update.fail", err, map[string]any{"category_id": cat.ID})
		return h.categoriesError(c, "Could not save category")
	}
	applog.Audit(c, "admin.categories.update", map[string]any{"category_id": cat.ID})
	return c.Redirect("/admin/categories")
}

// POST /admin/categories/:id/delete
func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Admin.DeleteCategory(id); err != nil {
		if errors.Is(err, services.ErrCategoryInUse) {
			applog.Security(c, "admin.categories.delete.refused", map[string]any{"category_id": id})
			return h.categoriesError(c, "Move or delete the category's items first")
		}
		applog.Error(c, "admin.categories.delete.fail", err, map[string]any{"category_id": id})
		return h.categoriesError(c, "Could not delete category")
	}
	applog.Audit(c, "admin.categories.delete", map[string]any{"category_id": id})
	return c.Redirect("/admin/categories")
}
