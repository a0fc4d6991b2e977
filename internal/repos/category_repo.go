package repos

import (
	"lootmarket/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `
    id, name, slug,
    COALESCE(description,'') AS description,
    COALESCE(image_url,'') AS image_url,
    COALESCE(banner_url,'') AS banner_url,
    COALESCE(created_at,'') AS created_at`

func (r *CategoryRepo) List() ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.Select(&out, `SELECT `+categoryCols+` FROM categories ORDER BY name`)
	return out, err
}

func (r *CategoryRepo) BySlug(slug string) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `SELECT `+categoryCols+` FROM categories WHERE slug = ?`, slug)
	return c, notFound(err)
}

func (r *CategoryRepo) Get(id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	return c, notFound(err)
}

// Create inserts c, assigning an id when it has none.
func (r *CategoryRepo) Create(c *domain.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`
		INSERT INTO categories(id, name, slug, description, image_url, banner_url, created_at)
		VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, c.ID, c.Name, c.Slug, c.Description, c.ImageURL, c.BannerURL)
	return err
}

func (r *CategoryRepo) Update(c domain.Category) error {
	res, err := r.db.Exec(`
		UPDATE categories SET name = ?, slug = ?, description = ?, image_url = ?, banner_url = ?
		WHERE id = ?
	`, c.Name, c.Slug, c.Description, c.ImageURL, c.BannerURL, c.ID)
	return affected(res, err)
}

// ItemCount is used to refuse deleting categories that still hold items.
func (r *CategoryRepo) ItemCount(id string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM items WHERE category_id = ?`, id)
	return n, err
}

func (r *CategoryRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	return affected(res, err)
}
