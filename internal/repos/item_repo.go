package repos

import (
	"strings"

	"lootmarket/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ItemRepo struct{ db *sqlx.DB }

func NewItemRepo(db *sqlx.DB) *ItemRepo { return &ItemRepo{db: db} }

const itemCols = `
    i.id, i.category_id, COALESCE(c.name,'') AS category_name, i.name, i.slug,
    COALESCE(i.description,'') AS description, i.price, i.stock,
    COALESCE(i.image_url,'') AS image_url, COALESCE(i.stats_json,'{}') AS stats_json,
    COALESCE(i.created_at,'') AS created_at, COALESCE(i.updated_at,'') AS updated_at`

const itemFrom = ` FROM items i LEFT JOIN categories c ON c.id = i.category_id `

// ItemFilter narrows item listings. Empty fields match everything.
type ItemFilter struct {
	CategoryID string
	Query      string // substring of name or description, case-insensitive
}

func (f ItemFilter) where() (string, []any) {
	where := `1 = 1`
	args := []any{}
	if f.CategoryID != "" {
		where += ` AND i.category_id = ?`
		args = append(args, f.CategoryID)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		where += ` AND (LOWER(i.name) LIKE ? OR LOWER(COALESCE(i.description,'')) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	return where, args
}

// List returns one page of items matching f, newest first.
func (r *ItemRepo) List(f ItemFilter, p Page) (Paged[domain.Item], error) {
	where, args := f.where()

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*)`+itemFrom+`WHERE `+where, args...); err != nil {
		return Paged[domain.Item]{}, err
	}
	var out []domain.Item
	q := `SELECT ` + itemCols + itemFrom + `WHERE ` + where + `
	  ORDER BY i.created_at DESC, i.name
	  LIMIT ? OFFSET ?`
	if err := r.db.Select(&out, q, append(args, p.Size, p.Offset())...); err != nil {
		return Paged[domain.Item]{}, err
	}
	return newPaged(out, total, p), nil
}

func (r *ItemRepo) Latest(limit int) ([]domain.Item, error) {
	if limit <= 0 {
		limit = 8
	}
	var out []domain.Item
	err := r.db.Select(&out, `SELECT `+itemCols+itemFrom+`ORDER BY i.created_at DESC, i.name LIMIT ?`, limit)
	return out, err
}

func (r *ItemRepo) Get(id string) (domain.Item, error) {
	var it domain.Item
	err := r.db.Get(&it, `SELECT `+itemCols+itemFrom+`WHERE i.id = ?`, id)
	return it, notFound(err)
}

func (r *ItemRepo) BySlug(slug string) (domain.Item, error) {
	var it domain.Item
	err := r.db.Get(&it, `SELECT `+itemCols+itemFrom+`WHERE i.slug = ?`, slug)
	return it, notFound(err)
}

// ByIDs loads the current rows for a set of item ids, keyed by id.
func (r *ItemRepo) ByIDs(ids []string) (map[string]domain.Item, error) {
	out := map[string]domain.Item{}
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`SELECT `+itemCols+itemFrom+`WHERE i.id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.Item
	if err := r.db.Select(&rows, q, args...); err != nil {
		return nil, err
	}
	for _, it := range rows {
		out[it.ID] = it
	}
	return out, nil
}

func (r *ItemRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM items`)
	return n, err
}

// Create inserts it, assigning an id when it has none.
func (r *ItemRepo) Create(it *domain.Item) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.StatsJSON == "" {
		it.StatsJSON = "{}"
	}
	_, err := r.db.Exec(`
		INSERT INTO items(id, category_id, name, slug, description, price, stock, image_url, stats_json, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, it.ID, it.CategoryID, it.Name, it.Slug, it.Description, it.Price, it.Stock, it.ImageURL, it.StatsJSON)
	return err
}

func (r *ItemRepo) Update(it domain.Item) error {
	if it.StatsJSON == "" {
		it.StatsJSON = "{}"
	}
	res, err := r.db.Exec(`
		UPDATE items SET category_id = ?, name = ?, slug = ?, description = ?, price = ?, stock = ?,
		  image_url = ?, stats_json = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, it.CategoryID, it.Name, it.Slug, it.Description, it.Price, it.Stock, it.ImageURL, it.StatsJSON, it.ID)
	return affected(res, err)
}

func (r *ItemRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	return affected(res, err)
}

func (r *ItemRepo) SetStock(id string, stock int) error {
	res, err := r.db.Exec(`UPDATE items SET stock = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, stock, id)
	return affected(res, err)
}
