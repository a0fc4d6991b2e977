package repos

import (
	"lootmarket/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BlogRepo struct{ db *sqlx.DB }

func NewBlogRepo(db *sqlx.DB) *BlogRepo { return &BlogRepo{db: db} }

const blogCategoryCols = `id, name, slug, COALESCE(description,'') AS description,
    COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at`

const blogPostCols = `
    p.id, p.title, p.slug, COALESCE(p.excerpt,'') AS excerpt, p.content,
    COALESCE(p.featured_image,'') AS featured_image, COALESCE(p.meta_title,'') AS meta_title,
    COALESCE(p.meta_description,'') AS meta_description, COALESCE(p.meta_keywords,'') AS meta_keywords,
    p.is_published, COALESCE(p.published_at,'') AS published_at,
    COALESCE(p.category_id,'') AS category_id, COALESCE(c.name,'') AS category_name,
    COALESCE(p.created_at,'') AS created_at, COALESCE(p.updated_at,'') AS updated_at`

const blogPostFrom = ` FROM blog_posts p LEFT JOIN blog_categories c ON c.id = p.category_id `

func (r *BlogRepo) Categories() ([]domain.BlogCategory, error) {
	var out []domain.BlogCategory
	err := r.db.Select(&out, `SELECT `+blogCategoryCols+` FROM blog_categories ORDER BY name`)
	return out, err
}

func (r *BlogRepo) Category(id string) (domain.BlogCategory, error) {
	var c domain.BlogCategory
	err := r.db.Get(&c, `SELECT `+blogCategoryCols+` FROM blog_categories WHERE id = ?`, id)
	return c, notFound(err)
}

func (r *BlogRepo) CreateCategory(c *domain.BlogCategory) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`INSERT INTO blog_categories(id, name, slug, description, created_at)
		VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)`, c.ID, c.Name, c.Slug, c.Description)
	return err
}

func (r *BlogRepo) UpdateCategory(c domain.BlogCategory) error {
	res, err := r.db.Exec(`UPDATE blog_categories SET name = ?, slug = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, c.Name, c.Slug, c.Description, c.ID)
	return affected(res, err)
}

// DeleteCategory leaves the category's posts uncategorised.
func (r *BlogRepo) DeleteCategory(id string) error {
	res, err := r.db.Exec(`DELETE FROM blog_categories WHERE id = ?`, id)
	return affected(res, err)
}

// Published returns one page of published posts, most recently published first.
func (r *BlogRepo) Published(p Page) (Paged[domain.BlogPost], error) {
	return r.list(`p.is_published = 1`, p)
}

// All returns posts regardless of their published flag, for the admin area.
func (r *BlogRepo) All(p Page) (Paged[domain.BlogPost], error) {
	return r.list(`1 = 1`, p)
}

func (r *BlogRepo) list(where string, p Page) (Paged[domain.BlogPost], error) {
	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM blog_posts p WHERE `+where); err != nil {
		return Paged[domain.BlogPost]{}, err
	}
	var out []domain.BlogPost
	if err := r.db.Select(&out, `SELECT `+blogPostCols+blogPostFrom+`WHERE `+where+`
		ORDER BY COALESCE(p.published_at, p.created_at) DESC, p.title
		LIMIT ? OFFSET ?`, p.Size, p.Offset()); err != nil {
		return Paged[domain.BlogPost]{}, err
	}
	return newPaged(out, total, p), nil
}

// PublishedBySlug hides drafts from the public blog.
func (r *BlogRepo) PublishedBySlug(slug string) (domain.BlogPost, error) {
	var bp domain.BlogPost
	err := r.db.Get(&bp, `SELECT `+blogPostCols+blogPostFrom+`WHERE p.slug = ? AND p.is_published = 1`, slug)
	return bp, notFound(err)
}

func (r *BlogRepo) Post(id string) (domain.BlogPost, error) {
	var bp domain.BlogPost
	err := r.db.Get(&bp, `SELECT `+blogPostCols+blogPostFrom+`WHERE p.id = ?`, id)
	return bp, notFound(err)
}

func (r *BlogRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM blog_posts`)
	return n, err
}

// CreatePost stamps published_at when the post goes out published.
func (r *BlogRepo) CreatePost(bp *domain.BlogPost) error {
	if bp.ID == "" {
		bp.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`
		INSERT INTO blog_posts(id, title, slug, excerpt, content, featured_image, meta_title, meta_description,
		  meta_keywords, is_published, published_at, category_id, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CASE WHEN ? THEN CURRENT_TIMESTAMP END, NULLIF(?, ''), CURRENT_TIMESTAMP)
	`, bp.ID, bp.Title, bp.Slug, bp.Excerpt, bp.Content, bp.FeaturedImage, bp.MetaTitle, bp.MetaDescription,
		bp.MetaKeywords, bp.Published, bp.Published, bp.CategoryID)
	return err
}

// UpdatePost keeps the first publication date when a post is re-saved.
func (r *BlogRepo) UpdatePost(bp domain.BlogPost) error {
	res, err := r.db.Exec(`
		UPDATE blog_posts SET title = ?, slug = ?, excerpt = ?, content = ?, featured_image = ?, meta_title = ?,
		  meta_description = ?, meta_keywords = ?, is_published = ?,
		  published_at = CASE WHEN ? THEN COALESCE(published_at, CURRENT_TIMESTAMP) ELSE NULL END,
		  category_id = NULLIF(?, ''), updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, bp.Title, bp.Slug, bp.Excerpt, bp.Content, bp.FeaturedImage, bp.MetaTitle, bp.MetaDescription,
		bp.MetaKeywords, bp.Published, bp.Published, bp.CategoryID, bp.ID)
	return affected(res, err)
}

func (r *BlogRepo) DeletePost(id string) error {
	res, err := r.db.Exec(`DELETE FROM blog_posts WHERE id = ?`, id)
	return affected(res, err)
}
