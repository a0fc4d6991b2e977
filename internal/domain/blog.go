package domain

type BlogCategory struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Slug        string `db:"slug"`
	Description string `db:"description"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

type BlogPost struct {
	ID              string `db:"id"`
	Title           string `db:"title"`
	Slug            string `db:"slug"`
	Excerpt         string `db:"excerpt"`
	Content         string `db:"content"`
	FeaturedImage   string `db:"featured_image"`
	MetaTitle       string `db:"meta_title"`
	MetaDescription string `db:"meta_description"`
	MetaKeywords    string `db:"meta_keywords"` // comma separated
	Published       bool   `db:"is_published"`
	PublishedAt     string `db:"published_at"`
	CategoryID      string `db:"category_id"`
	CategoryName    string `db:"category_name"`
	CreatedAt       string `db:"created_at"`
	UpdatedAt       string `db:"updated_at"`
}
