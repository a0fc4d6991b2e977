package repos

import (
	"lootmarket/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BannerRepo struct{ db *sqlx.DB }

func NewBannerRepo(db *sqlx.DB) *BannerRepo { return &BannerRepo{db: db} }

const bannerCols = `id, title, COALESCE(subtitle,'') AS subtitle, COALESCE(banner_url,'') AS banner_url,
    is_active, COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at`

// Active returns the banner shown on the home page, or ErrNotFound.
func (r *BannerRepo) Active() (domain.Banner, error) {
	var b domain.Banner
	err := r.db.Get(&b, `SELECT `+bannerCols+` FROM homepage_banner WHERE is_active = 1
		ORDER BY COALESCE(updated_at, created_at) DESC LIMIT 1`)
	return b, notFound(err)
}

func (r *BannerRepo) List() ([]domain.Banner, error) {
	var out []domain.Banner
	err := r.db.Select(&out, `SELECT `+bannerCols+` FROM homepage_banner ORDER BY created_at DESC, title`)
	return out, err
}

func (r *BannerRepo) Get(id string) (domain.Banner, error) {
	var b domain.Banner
	err := r.db.Get(&b, `SELECT `+bannerCols+` FROM homepage_banner WHERE id = ?`, id)
	return b, notFound(err)
}

// Create inserts b. An active banner deactivates every other one.
func (r *BannerRepo) Create(b *domain.Banner) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if b.Active {
		if _, err := tx.Exec(`UPDATE homepage_banner SET is_active = 0 WHERE is_active = 1`); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`INSERT INTO homepage_banner(id, title, subtitle, banner_url, is_active, created_at)
		VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`, b.ID, b.Title, b.Subtitle, b.BannerURL, b.Active); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *BannerRepo) Update(b domain.Banner) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if b.Active {
		if _, err := tx.Exec(`UPDATE homepage_banner SET is_active = 0 WHERE id <> ?`, b.ID); err != nil {
			return err
		}
	}
	res, err := tx.Exec(`UPDATE homepage_banner SET title = ?, subtitle = ?, banner_url = ?, is_active = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = ?`, b.Title, b.Subtitle, b.BannerURL, b.Active, b.ID)
	if err := affected(res, err); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *BannerRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM homepage_banner WHERE id = ?`, id)
	return affected(res, err)
}
