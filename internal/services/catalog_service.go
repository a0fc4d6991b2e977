package services

import (
	"errors"

	"lootmarket/internal/domain"
	"lootmarket/internal/repos"
)

type CatalogService struct {
	Cats     *repos.CategoryRepo
	Items    *repos.ItemRepo
	Banners  *repos.BannerRepo
	PageSize int
}

func NewCatalogService(cats *repos.CategoryRepo, items *repos.ItemRepo, banners *repos.BannerRepo, pageSize int) *CatalogService {
	return &CatalogService{Cats: cats, Items: items, Banners: banners, PageSize: pageSize}
}

type HomeView struct {
	Banner     *domain.Banner
	Categories []domain.Category
	Latest     []domain.Item
}

// Home gathers the landing page. A missing banner is not an error.
func (s *CatalogService) Home() (HomeView, error) {
	var v HomeView
	b, err := s.Banners.Active()
	switch {
	case err == nil:
		v.Banner = &b
	case !errors.Is(err, repos.ErrNotFound):
		return v, err
	}
	if v.Categories, err = s.Cats.List(); err != nil {
		return v, err
	}
	if v.Latest, err = s.Items.Latest(8); err != nil {
		return v, err
	}
	return v, nil
}

// Category returns the category with one page of its items, newest first.
func (s *CatalogService) Category(slug string, page int) (domain.Category, repos.Paged[domain.Item], error) {
	cat, err := s.Cats.BySlug(slug)
	if err != nil {
		return domain.Category{}, repos.Paged[domain.Item]{}, err
	}
	items, err := s.Items.List(repos.ItemFilter{CategoryID: cat.ID}, repos.NewPage(page, s.PageSize, 12))
	return cat, items, err
}

func (s *CatalogService) Item(slug string) (domain.Item, error) {
	return s.Items.BySlug(slug)
}

func (s *CatalogService) Search(q string, page int) (repos.Paged[domain.Item], error) {
	return s.Items.List(repos.ItemFilter{Query: q}, repos.NewPage(page, s.PageSize, 12))
}
