package handlers

import (
	"lootmarket/internal/config"
	"lootmarket/internal/repos"
	"lootmarket/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	AuthHandler      *AuthHandler
	CatalogHandler   *CatalogHandler
	InventoryHandler *InventoryHandler
	SearchHandler    *SearchHandler
	CartHandler      *CartHandler
	OrderHandler     *OrderHandler
	BlogHandler      *BlogHandler
	AdminHandler     *AdminHandler

	Auth  *services.AuthService
	Carts *services.CartService
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	itemRepo := repos.NewItemRepo(db)
	bannerRepo := repos.NewBannerRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	blogRepo := repos.NewBlogRepo(db)
	storage := repos.NewSessionStorageRepo(db, cfg.CartMaxBytes)

	catalogSvc := services.NewCatalogService(catRepo, itemRepo, bannerRepo, cfg.PageSize)
	invSvc := services.NewInventoryService(itemRepo)
	cartSvc := services.NewCartService(itemRepo, storage, cfg.CartKey)
	orderSvc := services.NewOrderService(itemRepo, orderRepo)
	blogSvc := services.NewBlogService(blogRepo)
	adminSvc := &services.AdminService{
		Items:  itemRepo,
		Cats:   catRepo,
		Orders: orderRepo,
		Users:  auth.Users,
		Blog:   blogRepo,
		Auth:   auth,
	}

	return &Deps{
		AuthHandler:      &AuthHandler{Auth: auth, Carts: cartSvc, SecureCookies: cfg.SecureCookies},
		CatalogHandler:   &CatalogHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
		CartHandler:      &CartHandler{Cart: cartSvc, SecureCookies: cfg.SecureCookies},
		OrderHandler:     &OrderHandler{Cart: cartSvc, Order: orderSvc, SecureCookies: cfg.SecureCookies},
		BlogHandler:      &BlogHandler{Blog: blogSvc},
		AdminHandler: &AdminHandler{
			Admin:    adminSvc,
			Inv:      invSvc,
			Banners:  bannerRepo,
			MediaDir: cfg.MediaDir,
			PageSize: cfg.AdminPageSize,
		},
		Auth:  auth,
		Carts: cartSvc,
	}
}
