package handlers

import (
	"ecomapp/internal/config"
	"ecomapp/internal/notify"
	"ecomapp/internal/services"
	"ecomapp/internal/web"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler      *AuthHandler
	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	SearchHandler    *SearchHandler
	InventoryHandler *InventoryHandler
	OrderHandler     *OrderHandler
	WishlistHandler  *WishlistHandler
	AdminHandler     *AdminHandler
}

// NewDeps wires services and handlers over one database. n receives
// outbound notifications such as activation emails.
func NewDeps(db *sqlx.DB, cfg config.Config, n services.Notifier) *Deps {
	authSvc := services.NewAuthService(db, n, notify.NewRenderer(web.Engine()), services.AuthConfig{
		BaseURL:       cfg.BaseURL,
		ActivationTTL: cfg.ActivationTTL,
		BcryptCost:    cfg.BcryptCost,
	})
	catalogSvc := services.NewCatalogService(db)
	invSvc := services.NewInventoryService(db)
	orderSvc := services.NewOrderService(db)
	wishSvc := services.NewWishlistService(db)
	reportSvc := services.NewReportService(db)

	return &Deps{
		Auth:             authSvc,
		AuthHandler:      &AuthHandler{Auth: authSvc, SecureCookies: cfg.SecureCookies},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		OrderHandler:     &OrderHandler{Order: orderSvc},
		WishlistHandler:  &WishlistHandler{Wish: wishSvc},
		AdminHandler:     &AdminHandler{Auth: authSvc, Catalog: catalogSvc, Orders: orderSvc, Reports: reportSvc},
	}
}
