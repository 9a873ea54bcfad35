package httpserver

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"enterprise-pos/internal/domain"
	"enterprise-pos/internal/hold"
	"enterprise-pos/internal/pos"
	productrepo "enterprise-pos/internal/repository/product"
	salerepo "enterprise-pos/internal/repository/sale"
)

// CatalogService lists and looks up products for the POS terminal.
type CatalogService interface {
	List(ctx context.Context, filter productrepo.ListFilter) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

// CustomerService is the customer directory.
type CustomerService interface {
	Find(ctx context.Context, id string) (*domain.Customer, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Customer, error)
}

// ReceiptStore serves printable receipt views for committed sales.
type ReceiptStore interface {
	GetReceipt(ctx context.Context, saleID string) (*domain.Receipt, error)
}

// RefundStore reverses a committed sale, restoring its stock.
type RefundStore interface {
	RefundSale(ctx context.Context, saleID, reason string) (*salerepo.RefundResult, error)
}

// Deps carries the collaborators the routes need.
type Deps struct {
	Catalog           CatalogService
	Customers         CustomerService
	Checkout          *pos.Checkout
	Receipts          ReceiptStore
	Refunds           RefundStore
	Holds             *hold.Store
	DefaultTaxPercent float64
	CORSOrigins       []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(deps.CORSOrigins) == 1 && deps.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = deps.CORSOrigins
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &posHandlers{
		catalog:           deps.Catalog,
		customers:         deps.Customers,
		checkout:          deps.Checkout,
		receipts:          deps.Receipts,
		refunds:           deps.Refunds,
		holds:             deps.Holds,
		defaultTaxPercent: deps.DefaultTaxPercent,
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/pos/products", h.listProducts)
		v1.GET("/pos/categories", h.listCategories)
		v1.POST("/pos/checkout", h.checkoutSale)
		v1.GET("/pos/receipts/:saleID", h.getReceipt)
		v1.POST("/pos/sales/:saleID/refund", h.refundSale)
		v1.POST("/pos/holds", h.holdCart)
		v1.GET("/pos/holds", h.listHolds)
		v1.POST("/pos/holds/:reference/resume", h.resumeHold)
		v1.GET("/customers", h.searchCustomers)
		v1.GET("/customers/:id", h.getCustomer)
	}

	return router
}
