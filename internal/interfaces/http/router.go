package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-pos/internal/application/auth"
	"github.com/jhoicas/ventas-pos/internal/application/catalog"
	"github.com/jhoicas/ventas-pos/internal/application/inventory"
	"github.com/jhoicas/ventas-pos/internal/application/ledger"
	appsales "github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CatalogUC   *catalog.CatalogUseCase
	Coordinator *appsales.Coordinator
	ReceiptUC   *appsales.ReceiptUseCase
	MovementsUC *inventory.MovementsUseCase
	LedgerUC    *ledger.LedgerUseCase
	JWTSecret   string
	ServiceName string
	// HealthCheck opcional: ping al almacenamiento.
	HealthCheck func(ctx context.Context) error
	Log         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("http")

	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.HealthCheck != nil {
			if err := deps.HealthCheck(c.UserContext()); err != nil {
				log.Warn().Err(err).Msg("health check")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": deps.ServiceName})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api")
	authMW := AuthMiddleware(deps.JWTSecret)
	adminOnly := RequireRole(RoleAdmin)
	anyOperator := RequireRole(RoleAdmin, RoleVendedor)

	// Auth: login público; alta de operadores solo admin.
	authHandler := NewAuthHandler(deps.AuthUC, log)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/register", authMW, adminOnly, authHandler.Register)

	protected := api.Group("/", authMW, anyOperator)

	catalogHandler := NewCatalogHandler(deps.CatalogUC, log)
	protected.Get("/catalog", catalogHandler.Snapshot)

	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.Coordinator, deps.CatalogUC, deps.ReceiptUC, log)
	sales.Post("/preview", saleHandler.Preview)
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.Get)
	sales.Put("/:id", saleHandler.Update)
	sales.Post("/:id/complete", saleHandler.Complete)
	sales.Get("/:id/pdf", saleHandler.PDF)
	sales.Delete("/:id", adminOnly, saleHandler.Delete)

	inventoryHandler := NewInventoryHandler(deps.MovementsUC, log)
	protected.Get("/inventory/movements", inventoryHandler.ListMovements)

	ledgerHandler := NewLedgerHandler(deps.LedgerUC, log)
	protected.Get("/ledger", adminOnly, ledgerHandler.List)
}
