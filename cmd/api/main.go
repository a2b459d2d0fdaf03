// @title           Ventas POS API
// @version         1.0
// @description     API del punto de venta: catálogo, ventas, cotizaciones, inventario y comisiones.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/ventas-pos/docs"
	"github.com/jhoicas/ventas-pos/internal/application/auth"
	"github.com/jhoicas/ventas-pos/internal/application/catalog"
	"github.com/jhoicas/ventas-pos/internal/application/inventory"
	"github.com/jhoicas/ventas-pos/internal/application/ledger"
	appsales "github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/bootstrap"
	infrapdf "github.com/jhoicas/ventas-pos/internal/infrastructure/pdf"
	infraredis "github.com/jhoicas/ventas-pos/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/ventas-pos/internal/interfaces/http"
	"github.com/jhoicas/ventas-pos/internal/seed"
	"github.com/jhoicas/ventas-pos/pkg/config"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	stores, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer stores.Close()

	authUC := auth.NewAuthUseCase(stores.Users, stores.Employees, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// En memoria no hay datos persistidos: se carga el seed al arrancar si está configurado.
	if cfg.Store.Driver == config.DriverMemory && cfg.Store.SeedFile != "" {
		file, err := seed.LoadFile(cfg.Store.SeedFile, cfg.Store.SeedEncoding)
		if err != nil {
			log.Fatal().Err(err).Msg("leer seed")
		}
		if _, err := seed.Apply(ctx, file, seed.Targets{
			Employees: stores.Employees,
			Customers: stores.Customers,
			Products:  stores.Products,
			Services:  stores.Services,
			Users:     authUC,
		}, log); err != nil {
			log.Fatal().Err(err).Msg("aplicar seed")
		}
	}

	// Redis opcional: bloqueo entre nodos y caché del catálogo.
	var (
		locker appsales.SaleLocker  = appsales.NewLocalLocker()
		cache  catalog.CatalogCache = catalog.NoopCache{}
	)
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		locker = infraredis.NewSaleLocker(client, cfg.Redis.SaleLockTTL, log)
		cache = infraredis.NewCatalogCache(client)
	}

	catalogUC := catalog.NewCatalogUseCase(
		stores.Products, stores.Services, cache, cfg.Redis.CatalogCacheTTL, cfg.Sales.LowStockThreshold, log,
	)
	coordinator := appsales.NewCoordinator(
		stores.Tx, stores.Sales, stores.Employees, stores.Customers, locker, log,
		appsales.Config{
			CommissionCategory:   cfg.Sales.CommissionCategory,
			DefaultPaymentMethod: cfg.Sales.DefaultPaymentMethod,
		},
	)

	// PDF: comprobante de venta o cotización
	receiptUC := appsales.NewReceiptUseCase(
		stores.Sales, stores.Customers, stores.Employees, infrapdf.NewMarotoPDFGenerator(), cfg.Sales.StoreName,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ventas POS API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CatalogUC:   catalogUC,
		Coordinator: coordinator,
		ReceiptUC:   receiptUC,
		MovementsUC: inventory.NewMovementsUseCase(stores.Movements),
		LedgerUC:    ledger.NewLedgerUseCase(stores.Ledger),
		JWTSecret:   cfg.JWT.Secret,
		ServiceName: cfg.App.Name,
		HealthCheck: stores.Ping,
		Log:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
