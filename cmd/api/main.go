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
	"github.com/jhoicas/Obras-api/internal/application/ledger"
	"github.com/jhoicas/Obras-api/internal/infrastructure/memory"
	"github.com/jhoicas/Obras-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Obras-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Obras-api/internal/interfaces/http"
	"github.com/jhoicas/Obras-api/pkg/config"
	"github.com/jhoicas/Obras-api/pkg/logger"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	deletePolicy, err := ledger.ParseDeletePolicy(cfg.Ledger.DeletePolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("LEDGER_DELETE_POLICY")
	}
	threshold, err := decimal.NewFromString(cfg.Ledger.LowStockThreshold)
	if err != nil {
		log.Fatal().Err(err).Msg("LEDGER_LOW_STOCK_THRESHOLD")
	}

	ctx := context.Background()
	var (
		txRunner ledger.TxRunner
		reads    ledger.Repos
	)
	switch cfg.DB.Driver {
	case config.DriverMemory:
		store := memory.New()
		txRunner, reads = store, store.Repositories()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.RunMigrations(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner, reads = postgres.NewTxRunner(pool), postgres.Repositories(pool)
	}

	observer := metrics.NewLedgerObserver()
	ledgerSvc := ledger.NewService(txRunner, reads, ledger.Options{
		TxTimeout:         cfg.Ledger.TxTimeout(),
		DeletePolicy:      deletePolicy,
		LowStockThreshold: threshold,
		Observer:          observer,
		Logger:            log.Zerolog(),
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Obras API - Inventario",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	deps := httpRouter.RouterDeps{
		Ledger:    ledgerSvc,
		JWTSecret: cfg.JWT.Secret,
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = observer.Handler()
		deps.MetricsPath = cfg.Metrics.Path
	}
	httpRouter.Router(app, deps)

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
