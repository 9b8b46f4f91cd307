package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Confecciones-api/internal/application/catalog"
	"github.com/jhoicas/Confecciones-api/internal/application/customer"
	"github.com/jhoicas/Confecciones-api/internal/application/events"
	"github.com/jhoicas/Confecciones-api/internal/application/inventory"
	"github.com/jhoicas/Confecciones-api/internal/application/orders"
	"github.com/jhoicas/Confecciones-api/internal/application/production"
	"github.com/jhoicas/Confecciones-api/internal/application/workflow"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
	infrakafka "github.com/jhoicas/Confecciones-api/internal/infrastructure/kafka"
	"github.com/jhoicas/Confecciones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Confecciones-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Confecciones-api/internal/interfaces/http"
	"github.com/jhoicas/Confecciones-api/pkg/config"
	"github.com/jhoicas/Confecciones-api/pkg/logger"
	"github.com/jhoicas/Confecciones-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Driver).
		Bool("auto_advance", cfg.Workflow.AutoAdvance).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner repository.TxRunner
		repos    repository.Repos
	)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store := memory.NewStore()
		txRunner, repos = store, store.Repos()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner, repos = postgres.NewTxRunner(pool), postgres.NewRepos(pool)
	}

	bus := events.NewBus()
	ledgerUC := inventory.NewLedgerUseCase(txRunner, repos, bus)
	taskUC := production.NewUseCase(txRunner, repos, bus)
	orderUC := orders.NewUseCase(txRunner, repos, ledgerUC, taskUC, bus)
	catalogUC := catalog.NewUseCase(repos.Catalog, repos.Materials)
	customerUC := customer.NewUseCase(repos.Customers)
	wf := workflow.New(orderUC, taskUC, bus, cfg.Workflow.AutoAdvance)

	m := metrics.New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	wf.Attach("metrics", m.HandleEvent)

	// Exportación de eventos a Kafka: solo si hay brokers configurados.
	var publisher *infrakafka.Publisher
	if cfg.Kafka.Enabled() {
		publisher = infrakafka.NewPublisher(infrakafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), 5*time.Second)
		wf.Attach("kafka", publisher.Handle)
		log.Component("kafka").Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("exportación de eventos activa")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(m.Middleware())

	httpRouter.Router(app, httpRouter.RouterDeps{
		CatalogUC:  catalogUC,
		CustomerUC: customerUC,
		LedgerUC:   ledgerUC,
		OrderUC:    orderUC,
		TaskUC:     taskUC,
		Workflow:   wf,
		Metrics:    m.Handler(),
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
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Component("kafka").Error().Err(err).Msg("cierre del publicador")
		}
	}

	log.Info().Msg("aplicación detenida")
}
