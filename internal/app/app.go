package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/sampaiobrenner/bookstore/config"
	"github.com/sampaiobrenner/bookstore/internal/adapter/catalog"
	"github.com/sampaiobrenner/bookstore/internal/adapter/httphandler"
	"github.com/sampaiobrenner/bookstore/internal/adapter/kafka"
	"github.com/sampaiobrenner/bookstore/internal/adapter/rediscache"
	"github.com/sampaiobrenner/bookstore/internal/adapter/storage"
	"github.com/sampaiobrenner/bookstore/internal/core/service"
	"github.com/sampaiobrenner/bookstore/pkg/breaker"
	"github.com/sampaiobrenner/bookstore/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type App struct {
	ctx context.Context
	cfg config.Config
	wg  sync.WaitGroup

	cache  rediscache.Cache
	sqldb  storage.SQLDB
	events kafka.OrdersProducer

	cart     *service.CartService
	checkout *service.CheckoutService
	presence *service.PresenceService

	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initOutboundAdapters()
	app.initCoreServices()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"
	ctx := app.ctx

	cache, err := rediscache.New(ctx, app.cfg.Cache.Addr)
	if err != nil {
		app.fallDown(op, err)
	}
	app.cache = cache

	sqldb, err := storage.NewSQLDB(ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.sqldb = sqldb

	app.events = app.createOrdersProducer()
}

func (app *App) createOrdersProducer() kafka.OrdersProducer {
	const op = "App.createOrdersProducer"
	ctx := app.ctx

	srClient, err := sr.NewClient(
		sr.URLs(app.cfg.Broker.SchemaRegistryURLs...),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	topic := app.cfg.Broker.OrderPlacedTopic
	serde, err := schema.NewSerdeOrderPlacedV1(
		ctx,
		schema.SubjectOpt(topic+"-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreator(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewOrdersProducer(
		kafka.ProducerClientOpt(ctx, app.cfg.Broker.SeedBrokers, topic),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	return producer
}

func (app *App) initCoreServices() {
	catalogGate := breaker.New(breaker.Config{
		FailureThreshold: app.cfg.Catalog.BreakerThreshold,
		Cooldown:         app.cfg.Catalog.BreakerCooldown,
	})
	ordersGate := breaker.New(breaker.Config{
		FailureThreshold: app.cfg.Orders.BreakerThreshold,
		Cooldown:         app.cfg.Orders.BreakerCooldown,
	})

	catalogClient := catalog.New(
		app.cfg.Catalog.BaseURL, app.cfg.Catalog.Timeout,
	)

	app.cart = service.NewCartService(
		app.cache, catalogClient, catalogGate, app.cfg.Cache.CartTTL,
	)
	app.checkout = service.NewCheckoutService(
		app.cart, storage.NewOrdersRepository(app.sqldb),
		app.events, ordersGate,
	)
	app.presence = service.NewPresenceService(
		app.cache,
		app.cfg.Cache.PresenceMarkerTTL,
		app.cfg.Cache.PresenceSweep,
	)
}

func (app *App) initInboundAdapters() {
	addr := app.cfg.HTTPServerAddr
	mux := http.NewServeMux()
	httphandler.RegisterShop(mux, app.cart, app.checkout, app.presence)

	handler := httphandler.AllowJSON(httphandler.RequireCustomer(mux))
	app.httpServer = httphandler.NewHTTPServer(addr, handler)
}

func (app *App) Run(stopFn context.CancelFunc) {
	app.wg.Add(1)
	go app.presence.Run(app.ctx, &app.wg)

	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.wg.Wait()
	app.events.Close()
	app.sqldb.Close()
	app.cache.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
