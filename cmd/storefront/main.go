package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cartsync"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

var build = "develop"

func main() {
	cfg, help, err := config.Load(build)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if help != "" {
		fmt.Println(help)
		return
	}

	logger, err := newLogger(cfg.Log.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("startup", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg config.Config, logger *zap.Logger) error {
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	logger.Info("starting storefront", zap.String("build", build), zap.String("config", out))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Base HTTP client (shared), traced
	sharedHTTP := &http.Client{
		Timeout:   cfg.Upstream.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	base := clients.NewClient("marketplace-api", cfg.Upstream.BaseURL, sharedHTTP)

	backend, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	publisher, err := openPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("publisher close", zap.Error(err))
		}
	}()

	carts := cart.NewManager(backend, cartsync.New(clients.NewOrderItemClient(base), logger), logger)
	if cfg.Carts.Idle > 0 {
		go carts.EvictIdle(ctx, cfg.Carts.Idle, cfg.Carts.SweepInterval)
	}
	svc := checkout.NewService(
		clients.NewShippingClient(base),
		clients.NewVoucherClient(base),
		clients.NewOrderClient(base),
		publisher,
		logger,
		checkout.Options{
			Pricing:    cfg.PricingConfig(),
			CatalogTTL: cfg.Upstream.CatalogTTL,
			Producer:   "storefront-go",
		},
	)

	var limiter *middleware.Limiter
	if cfg.RateLimit.RPS > 0 {
		limiter = middleware.NewLimiter(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Idle)
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:       logger,
		CORSOrigins:  cfg.Web.CORSOrigins,
		JWTSecret:    cfg.Auth.JWTSecret,
		Limiter:      limiter,
		Carts:        carts,
		Checkout:     svc,
		HealthProbes: []clients.HealthProbe{{Name: "marketplace-api", Client: base, Path: "/health"}},
	})

	srv := &http.Server{
		Addr:         cfg.Web.Address,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("could not stop server gracefully: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (cart.Storage, func(), error) {
	switch cfg.Storage.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
		})
		r := storage.NewRedis(client, cfg.Storage.RedisPrefix, cfg.Storage.RedisTTL)
		if err := r.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return r, func() { _ = client.Close() }, nil

	case "postgres":
		if cfg.Storage.Migrate {
			if err := storage.RunMigrations(cfg.Storage.PostgresDSN, logger); err != nil {
				return nil, nil, err
			}
		}
		pool, err := pgxpool.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres pool: %w", err)
		}
		p := storage.NewPostgres(pool)
		if err := p.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		return p, pool.Close, nil

	default:
		logger.Warn("using in-memory cart storage; carts are lost on restart")
		return storage.NewMemory(), func() {}, nil
	}
}

func openPublisher(cfg config.Config, logger *zap.Logger) (events.Publisher, error) {
	switch cfg.Events.Backend {
	case "rabbitmq":
		conn, err := amqp.Dial(cfg.Events.RabbitURL)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		p, err := events.NewRabbitPublisher(conn)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return &connPublisher{Publisher: p, conn: conn}, nil

	case "kafka":
		logger.Info("publishing checkout events to kafka", zap.Strings("brokers", cfg.Events.KafkaBrokers), zap.String("topic", cfg.Events.KafkaTopic))
		return events.NewKafkaPublisher(cfg.Events.KafkaTopic, cfg.Events.KafkaBrokers...), nil

	default:
		return events.NopPublisher{}, nil
	}
}

// connPublisher closes the AMQP connection along with its channel.
type connPublisher struct {
	events.Publisher
	conn *amqp.Connection
}

func (p *connPublisher) Close() error {
	return errors.Join(p.Publisher.Close(), p.conn.Close())
}
