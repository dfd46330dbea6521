package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"syntra-pos/config"
	"syntra-pos/internal/database"
	"syntra-pos/internal/gateway/handlers"
	"syntra-pos/internal/grpcserver"
	"syntra-pos/internal/logger"
	"syntra-pos/internal/services/catalog"
	"syntra-pos/internal/services/pos"
	"syntra-pos/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Log, cfg.App.Env); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger.Get()); err != nil {
		logger.Get().Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormLevel := gormlogger.Warn
	if !cfg.IsProduction() {
		gormLevel = gormlogger.Info
	}
	db, err := database.NewConnection(cfg.DB, logger.NewGormLogger(zl.Named("gorm"), gormLevel, cfg.DB.SlowThreshold))
	if err != nil {
		return err
	}
	if err := database.MigratePOSDB(db); err != nil {
		return err
	}

	var (
		redisClient *redis.Client
		publisher   pos.Publisher = pos.NopPublisher{}
	)
	if cfg.Redis.Enabled {
		redisClient, err = config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		publisher = pos.NewRedisPublisher(redisClient, cfg.Redis.ChannelPrefix)
	}

	opts, err := pos.OptionsFromConfig(cfg.POS)
	if err != nil {
		return err
	}

	var issuer *utils.TokenIssuer
	if cfg.Auth.Enabled {
		issuer, err = utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		if err != nil {
			return err
		}
	}

	clock := utils.NewRealClock()
	tx := database.NewTransactor(db)

	productStore := catalog.NewProductStore(db)
	prices := catalog.NewPriceCatalog(productStore, catalog.NewPriceStore(db), zl)
	products := catalog.NewProductService(productStore, zl)

	orderStore := pos.NewOrderStore(db)
	orders := pos.NewOrderService(orderStore, prices, tx, publisher, clock, opts, zl)
	payments := pos.NewPaymentService(pos.NewPaymentStore(db), orderStore, tx, publisher, clock, opts, zl)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := setupRouter(routerDeps{
		cfg:     cfg,
		logger:  zl,
		db:      db,
		redis:   redisClient,
		issuer:  issuer,
		pos:     handlers.NewPOSHTTPHandler(orders, payments),
		catalog: handlers.NewCatalogHTTPHandler(products, prices, clock),
		clock:   clock,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	checks := map[string]grpcserver.Check{
		"database": func(context.Context) error { return database.Ping(db) },
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	healthServer := grpcserver.New(checks, cfg.GRPC.HealthInterval, zl)

	lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return healthServer.Serve(gctx, lis)
	})

	g.Go(func() error {
		<-gctx.Done()
		zl.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
