package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/mnkvreels/vreels-backend/internal/config"
	"github.com/mnkvreels/vreels-backend/internal/consumer"
	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/internal/handler"
	"github.com/mnkvreels/vreels-backend/internal/notify"
	"github.com/mnkvreels/vreels-backend/internal/reconciler"
	"github.com/mnkvreels/vreels-backend/internal/repository"
	"github.com/mnkvreels/vreels-backend/internal/service"
	"github.com/mnkvreels/vreels-backend/internal/store"
	pkgconfig "github.com/mnkvreels/vreels-backend/pkg/config"
	"github.com/mnkvreels/vreels-backend/pkg/database"
	"github.com/mnkvreels/vreels-backend/pkg/jwt"
	pkglog "github.com/mnkvreels/vreels-backend/pkg/log"
	"github.com/mnkvreels/vreels-backend/pkg/middleware"
	"github.com/mnkvreels/vreels-backend/pkg/pubsub"
)

const serviceName = "social-graph-service"

func main() {
	// 1. Load configuration
	cfg, err := config.Load(pkgconfig.GetEnv("CONFIG_PATH", "./config"))
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// 2. Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: serviceName,
	})
	logger := pkglog.L()

	// 3. Init DB and migrate every graph table
	db, err := database.New(cfg.Database.ToDatabase())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to get underlying sql.DB")
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// 4. Init Redis counter cache; the notification publisher shares its client
	countStore, err := store.NewRedisCountStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CountTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer countStore.Close()
	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")

	var publisher pubsub.Publisher
	if cfg.PubSub.Driver == "redis" && cfg.PubSub.Redis.Address == cfg.Redis.Address {
		publisher = pubsub.NewRedisPublisherFromClient(countStore.Client())
	} else {
		publisher, err = pubsub.NewPublisher(cfg.PubSub)
		if err != nil {
			logger.Fatal().Err(err).Str("driver", cfg.PubSub.Driver).Msg("failed to create publisher")
		}
	}
	dispatcher := notify.NewDispatcher(publisher, cfg.Notify.Timeout)

	// 5. Create repos and services
	graphRepo := repository.NewGormGraphRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	postRepo := repository.NewGormPostRepository(db)

	paging := service.Paging{
		DefaultLimit:       cfg.Feed.DefaultLimit,
		MaxLimit:           cfg.Feed.MaxLimit,
		DefaultSuggestions: cfg.Feed.DefaultSuggestions,
	}
	graphSvc := service.NewRelationshipManager(graphRepo, countStore, dispatcher)
	profileSvc := service.NewProfileService(graphRepo, userRepo, countStore, paging)
	feedSvc := service.NewFeedService(graphRepo, userRepo, postRepo, paging)
	postSvc := service.NewPostService(graphRepo, userRepo, postRepo, paging)
	userSync := service.NewUserSync(graphRepo, userRepo, countStore)

	// 6. Create auth middleware over local JWT validation
	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, 15*time.Minute)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create jwt manager")
	}
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	// 7. Init Kafka users CDC consumer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var kafkaConsumer *consumer.ConfluentConsumer
	if cfg.Kafka.Brokers != "" {
		kc, err := consumer.NewConfluentConsumer(
			cfg.Kafka.Brokers,
			cfg.Kafka.UserTopic,
			cfg.Kafka.GroupID,
			userSync,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to create kafka consumer, user sync disabled")
		} else if err := kc.Start(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to start kafka consumer")
		} else {
			kafkaConsumer = kc
		}
	} else {
		logger.Warn().Msg("KAFKA_BROKERS not configured; user CDC consumer disabled")
	}

	// 8. Init reconciler (opt-in)
	var rec *reconciler.Reconciler
	if cfg.Reconciler.Enabled {
		rec = reconciler.New(countStore, graphSvc, cfg.Reconciler)
		rec.Start(ctx)
		logger.Info().Dur("interval", cfg.Reconciler.Interval).Int("top_n", cfg.Reconciler.TopN).Msg("reconciler started")
	}

	// 9. Setup Gin router + HTTP server
	gin.SetMode(cfg.Server.Mode)
	httpHandler := handler.NewHandler(graphSvc, profileSvc, feedSvc, postSvc, authMiddleware)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger, "/health"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	httpHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info().Str("addr", addr).Msg("social-graph-service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// 10. Admin server: Prometheus metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	adminAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.AdminPort)
	adminSrv := &http.Server{Addr: adminAddr, Handler: pkglog.HTTPMiddleware(logger)(mux)}

	go func() {
		logger.Info().Str("addr", adminAddr).Msg("admin server starting")
		if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("admin server error")
		}
	}()

	// 11. gRPC health server
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to listen for gRPC")
	}
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(pkglog.UnaryServerInterceptor(logger)),
		grpc.StreamInterceptor(pkglog.StreamServerInterceptor(logger)),
	)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	go func() {
		logger.Info().Str("addr", lis.Addr().String()).Msg("gRPC health server starting")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("gRPC server error")
		}
	}()

	// 12. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		// stop Kafka consumer loop and reconciler ticker
		cancel()

		if kafkaConsumer != nil {
			if err := kafkaConsumer.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing kafka consumer")
			}
		}

		if rec != nil {
			rec.Stop()
			<-rec.Done()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
		}
		if err := adminSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("admin server forced to shutdown")
		}
		grpcServer.GracefulStop()

		// drain in-flight notifications after the last mutation
		if err := dispatcher.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing notification publisher")
		}
	}()

	select {
	case <-shutdownDone:
		logger.Info().Msg("social-graph-service stopped")
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("shutdown timed out after 30s")
	}
}
