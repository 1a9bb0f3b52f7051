package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aliasrafbd/hostel-management-server/cache"
	"github.com/aliasrafbd/hostel-management-server/config"
	"github.com/aliasrafbd/hostel-management-server/controllers"
	"github.com/aliasrafbd/hostel-management-server/middlewares"
	"github.com/aliasrafbd/hostel-management-server/routes"
	"github.com/aliasrafbd/hostel-management-server/services"
	"github.com/aliasrafbd/hostel-management-server/telemetry"
	"github.com/aliasrafbd/hostel-management-server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func serveCmd() *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, !skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run schema migrations on startup")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, migrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tel, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tel.Shutdown(sctx)
	}()

	db, err := config.NewPostgres(cfg)
	if err != nil {
		return err
	}
	if migrate {
		if err := config.AutoMigrate(db); err != nil {
			return err
		}
	}

	app, cleanup, err := wire(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           telemetry.Handler(routes.SetupRouter(app), cfg.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// wire builds every service and controller. Optional integrations are only
// created when their configuration is present.
func wire(ctx context.Context, cfg *config.Config, db *gorm.DB) (*routes.Handlers, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var awsCfg *aws.Config
	if cfg.S3Bucket != "" || cfg.SESEmail != "" || cfg.SNSTopicARN != "" || cfg.RekognitionEnabled {
		c, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, cleanup, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = &c
	}

	hub := services.NewRealtimeHub()
	activity := services.NewActivityLogService(db)
	publishers := []services.EventPublisher{activity}
	if cfg.AMQPURL != "" {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			slog.Warn("rabbitmq unavailable, events stay in-process", "err", err)
		} else {
			closers = append(closers, func() { _ = conn.Close() })
			mq, err := services.NewRabbitMQ(conn, cfg.AMQPExchange)
			if err != nil {
				slog.Warn("rabbitmq exchange unavailable, events stay in-process", "err", err)
			} else {
				closers = append(closers, func() { _ = mq.Close() })
				publishers = append(publishers, mq)
			}
		}
	}
	if cfg.SNSTopicARN != "" {
		publishers = append(publishers, services.NewPushService(*awsCfg, cfg.SNSTopicARN))
	}
	events := services.NewEventBus(hub, publishers...)

	var mailer services.Notifier
	if cfg.SESEmail != "" {
		mailer = utils.NewSESMailer(*awsCfg, cfg.SESEmail)
	}

	var statsCache services.StatsCache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, stats are not cached", "err", err)
		} else {
			closers = append(closers, func() { _ = client.Close() })
			statsCache = cache.NewRedisCache(client, cache.WithTTL(cfg.StatsCacheTTL))
		}
	}

	var (
		store    services.ImageStore
		detector services.FoodDetector
	)
	if cfg.S3Bucket != "" {
		store = utils.NewS3Uploader(*awsCfg, cfg.S3Bucket, cfg.CloudFrontURL)
	}
	if cfg.RekognitionEnabled {
		detector = services.NewRekognitionService(*awsCfg, cfg.RekognitionMinConf)
	}

	var provider services.PaymentProvider
	if cfg.StripeSecretKey != "" {
		provider = services.NewStripeProvider(cfg.StripeSecretKey)
	} else {
		slog.Warn("STRIPE_SECRET_KEY not set, payment intents are disabled")
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	users := services.NewUserService(db, mailer)
	meals := services.NewMealService(db, events, cfg.PublishTransactional)
	reactions := services.NewReactionService(db, events)

	return &routes.Handlers{
		Auth:         controllers.NewAuthController(tokens, cfg.CookieMaxAge, cfg.IsProduction()),
		Meals:        controllers.NewMealController(meals, reactions, cfg.MealPageSize),
		Upcoming:     controllers.NewUpcomingMealController(meals, reactions),
		Reviews:      controllers.NewReviewController(services.NewReviewService(db, events)),
		Requests:     controllers.NewRequestController(services.NewRequestService(db, events, mailer), users),
		Users:        controllers.NewUserController(users),
		Payments:     controllers.NewPaymentController(services.NewPaymentService(db, provider, cfg.PaymentCurrency, events)),
		Stats:        controllers.NewStatsController(services.NewStatsService(db, statsCache)),
		Images:       controllers.NewImageController(services.NewImageService(store, detector)),
		Realtime:     controllers.NewRealtimeController(hub, cfg.CORSOrigins),
		Activity:     controllers.NewActivityController(activity),
		Authorizer:   middlewares.NewAuthorizer(tokens, users),
		AllowOrigins: cfg.CORSOrigins,
	}, cleanup, nil
}
