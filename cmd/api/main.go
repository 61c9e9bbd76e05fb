// @title Venue Booking API
// @version 1.0
// @description Performance slot booking: events, invitations, bookings and calendar mirroring.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venuebooking/config"
	_ "venuebooking/docs"
	"venuebooking/internal/adapters/auth"
	"venuebooking/internal/adapters/email"
	"venuebooking/internal/adapters/gcal"
	delivery "venuebooking/internal/delivery/http"
	"venuebooking/internal/delivery/http/controllers"
	"venuebooking/internal/delivery/http/middleware"
	"venuebooking/internal/domain"
	"venuebooking/internal/repository/postgres"
	rediscache "venuebooking/internal/repository/redis"
	"venuebooking/internal/services"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

func main() {
	issueToken := flag.String("issue-admin-token", "", "print a signed admin token for the given admin id and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of a token printed by -issue-admin-token")
	flag.Parse()

	cfg, err := config.Load()
	logger := config.NewLogger()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	if *issueToken != "" {
		token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(*issueToken, "", []string{domain.RoleAdmin}, *tokenTTL)
		if err != nil {
			logger.Error("failed to issue token", "err", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	cache, closeCache, err := newViewCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
			Endpoint:        cfg.AWSEndpoint,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	calendar, err := gcal.NewCalendarBridge(gcal.Config{
		CalendarID: cfg.CalendarID,
		TimeZone:   cfg.CalendarTimeZone,
		APIKey:     cfg.CalendarAPIKey,
		BaseURL:    cfg.CalendarBaseURL,
		Timeout:    cfg.CalendarTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("create calendar bridge: %w", err)
	}
	if !calendar.Configured() {
		logger.Warn("CALENDAR_ID not set; approvals will be refused until it is configured")
	}
	venueLoc, err := time.LoadLocation(cfg.CalendarTimeZone)
	if err != nil {
		return fmt.Errorf("load time zone: %w", err)
	}

	eventRepo := postgres.NewEventRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	invitationRepo := postgres.NewEventInvitationRepository(db)

	timeout := cfg.ContextTimeout
	eventService := services.NewEventService(eventRepo, calendar, cache, logger, timeout)
	invitationService := services.NewInvitationService(eventRepo, invitationRepo, emailService, cache, logger, cfg.SignupBaseURL, timeout)
	// Approval spans several store writes and a remote call.
	approvalService := services.NewApprovalService(bookingRepo, eventRepo, calendar, emailService, cache, logger, timeout+cfg.CalendarTimeout)
	queryService := services.NewQueryService(bookingRepo, eventRepo, calendar, cache, logger, timeout+cfg.CalendarTimeout)

	router := delivery.NewRouter(delivery.Controllers{
		Events:      controllers.NewEventController(logger, eventService, queryService),
		Invitations: controllers.NewInvitationController(logger, invitationService),
		Bookings:    controllers.NewBookingController(logger, approvalService, queryService),
		Calendar:    controllers.NewCalendarController(logger, queryService, venueLoc),
		Health:      controllers.NewHealthController(logger, db),
	}, auth.NewJWTVerifier(cfg.JWTSecret), logger)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, router))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newViewCache returns a Redis-backed cache when REDIS_URL is set, otherwise a no-op cache.
func newViewCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.ViewCache, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set; view cache disabled")
		return rediscache.NewNoopCache(), func() {}, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return rediscache.NewViewCache(client, cfg.CacheTTL), func() { _ = client.Close() }, nil
}
