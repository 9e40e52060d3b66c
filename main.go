package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"shore-hockey/pkg/api"
	"shore-hockey/pkg/clients/airtable"
	"shore-hockey/pkg/clients/resend"
	"shore-hockey/pkg/config"
	"shore-hockey/pkg/logger"
	"shore-hockey/pkg/metrics"
	"shore-hockey/pkg/notify"
	"shore-hockey/pkg/ratelimit"
	"shore-hockey/pkg/services"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg)
	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file loaded")
	}
	gin.SetMode(cfg.GinMode)

	m := metrics.New()
	httpClient := &http.Client{Timeout: cfg.OutboundTimeout()}

	// Initialize API clients
	airtableClient := airtable.NewClient(cfg.AirtableAPIKey, cfg.AirtableBaseID,
		airtable.WithBaseURL(cfg.AirtableAPIURL),
		airtable.WithHTTPClient(httpClient),
		airtable.WithRequestsPerSecond(cfg.AirtableRequestsPerSecond),
	)
	resendClient := resend.NewClient(cfg.ResendAPIKey,
		resend.WithBaseURL(cfg.ResendAPIURL),
		resend.WithHTTPClient(httpClient),
	)

	notifySettings := notify.Settings{
		Provider: cfg.EmailProvider,
		APIKey:   cfg.ResendAPIKey,
		To:       cfg.NotificationEmailTo,
		From:     cfg.NotificationEmailFrom,
	}
	if err := notifySettings.Check(); err != nil {
		log.Warn().Err(err).Msg("notification email is not configured")
	}
	if !cfg.AirtableConfigured() {
		log.Warn().Msg("airtable credentials missing, lead submissions will fail with CONFIG_ERROR")
	}
	notifier := notify.NewEmailNotifier(notifySettings, resendClient)

	// Rate limiting
	limiter := ratelimit.NewSlidingWindow(cfg.RateLimitWindow(), cfg.RateLimitMaxRequests)
	memStats := ratelimit.NewMemoryStatsStore()
	stats := ratelimit.MultiStatsStore{memStats}

	var rdb *redis.Client
	if cfg.RateStatsRedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		redisOpts := &redis.Options{
			Addr:     cfg.RateStatsRedisAddr,
			Password: cfg.RateStatsRedisPassword,
			DB:       cfg.RateStatsRedisDB,
		}
		redisStats, client, err := ratelimit.DialRedisStats(ctx, redisOpts,
			ratelimit.WithStatsPrefix(cfg.RateStatsPrefix),
			ratelimit.WithStatsTTL(cfg.RateStatsTTL()),
		)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("redis unreachable, rate limit stats kept in memory only")
		} else {
			rdb = client
			stats = append(stats, redisStats)
		}
	}

	// Initialize services
	submissionService := services.NewLeadSubmissionService(airtableClient, notifier, cfg, m)

	handlers := api.NewHandlers(submissionService, api.Options{
		Metrics:      m,
		Limiter:      limiter,
		LimiterStats: memStats,
		MaxBodyBytes: cfg.MaxBodyBytes,
		StaticDir:    cfg.StaticDir,
	})
	router := api.NewRouter(handlers, api.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins(),
		Stats:          stats,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2*cfg.OutboundTimeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("site", cfg.SiteURL).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("closing redis")
		}
	}
}
