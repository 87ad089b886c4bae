package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"telegram-job-scout/internal/application"
	"telegram-job-scout/internal/config"
	"telegram-job-scout/internal/domain/ports/adapter"
	aiAdapters "telegram-job-scout/internal/infra/adapters/ai"
	tele "telegram-job-scout/internal/infra/adapters/telegram"
	apiv1 "telegram-job-scout/internal/infra/api/apiv1"
	"telegram-job-scout/internal/infra/browser"
	pg "telegram-job-scout/internal/infra/db/postgres"
	"telegram-job-scout/internal/infra/fetch"
	"telegram-job-scout/internal/infra/logging"
	"telegram-job-scout/internal/infra/metrics"
	red "telegram-job-scout/internal/infra/redis"
	"telegram-job-scout/internal/infra/sched"
	"telegram-job-scout/internal/infra/storage"
	"telegram-job-scout/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "console logging and noop bot when no token is set")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("schema")
	}

	go samplePoolStats(ctx, pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	postingRepo := pg.NewPostgresJobPostingRepo(pool)
	sourceRepo := pg.NewPostgresResumeSourceRepo(pool)
	mapRepo := pg.NewPostgresPostingUserMapRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Storage / fetch / browser ----
	files, err := storage.NewDirStore(cfg.Storage.Root)
	if err != nil {
		log.Fatal().Err(err).Msg("storage")
	}
	fetcher := fetch.NewHTTPFetcher()
	renderer := browser.NewChromeRenderer(cfg.Search.BrowserTimeout, log)

	// ---- AI adapters ----
	ai, err := buildAIAdapter(ctx, &cfg.AI, cfg.Runtime.Dev, log)
	if err != nil {
		log.Fatal().Err(err).Msg("ai adapter")
	}

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, txManager, log)
	extractionUC := usecase.NewExtractionUseCase(postingRepo, mapRepo, ai, fetcher, renderer, files, cfg.AI.DefaultModel, log)
	analysisUC := usecase.NewAnalysisUseCase(userRepo, postingRepo, ai, files, cfg.AI.DefaultModel, cfg.AI.MaxPromptTokens, log)
	searchUC := usecase.NewSearchUseCase(userRepo, ai, files, renderer, extractionUC, cfg.AI.DefaultModel, cfg.Search.BoardURLTemplate, cfg.Search.MaxPerKeyword, log)
	resumeUC := usecase.NewResumeUseCase(userRepo, sourceRepo, ai, files, cfg.AI.DefaultModel, log)
	postingUC := usecase.NewPostingUseCase(postingRepo, log)

	facade := application.NewBotFacade(userUC, extractionUC, analysisUC, searchUC, resumeUC, postingUC)

	// ---- Telegram ----
	var bot adapter.TelegramBotAdapter
	if cfg.Bot.Token == "noop" && cfg.Runtime.Dev {
		bot = tele.NewNoopBotAdapter(log)
	} else {
		realBot, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, rateLimiter, log)
		if err != nil {
			log.Fatal().Err(err).Msg("telegram")
		}
		go func() {
			if err := realBot.StartPolling(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
		defer realBot.StopPolling()
		bot = realBot
	}

	// ---- HTTP API ----
	api := apiv1.NewServer(userUC, postingUC, extractionUC, analysisUC, searchUC, resumeUC, cfg.API.JWTSecret, log)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("http api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Notify worker ----
	window := sched.Window{
		StartHour: cfg.Scheduler.WindowStartHour,
		EndHour:   cfg.Scheduler.WindowEndHour,
		UTCOffset: cfg.Scheduler.UTCOffsetHours,
	}
	worker := sched.NewNotifyWorker(
		cfg.Scheduler.NotifyInterval, window,
		postingRepo, analysisUC, bot,
		cfg.Bot.NotificationChatID, cfg.Scheduler.NotifyUserID, log,
	)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}

// samplePoolStats exports connection pool gauges every 15 seconds.
func samplePoolStats(ctx context.Context, pool *pgxpool.Pool) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := pool.Stat()
			metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
		}
	}
}

// buildAIAdapter assembles the provider chain: concrete providers behind the
// routing adapter, wrapped with the concurrency limiter.
func buildAIAdapter(ctx context.Context, cfg *config.AIConfig, dev bool, log *zerolog.Logger) (adapter.AIServiceAdapter, error) {
	byProvider := map[string]adapter.AIServiceAdapter{}
	defaultProvider := ""

	if cfg.OpenAIKey != "" {
		openAI, err := aiAdapters.NewOpenAIAdapter(cfg.OpenAIKey, cfg.DefaultModel, cfg.MaxRetries)
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		byProvider["openai"] = openAI
		defaultProvider = "openai"
	}
	if cfg.GeminiKey != "" {
		gemini, err := aiAdapters.NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.DefaultModel, cfg.MaxOutputTokens)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		byProvider["gemini"] = gemini
		if defaultProvider == "" {
			defaultProvider = "gemini"
		}
	}
	if len(byProvider) == 0 {
		if dev {
			log.Warn().Msg("no AI provider configured, using canned replies")
			return aiAdapters.NewNoopAIAdapter(), nil
		}
		return nil, fmt.Errorf("no AI provider configured: set ai.openai_key or ai.gemini_key")
	}
	log.Info().Str("default_provider", defaultProvider).Str("default_model", cfg.DefaultModel).Msg("ai providers ready")

	multi := aiAdapters.NewMultiAIAdapter(defaultProvider, byProvider, nil)
	return aiAdapters.NewLimitedAI(multi, "", cfg.ConcurrentLimit), nil
}
