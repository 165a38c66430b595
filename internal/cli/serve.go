package cli

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/limbo/zenjournal/internal/analytics"
	"github.com/limbo/zenjournal/internal/api"
	"github.com/limbo/zenjournal/internal/insight"
	"github.com/limbo/zenjournal/internal/mood"
	"github.com/limbo/zenjournal/internal/repository"
	"github.com/limbo/zenjournal/internal/service"
	"github.com/limbo/zenjournal/pkg/cleanup"
	"github.com/limbo/zenjournal/pkg/config"
	jwtservice "github.com/limbo/zenjournal/pkg/jwt_service"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
	cleanupTimeout  = 5 * time.Second
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Run:   runServe,
	}

	RootCmd.AddCommand(cmd)
}

// newGenerator returns a nil interface when no model is configured so the
// insights service goes straight to the fallback.
func newGenerator(ctx context.Context, cfg *config.Config) insight.Generator {
	key := cfg.GetString("GEMINI_API_KEY")
	if key == "" {
		log.Println("GEMINI_API_KEY not set, insights will use the local fallback")
		return nil
	}
	gen, err := insight.NewGeminiGenerator(ctx, key, cfg.GetString("GEMINI_MODEL"))
	if err != nil {
		log.Println("gemini generator unavailable: " + err.Error())
		return nil
	}
	return gen
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	service.InitValidator()
	if cfg.GetString("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	pgCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	usersRepo := repository.NewUsersRepo(&pgCfg)
	entriesRepo := repository.NewEntriesRepo(repository.MongoCfg{
		URI: cfg.GetStringOr("MONGO_URI", "mongodb://localhost:27017"),
		DB:  cfg.GetStringOr("MONGO_DB", "zenjournal"),
	})

	loc := cfg.GetLocation("ANALYTICS_TIMEZONE")
	agg := analytics.New(mood.NewClassifier(mood.DefaultTable()), loc)

	var limiter service.LimiterI
	if uri := cfg.GetString("REDIS_URI"); uri != "" {
		limiter = service.NewRequestLimiter(
			repository.NewRateLimitRepo(uri),
			int64(cfg.GetInt("INSIGHTS_RATE_LIMIT", 10)),
			cfg.GetDuration("INSIGHTS_RATE_WINDOW", time.Hour),
		)
	} else {
		log.Println("REDIS_URI not set, insights are not rate limited")
	}

	serv := api.New(&api.ServicesList{
		UserService:      service.NewUserService(usersRepo, entriesRepo),
		EntriesService:   service.NewEntriesService(entriesRepo, loc),
		AnalyticsService: service.NewAnalyticsService(entriesRepo, agg),
		InsightsService: service.NewInsightsService(entriesRepo, agg,
			newGenerator(cmd.Context(), cfg),
			cfg.GetDuration("INSIGHTS_TIMEOUT", service.DefaultInsightTimeout)),
		InsightsLimiter: limiter,
		JwtService:      jwtservice.New(cfg.GetString("JWT_SECRET"), cfg.GetDuration("JWT_TTL", jwtservice.DefaultTokenTTL)),
		AllowedOrigins:  cfg.GetList("ALLOWED_ORIGINS", nil),
		TrustedProxies:  cfg.GetList("TRUSTED_PROXIES", nil),
	})

	httpServer := &http.Server{
		Addr:              cfg.GetStringOr("API_ADDRESS", ":8080"),
		Handler:           serv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		slog.Info("api started", slog.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", err.Error()))
			stop()
		}
	}()
	<-ctx.Done()

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cleanup.CleanUp(cleanupTimeout)
}
