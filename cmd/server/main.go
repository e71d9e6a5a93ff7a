package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/devmeterhq/devmeter/internal/adapters"
	"github.com/devmeterhq/devmeter/internal/analysis"
	"github.com/devmeterhq/devmeter/internal/cache"
	"github.com/devmeterhq/devmeter/internal/errors"
	"github.com/devmeterhq/devmeter/internal/frontend"
	"github.com/devmeterhq/devmeter/internal/monitoring"
	"github.com/devmeterhq/devmeter/internal/resilience"
	"github.com/devmeterhq/devmeter/internal/security"
	"github.com/devmeterhq/devmeter/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const version = "1.0.0"

var githubURLPattern = regexp.MustCompile(`github\.com/([^/?#]+)`)

// profileFetcher fetches GitHub profile signals
type profileFetcher interface {
	FetchProfile(ctx context.Context, username string) (analysis.ProfileSignals, error)
}

// serverDeps holds the wired dependencies for the HTTP server
type serverDeps struct {
	fetcher   profileFetcher
	metrics   *monitoring.Metrics
	logger    *monitoring.Logger
	appCache  *cache.Cache
	security  *security.Middleware
	poolStats func() map[string]interface{}
}

func main() {
	// .env is optional, real environments set variables directly
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	githubToken := os.Getenv("GITHUB_TOKEN")
	port := getEnvOrDefault("PORT", "8080")
	cacheTTL := getEnvDurationMinutes("CACHE_TTL_MINUTES", 15*time.Minute)

	if githubToken == "" {
		slog.Warn("GITHUB_TOKEN not set, using unauthenticated GitHub API with lower rate limits")
	}

	githubAdapter := adapters.NewGitHubAdapter(githubToken)

	deps := serverDeps{
		fetcher:   githubAdapter,
		metrics:   monitoring.NewMetrics(),
		logger:    monitoring.NewLogger(),
		appCache:  cache.NewCache(cacheTTL),
		security:  security.NewMiddleware(security.DefaultConfig()),
		poolStats: githubAdapter.GetPoolStats,
	}

	r := setupRouter(deps)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	githubAdapter.Close()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// setupRouter wires middleware and routes
func setupRouter(deps serverDeps) *gin.Engine {
	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(deps.metrics, deps.logger))

	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	r.Use(deps.security.SecurityHeaders)
	r.Use(deps.security.RequestTimeout)
	r.Use(deps.security.ValidateContentType)
	r.Use(deps.security.RateLimitByIP)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	r.Use(deps.appCache.Middleware(deps.metrics))

	staticFS, err := frontend.GetStaticFS()
	if err != nil {
		slog.Error("Failed to load embedded frontend", "error", err)
		os.Exit(1)
	}
	r.GET("/", frontend.NewIndexHandler(staticFS))

	r.POST("/analyze", analyzeHandler(deps))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   version,
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.metrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.appCache.Stats())
	})

	r.GET("/pools/github", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":  "github",
			"stats": deps.poolStats(),
		})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// analyzeHandler fetches a GitHub profile and returns its DevMeter rating
func analyzeHandler(deps serverDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		var req types.AnalyzeRequest
		if err := c.BindJSON(&req); err != nil {
			appErr := errors.NewValidationError("url is required")
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		input := deps.security.SanitizeInput(req.Input)
		if err := deps.security.ValidateInput(input); err != nil {
			appErr := errors.NewValidationError(err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		username := extractUsername(input)
		if err := deps.security.ValidateUsername(username); err != nil {
			appErr := errors.NewValidationError("invalid GitHub URL or username")
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		slog.Info("Starting analysis", "username", username, "ip", c.ClientIP())

		start := time.Now()

		var signals analysis.ProfileSignals
		err := resilience.Retry(ctx, func() error {
			var fetchErr error
			signals, fetchErr = deps.fetcher.FetchProfile(ctx, username)
			return fetchErr
		})
		deps.metrics.IncrementGitHubCalls()

		if err != nil {
			deps.logger.ExternalAPILogger("GitHub", "GET", "api.github.com", 0, time.Since(start), false)

			var appErr *errors.AppError
			if stderrors.Is(err, adapters.ErrProfileNotFound) {
				appErr = errors.NewNotFoundError("GitHub profile not found: " + username)
			} else {
				appErr = errors.ToAppError(err)
			}
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		deps.logger.ExternalAPILogger("GitHub", "GET", "api.github.com", http.StatusOK, time.Since(start), true)

		result := analysis.Score(signals)

		deps.logger.AnalysisLogger(username, result.Score, result.Rating, time.Since(start), false)

		c.JSON(http.StatusOK, gin.H{
			"profile": gin.H{
				"username":     signals.Username,
				"followers":    signals.Followers,
				"following":    signals.Following,
				"public_repos": len(signals.Repositories),
			},
			"repositories":         topRepositories(signals.Repositories, 6),
			"languages":            sortedLanguages(signals.Languages),
			"total_stars_received": signals.TotalStars,
			"focus_areas":          signals.FocusAreas,
			"recent_activity":      signals.RecentActivity,
			"devmeter":             result,
		})
	}
}

// extractUsername pulls the username out of a GitHub profile URL, or
// returns the input unchanged when it is a bare username
func extractUsername(input string) string {
	if match := githubURLPattern.FindStringSubmatch(input); match != nil {
		return match[1]
	}
	return strings.TrimPrefix(input, "@")
}

// topRepositories returns the first n repositories
func topRepositories(repos []analysis.Repository, n int) []analysis.Repository {
	if len(repos) <= n {
		return repos
	}
	return repos[:n]
}

type languageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// sortedLanguages returns languages by descending usage, ties broken by name
func sortedLanguages(languages map[string]int) []languageCount {
	result := make([]languageCount, 0, len(languages))
	for lang, count := range languages {
		result = append(result, languageCount{Language: lang, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Language < result[j].Language
	})

	return result
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationMinutes(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
		slog.Warn("Invalid duration value, using default", "key", key, "value", value)
	}
	return defaultValue
}
