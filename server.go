package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/handlers"
	"github.com/boost-jp/ops_backend/middlewares"
	"github.com/boost-jp/ops_backend/models"
	"github.com/boost-jp/ops_backend/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

// RateLimiter is an IP-keyed fixed-window limiter backed by redis.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func getRedisClient(redisAddress string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the revision
	// healthy. Until the DB is ready, app endpoints return 503.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		// Gate app endpoints on DB readiness. Redis is optional.
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS
	// (comma-separated). In non-production, allow all.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", "X-Correlation-Id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", "X-Correlation-Id")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Optional rate limiting (recommended for production).
	// Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := getRedisClient(os.Getenv("REDIS_ADDRESS"))
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(middlewares.AuthMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	registerRoutes(r)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow disabling migrations
	// on startup and running them as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	scheduler := startScheduler(logger)

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/")
	log.Println("Server started successfully")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Stop the scheduler first so it doesn't start new work while draining.
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

func registerRoutes(r *gin.Engine) {
	r.POST("/login", handlers.LoginHandler)

	api := r.Group("/api", middlewares.RequireAuth())
	{
		api.GET("/me", handlers.MeHandler)

		api.GET("/members", handlers.ListMembersHandler)
		api.GET("/members/:id", handlers.GetMemberHandler)
		api.GET("/members/:id/compensation", handlers.GetCompensationHandler)
		api.GET("/members/:id/skills", handlers.ListMemberSkillsHandler)

		api.GET("/projects", handlers.ListProjectsHandler)
		api.GET("/projects/:id", handlers.GetProjectHandler)
		api.GET("/projects/:id/pl", handlers.ProjectPLHistoryHandler)

		api.GET("/tool-subscriptions", handlers.ListToolSubscriptionsHandler)
		api.GET("/skills", handlers.ListSkillsHandler)

		api.POST("/allocations", handlers.SubmitWorkAllocationHandler)
		api.GET("/allocations", handlers.ListWorkAllocationsHandler)

		api.POST("/attendance/clock-in", handlers.ClockInHandler)
		api.POST("/attendance/clock-out", handlers.ClockOutHandler)
		api.GET("/attendance", handlers.ListAttendancesHandler)
	}

	admin := r.Group("/api", middlewares.RequireAuth(), middlewares.RequireAdmin())
	{
		admin.POST("/users", handlers.CreateUserHandler)
		admin.GET("/users", handlers.ListUsersHandler)
		admin.DELETE("/users/:id", handlers.DeleteUserHandler)

		admin.POST("/members", handlers.CreateMemberHandler)
		admin.PUT("/members/:id", handlers.UpdateMemberHandler)
		admin.DELETE("/members/:id", handlers.DeleteMemberHandler)
		admin.PUT("/members/:id/compensation", handlers.UpsertCompensationHandler)
		admin.PUT("/members/:id/skills", handlers.RateMemberSkillHandler)
		admin.DELETE("/members/:id/skills/:skillId", handlers.RemoveMemberSkillHandler)

		admin.POST("/tool-subscriptions", handlers.CreateToolSubscriptionHandler)
		admin.PUT("/tool-subscriptions/:id", handlers.UpdateToolSubscriptionHandler)
		admin.DELETE("/tool-subscriptions/:id", handlers.DeleteToolSubscriptionHandler)

		admin.POST("/projects", handlers.CreateProjectHandler)
		admin.PUT("/projects/:id", handlers.UpdateProjectHandler)
		admin.DELETE("/projects/:id", handlers.DeleteProjectHandler)
		admin.POST("/projects/:id/members", handlers.AssignProjectMemberHandler)
		admin.DELETE("/projects/:id/members/:memberId", handlers.RemoveProjectMemberHandler)

		admin.POST("/invoices", handlers.CreateInvoiceHandler)
		admin.GET("/invoices", handlers.ListInvoicesHandler)
		admin.GET("/invoices/:id", handlers.GetInvoiceHandler)
		admin.PUT("/invoices/:id", handlers.UpdateInvoiceHandler)
		admin.PATCH("/invoices/:id/status", handlers.UpdateInvoiceStatusHandler)
		admin.DELETE("/invoices/:id", handlers.DeleteInvoiceHandler)

		admin.POST("/contracts", handlers.CreateContractHandler)
		admin.GET("/contracts", handlers.ListContractsHandler)
		admin.GET("/contracts/:id", handlers.GetContractHandler)
		admin.PUT("/contracts/:id", handlers.UpdateContractHandler)
		admin.PATCH("/contracts/:id/status", handlers.UpdateContractStatusHandler)
		admin.DELETE("/contracts/:id", handlers.DeleteContractHandler)

		admin.POST("/skills", handlers.CreateSkillHandler)
		admin.DELETE("/skills/:id", handlers.DeleteSkillHandler)

		admin.PUT("/attendance", handlers.UpsertAttendanceHandler)

		admin.POST("/closing/generate-pl", handlers.GeneratePLHandler)
		admin.GET("/pl", handlers.ListPLRecordsHandler)
		admin.PATCH("/pl/projects/:id", handlers.OverridePLRecordHandler)
		admin.GET("/reports/pl-summary", handlers.PLSummaryHandler)
		admin.GET("/reports/pl-summary/export", handlers.ExportPLSummaryHandler)

		admin.GET("/cashflow", handlers.GetCashflowHandler)
		admin.PUT("/cashflow", handlers.UpdateCashflowHandler)
		admin.GET("/cashflow/history", handlers.ListCashflowHandler)
	}
}

// startScheduler wires the monthly auto-generation job when enabled. On the
// first of each month the previous month's PL is generated.
func startScheduler(logger *logrus.Logger) *cron.Cron {
	if !config.PLAutoGenerate() {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc("0 6 1 * *", func() {
		result, err := workflow.GeneratePreviousMonthPL(context.Background(), logger, time.Now())
		if err != nil {
			config.LogError(logger, "server.go", "startScheduler", "GeneratePreviousMonthPL", nil, err)
			return
		}
		logger.WithFields(logrus.Fields{
			"field":        "scheduler",
			"target_month": result.TargetMonth,
			"generated":    result.Generated,
		}).Info("scheduled PL generation finished")
	})
	if err != nil {
		config.LogError(logger, "server.go", "startScheduler", "AddFunc", nil, err)
		return nil
	}
	c.Start()
	return c
}

// customErrorLogger logs only requests that accumulated errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// RateLimitMiddleware checks the per-IP request count for the window.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := c.ClientIP()

	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if exists == 0 {
		err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err()
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
