package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "deskwarrior-backend/docs"
	"deskwarrior-backend/internal/common/config"
	"deskwarrior-backend/internal/common/lock"
	"deskwarrior-backend/internal/common/logger"
	"deskwarrior-backend/internal/common/middleware"
	"deskwarrior-backend/internal/features/anticheat"
	"deskwarrior-backend/internal/features/catalog"
	leaderboardhttp "deskwarrior-backend/internal/features/leaderboard/delivery/http"
	leaderboardredis "deskwarrior-backend/internal/features/leaderboard/repository/redis"
	leaderboardservice "deskwarrior-backend/internal/features/leaderboard/service"
	"deskwarrior-backend/internal/features/scheduler"
	scoringredis "deskwarrior-backend/internal/features/scoring/repository/redis"
	scoringservice "deskwarrior-backend/internal/features/scoring/service"
	sessionhttp "deskwarrior-backend/internal/features/session/delivery/http"
	sessionredis "deskwarrior-backend/internal/features/session/repository/redis"
	sessionservice "deskwarrior-backend/internal/features/session/service"
	userhttp "deskwarrior-backend/internal/features/user/delivery/http"
	userredis "deskwarrior-backend/internal/features/user/repository/redis"
	userservice "deskwarrior-backend/internal/features/user/service"
	"deskwarrior-backend/internal/platform/clock"
	redisplatform "deskwarrior-backend/internal/platform/redis"
	"deskwarrior-backend/internal/platform/stream"
	"deskwarrior-backend/internal/workers"
)

// @title           Desk Warrior Engine API
// @version         1.0
// @description     Reminder scheduling, anti-cheat scoring and leaderboards for the Desk Warrior Telegram bot.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name init_data
// @description Telegram Mini App init_data string for authentication

// @securityDefinitions.apikey CollaboratorToken
// @in header
// @name X-Collaborator-Token
// @description Shared token for the bot relay and operational endpoints

// @tag.name users
// @tag.description User profiles, reminder settings and premium status

// @tag.name cards
// @tag.description Card sessions - acknowledgements, delivery results and pending state

// @tag.name leaderboard
// @tag.description Chat standings and daily summaries
func main() {
	cfg := config.Load()
	logger.Init("deskwarrior-engine", cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := redisplatform.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	clk := clock.System()
	userLocks := lock.NewKeyed()
	cat := catalog.NewDefault()

	userRepository := userredis.NewUserRepository(redisClient.Client)
	sessionRepository := sessionredis.NewSessionRepository(redisClient.Client)
	ledgerRepository := scoringredis.NewLedgerRepository(redisClient.Client)
	rowRepository := leaderboardredis.NewRowRepository(redisClient.Client)

	publisher := stream.NewPublisher(redisClient.Client)

	userSvc := userservice.NewUserService(userRepository, cfg, clk)
	sessionSvc := sessionservice.NewSessionService(sessionRepository)
	scoringSvc := scoringservice.NewScoringService(userRepository, ledgerRepository, cfg)
	leaderboardSvc := leaderboardservice.NewLeaderboardService(rowRepository, ledgerRepository)
	validator := anticheat.New(cfg.Scoring.RejectRatio)
	completionSvc := sessionservice.NewCompletionService(sessionSvc, userRepository, validator, scoringSvc, leaderboardSvc, publisher, userLocks)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sched := scheduler.New(userRepository, sessionSvc, cat, publisher, userLocks, clk, cfg, rng)
	sched.Start()

	expiration := sessionservice.NewExpirationService(sessionRepository, sessionSvc, userLocks, clk, cfg)
	expiration.Start()

	botEvents := workers.NewBotEventsWorker(redisClient, completionSvc, userSvc, sched)
	go botEvents.Start(ctx)

	logger.Info().Msg("Background services started")

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "init_data", "X-Collaborator-Token"}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, cfg, clk, userSvc, completionSvc, sessionSvc, leaderboardSvc, sched, redisClient)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	sched.Stop()
	expiration.Stop()

	logger.Info().Msg("Server exited")
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	clk clock.Clock,
	userSvc userservice.UserService,
	completionSvc *sessionservice.CompletionService,
	sessionSvc sessionservice.SessionService,
	leaderboardSvc leaderboardservice.LeaderboardService,
	sched *scheduler.Scheduler,
	redisClient *redisplatform.Client,
) {
	userHandler := userhttp.NewUserHandler(userSvc, completionSvc)
	sessionHandler := sessionhttp.NewSessionHandler(completionSvc, sessionSvc, sched, clk)
	leaderboardHandler := leaderboardhttp.NewLeaderboardHandler(leaderboardSvc, clk)

	v1 := router.Group("/api/v1")

	// Mini app endpoints authenticate with Telegram init data.
	app := v1.Group("")
	app.Use(middleware.TelegramInitData(cfg))
	app.Use(middleware.RequireAuth())
	app.Use(middleware.AutoCreateUser(userSvc))
	userHandler.RegisterRoutes(app)

	// Bot relay and operational endpoints authenticate with the shared token.
	bot := v1.Group("")
	bot.Use(middleware.CollaboratorAuth(cfg))
	sessionHandler.RegisterRoutes(bot)
	leaderboardHandler.RegisterRoutes(bot)
	userHandler.RegisterBotRoutes(bot)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "deskwarrior-engine",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	})

	router.GET("/ready", func(c *gin.Context) {
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
