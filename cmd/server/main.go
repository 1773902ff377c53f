package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gym_crm_backend/internal/config"
	"gym_crm_backend/internal/database"
	"gym_crm_backend/internal/middleware"
	"gym_crm_backend/internal/router"
	"gym_crm_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "config/example.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		utils.InitLogger("dev")
		utils.LogError(err, "Failed to load configuration")
		os.Exit(1)
	}

	utils.InitLogger(cfg.App.Env)
	utils.SetJWTSecret(cfg.Auth.JWTSecret)

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		utils.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Migrations.Dir); err != nil {
		utils.LogError(err, "Failed to apply migrations")
		os.Exit(1)
	}
	utils.LogInfo("Database ready", map[string]interface{}{"host": cfg.Postgres.Host, "dbname": cfg.Postgres.DBName})

	redisClient := connectRedis(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())
	if cfg.Metrics.Enabled {
		engine.Use(middleware.Metrics())
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	router.Setup(engine, db, redisClient, &cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.App.Port, "env": cfg.App.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError(err, "Server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Graceful shutdown failed")
	}
	utils.LogInfo("Server stopped")
}

// connectRedis returns a working Redis client or nil. Rate limiting degrades
// to a pass-through when Redis is unreachable.
func connectRedis(cfg config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		utils.LogWarn(err, "Redis unavailable, login rate limiting disabled")
		client.Close()
		return nil
	}
	utils.LogInfo("Redis connected", map[string]interface{}{"addr": cfg.Redis.Addr})
	return client
}
