package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pod-tracker-api/config"
	"pod-tracker-api/handlers"
	"pod-tracker-api/middleware"
	"pod-tracker-api/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	store := services.NewGormStore(db)
	if err := store.Migrate(); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
	if err := store.EnsureSeed(ctx); err != nil {
		log.Fatalf("failed to seed pods: %v", err)
	}

	cache, err := services.NewCacheService(cfg.Redis.URL)
	if err != nil {
		// The API still works without redis; live fan-out and the nearby
		// cache just go dark.
		log.WithError(err).Warn("redis unavailable, running without cache and live events")
	}
	defer cache.Close()

	bus := services.NewBus(cache)
	engine := services.NewMutationEngine(store, bus)
	scheduler := services.NewScheduler(engine, store, cfg.Scheduler.ReleaseDelay, cfg.Scheduler.DriftPeriod)
	engine.BindScheduler(scheduler)
	go scheduler.Run(ctx)

	if cfg.MQTT.URL != "" {
		bridge := services.NewSensorBridge(cfg.MQTT.URL, cfg.MQTT.Topic, engine)
		if err := bridge.Start(); err != nil {
			log.WithError(err).Warn("sensor bridge unavailable")
		} else {
			defer bridge.Stop()
		}
	}

	router := gin.Default()
	router.Use(middleware.SetupCORS(cfg.CORS))

	podsHandler := handlers.NewPodsHandler(store, cache)
	mutationsHandler := handlers.NewMutationsHandler(engine, bus)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
		api.GET("/pods", podsHandler.ListPods)
		api.GET("/pods/near", podsHandler.NearbyPods)
		api.GET("/pods/:id", podsHandler.GetPod)
		api.POST("/pods", podsHandler.CreatePod)
		api.POST("/pods/:id/cleanliness", mutationsHandler.SetCleanliness)
		api.PUT("/pods/:id/status", mutationsHandler.SetStatus)
		api.POST("/checkin", mutationsHandler.CheckIn)
		api.POST("/report", mutationsHandler.Report)
	}
	router.GET("/ws/live", handlers.LiveWebSocket(cache))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Infof("pod tracker listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.WithError(err).Warn("server shutdown failed")
	}
}
