package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/gin-swagger/swaggerFiles"
	"go.elastic.co/apm/module/apmgin"

	boardController "github.com/kalyan021004/todoboard/internal/api/controllers/board"
	"github.com/kalyan021004/todoboard/internal/config"
	"github.com/kalyan021004/todoboard/internal/domain/conflict"
	"github.com/kalyan021004/todoboard/internal/domain/leader"
	"github.com/kalyan021004/todoboard/internal/infra/apm/tracing"
	cronConflict "github.com/kalyan021004/todoboard/internal/infra/cron/conflict"
	esConflict "github.com/kalyan021004/todoboard/internal/infra/elasticsearch/conflict"
	esCommon "github.com/kalyan021004/todoboard/internal/infra/elasticsearch/common"
	esLeader "github.com/kalyan021004/todoboard/internal/infra/elasticsearch/leader"
	esTask "github.com/kalyan021004/todoboard/internal/infra/elasticsearch/task"
	"github.com/kalyan021004/todoboard/internal/infra/notification"
	"github.com/kalyan021004/todoboard/internal/infra/server/binding/validation"
	"github.com/kalyan021004/todoboard/internal/infra/server/routing"

	_ "github.com/kalyan021004/todoboard/docs"
)

var leaderLockDocId = esCommon.DocumentID("todoboard_server")

// Components holds the wired-together pieces of a running server: the HTTP
// layer, the notification hub and the background conflict sweep.
type Components struct {
	config *config.App

	ginEngine  *gin.Engine
	hub        *notification.Hub
	leaderLock leader.Lock
	sweeper    *cronConflict.Sweeper
}

func NewComponents(appConfig *config.App) (*Components, error) {
	esClient, err := esCommon.NewClient(appConfig.Elasticsearch)
	if err != nil {
		return nil, err
	}

	tracer := tracing.NewTracer()

	tasksService := esTask.NewService(esClient, appConfig.Tasks.Defaults)
	conflictsService := esConflict.NewService(esClient, appConfig.Conflicts)

	hub := notification.NewHub(appConfig.Notifications)
	notifier := conflict.NewNotifier(hub)
	gate := conflict.NewGate(tasksService, conflictsService, notifier)
	resolver := conflict.NewResolver(tasksService, conflictsService, appConfig.Tasks.Defaults.VersionConflictRetryTimes)

	controller := boardController.New(tasksService, conflictsService, gate, resolver)

	leaderLock := esLeader.NewLeaderLock(
		leaderLockDocId,
		esClient,
		appConfig.Conflicts.LeaderLock.CheckInterval,
		appConfig.Conflicts.LeaderLock.ReportLagTolerance,
		tracer,
	)
	sweeper := cronConflict.NewSweeper(conflictsService, leaderLock, tracer, appConfig.Conflicts)

	validation.SetUpValidators()

	ginEngine := buildGinEngine(appConfig, controller, hub)

	return &Components{
		config:     appConfig,
		ginEngine:  ginEngine,
		hub:        hub,
		leaderLock: leaderLock,
		sweeper:    sweeper,
	}, nil
}

func buildGinEngine(appConfig *config.App, controller boardController.Controller, hub *notification.Hub) *gin.Engine {
	ginEngine := gin.New()
	ginEngine.Use(ginlogger.SetLogger(), gin.Recovery())
	ginEngine.Use(apmgin.Middleware(ginEngine))
	ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))

	ginEngine.NoRoute(routing.NoRoute)
	ginEngine.NoMethod(routing.NoMethod)

	boardsHandler := routing.BoardsRoutesHandler{
		AuthSettings: appConfig.Auth,
		Controller:   controller,
	}
	boardsHandler.RegisterRoutes(ginEngine)

	conflictsHandler := routing.ConflictsRoutesHandler{
		AuthSettings: appConfig.Auth,
		Controller:   controller,
	}
	conflictsHandler.RegisterRoutes(ginEngine)

	eventsHandler := routing.EventsRoutesHandler{Hub: hub}
	eventsHandler.RegisterRoutes(ginEngine)

	ginEngine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return ginEngine
}

// Run starts the background loops and the HTTP server, then blocks until
// the process receives an interrupt, at which point everything is shut down
// in reverse order within the configured timeout.
func (c *Components) Run() {
	c.leaderLock.Start()
	c.sweeper.Start()

	httpServer := &http.Server{
		Addr:    c.config.BindAddress,
		Handler: c.ginEngine,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()
	log.Info().Str("address", c.config.BindAddress).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down")

	c.sweeper.Stop()
	c.leaderLock.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), c.config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
	log.Info().Msg("Bye")
}
