// Package server wires the application together: config, MongoDB,
// Redis, repositories, services, controllers, the middleware stack and
// the HTTP listener with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/vyapar/app/controllers"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/app/routes"
	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/config"
	"github.com/shashiranjanraj/vyapar/pkg/cache"
	"github.com/shashiranjanraj/vyapar/pkg/event"
	"github.com/shashiranjanraj/vyapar/pkg/logger"
	"github.com/shashiranjanraj/vyapar/pkg/metrics"
	"github.com/shashiranjanraj/vyapar/pkg/middleware"
	"github.com/shashiranjanraj/vyapar/pkg/mongodb"
	"github.com/shashiranjanraj/vyapar/pkg/reqid"
	"github.com/shashiranjanraj/vyapar/pkg/router"
)

const shutdownTimeout = 10 * time.Second

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the store handles in reverse open order.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()

	db, err := mongodb.Connect(ctx, config.MongoURI(), config.MongoDB())
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			logger.Error("mongo close", "error", err)
		}
	}()
	logger.Info("mongo connected", "db", config.MongoDB())

	// Ship request logs to Mongo alongside stdout when enabled.
	var mongoLog *logger.MongoHandler
	if config.LogMongo() {
		mongoLog, err = logger.NewMongoHandler(db.Collection("logs"))
		if err != nil {
			return err
		}
		defer mongoLog.Close()
		logger.SetHandler(logger.NewMultiHandler(logger.L.Handler(), mongoLog))
	}

	store := cache.New(ctx, config.RedisAddr(), config.RedisPassword(), config.CacheTTL())
	if store == nil {
		logger.Warn("redis unavailable, user read cache disabled", "addr", config.RedisAddr())
	} else {
		defer store.Close()
	}

	repo := repositories.NewUserRepository(db.Database())
	if err := repo.EnsureIndexes(ctx); err != nil {
		return err
	}

	registerListeners()

	userService := services.NewUserService(repo, store)
	userController := controllers.NewUserController(userService)

	handler := buildHandler(db, userController)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// buildHandler assembles the middleware stack (outermost first) and the
// route table.
func buildHandler(db *mongodb.Handle, users *controllers.UserController) http.Handler {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))

	// Operational endpoints: no envelope, no auth, no rate exemption
	// needed at this traffic level.
	r.HandleFunc("/metrics", metrics.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := db.Ping(req.Context()); err != nil {
			http.Error(w, "mongo unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck
	})

	routes.RegisterAPI(r, users)

	return r.Handler()
}

// registerListeners wires the audit listeners for domain events.
func registerListeners() {
	event.Listen(services.EventUserCreated, func(payload interface{}) {
		logger.Info("event", "name", services.EventUserCreated, "payload", payload)
	})
	event.Listen(services.EventUserDeleted, func(payload interface{}) {
		logger.Info("event", "name", services.EventUserDeleted, "user_id", payload)
	})
}
