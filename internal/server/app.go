// Package server initializes and runs the blog application server. It opens
// the database once, runs migrations, wires services to the HTTP route
// surface, and handles graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/s2yeji/practice-blog/internal/logging"
	"github.com/s2yeji/practice-blog/internal/server/blob"
	"github.com/s2yeji/practice-blog/internal/server/config"
	"github.com/s2yeji/practice-blog/internal/server/httpapi"
	"github.com/s2yeji/practice-blog/internal/server/repositories/repomanager"
	"github.com/s2yeji/practice-blog/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
}

func NewApp(c *config.Config) *App {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	return &App{config: c, logger: logger}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc, handler http.Handler) {
	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "shutdown error", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run opens the database, migrates the schema, and serves HTTP until the
// context is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	db, err := sql.Open("pgx", app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	userService := services.NewUserService(db, rm, app.config)
	postService := services.NewPostService(db, rm)
	engagementService := services.NewEngagementService(db, rm)
	blobStore := blob.NewS3Store(app.config)

	httpServer := httpapi.NewServer(app.config, app.logger, httpapi.JSONRenderer{},
		userService, postService, engagementService, blobStore)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc, httpServer.Router())
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "app stopped")
	return nil
}
