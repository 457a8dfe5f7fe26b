// Package server initializes and runs the Pixel Vault server: database and
// migrations, the object store client, the service layer, and the HTTP
// endpoint with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/logging"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/config"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/httpapi"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/objectstore"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/repomanager"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	router *httpapi.Router
	quota  *services.QuotaService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewDefault()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := objectstore.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	notifier := services.NewLogNotifier(logger)

	quota := services.NewQuotaService(db, rm, logger, cfg.GlobalStorageLimit)
	if err := quota.Init(ctx); err != nil {
		return nil, fmt.Errorf("quota init error: %w", err)
	}
	access := services.NewAccessService(db, rm)
	files := services.NewFileService(db, rm, store, quota, access, logger)
	folders := services.NewFolderService(db, rm, files, access, logger)
	shares := services.NewShareService(db, rm, access, notifier, logger)
	comments := services.NewCommentService(db, rm, files, notifier, logger)
	users := services.NewUserService(db, rm, notifier, logger, cfg)

	router := httpapi.NewRouter(users, quota, files, folders, shares, comments, logger, cfg)

	return &App{config: cfg, logger: logger, db: db, router: router, quota: quota}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	if _, err := app.quota.Reconcile(ctx); err != nil {
		app.logger.Warn(ctx, "startup reconcile failed", "error", err)
	}

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.router.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "http shutdown error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	return nil
}
