package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/laveleven/labelai-backend/internal/adapter/labelapi"
	"github.com/laveleven/labelai-backend/internal/adapter/postgres"
	historyrepo "github.com/laveleven/labelai-backend/internal/adapter/postgres/history"
	itemrepo "github.com/laveleven/labelai-backend/internal/adapter/postgres/item"
	resettokenrepo "github.com/laveleven/labelai-backend/internal/adapter/postgres/resettoken"
	snapshotrepo "github.com/laveleven/labelai-backend/internal/adapter/postgres/snapshot"
	userrepo "github.com/laveleven/labelai-backend/internal/adapter/postgres/user"
	"github.com/laveleven/labelai-backend/internal/auth"
	"github.com/laveleven/labelai-backend/internal/config"
	"github.com/laveleven/labelai-backend/internal/permission"
	historysvc "github.com/laveleven/labelai-backend/internal/service/history"
	identitysvc "github.com/laveleven/labelai-backend/internal/service/identity"
	itemsvc "github.com/laveleven/labelai-backend/internal/service/item"
	pipelinesvc "github.com/laveleven/labelai-backend/internal/service/pipeline"
	statssvc "github.com/laveleven/labelai-backend/internal/service/stats"
	usersvc "github.com/laveleven/labelai-backend/internal/service/user"
	"github.com/laveleven/labelai-backend/internal/transport/middleware"
	"github.com/laveleven/labelai-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, wires
// every layer together, and serves HTTP until ctx is cancelled, then
// shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	// Adapters.
	items := itemrepo.New(pool)
	users := userrepo.New(pool)
	snapshots := snapshotrepo.New(pool)
	histories := historyrepo.New(pool)
	resetTokens := resettokenrepo.New(pool)
	txManager := postgres.NewTxManager(pool)

	labelClient := labelapi.NewClient(cfg.LabelAPI, logger)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	perm := permission.NewEngine()

	// Services.
	identityService := identitysvc.NewService(logger, users, resetTokens, jwtManager, hasher, cfg.Auth.ResetTokenTTL)
	itemService := itemsvc.NewService(logger, items, snapshots, histories, perm)
	pipelineService := pipelinesvc.NewService(logger, labelClient, items, snapshots, histories, txManager, perm)
	historyService := historysvc.NewService(logger, histories, items, perm)
	userService := usersvc.NewService(logger, users, hasher, perm)
	statsService := statssvc.NewService(logger, users, items)

	// Transport.
	loginLimiter := middleware.NewRateLimiter(5 * time.Minute)
	defer loginLimiter.Stop()

	router := rest.NewRouter(rest.Handlers{
		Health:   rest.NewHealthHandler(pool, labelClient, BuildVersion()),
		Auth:     rest.NewAuthHandler(identityService, logger),
		Items:    rest.NewItemsHandler(itemService, logger),
		Users:    rest.NewUsersHandler(userService, logger),
		Pipeline: rest.NewPipelineHandler(pipelineService, cfg.Server.MaxUploadBytes, logger),
		History:  rest.NewHistoryHandler(historyService, logger),
		Stats:    rest.NewStatsHandler(statsService, logger),
	}, loginLimiter)

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		middleware.Auth(identityService),
	)(router)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}
