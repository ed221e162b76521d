package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-portal/internal/api/http"
	"github.com/spec-kit/helpdesk-portal/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/gateway"
	"github.com/spec-kit/helpdesk-portal/internal/observability"
	"github.com/spec-kit/helpdesk-portal/internal/persistence"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	"github.com/spec-kit/helpdesk-portal/internal/session"
	"github.com/spec-kit/helpdesk-portal/internal/views"
	"github.com/spec-kit/helpdesk-portal/internal/worker"
)

// tokenLeeway tolerates clock skew when reading token expiry.
const tokenLeeway = 30 * time.Second

type options struct {
	envFile      string
	addr         string
	sessionStore string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("invalid flags: %v", err)
	}

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if opts.sessionStore != "" {
		cfg.Session.Store = opts.sessionStore
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid config: %v", err)
		}
	}
	addr := cfg.App.Addr()
	if opts.addr != "" {
		addr = opts.addr
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	store, closeStore := newSessionStore(cfg, logger)
	defer closeStore()
	sessions := session.NewManager(store, auth.NewTokenInspector(tokenLeeway), cfg.Session.TTL(), logger)

	backend, err := gateway.New(cfg.Backend, logger, gateway.WithMetrics(metrics))
	if err != nil {
		logger.Fatal("failed to build backend client", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	registry := views.NewRegistry(views.Options{
		InboxSize: cfg.Views.NotificationInbox,
		SpoolDir:  cfg.Views.UploadDir,
		Status:    backend,
		Logger:    logger,
	})

	ticketService := service.NewTicketService(service.TicketDependencies{
		Gateway:    backend,
		Companies:  backend,
		Views:      registry,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		Tickets:    ticketService,
		Gateway:    backend,
		Views:      registry,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		Gateway:    backend,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		Gateway:  backend,
		Sessions: sessions,
		Views:    registry,
		Logger:   logger,
	})
	dashboardService := service.NewDashboardService(ticketService, backend, logger)
	exportService := service.NewExportService(backend, logger)
	notificationService := service.NewNotificationService(dispatcher, registry, logger)

	worker.StartNotificationWorker(notificationService)
	worker.StartViewSweeper(ctx, registry, sessions, cfg.Views.SweepInterval(), logger)

	authMiddleware := auth.NewAuthMiddleware(sessions, cfg.Session.CookieName)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		BodyLimit:             int(cfg.App.MaxUploadBytes()),
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:     logger,
		Metrics:    metrics,
		Timeout:    cfg.App.RequestTimeout(),
		CookieName: cfg.Session.CookieName,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"sessions": sessions,
			"backend":  backend,
		}, metrics),
		Auth: handlers.NewAuthHandler(authService, authMiddleware, sessions, handlers.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.Secure,
		}),
		Tickets:        handlers.NewTicketsHandler(ticketService, assignmentService, cfg.App.MaxUploadBytes(), logger),
		Directory:      handlers.NewDirectoryHandler(directoryService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService, notificationService, exportService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("portal listening", zap.String("addr", addr), zap.String("backend", cfg.Backend.BaseURL))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	for _, id := range registry.SessionIDs() {
		registry.Unmount(id)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("portal", pflag.ContinueOnError)
	flagSet.StringVar(&opts.envFile, "env-file", "", "load environment variables from this file before .env")
	flagSet.StringVar(&opts.addr, "addr", "", "listen address, overrides APP_HOST and APP_PORT")
	flagSet.StringVar(&opts.sessionStore, "session-store", "", fmt.Sprintf("session backend: %s or %s", config.SessionStoreRedis, config.SessionStoreMemory))
	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return opts, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return opts, nil
}

func newSessionStore(cfg *config.Config, logger *zap.Logger) (session.Store, func()) {
	if cfg.Session.Store == config.SessionStoreMemory {
		logger.Warn("using in-memory session store; sessions are lost on restart")
		return session.NewMemoryStore(), func() {}
	}
	redis := persistence.NewRedis(cfg.Redis, logger)
	return session.NewRedisStore(redis, cfg.Session.KeyPrefix), redis.Close
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
