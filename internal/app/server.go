// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"storefront-gateway/internal/config"
	"storefront-gateway/internal/db"
	cartHandler "storefront-gateway/internal/handlers/cart"
	catalogHandler "storefront-gateway/internal/handlers/catalog"
	orderHandler "storefront-gateway/internal/handlers/order"
	sessionHandler "storefront-gateway/internal/handlers/session"
	wsHandler "storefront-gateway/internal/handlers/ws"
	"storefront-gateway/internal/middleware"
	"storefront-gateway/internal/platform"
	"storefront-gateway/internal/push"
	cartService "storefront-gateway/internal/service/cart"
	catalogService "storefront-gateway/internal/service/catalog"
	orderService "storefront-gateway/internal/service/order"
	sessionService "storefront-gateway/internal/service/session"
	"storefront-gateway/internal/state"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg      config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	sessions *sessionService.Service
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- State store -----
	store, err := s.buildStateStore()
	if err != nil {
		return err
	}

	// ----- Platform API client -----
	api := platform.NewClient(s.cfg.PlatformURL, s.cfg.PlatformTimeout, logger)

	// ----- Push hub -----
	hub := push.NewHub(logger)
	go hub.Run(ctx)

	// ----- Services -----
	sessions := sessionService.NewService(api, store, hub, sessionService.Config{
		TokenTTL:    s.cfg.TokenTTL,
		RefreshLead: s.cfg.RefreshLead,
		SettleDelay: s.cfg.CartSettleDelay,
	}, logger)
	s.sessions = sessions

	carts := cartService.NewService(api, sessions, hub, logger)
	sessions.BindCart(carts)

	catalogs := catalogService.NewService(api, logger)
	orders := orderService.NewService(api, sessions, carts, logger)

	// Restore any persisted session before serving traffic.
	if err := sessions.Initialize(ctx); err != nil {
		logger.Warn("session restore failed, starting signed out", zap.Error(err))
	}

	// ----- Handlers -----
	sessionHandlerInst := sessionHandler.NewSessionHandler(sessions, logger)
	cartHandlerInst := cartHandler.NewCartHandler(carts, logger)
	catalogHandlerInst := catalogHandler.NewCatalogHandler(catalogs, logger)
	orderHandlerInst := orderHandler.NewOrderHandler(orders, logger)
	wsHandlerInst := wsHandler.NewWSHandler(hub, s.cfg.AllowedOrigins, logger)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.AllowedOrigins),
	)

	handlers := &Handlers{
		SessionHandler: sessionHandlerInst,
		CartHandler:    cartHandlerInst,
		CatalogHandler: catalogHandlerInst,
		OrderHandler:   orderHandlerInst,
		WSHandler:      wsHandlerInst,
	}
	SetupRouter(s.engine, logger, handlers)

	log.Printf("🚀 Gateway running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

func (s *Server) buildStateStore() (state.Store, error) {
	switch s.cfg.StateBackend {
	case "redis":
		client, err := db.NewRedisClient(db.RedisConfig{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPass,
			DB:       0,
			PoolSize: 10,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		s.logger.Info("session state on redis", zap.String("addr", s.cfg.RedisAddr))
		return state.NewRedisStore(client, ""), nil
	default:
		s.logger.Info("session state on file", zap.String("path", s.cfg.StatePath))
		return state.NewFileStore(s.cfg.StatePath, s.cfg.StateSecret), nil
	}
}

// Shutdown flushes the logger; session state is already persisted on every
// change, so a restart resumes from the store.
func (s *Server) Shutdown(_ context.Context) {
	if s.logger != nil {
		s.logger.Info("gateway shutting down")
		s.logger.Sync()
	}
}
