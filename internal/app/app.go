// Package app assembles repositories, services and the HTTP router from a
// Config. Both binaries and the end-to-end tests build the API through it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/localkart/homeservices-api/internal/config"
	"github.com/localkart/homeservices-api/internal/handlers"
	"github.com/localkart/homeservices-api/internal/middleware"
	"github.com/localkart/homeservices-api/internal/observability"
	"github.com/localkart/homeservices-api/internal/repository"
	"github.com/localkart/homeservices-api/internal/repository/memrepo"
	"github.com/localkart/homeservices-api/internal/repository/mongorepo"
	"github.com/localkart/homeservices-api/internal/router"
	"github.com/localkart/homeservices-api/internal/services"
	"github.com/localkart/homeservices-api/internal/utils"
)

type Stores struct {
	Users    repository.UserRepository
	Bookings repository.BookingRepository
	Services repository.ServiceRepository
	// Pinger is nil for the in-memory store.
	Pinger handlers.Pinger
	Close  func(context.Context) error
}

// MemoryStores returns empty in-process repositories.
func MemoryStores() Stores {
	s := memrepo.NewStore()
	return Stores{
		Users:    s.Users(),
		Bookings: s.Bookings(),
		Services: s.Services(),
		Close:    func(context.Context) error { return nil },
	}
}

// OpenStores connects to the store selected by cfg.StoreDriver.
func OpenStores(ctx context.Context, cfg *config.Config, obs mongorepo.Observer, log *slog.Logger) (Stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn("using in-memory store, data is lost on restart")
		return MemoryStores(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	defer cancel()

	client, err := mongorepo.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return Stores{}, err
	}
	db := client.Database(cfg.MongoDatabase)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return Stores{}, fmt.Errorf("ensure indexes: %w", err)
	}
	log.Info("connected to MongoDB", "database", cfg.MongoDatabase)

	return Stores{
		Users:    mongorepo.NewUserRepo(db, obs),
		Bookings: mongorepo.NewBookingRepo(db, obs),
		Services: mongorepo.NewServiceRepo(db, obs),
		Pinger:   mongorepo.Pinger{Client: client},
		Close:    client.Disconnect,
	}, nil
}

type App struct {
	Auth     *services.AuthService
	Bookings *services.BookingService
	Catalog  *services.CatalogService
	Router   *gin.Engine
}

type Options struct {
	Config *config.Config
	Stores Stores
	Log    *slog.Logger
	// Prom records request, DB and transition metrics. Nil disables them.
	Prom *observability.Prom
	// Metrics is served on /metrics when set.
	Metrics prometheus.Gatherer
	// Limiter defaults to an in-memory limiter sized from Config.
	Limiter middleware.Limiter
}

// NewServices wires the domain services only, for callers without HTTP.
func NewServices(cfg *config.Config, st Stores, transitions services.TransitionObserver, log *slog.Logger) (*services.AuthService, *services.BookingService, *services.CatalogService) {
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpire)
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	auth := services.NewAuthService(st.Users, tokens, hasher, log)
	bookings := services.NewBookingService(st.Bookings, st.Users, transitions, log)
	catalog := services.NewCatalogService(st.Services, log)
	return auth, bookings, catalog
}

func New(opts Options) (*App, error) {
	cfg := opts.Config

	var transitions services.TransitionObserver
	if opts.Prom != nil {
		transitions = opts.Prom
	}

	auth, bookings, catalog := NewServices(cfg, opts.Stores, transitions, opts.Log)

	limiter := opts.Limiter
	if limiter == nil && cfg.RateLimitMax > 0 {
		limiter = middleware.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	deps := router.Deps{
		Handler:        handlers.NewHandler(auth, bookings, catalog, opts.Stores.Pinger, opts.Log),
		Auth:           middleware.NewAuthMiddleware(auth),
		Limiter:        limiter,
		Prom:           opts.Prom,
		Gatherer:       opts.Metrics,
		Log:            opts.Log,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		Production:     cfg.IsProduction(),
	}
	r, err := router.New(deps)
	if err != nil {
		return nil, err
	}
	return &App{Auth: auth, Bookings: bookings, Catalog: catalog, Router: r}, nil
}
