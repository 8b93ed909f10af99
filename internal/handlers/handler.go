package handlers

import (
	"context"
	"log/slog"

	"github.com/localkart/homeservices-api/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds everything the route handlers need. Each resource lives in
// its own file as methods on this struct.
type Handler struct {
	Auth     *services.AuthService
	Bookings *services.BookingService
	Catalog  *services.CatalogService
	Store    Pinger
	Log      *slog.Logger
}

func NewHandler(auth *services.AuthService, bookings *services.BookingService, catalog *services.CatalogService, store Pinger, log *slog.Logger) *Handler {
	return &Handler{
		Auth:     auth,
		Bookings: bookings,
		Catalog:  catalog,
		Store:    store,
		Log:      log,
	}
}
