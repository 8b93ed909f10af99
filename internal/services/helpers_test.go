package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/localkart/homeservices-api/internal/apperror"
	"github.com/localkart/homeservices-api/internal/models"
	"github.com/localkart/homeservices-api/internal/repository/memrepo"
	"github.com/localkart/homeservices-api/internal/utils"
)

type testEnv struct {
	store    *memrepo.Store
	auth     *AuthService
	bookings *BookingService
	catalog  *CatalogService
	tokens   *utils.TokenManager
	observed []string
}

func (e *testEnv) ObserveTransition(from, to string) {
	e.observed = append(e.observed, from+"->"+to)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		store:  memrepo.NewStore(),
		tokens: utils.NewTokenManager("test-secret", time.Hour),
	}
	env.auth = NewAuthService(env.store.Users(), env.tokens, utils.NewPasswordHasher(4), log)
	env.bookings = NewBookingService(env.store.Bookings(), env.store.Users(), env, log)
	env.catalog = NewCatalogService(env.store.Services(), log)
	return env
}

// register creates an account and returns its principal.
func (e *testEnv) register(t *testing.T, email string) Principal {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{
		Name: "Test " + email, Email: email, Phone: "555-0100", Password: "secret1",
	})
	require.NoError(t, err)
	p, err := e.auth.ResolveIdentity(context.Background(), res.Token)
	require.NoError(t, err)
	return p
}

func (e *testEnv) admin(t *testing.T, email string) Principal {
	t.Helper()
	p := e.register(t, email)
	require.NoError(t, e.auth.PromoteToAdmin(context.Background(), email))
	p.Role = models.RoleAdmin
	return p
}

func (e *testEnv) book(t *testing.T, actor Actor) *models.Booking {
	t.Helper()
	b, err := e.bookings.Create(context.Background(), actor, validBookingInput())
	require.NoError(t, err)
	return b
}

func validBookingInput() BookingInput {
	price := 45.0
	return BookingInput{
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		CustomerPhone: "555-0101",
		ServiceType:   models.ServicePlumber,
		ServiceOption: "Tap & Faucet Repair",
		Date:          time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		Time:          "10:00",
		Address:       "12 Main St",
		TotalPrice:    &price,
	}
}

func requireCategory(t *testing.T, err error, category string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperror.Is(err, category), "want %s, got %T: %v", category, err, err)
}
