// Package repository declares the persistence contracts of the API. The
// mongorepo package implements them on MongoDB, memrepo in process memory.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/localkart/homeservices-api/internal/models"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrStale is returned by conditional writes whose precondition no longer holds.
	ErrStale = errors.New("document changed concurrently")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone *string) (*models.User, error)
	// ReplaceAddresses overwrites the whole address array in one write, only if
	// the stored addressesVersion still equals expectedVersion.
	ReplaceAddresses(ctx context.Context, id primitive.ObjectID, expectedVersion int64, addresses []models.Address) (*models.User, error)
	SetRole(ctx context.Context, email string, role models.Role) error
}

// BookingFilter narrows booking listings. A nil UserID lists every booking.
type BookingFilter struct {
	UserID *primitive.ObjectID
}

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	// List returns bookings newest first.
	List(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	// Update applies patch only while the stored status equals expectedStatus.
	Update(ctx context.Context, id primitive.ObjectID, expectedStatus models.BookingStatus, patch models.BookingPatch, now time.Time) (*models.Booking, error)
}

// ServiceUpdate is a partial catalog edit. Nil fields are left untouched.
type ServiceUpdate struct {
	Name        *string
	Category    *models.ServiceType
	Description *string
	Price       *float64
	Image       *string
	Rating      *float64
	Reviews     *int
	Discount    *string
	IsActive    *bool
}

type ServiceRepository interface {
	Create(ctx context.Context, service *models.Service) error
	InsertMany(ctx context.Context, services []models.Service) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error)
	// List returns services sorted by category then name.
	List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error)
	Update(ctx context.Context, id primitive.ObjectID, update ServiceUpdate, now time.Time) (*models.Service, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ToggleActive(ctx context.Context, id primitive.ObjectID, now time.Time) (*models.Service, error)
	Count(ctx context.Context) (int64, error)
}
