package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/localkart/homeservices-api/internal/apperror"
	"github.com/localkart/homeservices-api/internal/models"
	"github.com/localkart/homeservices-api/internal/repository"
)

const (
	bookingNotFound      = "Booking not found"
	bookingForbidden     = "Not authorized to access this booking"
	maxBookingWriteTries = 3
)

// TransitionObserver is told about every status change that was persisted.
type TransitionObserver interface {
	ObserveTransition(from, to string)
}

type nopTransitionObserver struct{}

func (nopTransitionObserver) ObserveTransition(string, string) {}

type BookingService struct {
	bookings repository.BookingRepository
	users    repository.UserRepository
	observer TransitionObserver
	log      *slog.Logger
	now      func() time.Time
}

func NewBookingService(bookings repository.BookingRepository, users repository.UserRepository, observer TransitionObserver, log *slog.Logger) *BookingService {
	if observer == nil {
		observer = nopTransitionObserver{}
	}
	return &BookingService{bookings: bookings, users: users, observer: observer, log: log, now: time.Now}
}

// BookingInput is what a customer submits. Status and owner are never taken
// from it.
type BookingInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ServiceType   models.ServiceType
	ServiceOption string
	Date          time.Time
	Time          string
	Address       string
	Notes         string
	TotalPrice    *float64
}

func (in BookingInput) validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.CustomerName) == "" {
		fields["customerName"] = "Please provide customer name"
	}
	if !validEmail(in.CustomerEmail) {
		fields["customerEmail"] = "Please provide a valid email"
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		fields["customerPhone"] = "Please provide customer phone number"
	}
	if !in.ServiceType.Valid() {
		fields["serviceType"] = "Please provide a valid service type"
	}
	if strings.TrimSpace(in.ServiceOption) == "" {
		fields["serviceOption"] = "Please provide service option"
	}
	if in.Date.IsZero() {
		fields["date"] = "Please provide booking date"
	}
	if strings.TrimSpace(in.Time) == "" {
		fields["time"] = "Please provide booking time"
	}
	if strings.TrimSpace(in.Address) == "" {
		fields["address"] = "Please provide service address"
	}
	if in.TotalPrice == nil {
		fields["totalPrice"] = "Please provide total price"
	} else if *in.TotalPrice < 0 {
		fields["totalPrice"] = "Total price cannot be negative"
	}
	if len(fields) > 0 {
		return apperror.NewFieldValidationError("Invalid booking details", fields)
	}
	return nil
}

// Create records a new pending booking. Authenticated actors become its
// owner, guests leave it unowned.
func (s *BookingService) Create(ctx context.Context, actor Actor, in BookingInput) (*models.Booking, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	b := &models.Booking{
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerEmail: strings.TrimSpace(in.CustomerEmail),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		ServiceType:   in.ServiceType,
		ServiceOption: strings.TrimSpace(in.ServiceOption),
		Date:          in.Date.UTC(),
		Time:          strings.TrimSpace(in.Time),
		Address:       strings.TrimSpace(in.Address),
		Notes:         in.Notes,
		TotalPrice:    *in.TotalPrice,
		Status:        models.InitialStatus(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p, ok := PrincipalOf(actor); ok {
		owner := p.ID
		b.UserID = &owner
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, apperror.NewInternalError("create booking", err)
	}
	s.log.InfoContext(ctx, "booking created",
		"booking_id", b.ID.Hex(), "service_type", b.ServiceType, "guest", b.UserID == nil)
	return b, nil
}

// ListAll returns every booking with owners joined. Admin only.
func (s *BookingService) ListAll(ctx context.Context, p Principal) ([]models.BookingView, error) {
	if err := RequireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	list, err := s.bookings.List(ctx, repository.BookingFilter{})
	if err != nil {
		return nil, apperror.NewInternalError("list bookings", err)
	}
	return s.withOwners(ctx, list)
}

// ListMine returns the caller's own bookings, newest first.
func (s *BookingService) ListMine(ctx context.Context, p Principal) ([]models.Booking, error) {
	owner := p.ID
	list, err := s.bookings.List(ctx, repository.BookingFilter{UserID: &owner})
	if err != nil {
		return nil, apperror.NewInternalError("list bookings", err)
	}
	if list == nil {
		list = []models.Booking{}
	}
	return list, nil
}

func (s *BookingService) GetOne(ctx context.Context, p Principal, id string) (*models.BookingView, error) {
	b, err := s.loadAuthorized(ctx, p, id)
	if err != nil {
		return nil, err
	}
	views, err := s.withOwners(ctx, []models.Booking{*b})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// loadAuthorized loads a booking and applies the ownership check shared by
// every single-booking operation.
func (s *BookingService) loadAuthorized(ctx context.Context, p Principal, rawID string) (*models.Booking, error) {
	id, err := parseID(rawID, bookingNotFound)
	if err != nil {
		return nil, err
	}
	b, err := s.bookings.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NewNotFoundError(bookingNotFound)
	}
	if err != nil {
		return nil, apperror.NewInternalError("find booking", err)
	}
	if !p.IsAdmin() && !b.OwnedBy(p.ID) {
		return nil, apperror.NewForbiddenError(bookingForbidden)
	}
	return b, nil
}

func (s *BookingService) withOwners(ctx context.Context, list []models.Booking) ([]models.BookingView, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, b := range list {
		if b.UserID != nil && !seen[*b.UserID] {
			seen[*b.UserID] = true
			ids = append(ids, *b.UserID)
		}
	}

	owners := map[primitive.ObjectID]*models.OwnerSummary{}
	if len(ids) > 0 {
		users, err := s.users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, apperror.NewInternalError("join booking owners", err)
		}
		for _, u := range users {
			owners[u.ID] = &models.OwnerSummary{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}

	views := make([]models.BookingView, len(list))
	for i, b := range list {
		views[i] = models.BookingView{Booking: b}
		if b.UserID != nil {
			views[i].Owner = owners[*b.UserID]
		}
	}
	return views, nil
}

func validatePatch(patch models.BookingPatch) error {
	fields := map[string]string{}
	if patch.Status != nil && !patch.Status.Valid() {
		fields["status"] = "Invalid booking status"
	}
	if patch.TotalPrice != nil && *patch.TotalPrice < 0 {
		fields["totalPrice"] = "Total price cannot be negative"
	}
	if patch.CustomerEmail != nil && !validEmail(*patch.CustomerEmail) {
		fields["customerEmail"] = "Please provide a valid email"
	}
	required := map[string]*string{
		"serviceOption": patch.ServiceOption,
		"time":          patch.Time,
		"address":       patch.Address,
		"customerName":  patch.CustomerName,
		"customerPhone": patch.CustomerPhone,
	}
	for name, v := range required {
		if v != nil && strings.TrimSpace(*v) == "" {
			fields[name] = "Cannot be empty"
		}
	}
	if patch.Date != nil && patch.Date.IsZero() {
		fields["date"] = "Please provide booking date"
	}
	if len(fields) > 0 {
		return apperror.NewFieldValidationError("Invalid booking update", fields)
	}
	return nil
}

// authorizePatch enforces which fields the caller may touch at all.
func authorizePatch(p Principal, patch models.BookingPatch) error {
	if p.IsAdmin() {
		return nil
	}
	if patch.TouchesAdminFields() {
		return apperror.NewForbiddenError("Only admins can change customer details or price")
	}
	if patch.Status != nil && *patch.Status != models.StatusCancelled {
		return apperror.NewForbiddenError("Only admins can change booking status")
	}
	return nil
}

// checkAgainst decides whether patch may be applied to a booking currently
// in status. A nil patch result means there is nothing to write.
func checkAgainst(status models.BookingStatus, patch models.BookingPatch) (*models.BookingPatch, error) {
	if patch.Status != nil && *patch.Status == status {
		patch.Status = nil
		if patch.Empty() {
			return nil, nil
		}
	}
	if status.IsTerminal() {
		if patch.Status != nil {
			return nil, apperror.NewInvalidTransitionError(string(status), string(*patch.Status))
		}
		return nil, apperror.NewClosedBookingError(string(status))
	}
	if patch.Status != nil && !status.CanTransitionTo(*patch.Status) {
		return nil, apperror.NewInvalidTransitionError(string(status), string(*patch.Status))
	}
	return &patch, nil
}

// Update applies a partial edit. Field permissions depend on the caller's
// role, and the write only lands if the status has not moved since it was read.
func (s *BookingService) Update(ctx context.Context, p Principal, id string, patch models.BookingPatch) (*models.Booking, error) {
	if patch.Empty() {
		return nil, apperror.NewValidationError("No update fields provided")
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if patch.Date != nil {
		d := patch.Date.UTC()
		patch.Date = &d
	}
	return s.write(ctx, p, id, func(b *models.Booking) (*models.BookingPatch, error) {
		if err := authorizePatch(p, patch); err != nil {
			return nil, err
		}
		return checkAgainst(b.Status, patch)
	})
}

// Cancel moves a booking to cancelled. Cancelling twice succeeds, completed
// bookings cannot be cancelled.
func (s *BookingService) Cancel(ctx context.Context, p Principal, id string) (*models.Booking, error) {
	cancelled := models.StatusCancelled
	return s.write(ctx, p, id, func(b *models.Booking) (*models.BookingPatch, error) {
		return checkAgainst(b.Status, models.BookingPatch{Status: &cancelled})
	})
}

type patchPlan func(current *models.Booking) (*models.BookingPatch, error)

func (s *BookingService) write(ctx context.Context, p Principal, id string, plan patchPlan) (*models.Booking, error) {
	for attempt := 1; attempt <= maxBookingWriteTries; attempt++ {
		current, err := s.loadAuthorized(ctx, p, id)
		if err != nil {
			return nil, err
		}
		patch, err := plan(current)
		if err != nil {
			return nil, err
		}
		if patch == nil {
			return current, nil
		}

		updated, err := s.bookings.Update(ctx, current.ID, current.Status, *patch, s.now().UTC())
		switch {
		case err == nil:
			if updated.Status != current.Status {
				s.observer.ObserveTransition(string(current.Status), string(updated.Status))
				s.log.InfoContext(ctx, "booking status changed",
					"booking_id", updated.ID.Hex(), "from", current.Status, "to", updated.Status,
					"by", p.ID.Hex())
			}
			return updated, nil
		case errors.Is(err, repository.ErrStale):
			s.log.DebugContext(ctx, "booking status moved concurrently, retrying",
				"booking_id", current.ID.Hex(), "attempt", attempt)
			continue
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperror.NewNotFoundError(bookingNotFound)
		default:
			return nil, apperror.NewInternalError("update booking", err)
		}
	}
	return nil, apperror.NewConflictError("Booking was modified concurrently, please retry")
}
