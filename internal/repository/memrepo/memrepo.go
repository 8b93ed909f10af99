// Package memrepo keeps every collection in process memory. It backs
// STORE_DRIVER=memory and the test suites.
package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/localkart/homeservices-api/internal/models"
	"github.com/localkart/homeservices-api/internal/repository"
)

type Store struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]*models.User
	byEmail  map[string]primitive.ObjectID
	bookings map[primitive.ObjectID]*models.Booking
	services map[primitive.ObjectID]*models.Service
}

func NewStore() *Store {
	return &Store{
		users:    make(map[primitive.ObjectID]*models.User),
		byEmail:  make(map[string]primitive.ObjectID),
		bookings: make(map[primitive.ObjectID]*models.Booking),
		services: make(map[primitive.ObjectID]*models.Service),
	}
}

func (s *Store) Users() *UserRepo       { return &UserRepo{s: s} }
func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s: s} }
func (s *Store) Services() *ServiceRepo { return &ServiceRepo{s: s} }

func copyUser(u *models.User) *models.User {
	c := *u
	c.Addresses = append([]models.Address{}, u.Addresses...)
	return &c
}

// --- users ---

type UserRepo struct{ s *Store }

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.byEmail[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Addresses == nil {
		user.Addresses = []models.Address{}
	}
	r.s.users[user.ID] = copyUser(user)
	r.s.byEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	id, ok := r.s.byEmail[email]
	r.s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			c := copyUser(u)
			c.Password = ""
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *UserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, name, phone *string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if name != nil {
		u.Name = *name
	}
	if phone != nil {
		u.Phone = *phone
	}
	u.UpdatedAt = time.Now().UTC()
	return copyUser(u), nil
}

func (r *UserRepo) ReplaceAddresses(_ context.Context, id primitive.ObjectID, expectedVersion int64, addresses []models.Address) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if u.AddressesVersion != expectedVersion {
		return nil, repository.ErrStale
	}
	u.Addresses = append([]models.Address{}, addresses...)
	u.AddressesVersion++
	u.UpdatedAt = time.Now().UTC()
	return copyUser(u), nil
}

func (r *UserRepo) SetRole(_ context.Context, email string, role models.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.byEmail[email]
	if !ok {
		return repository.ErrNotFound
	}
	u := r.s.users[id]
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// --- bookings ---

type BookingRepo struct{ s *Store }

var _ repository.BookingRepository = (*BookingRepo)(nil)

func (r *BookingRepo) Create(_ context.Context, booking *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	c := *booking
	r.s.bookings[booking.ID] = &c
	return nil
}

func (r *BookingRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (r *BookingRepo) List(_ context.Context, filter repository.BookingFilter) ([]models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Booking, 0)
	for _, b := range r.s.bookings {
		if filter.UserID != nil && !b.OwnedBy(*filter.UserID) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (r *BookingRepo) Update(_ context.Context, id primitive.ObjectID, expectedStatus models.BookingStatus, patch models.BookingPatch, now time.Time) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if b.Status != expectedStatus {
		return nil, repository.ErrStale
	}
	patch.Apply(b)
	b.UpdatedAt = now
	c := *b
	return &c, nil
}

// --- services ---

type ServiceRepo struct{ s *Store }

var _ repository.ServiceRepository = (*ServiceRepo)(nil)

func (r *ServiceRepo) Create(_ context.Context, service *models.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if service.ID.IsZero() {
		service.ID = primitive.NewObjectID()
	}
	c := *service
	r.s.services[service.ID] = &c
	return nil
}

func (r *ServiceRepo) InsertMany(ctx context.Context, services []models.Service) error {
	for i := range services {
		if err := r.Create(ctx, &services[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ServiceRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	svc, ok := r.s.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *svc
	return &c, nil
}

func (r *ServiceRepo) List(_ context.Context, filter models.ServiceFilter) ([]models.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Service, 0)
	for _, svc := range r.s.services {
		if filter.Category != nil && svc.Category != *filter.Category {
			continue
		}
		if filter.Active != nil && svc.IsActive != *filter.Active {
			continue
		}
		out = append(out, *svc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *ServiceRepo) Update(_ context.Context, id primitive.ObjectID, u repository.ServiceUpdate, now time.Time) (*models.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	svc, ok := r.s.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if u.Name != nil {
		svc.Name = *u.Name
	}
	if u.Category != nil {
		svc.Category = *u.Category
	}
	if u.Description != nil {
		svc.Description = *u.Description
	}
	if u.Price != nil {
		svc.Price = *u.Price
	}
	if u.Image != nil {
		svc.Image = *u.Image
	}
	if u.Rating != nil {
		svc.Rating = *u.Rating
	}
	if u.Reviews != nil {
		svc.Reviews = *u.Reviews
	}
	if u.Discount != nil {
		d := *u.Discount
		svc.Discount = &d
	}
	if u.IsActive != nil {
		svc.IsActive = *u.IsActive
	}
	svc.UpdatedAt = now
	c := *svc
	return &c, nil
}

func (r *ServiceRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.services[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.services, id)
	return nil
}

func (r *ServiceRepo) ToggleActive(_ context.Context, id primitive.ObjectID, now time.Time) (*models.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	svc, ok := r.s.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	svc.IsActive = !svc.IsActive
	svc.UpdatedAt = now
	c := *svc
	return &c, nil
}

func (r *ServiceRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.services)), nil
}
