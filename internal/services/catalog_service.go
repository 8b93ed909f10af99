package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/localkart/homeservices-api/internal/apperror"
	"github.com/localkart/homeservices-api/internal/models"
	"github.com/localkart/homeservices-api/internal/repository"
)

const serviceNotFound = "Service not found"

// CatalogService manages the list of offered services. Bookings keep their
// own price snapshot, so nothing here touches them.
type CatalogService struct {
	services repository.ServiceRepository
	log      *slog.Logger
	now      func() time.Time
}

func NewCatalogService(services repository.ServiceRepository, log *slog.Logger) *CatalogService {
	return &CatalogService{services: services, log: log, now: time.Now}
}

// ParseServiceFilter builds a listing filter from raw query values. Only the
// literal "true" selects active services; any other non-empty value selects
// inactive ones.
func ParseServiceFilter(category, active string) (models.ServiceFilter, error) {
	var f models.ServiceFilter
	if category != "" {
		c := models.ServiceType(category)
		if !c.Valid() {
			return f, apperror.NewFieldValidationError("Invalid category",
				map[string]string{"category": "Unknown service category"})
		}
		f.Category = &c
	}
	if active != "" {
		a := active == "true"
		f.Active = &a
	}
	return f, nil
}

func (s *CatalogService) List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error) {
	list, err := s.services.List(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternalError("list services", err)
	}
	if list == nil {
		list = []models.Service{}
	}
	return list, nil
}

// ListByCategory returns the active services of one category.
func (s *CatalogService) ListByCategory(ctx context.Context, category string) ([]models.Service, error) {
	f, err := ParseServiceFilter(category, "true")
	if err != nil {
		return nil, err
	}
	return s.List(ctx, f)
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	oid, err := parseID(id, serviceNotFound)
	if err != nil {
		return nil, err
	}
	svc, err := s.services.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NewNotFoundError(serviceNotFound)
	}
	if err != nil {
		return nil, apperror.NewInternalError("find service", err)
	}
	return svc, nil
}

type ServiceInput struct {
	Name        string
	Category    models.ServiceType
	Description string
	Price       *float64
	Image       string
	Rating      float64
	Reviews     int
	Discount    *string
	IsActive    *bool
}

func (in ServiceInput) validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "Please provide service name"
	}
	if !in.Category.Valid() {
		fields["category"] = "Please provide a valid category"
	}
	if strings.TrimSpace(in.Description) == "" {
		fields["description"] = "Please provide service description"
	}
	if in.Price == nil {
		fields["price"] = "Please provide service price"
	} else if *in.Price < 0 {
		fields["price"] = "Price cannot be negative"
	}
	checkRatingAndReviews(fields, &in.Rating, &in.Reviews)
	if len(fields) > 0 {
		return apperror.NewFieldValidationError("Invalid service details", fields)
	}
	return nil
}

func checkRatingAndReviews(fields map[string]string, rating *float64, reviews *int) {
	if rating != nil && (*rating < 0 || *rating > 5) {
		fields["rating"] = "Rating must be between 0 and 5"
	}
	if reviews != nil && *reviews < 0 {
		fields["reviews"] = "Reviews cannot be negative"
	}
}

func (s *CatalogService) Create(ctx context.Context, p Principal, in ServiceInput) (*models.Service, error) {
	if err := RequireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	svc := &models.Service{
		Name:        strings.TrimSpace(in.Name),
		Category:    in.Category,
		Description: in.Description,
		Price:       *in.Price,
		Image:       in.Image,
		Rating:      in.Rating,
		Reviews:     in.Reviews,
		Discount:    in.Discount,
		IsActive:    in.IsActive == nil || *in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if svc.Image == "" {
		svc.Image = models.DefaultServiceImage
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, apperror.NewInternalError("create service", err)
	}
	s.log.InfoContext(ctx, "service created", "service_id", svc.ID.Hex(), "category", svc.Category)
	return svc, nil
}

func (s *CatalogService) Update(ctx context.Context, p Principal, id string, u repository.ServiceUpdate) (*models.Service, error) {
	if err := RequireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	oid, err := parseID(id, serviceNotFound)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		u.Name = &name
		if name == "" {
			fields["name"] = "Name cannot be empty"
		}
	}
	if u.Category != nil && !u.Category.Valid() {
		fields["category"] = "Please provide a valid category"
	}
	if u.Description != nil && strings.TrimSpace(*u.Description) == "" {
		fields["description"] = "Description cannot be empty"
	}
	if u.Price != nil && *u.Price < 0 {
		fields["price"] = "Price cannot be negative"
	}
	checkRatingAndReviews(fields, u.Rating, u.Reviews)
	if len(fields) > 0 {
		return nil, apperror.NewFieldValidationError("Invalid service details", fields)
	}

	svc, err := s.services.Update(ctx, oid, u, s.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NewNotFoundError(serviceNotFound)
	}
	if err != nil {
		return nil, apperror.NewInternalError("update service", err)
	}
	return svc, nil
}

func (s *CatalogService) Delete(ctx context.Context, p Principal, id string) error {
	if err := RequireRole(p, models.RoleAdmin); err != nil {
		return err
	}
	oid, err := parseID(id, serviceNotFound)
	if err != nil {
		return err
	}
	err = s.services.Delete(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NewNotFoundError(serviceNotFound)
	}
	if err != nil {
		return apperror.NewInternalError("delete service", err)
	}
	s.log.InfoContext(ctx, "service deleted", "service_id", id)
	return nil
}

// Toggle flips the active flag of a service.
func (s *CatalogService) Toggle(ctx context.Context, p Principal, id string) (*models.Service, error) {
	if err := RequireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	oid, err := parseID(id, serviceNotFound)
	if err != nil {
		return nil, err
	}
	svc, err := s.services.ToggleActive(ctx, oid, s.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NewNotFoundError(serviceNotFound)
	}
	if err != nil {
		return nil, apperror.NewInternalError("toggle service", err)
	}
	return svc, nil
}

// SeedIfEmpty inserts the default catalog into an empty collection. It
// returns how many services were inserted.
func (s *CatalogService) SeedIfEmpty(ctx context.Context) (int, error) {
	n, err := s.services.Count(ctx)
	if err != nil {
		return 0, apperror.NewInternalError("count services", err)
	}
	if n > 0 {
		s.log.InfoContext(ctx, "catalog already populated, skipping seed", "count", n)
		return 0, nil
	}
	seed := DefaultCatalog(s.now().UTC())
	if err := s.services.InsertMany(ctx, seed); err != nil {
		return 0, apperror.NewInternalError("seed services", err)
	}
	s.log.InfoContext(ctx, "catalog seeded", "count", len(seed))
	return len(seed), nil
}
