package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/localkart/homeservices-api/internal/apperror"
	"github.com/localkart/homeservices-api/internal/models"
	"github.com/localkart/homeservices-api/internal/repository"
)

const maxAddressWriteAttempts = 3

const addressNotFound = "Address not found"

type AddressInput struct {
	Label       *string
	AddressLine *string
	IsDefault   *bool
}

// addressMutation computes the next address array from the current one. It
// must not modify its argument.
type addressMutation func(current []models.Address) ([]models.Address, error)

func cloneAddresses(in []models.Address) []models.Address {
	out := make([]models.Address, len(in))
	copy(out, in)
	return out
}

func clearDefaults(addrs []models.Address) {
	for i := range addrs {
		addrs[i].IsDefault = false
	}
}

func indexOfAddress(addrs []models.Address, id primitive.ObjectID) int {
	for i := range addrs {
		if addrs[i].ID == id {
			return i
		}
	}
	return -1
}

func addAddress(in AddressInput, newID primitive.ObjectID) addressMutation {
	return func(current []models.Address) ([]models.Address, error) {
		label := trimmed(in.Label)
		line := trimmed(in.AddressLine)
		if label == "" {
			return nil, apperror.NewFieldValidationError("Invalid address",
				map[string]string{"label": "Please provide a label"})
		}

		next := cloneAddresses(current)
		isDefault := in.IsDefault != nil && *in.IsDefault
		if isDefault {
			clearDefaults(next)
		}
		return append(next, models.Address{ID: newID, Label: label, AddressLine: line, IsDefault: isDefault}), nil
	}
}

// updateAddress keeps the stored label or line when the input leaves them blank.
func updateAddress(id primitive.ObjectID, in AddressInput) addressMutation {
	return func(current []models.Address) ([]models.Address, error) {
		i := indexOfAddress(current, id)
		if i < 0 {
			return nil, apperror.NewNotFoundError(addressNotFound)
		}
		next := cloneAddresses(current)
		if in.IsDefault != nil && *in.IsDefault {
			clearDefaults(next)
		}
		if label := trimmed(in.Label); label != "" {
			next[i].Label = label
		}
		if line := trimmed(in.AddressLine); line != "" {
			next[i].AddressLine = line
		}
		if in.IsDefault != nil {
			next[i].IsDefault = *in.IsDefault
		}
		return next, nil
	}
}

func deleteAddress(id primitive.ObjectID) addressMutation {
	return func(current []models.Address) ([]models.Address, error) {
		i := indexOfAddress(current, id)
		if i < 0 {
			return nil, apperror.NewNotFoundError(addressNotFound)
		}
		next := make([]models.Address, 0, len(current)-1)
		next = append(next, current[:i]...)
		return append(next, current[i+1:]...), nil
	}
}

func setDefaultAddress(id primitive.ObjectID) addressMutation {
	return func(current []models.Address) ([]models.Address, error) {
		i := indexOfAddress(current, id)
		if i < 0 {
			return nil, apperror.NewNotFoundError(addressNotFound)
		}
		next := cloneAddresses(current)
		clearDefaults(next)
		next[i].IsDefault = true
		return next, nil
	}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func (s *AuthService) AddAddress(ctx context.Context, p Principal, in AddressInput) (*models.User, error) {
	return s.mutateAddresses(ctx, p, addAddress(in, primitive.NewObjectID()))
}

func (s *AuthService) UpdateAddress(ctx context.Context, p Principal, addressID string, in AddressInput) (*models.User, error) {
	id, err := parseID(addressID, addressNotFound)
	if err != nil {
		return nil, err
	}
	return s.mutateAddresses(ctx, p, updateAddress(id, in))
}

func (s *AuthService) DeleteAddress(ctx context.Context, p Principal, addressID string) (*models.User, error) {
	id, err := parseID(addressID, addressNotFound)
	if err != nil {
		return nil, err
	}
	return s.mutateAddresses(ctx, p, deleteAddress(id))
}

func (s *AuthService) SetDefaultAddress(ctx context.Context, p Principal, addressID string) (*models.User, error) {
	id, err := parseID(addressID, addressNotFound)
	if err != nil {
		return nil, err
	}
	return s.mutateAddresses(ctx, p, setDefaultAddress(id))
}

// mutateAddresses is the only writer of the address array. It reads the
// user, computes the next array and writes it back if nobody else wrote in
// between, retrying a bounded number of times.
func (s *AuthService) mutateAddresses(ctx context.Context, p Principal, mutate addressMutation) (*models.User, error) {
	for attempt := 1; attempt <= maxAddressWriteAttempts; attempt++ {
		user, err := s.users.FindByID(ctx, p.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NewNotFoundError("User not found")
		}
		if err != nil {
			return nil, apperror.NewInternalError("find user", err)
		}

		next, err := mutate(user.Addresses)
		if err != nil {
			return nil, err
		}

		updated, err := s.users.ReplaceAddresses(ctx, p.ID, user.AddressesVersion, next)
		switch {
		case err == nil:
			u := updated.Sanitized()
			return &u, nil
		case errors.Is(err, repository.ErrStale):
			s.log.DebugContext(ctx, "address book changed concurrently, retrying",
				"user_id", p.ID.Hex(), "attempt", attempt)
			continue
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperror.NewNotFoundError("User not found")
		default:
			return nil, apperror.NewInternalError("replace addresses", err)
		}
	}
	s.log.WarnContext(ctx, "address book write gave up", "user_id", p.ID.Hex())
	return nil, apperror.NewConflictError("Address book was modified concurrently, please retry")
}
