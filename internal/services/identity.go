package services

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/localkart/homeservices-api/internal/apperror"
	"github.com/localkart/homeservices-api/internal/models"
)

// Principal is the authenticated identity behind a request.
type Principal struct {
	ID    primitive.ObjectID
	Name  string
	Email string
	Role  models.Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

func principalFromUser(u *models.User) Principal {
	return Principal{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Actor is either Authenticated or Guest.
type Actor interface {
	isActor()
}

type Authenticated struct {
	Principal Principal
}

type Guest struct{}

func (Authenticated) isActor() {}
func (Guest) isActor()         {}

// PrincipalOf returns the principal of an authenticated actor.
func PrincipalOf(a Actor) (Principal, bool) {
	if auth, ok := a.(Authenticated); ok {
		return auth.Principal, true
	}
	return Principal{}, false
}

// RequireRole fails with Forbidden unless p holds exactly role.
func RequireRole(p Principal, role models.Role) error {
	if !role.Valid() {
		return apperror.NewInternalError("unknown role "+string(role), nil)
	}
	if p.Role != role {
		return apperror.NewForbiddenError(fmt.Sprintf("User role %s is not authorized to access this route", p.Role))
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// parseID maps malformed ids to NotFound so callers cannot probe id formats.
func parseID(raw, notFoundMsg string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperror.NewNotFoundError(notFoundMsg)
	}
	return id, nil
}
