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
	"github.com/localkart/homeservices-api/internal/utils"
)

const MinPasswordLength = 6

type TokenManager interface {
	GenerateJWT(userID, role string) (string, error)
	ValidateJWT(token string) (*utils.Claims, error)
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	CheckPasswordHash(password, hash string) bool
	BurnCompare(password string)
}

// AuthService owns registration, login, identity resolution and the
// caller's own user record, address book included.
type AuthService struct {
	users  repository.UserRepository
	tokens TokenManager
	hasher PasswordHasher
	log    *slog.Logger
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens TokenManager, hasher PasswordHasher, log *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, hasher: hasher, log: log, now: time.Now}
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type AuthResult struct {
	Token string
	User  models.PublicUser
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	user, err := s.createUser(ctx, in, models.RoleUser)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user registered", "user_id", user.ID.Hex())
	return s.issue(user)
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput, role models.Role) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)

	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "Please provide a name"
	}
	if !validEmail(in.Email) {
		fields["email"] = "Please provide a valid email"
	}
	if in.Phone == "" {
		fields["phone"] = "Please provide a phone number"
	}
	if len(in.Password) < MinPasswordLength {
		fields["password"] = "Password must be at least 6 characters"
	}
	if len(fields) > 0 {
		return nil, apperror.NewFieldValidationError("Invalid registration details", fields)
	}

	hash, err := s.hasher.HashPassword(in.Password)
	if utils.IsPasswordTooLong(err) {
		return nil, apperror.NewFieldValidationError("Invalid registration details",
			map[string]string{"password": "Password is too long"})
	}
	if err != nil {
		return nil, apperror.NewInternalError("hash password", err)
	}

	now := s.now().UTC()
	user := &models.User{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Password:  hash,
		Role:      role,
		Addresses: []models.Address{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperror.NewFieldValidationError("Email is already registered",
				map[string]string{"email": "Email is already registered"})
		}
		return nil, apperror.NewInternalError("create user", err)
	}
	return user, nil
}

// Authenticate answers every failed login with the same error, whether the
// email is unknown or the password wrong.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.NewValidationError("Please provide an email and password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.hasher.BurnCompare(password)
		return nil, apperror.NewInvalidCredentialsError()
	}
	if err != nil {
		return nil, apperror.NewInternalError("find user by email", err)
	}

	if !s.hasher.CheckPasswordHash(password, user.Password) {
		return nil, apperror.NewInvalidCredentialsError()
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateJWT(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, apperror.NewInternalError("generate token", err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

// ResolveIdentity turns a bearer token into the principal it was issued to.
// The role comes from the stored user, not from the token.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, apperror.NewUnauthenticatedError("Not authorized to access this route", nil)
	}
	claims, err := s.tokens.ValidateJWT(token)
	if err != nil {
		return Principal{}, apperror.NewUnauthenticatedError("Invalid or expired token", err)
	}
	id, err := parseID(claims.Subject, "")
	if err != nil {
		return Principal{}, apperror.NewUnauthenticatedError("Invalid or expired token", nil)
	}

	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return Principal{}, apperror.NewUnauthenticatedError("User no longer exists", err)
	}
	if err != nil {
		return Principal{}, apperror.NewInternalError("load token subject", err)
	}
	return principalFromUser(user), nil
}

// ResolveIdentityOptional never fails: anything short of a valid token for an
// existing user yields Guest.
func (s *AuthService) ResolveIdentityOptional(ctx context.Context, token string) Actor {
	if token == "" {
		return Guest{}
	}
	p, err := s.ResolveIdentity(ctx, token)
	if err != nil {
		s.log.DebugContext(ctx, "optional auth failed, proceeding as guest", "err", err)
		return Guest{}
	}
	return Authenticated{Principal: p}
}

func (s *AuthService) RequireRole(p Principal, role models.Role) error {
	return RequireRole(p, role)
}

func (s *AuthService) GetMe(ctx context.Context, p Principal) (*models.User, error) {
	user, err := s.users.FindByID(ctx, p.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, apperror.NewInternalError("find user", err)
	}
	u := user.Sanitized()
	return &u, nil
}

type ProfileUpdate struct {
	Name  *string
	Phone *string
}

// UpdateProfile edits the caller's own name and phone.
func (s *AuthService) UpdateProfile(ctx context.Context, p Principal, in ProfileUpdate) (*models.User, error) {
	if in.Name == nil && in.Phone == nil {
		return nil, apperror.NewValidationError("No update fields provided")
	}
	fields := map[string]string{}
	if in.Name != nil {
		*in.Name = strings.TrimSpace(*in.Name)
		if *in.Name == "" {
			fields["name"] = "Name cannot be empty"
		}
	}
	if in.Phone != nil {
		*in.Phone = strings.TrimSpace(*in.Phone)
		if *in.Phone == "" {
			fields["phone"] = "Phone cannot be empty"
		}
	}
	if len(fields) > 0 {
		return nil, apperror.NewFieldValidationError("Invalid profile details", fields)
	}

	user, err := s.users.UpdateProfile(ctx, p.ID, in.Name, in.Phone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, apperror.NewInternalError("update profile", err)
	}
	u := user.Sanitized()
	return &u, nil
}

// CreateAdmin creates an admin account unless the email is taken. The
// returned bool reports whether a new account was created.
func (s *AuthService) CreateAdmin(ctx context.Context, in RegisterInput) (*models.User, bool, error) {
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err == nil {
		u := existing.Sanitized()
		return &u, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, apperror.NewInternalError("find user by email", err)
	}
	user, err := s.createUser(ctx, in, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	u := user.Sanitized()
	return &u, true, nil
}

// PromoteToAdmin grants the admin role to an existing account.
func (s *AuthService) PromoteToAdmin(ctx context.Context, email string) error {
	err := s.users.SetRole(ctx, email, models.RoleAdmin)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NewNotFoundError("User with email " + email + " not found")
	}
	if err != nil {
		return apperror.NewInternalError("set role", err)
	}
	return nil
}
