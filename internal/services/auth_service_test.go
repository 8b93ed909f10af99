package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/localkart/homeservices-api/internal/models"
)

func TestRegister_IssuesTokenForNewUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, RegisterInput{
		Name: "Ana", Email: "ana@example.com", Phone: "555", Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.RoleUser, res.User.Role)

	claims, err := env.tokens.ValidateJWT(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.Hex(), claims.Subject)

	stored, err := env.store.Users().FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.Password)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	cases := map[string]RegisterInput{
		"bad email":      {Name: "A", Email: "not-an-email", Phone: "1", Password: "secret1"},
		"short password": {Name: "A", Email: "a@b.co", Phone: "1", Password: "12345"},
		"missing name":   {Email: "a@b.co", Phone: "1", Password: "secret1"},
		"missing phone":  {Name: "A", Email: "a@b.co", Password: "secret1"},
		"too long":       {Name: "A", Email: "a@b.co", Phone: "1", Password: strings.Repeat("x", 80)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.auth.Register(context.Background(), in)
			requireCategory(t, err, "VALIDATION_ERROR")
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "dup@example.com")

	_, err := env.auth.Register(context.Background(), RegisterInput{
		Name: "B", Email: "dup@example.com", Phone: "1", Password: "secret1",
	})
	requireCategory(t, err, "VALIDATION_ERROR")
	assert.Contains(t, err.Error(), "already registered")
}

func TestAuthenticate_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "bob@example.com")

	_, errUnknown := env.auth.Authenticate(ctx, "nobody@example.com", "secret1")
	_, errWrong := env.auth.Authenticate(ctx, "bob@example.com", "wrong-pass")

	requireCategory(t, errUnknown, "INVALID_CREDENTIALS")
	requireCategory(t, errWrong, "INVALID_CREDENTIALS")
	assert.Equal(t, errUnknown.Error(), errWrong.Error())

	res, err := env.auth.Authenticate(ctx, "bob@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestAuthenticate_TrimsEmailLikeRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterInput{
		Name: "Sam", Email: " sam@example.com ", Phone: "555", Password: "secret1",
	})
	require.NoError(t, err)

	for _, email := range []string{" sam@example.com", "sam@example.com "} {
		res, err := env.auth.Authenticate(ctx, email, "secret1")
		require.NoError(t, err, email)
		assert.Equal(t, "sam@example.com", res.User.Email)
	}
}

func TestAuthenticate_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.Authenticate(context.Background(), "", "x")
	requireCategory(t, err, "VALIDATION_ERROR")
}

func TestResolveIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.register(t, "carl@example.com")

	for name, token := range map[string]string{
		"empty":    "",
		"garbage":  "not.a.jwt",
		"unknown":  mustToken(t, env, primitive.NewObjectID().Hex()),
		"bad subj": mustToken(t, env, "not-an-object-id"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := env.auth.ResolveIdentity(ctx, token)
			requireCategory(t, err, "UNAUTHENTICATED")
		})
	}

	// the stored role wins over the role claim
	require.NoError(t, env.auth.PromoteToAdmin(ctx, "carl@example.com"))
	got, err := env.auth.ResolveIdentity(ctx, mustToken(t, env, p.ID.Hex()))
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())
}

func mustToken(t *testing.T, env *testEnv, subject string) string {
	t.Helper()
	tok, err := env.tokens.GenerateJWT(subject, string(models.RoleUser))
	require.NoError(t, err)
	return tok
}

func TestResolveIdentityOptional_NeverFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.register(t, "dee@example.com")

	assert.Equal(t, Guest{}, env.auth.ResolveIdentityOptional(ctx, ""))
	assert.Equal(t, Guest{}, env.auth.ResolveIdentityOptional(ctx, "garbage"))

	actor := env.auth.ResolveIdentityOptional(ctx, mustToken(t, env, p.ID.Hex()))
	got, ok := PrincipalOf(actor)
	require.True(t, ok)
	assert.Equal(t, p.ID, got.ID)
}

func TestRequireRole(t *testing.T) {
	user := Principal{Role: models.RoleUser}
	admin := Principal{Role: models.RoleAdmin}

	assert.NoError(t, RequireRole(admin, models.RoleAdmin))
	assert.NoError(t, RequireRole(user, models.RoleUser))
	requireCategory(t, RequireRole(user, models.RoleAdmin), "FORBIDDEN")
	requireCategory(t, RequireRole(admin, models.Role("root")), "INTERNAL_ERROR")
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.register(t, "eve@example.com")

	_, err := env.auth.UpdateProfile(ctx, p, ProfileUpdate{})
	requireCategory(t, err, "VALIDATION_ERROR")

	name := "  Eve Q  "
	u, err := env.auth.UpdateProfile(ctx, p, ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Eve Q", u.Name)
	assert.Equal(t, "555-0100", u.Phone)
	assert.Empty(t, u.Password)
}

func TestCreateAdmin_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	in := RegisterInput{Name: "Admin", Email: "admin@lk.com", Phone: "0000000000", Password: "admin123"}

	u, created, err := env.auth.CreateAdmin(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, created, err = env.auth.CreateAdmin(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)

	requireCategory(t, env.auth.PromoteToAdmin(ctx, "ghost@lk.com"), "NOT_FOUND")
}
