package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/domain"
	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/storage"
)

const testAdminEmail = "admin@example.com"

func newTestIdentity(t *testing.T) (*Identity, *storage.Memory) {
	t.Helper()
	backend := storage.NewMemory()
	identity, err := NewIdentity(context.Background(), backend, testAdminEmail, testLogger())
	require.NoError(t, err)
	return identity, backend
}

func signupTestUser(t *testing.T, identity *Identity, email string) domain.User {
	t.Helper()
	user, err := identity.Signup(context.Background(), "Test User", email, "secret123", "secret123", "555-0100")
	require.NoError(t, err)
	return user
}

func TestSignupEstablishesSession(t *testing.T) {
	identity, _ := newTestIdentity(t)

	user := signupTestUser(t, identity, "shopper@example.com")
	assert.Equal(t, "shopper@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)

	current, ok := identity.Current()
	require.True(t, ok)
	assert.Equal(t, user, *current)
	assert.NotEmpty(t, identity.Token())
}

func TestSignupReservedEmailBecomesAdmin(t *testing.T) {
	identity, _ := newTestIdentity(t)

	user := signupTestUser(t, identity, testAdminEmail)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}

func TestSignupValidation(t *testing.T) {
	identity, _ := newTestIdentity(t)
	ctx := context.Background()

	_, err := identity.Signup(ctx, "", "shopper@example.com", "secret123", "secret123", "555-0100")
	assert.ErrorIs(t, err, domain.ErrMissingField)

	_, err = identity.Signup(ctx, "Test User", "shopper@example.com", "secret123", "different", "555-0100")
	assert.ErrorIs(t, err, domain.ErrPasswordMismatch)

	signupTestUser(t, identity, "shopper@example.com")
	_, err = identity.Signup(ctx, "Test User", "Shopper@Example.com", "secret123", "secret123", "555-0100")
	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)
}

func TestLogin(t *testing.T) {
	identity, _ := newTestIdentity(t)
	ctx := context.Background()

	signupTestUser(t, identity, "shopper@example.com")
	require.NoError(t, identity.Logout(ctx))

	user, err := identity.Login(ctx, "shopper@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "shopper@example.com", user.Email)

	current, ok := identity.Current()
	require.True(t, ok)
	assert.Equal(t, user, *current)
}

func TestLoginWrongPassword(t *testing.T) {
	identity, _ := newTestIdentity(t)
	ctx := context.Background()

	signupTestUser(t, identity, "shopper@example.com")
	require.NoError(t, identity.Logout(ctx))

	_, err := identity.Login(ctx, "shopper@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// The session stays anonymous after a failed login.
	_, ok := identity.Current()
	assert.False(t, ok)
}

func TestLoginUnknownAccount(t *testing.T) {
	identity, _ := newTestIdentity(t)

	_, err := identity.Login(context.Background(), "x@x.com", "whatever")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestLoginReplacesSession(t *testing.T) {
	identity, _ := newTestIdentity(t)
	ctx := context.Background()

	signupTestUser(t, identity, "shopper@example.com")
	firstToken := identity.Token()

	// Logging in while authenticated swaps the session, it does not
	// layer onto it.
	_, err := identity.Login(ctx, "shopper@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEqual(t, firstToken, identity.Token())
}

func TestLogoutIsIdempotent(t *testing.T) {
	identity, _ := newTestIdentity(t)
	ctx := context.Background()

	signupTestUser(t, identity, "shopper@example.com")
	require.NoError(t, identity.Logout(ctx))
	require.NoError(t, identity.Logout(ctx))

	_, ok := identity.Current()
	assert.False(t, ok)
	assert.Empty(t, identity.Token())
}

func TestResolveToken(t *testing.T) {
	identity, _ := newTestIdentity(t)

	signupTestUser(t, identity, "shopper@example.com")
	token := identity.Token()

	user, ok := identity.ResolveToken(token)
	require.True(t, ok)
	assert.Equal(t, "shopper@example.com", user.Email)

	_, ok = identity.ResolveToken("forged")
	assert.False(t, ok)
	_, ok = identity.ResolveToken("")
	assert.False(t, ok)
}

func TestSessionSurvivesRestart(t *testing.T) {
	identity, backend := newTestIdentity(t)
	ctx := context.Background()

	signupTestUser(t, identity, "shopper@example.com")
	token := identity.Token()

	reloaded, err := NewIdentity(ctx, backend, testAdminEmail, testLogger())
	require.NoError(t, err)

	current, ok := reloaded.Current()
	require.True(t, ok)
	assert.Equal(t, "shopper@example.com", current.Email)
	assert.Equal(t, token, reloaded.Token())
}

func TestSignupRollsBackRegistryOnSessionWriteFailure(t *testing.T) {
	backend := storage.NewMemory()
	failing := &failingBackend{Backend: backend}
	identity, err := NewIdentity(context.Background(), failing, testAdminEmail, testLogger())
	require.NoError(t, err)

	failing.failCollection = storage.CollectionSession
	_, err = identity.Signup(context.Background(), "Test User", "shopper@example.com", "secret123", "secret123", "555-0100")
	require.ErrorIs(t, err, domain.ErrBackend)

	_, ok := identity.Current()
	assert.False(t, ok)

	// The registry write was compensated, so a retry signs up cleanly.
	failing.failCollection = ""
	_, err = identity.Signup(context.Background(), "Test User", "shopper@example.com", "secret123", "secret123", "555-0100")
	require.NoError(t, err)
}
