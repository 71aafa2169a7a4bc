package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hadirku/presensi-api/internal/models"
	appErrors "github.com/hadirku/presensi-api/pkg/errors"
)

type authRepoStub struct {
	user      *models.User
	lastLogin *time.Time
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *authRepoStub) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	s.lastLogin = &at
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "presensi-api"}
}

func activeUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Email:        "siti@example.com",
		PasswordHash: string(hash),
		FullName:     "Siti",
		Role:         models.RoleStudent,
		Active:       true,
	}
}

func TestLoginIssuesToken(t *testing.T) {
	repo := &authRepoStub{user: activeUser(t)}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "siti@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "user-1", res.User.ID)
	require.NotNil(t, repo.lastLogin)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(&authRepoStub{user: activeUser(t)}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "siti@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(&authRepoStub{}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "s3cret"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	svc := NewAuthService(&authRepoStub{user: user}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "siti@example.com", Password: "s3cret"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInactiveAccount))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&authRepoStub{}, nil, nil, testAuthConfig())

	_, err := svc.ValidateToken("not.a.jwt")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuing := NewAuthService(&authRepoStub{user: activeUser(t)}, nil, nil, testAuthConfig())
	res, err := issuing.Login(context.Background(), models.LoginRequest{Email: "siti@example.com", Password: "s3cret"})
	require.NoError(t, err)

	other := NewAuthService(&authRepoStub{}, nil, nil, AuthConfig{Secret: "different", Expiration: time.Hour})
	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
}
