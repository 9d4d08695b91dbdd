package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushub/portal-api/internal/models"
)

type mockAuthRepo struct {
	user             *models.User
	findByEmailErr   error
	refreshTokens    map[string]*models.RefreshToken
	revokedTokenIDs  []string
	revokedUserIDs   []string
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.user, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revokedTokenIDs = append(m.revokedTokenIDs, id)
	for _, t := range m.refreshTokens {
		if t.ID == id {
			t.Revoked = true
		}
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedUserIDs = append(m.revokedUserIDs, userID)
	return nil
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Email:        "teacher@example.com",
		PasswordHash: string(hash),
		FullName:     "Jane Teacher",
		Role:         models.RoleTeacher,
		Active:       true,
	}
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "portal-api",
	})
}

func TestLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "s3cret")}
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "user-1", res.User.ID)
	assert.True(t, repo.lastLoginUpdated)
	assert.Len(t, repo.refreshTokens, 1)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "s3cret")}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "wrong"})
	assert.Error(t, err)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := &mockAuthRepo{findByEmailErr: sql.ErrNoRows}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "s3cret"})
	assert.Error(t, err)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeUser(t, "s3cret")
	user.Active = false
	svc := newTestAuthService(&mockAuthRepo{user: user})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "s3cret"})
	assert.Error(t, err)
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "s3cret")}
	svc := newTestAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "s3cret"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Len(t, repo.revokedTokenIDs, 1)

	// The rotated token can no longer be used.
	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.Error(t, err)
}

func TestRefreshUnknownToken(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{user: activeUser(t, "s3cret")})

	_, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: "nope"})
	assert.Error(t, err)
}

func TestLogoutRevokesAllTokens(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := newTestAuthService(repo)

	require.NoError(t, svc.Logout(context.Background(), "user-1"))
	assert.Equal(t, []string{"user-1"}, repo.revokedUserIDs)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "s3cret")}
	svc := newTestAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "s3cret"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})

	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
