package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"orderhub/pkg/apperr"
	"orderhub/pkg/principal"
	"orderhub/pkg/tokens"
	"orderhub/services/auth/internal/client"
	"orderhub/services/auth/internal/models"
	"orderhub/services/auth/internal/repo"
	"orderhub/services/auth/internal/transport"
)

var testSecret = []byte("test-jwt-secret")

type stubDirectory struct {
	down    bool
	created int
}

func (s *stubDirectory) CreateProfile(ctx context.Context, in client.CreateProfileRequest) (*client.Profile, error) {
	if s.down {
		return nil, errors.New("connection refused")
	}
	s.created++
	return &client.Profile{ID: 100 + uint(s.created), FullName: in.FirstName + " " + in.LastName, Email: in.Email}, nil
}

func (s *stubDirectory) GetProfile(ctx context.Context, id uint) (*client.Profile, error) {
	if s.down {
		return nil, errors.New("connection refused")
	}
	return &client.Profile{ID: id, FullName: "Alice Doe", Email: "alice@example.com"}, nil
}

func newTestService(t *testing.T, dir UserDirectory) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AuthUser{}, &models.RefreshToken{}))

	return New(&repo.GormRepo{DB: db}, dir, testSecret, 15*time.Minute, 24*time.Hour)
}

func registerReq(username string) transport.RegisterRequest {
	return transport.RegisterRequest{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "Secret123",
		FirstName: "Alice",
		LastName:  "Doe",
	}
}

func TestRegister_SuccessLinksProfile(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})
	res, err := svc.Register(context.Background(), registerReq("alice"))
	require.NoError(t, err)

	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, int64(900), res.ExpiresIn)
	assert.Equal(t, "Alice Doe", res.User.FullName)
	assert.Equal(t, []string{principal.RoleUser}, res.User.Roles)

	user, err := svc.Repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, user.ProfileID, "profile link expected when user service answered")
}

// The uid claim carries the profile-linked id, the same value the user and
// order services key on, so the identity the gateway forwards matches what the
// downstream owner checks compare against.
func TestAccessTokenCarriesProfileID(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})
	res, err := svc.Register(context.Background(), registerReq("alice"))
	require.NoError(t, err)

	user, err := svc.Repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, user.ProfileID)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, *user.ProfileID, claims.UserID)
	assert.Equal(t, res.User.ID, claims.UserID)
}

func TestRegister_ProceedsWhenUserServiceDown(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{down: true})
	res, err := svc.Register(context.Background(), registerReq("alice"))
	require.NoError(t, err, "registration is fail-open on the profile phase")

	user, err := svc.Repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Nil(t, user.ProfileID)
	assert.NotEmpty(t, res.AccessToken)
}

func TestRegister_DuplicateUsernameConflicts(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})
	_, err := svc.Register(context.Background(), registerReq("alice"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerReq("alice"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrDuplicateResource)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})

	tests := []struct {
		name string
		req  transport.RegisterRequest
	}{
		{name: "empty username", req: transport.RegisterRequest{Email: "a@b.c", Password: "x"}},
		{name: "empty email", req: transport.RegisterRequest{Username: "a", Password: "x"}},
		{name: "empty password", req: transport.RegisterRequest{Username: "a", Email: "a@b.c"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})
	_, err := svc.Register(context.Background(), registerReq("alice"))
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), "alice", "Secret123")
	require.NoError(t, err)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, []string{principal.RoleUser}, claims.Roles)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})
	_, err := svc.Register(context.Background(), registerReq("alice"))
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})
	_, err := svc.Login(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestRefresh_RotationIsSingleUse(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})
	_, err := svc.Register(context.Background(), registerReq("alice"))
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), "alice", "Secret123")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.NotEmpty(t, refreshed.AccessToken)

	// The original token was revoked by the rotation.
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrTokenExpired)

	// The replacement still works.
	_, err = svc.Refresh(context.Background(), refreshed.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_UnknownTokenInvalid(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})
	_, err := svc.Refresh(context.Background(), "never-issued")
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestRefresh_ExpiredTokenRejected(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})
	_, err := svc.Register(context.Background(), registerReq("alice"))
	require.NoError(t, err)
	user, err := svc.Repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)

	stale, err := tokens.NewRefreshSecret()
	require.NoError(t, err)
	require.NoError(t, svc.Repo.StoreRefresh(context.Background(), tokens.Sha256Hex(stale), user.ID, time.Now().UTC().Add(-time.Hour)))

	_, err = svc.Refresh(context.Background(), stale)
	assert.ErrorIs(t, err, apperr.ErrTokenExpired)
}

func TestLogin_RevokesPriorSession(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})
	_, err := svc.Register(context.Background(), registerReq("alice"))
	require.NoError(t, err)

	first, err := svc.Login(context.Background(), "alice", "Secret123")
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), "alice", "Secret123")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrTokenExpired)
}

func TestLogout_RevokesAllUserTokens(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})
	_, err := svc.Register(context.Background(), registerReq("alice"))
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), "alice", "Secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrTokenExpired)
}

func TestLogout_UnknownTokenNoOp(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})
	assert.NoError(t, svc.Logout(context.Background(), "never-issued"))
	assert.NoError(t, svc.Logout(context.Background(), ""))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})
	_, err := svc.Register(context.Background(), registerReq("alice"))
	require.NoError(t, err)
	login, err := svc.Login(context.Background(), "alice", "Secret123")
	require.NoError(t, err)

	res := svc.Validate(context.Background(), login.AccessToken)
	assert.True(t, res.Valid)
	assert.Equal(t, "alice", res.Username)
	assert.Equal(t, []string{principal.RoleUser}, res.Roles)

	res = svc.Validate(context.Background(), "garbage")
	assert.False(t, res.Valid)
	assert.Empty(t, res.Username)
}

func TestRefresh_ConcurrentPresentationSingleWinner(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubDirectory{})
	_, err := svc.Register(context.Background(), registerReq("alice"))
	require.NoError(t, err)
	login, err := svc.Login(context.Background(), "alice", "Secret123")
	require.NoError(t, err)

	// Sequential re-presentation models the loser of the race: the conditional
	// revoke matched zero rows the second time.
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = svc.Refresh(context.Background(), login.RefreshToken)
		require.Error(t, err, fmt.Sprintf("attempt %d", i))
		assert.ErrorIs(t, err, apperr.ErrTokenExpired)
	}
}
