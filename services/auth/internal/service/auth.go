package service

import (
	"context"
	"errors"
	"time"

	"orderhub/pkg/apperr"
	"orderhub/pkg/hash"
	"orderhub/pkg/logging"
	"orderhub/pkg/principal"
	"orderhub/pkg/resilience"
	"orderhub/pkg/tokens"
	"orderhub/services/auth/internal/client"
	"orderhub/services/auth/internal/models"
	"orderhub/services/auth/internal/repo"
	"orderhub/services/auth/internal/transport"
)

// UserDirectory is the profile side of registration and login enrichment,
// served by the user service.
type UserDirectory interface {
	CreateProfile(ctx context.Context, in client.CreateProfileRequest) (*client.Profile, error)
	GetProfile(ctx context.Context, id uint) (*client.Profile, error)
}

type AuthService struct {
	Repo  *repo.GormRepo
	Users UserDirectory

	userDep    *resilience.Dependency
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(r *repo.GormRepo, users UserDirectory, secret []byte, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		Repo:       r,
		Users:      users,
		userDep:    resilience.New("user-service"),
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register creates the account in two phases: a best-effort profile in the
// user service first, then the local auth record regardless of the remote
// outcome. A missing profile link is reconciled later.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", req.Username)

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, apperr.ErrValidation.WithMessage("username, email and password are required")
	}

	taken, err := s.Repo.UsernameOrEmailTaken(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.ErrDuplicateResource.WithMessage("username or email already taken")
	}

	profile, _ := resilience.Call(ctx, s.userDep, resilience.FailOpen[*client.Profile](), func(ctx context.Context) (*client.Profile, error) {
		return s.Users.CreateProfile(ctx, client.CreateProfileRequest{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Address:   req.Address,
		})
	})

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.AuthUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		Roles:        principal.RoleUser,
	}
	fullName := req.FirstName + " " + req.LastName
	if profile != nil {
		user.ProfileID = &profile.ID
		fullName = profile.FullName
	} else {
		l.Warn("profile creation skipped, auth record created without link")
	}

	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	l.Info("user registered", "user_id", user.ID)
	return s.issueTokens(ctx, user, fullName)
}

// Login authenticates credentials and enforces the single-active-session
// policy: all previously issued refresh tokens are revoked before a new pair
// is issued.
func (s *AuthService) Login(ctx context.Context, username, password string) (*transport.AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		return nil, apperr.ErrValidation.WithMessage("username and password are required")
	}

	user, err := s.Repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "reason", "password mismatch")
		return nil, apperr.ErrInvalidCredentials
	}

	if err := s.Repo.RevokeAllForUser(ctx, user.ID); err != nil {
		return nil, err
	}

	l.Info("login successful", "user_id", user.ID)
	return s.issueTokens(ctx, user, s.fetchFullName(ctx, user))
}

// Refresh rotates the presented token: the old row is revoked and a new one
// inserted in one transaction, so a leaked refresh token cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*transport.AuthResponse, error) {
	if refreshToken == "" {
		return nil, apperr.ErrInvalidToken
	}

	newSecret, err := tokens.NewRefreshSecret()
	if err != nil {
		return nil, err
	}
	newExp := time.Now().UTC().Add(s.refreshTTL)

	userID, err := s.Repo.Rotate(ctx, tokens.Sha256Hex(refreshToken), tokens.Sha256Hex(newSecret), newExp)
	if err != nil {
		return nil, err
	}

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	access, _, err := tokens.NewAccessToken(s.secret, principalID(user), user.Username, user.RoleList(), s.accessTTL)
	if err != nil {
		return nil, err
	}

	return s.buildResponse(user, access, newSecret, s.fetchFullName(ctx, user)), nil
}

// Logout revokes every refresh token of the presented token's owner, not just
// the one presented. An unknown token is a no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	row, err := s.Repo.FindRefreshByHash(ctx, tokens.Sha256Hex(refreshToken))
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidToken) {
			return nil
		}
		return err
	}
	return s.Repo.RevokeAllForUser(ctx, row.UserID)
}

func (s *AuthService) Validate(ctx context.Context, accessToken string) transport.ValidateResponse {
	claims, err := tokens.AccessClaimsFromToken(accessToken, s.secret)
	if err != nil {
		logging.FromContext(ctx).Debug("token validation failed", "error", err)
		return transport.ValidateResponse{Valid: false}
	}
	return transport.ValidateResponse{
		Valid:    true,
		UserID:   claims.UserID,
		Username: claims.Subject,
		Roles:    claims.Roles,
	}
}

// principalID is the identity the rest of the system sees: the linked profile
// id when one exists, the local auth id otherwise. The user and order services
// key everything on this value.
func principalID(user *models.AuthUser) uint {
	if user.ProfileID != nil {
		return *user.ProfileID
	}
	return user.ID
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.AuthUser, fullName string) (*transport.AuthResponse, error) {
	access, _, err := tokens.NewAccessToken(s.secret, principalID(user), user.Username, user.RoleList(), s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := tokens.NewRefreshSecret()
	if err != nil {
		return nil, err
	}
	exp := time.Now().UTC().Add(s.refreshTTL)
	if err := s.Repo.StoreRefresh(ctx, tokens.Sha256Hex(refresh), user.ID, exp); err != nil {
		return nil, err
	}

	return s.buildResponse(user, access, refresh, fullName), nil
}

func (s *AuthService) buildResponse(user *models.AuthUser, access, refresh, fullName string) *transport.AuthResponse {
	id := principalID(user)
	return &transport.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		User: transport.UserInfo{
			ID:       id,
			Username: user.Username,
			Email:    user.Email,
			FullName: fullName,
			Roles:    user.RoleList(),
		},
	}
}

// fetchFullName enriches auth responses from the user service; when the
// profile is missing or the service is down the username stands in. The call
// goes out under the authenticated user's own identity so the profile read
// passes the user service's owner gate.
func (s *AuthService) fetchFullName(ctx context.Context, user *models.AuthUser) string {
	if user.ProfileID == nil {
		return user.Username
	}
	ctx = principal.IntoContext(ctx, &principal.Principal{
		UserID:   *user.ProfileID,
		Username: user.Username,
		Roles:    user.RoleList(),
	})
	profile, _ := resilience.Call(ctx, s.userDep, resilience.DegradeOptional[*client.Profile](), func(ctx context.Context) (*client.Profile, error) {
		return s.Users.GetProfile(ctx, *user.ProfileID)
	})
	if profile == nil || profile.FullName == "" {
		return user.Username
	}
	return profile.FullName
}
