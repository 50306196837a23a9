package service

import (
	"context"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"
	"storefront-service/internal/store"
	"storefront-service/internal/validation"
	"storefront-service/pkg/jwtutil"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the sign-up request body
type RegisterInput struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Phone     string `json:"phone" validate:"max=20"`
	Address   string `json:"address"`
}

// LoginInput accepts either the username or the email as login
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput is a partial profile update; nil fields are left unchanged
type ProfileInput struct {
	Username  *string `json:"username" validate:"omitempty,min=1,max=150"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Address   *string `json:"address"`
}

// ChangePasswordInput is the change-password request body
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// Session is returned on login: a token pair plus the user it was issued for
type Session struct {
	jwtutil.Pair
	User *model.User `json:"user"`
}

// IdentityService handles accounts, passwords and tokens
type IdentityService struct {
	store    *store.Store
	jwt      *jwtutil.JWTUtil
	metrics  *prometheus.Metrics
	hashCost int
	now      func() time.Time
}

type IdentityOption func(*IdentityService)

// WithHashCost overrides the bcrypt cost, mostly to keep tests fast
func WithHashCost(cost int) IdentityOption {
	return func(s *IdentityService) { s.hashCost = cost }
}

func NewIdentityService(s *store.Store, j *jwtutil.JWTUtil, m *prometheus.Metrics, opts ...IdentityOption) *IdentityService {
	svc := &IdentityService{
		store:    s,
		jwt:      j,
		metrics:  m,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register creates an active, non-staff account
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	s.metrics.RecordAuthAttempt("register")
	if err := validation.Struct(&in); err != nil {
		s.metrics.RecordAuthError("validation")
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &model.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Address:   in.Address,
		IsActive:  true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		s.metrics.RecordAuthError("register_conflict")
		return nil, err
	}

	logger.Ctx(ctx).Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))
	return user, nil
}

// Authenticate checks credentials. Unknown users, wrong passwords and inactive accounts
// all fail with the same error.
func (s *IdentityService) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	invalid := apperr.Unauthorized("invalid credentials")

	user, err := s.store.FindUserByLogin(ctx, login)
	if apperr.Is(err, apperr.KindNotFound) {
		s.metrics.RecordAuthError("user_not_found")
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.metrics.RecordAuthError("invalid_password")
		return nil, invalid
	}
	if !user.IsActive {
		s.metrics.RecordAuthError("inactive_user")
		return nil, invalid
	}

	now := s.now()
	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	return user, nil
}

// Login authenticates and issues an access/refresh token pair
func (s *IdentityService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	s.metrics.RecordAuthAttempt("login")
	if err := validation.Struct(&in); err != nil {
		s.metrics.RecordAuthError("validation")
		return nil, err
	}

	user, err := s.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		logger.Ctx(ctx).Warn("Login failed", zap.String("login", in.Username), zap.Error(err))
		return nil, err
	}

	pair, err := s.jwt.GeneratePair(subjectOf(user))
	if err != nil {
		s.metrics.RecordAuthError("token_generation")
		return nil, apperr.Internal("failed to generate tokens", err)
	}

	logger.Ctx(ctx).Info("User logged in", zap.Uint("user_id", user.ID))
	return &Session{Pair: pair, User: user}, nil
}

// Refresh exchanges a refresh token for a new access token. Revoked, expired and malformed tokens
// are all reported as an invalid token.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (jwtutil.Pair, error) {
	s.metrics.RecordAuthAttempt("refresh")

	claims, err := s.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return jwtutil.Pair{}, err
	}
	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return jwtutil.Pair{}, err
	}

	access, err := s.jwt.GenerateAccess(subjectOf(user))
	if err != nil {
		s.metrics.RecordAuthError("token_generation")
		return jwtutil.Pair{}, apperr.Internal("failed to generate tokens", err)
	}
	return jwtutil.Pair{Access: access}, nil
}

// Logout revokes the caller's refresh token
func (s *IdentityService) Logout(ctx context.Context, who Identity, refreshToken string) error {
	s.metrics.RecordAuthAttempt("logout")

	claims, err := s.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	if claims.UserID != who.UserID {
		s.metrics.RecordAuthError("foreign_token")
		return apperr.Forbidden("token was issued to another user")
	}

	entry := &model.BlacklistedToken{JTI: claims.ID, UserID: claims.UserID}
	if claims.ExpiresAt != nil {
		entry.ExpiresAt = claims.ExpiresAt.Time
	}
	if err := s.store.BlacklistToken(ctx, entry); err != nil {
		return err
	}

	logger.Ctx(ctx).Info("User logged out", zap.Uint("user_id", who.UserID))
	return nil
}

// VerifyAccess resolves an access token to the identity of an active user
func (s *IdentityService) VerifyAccess(ctx context.Context, accessToken string) (Identity, error) {
	claims, err := s.jwt.ValidateToken(accessToken, jwtutil.AccessToken)
	if err != nil {
		s.metrics.RecordAuthError("invalid_token")
		return Identity{}, apperr.Unauthorized("invalid token").Wrap(err)
	}
	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return Identity{}, err
	}
	return identityOf(user), nil
}

// Profile returns the caller's account
func (s *IdentityService) Profile(ctx context.Context, who Identity) (*model.User, error) {
	return s.store.GetUser(ctx, who.UserID)
}

// UpdateProfile applies a partial update; the password cannot be changed here
func (s *IdentityService) UpdateProfile(ctx context.Context, who Identity, in ProfileInput) (*model.User, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, who.UserID)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&user.Username, in.Username)
	set(&user.Email, in.Email)
	set(&user.FirstName, in.FirstName)
	set(&user.LastName, in.LastName)
	set(&user.Phone, in.Phone)
	set(&user.Address, in.Address)

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the caller's password after checking the current one
func (s *IdentityService) ChangePassword(ctx context.Context, who Identity, in ChangePasswordInput) error {
	s.metrics.RecordAuthAttempt("change_password")
	if err := validation.Struct(&in); err != nil {
		return err
	}
	user, err := s.store.GetUser(ctx, who.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.OldPassword)); err != nil {
		s.metrics.RecordAuthError("wrong_password")
		return apperr.InvalidField("old_password", "wrong password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.hashCost)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	user.Password = string(hash)
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return err
	}

	logger.Ctx(ctx).Info("Password changed", zap.Uint("user_id", user.ID))
	return nil
}

// DeleteAccount removes the caller's account after checking the password. Their orders are
// kept without an owner.
func (s *IdentityService) DeleteAccount(ctx context.Context, who Identity, password string) error {
	user, err := s.store.GetUser(ctx, who.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.metrics.RecordAuthError("wrong_password")
		return apperr.InvalidField("password", "wrong password")
	}
	if err := s.store.DeleteUser(ctx, user.ID); err != nil {
		return err
	}

	logger.Ctx(ctx).Info("Account deleted", zap.Uint("user_id", user.ID))
	return nil
}

// PurgeExpiredTokens drops blacklist entries for tokens that have expired anyway
func (s *IdentityService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.store.PurgeExpiredTokens(ctx, s.now())
}

func (s *IdentityService) verifyRefresh(ctx context.Context, token string) (*jwtutil.UserClaims, error) {
	claims, err := s.jwt.ValidateToken(token, jwtutil.RefreshToken)
	if err != nil {
		s.metrics.RecordAuthError("invalid_token")
		return nil, apperr.Unauthorized("invalid token").Wrap(err)
	}
	revoked, err := s.store.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		s.metrics.RecordAuthError("revoked_token")
		return nil, apperr.Unauthorized("invalid token").Wrap(jwtutil.ErrInvalidToken)
	}
	return claims, nil
}

// activeUser loads the token's user, rejecting deleted and deactivated accounts
func (s *IdentityService) activeUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if apperr.Is(err, apperr.KindNotFound) || (err == nil && !user.IsActive) {
		s.metrics.RecordAuthError("inactive_user")
		return nil, apperr.Unauthorized("user is inactive or deleted")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func subjectOf(u *model.User) jwtutil.Subject {
	return jwtutil.Subject{UserID: u.ID, Username: u.Username, Email: u.Email, IsStaff: u.IsStaff}
}

func identityOf(u *model.User) Identity {
	return Identity{UserID: u.ID, Username: u.Username, Email: u.Email, IsStaff: u.IsStaff}
}
