package service

import (
	"context"
	"testing"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(t *testing.T, env *testEnv, username, password string) *Session {
	t.Helper()
	session, err := env.identity.Login(context.Background(), LoginInput{Username: username, Password: password})
	require.NoError(t, err)
	return session
}

func TestRegisterLoginAndVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "ada")

	session := login(t, env, "ada", "correct-horse")
	assert.NotEmpty(t, session.Access)
	assert.NotEmpty(t, session.Refresh)
	require.NotNil(t, session.User.LastLogin)

	who, err := env.identity.VerifyAccess(ctx, session.Access)
	require.NoError(t, err)
	assert.Equal(t, "ada", who.Username)
	assert.False(t, who.IsStaff)

	// email works as login too
	login(t, env, "ada@example.com", "correct-horse")

	// refresh tokens are not access tokens
	_, err = env.identity.VerifyAccess(ctx, session.Refresh)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestRegisterRejectsTakenUsernameAndShortPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "ada")

	_, err := env.identity.Register(ctx, RegisterInput{Username: "ada", Email: "other@example.com", Password: "long-enough"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(t, apperr.From(err).Fields, "username")

	_, err = env.identity.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, apperr.From(err).Fields, "password")
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.user(t, "ada")

	_, err := env.identity.Login(ctx, LoginInput{Username: "ada", Password: "wrong-password"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = env.identity.Login(ctx, LoginInput{Username: "nobody", Password: "correct-horse"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	require.NoError(t, env.store.DB().Model(&model.User{}).Where("id = ?", ada.UserID).Update("is_active", false).Error)
	_, err = env.identity.Login(ctx, LoginInput{Username: "ada", Password: "correct-horse"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestDeactivatedUserTokensStopWorking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.user(t, "ada")
	session := login(t, env, "ada", "correct-horse")

	require.NoError(t, env.store.DB().Model(&model.User{}).Where("id = ?", ada.UserID).Update("is_active", false).Error)

	_, err := env.identity.VerifyAccess(ctx, session.Access)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = env.identity.Refresh(ctx, session.Refresh)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestRefreshAndLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.user(t, "ada")
	session := login(t, env, "ada", "correct-horse")

	pair, err := env.identity.Refresh(ctx, session.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.Empty(t, pair.Refresh, "refresh does not rotate the refresh token")
	refreshed, err := env.identity.VerifyAccess(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, ada.UserID, refreshed.UserID)

	_, err = env.identity.Refresh(ctx, session.Access)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	require.NoError(t, env.identity.Logout(ctx, ada, session.Refresh))
	// a revoked token can be neither refreshed nor revoked again
	_, err = env.identity.Refresh(ctx, session.Refresh)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(env.identity.Logout(ctx, ada, session.Refresh)))
}

func TestLogoutRequiresOwnToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "ada")
	bob := env.user(t, "bob")
	session := login(t, env, "ada", "correct-horse")

	err := env.identity.Logout(ctx, bob, session.Refresh)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.user(t, "ada")

	err := env.identity.ChangePassword(ctx, ada, ChangePasswordInput{OldPassword: "nope", NewPassword: "new-password"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, apperr.From(err).Fields, "old_password")

	require.NoError(t, env.identity.ChangePassword(ctx, ada, ChangePasswordInput{OldPassword: "correct-horse", NewPassword: "new-password"}))

	login(t, env, "ada", "new-password")
	_, err = env.identity.Login(ctx, LoginInput{Username: "ada", Password: "correct-horse"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.user(t, "ada")
	env.user(t, "bob")

	phone := "+4412345"
	user, err := env.identity.UpdateProfile(ctx, ada, ProfileInput{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, user.Phone)
	assert.Equal(t, "ada@example.com", user.Email)

	taken := "bob@example.com"
	_, err = env.identity.UpdateProfile(ctx, ada, ProfileInput{Email: &taken})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	profile, err := env.identity.Profile(ctx, ada)
	require.NoError(t, err)
	assert.Equal(t, phone, profile.Phone)
}

func TestDeleteAccountKeepsOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.user(t, "ada")
	phones := env.category(t, "phones", nil)
	p := env.product(t, "pixel", phones.ID, nil, true)
	env.variant(t, p.ID, "X1", "10.00", true)
	order, err := env.orders.CreateOrder(ctx, ada, OrderInput{
		ContactName:  "Ada",
		ContactPhone: "1",
		Items:        []OrderLine{{SKU: "X1", Quantity: 1}},
	})
	require.NoError(t, err)

	err = env.identity.DeleteAccount(ctx, ada, "wrong")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, env.identity.DeleteAccount(ctx, ada, "correct-horse"))

	stored, err := env.store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.UserID)

	_, err = env.identity.Login(ctx, LoginInput{Username: "ada", Password: "correct-horse"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
