package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"

	"gorm.io/gorm"
)

func (s *Store) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, lookupErr(err, "user", fmt.Sprint(id))
	}
	return &user, nil
}

// FindUserByLogin looks a user up by username or email
func (s *Store) FindUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var user model.User
	err := s.conn(ctx).Where("username = ? OR (email = ? AND email <> '')", login, login).First(&user).Error
	if err != nil {
		return nil, lookupErr(err, "user", fmt.Sprintf("%q", login))
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if err := s.checkUserUnique(ctx, u); err != nil {
		return err
	}
	if err := s.conn(ctx).Create(u).Error; err != nil {
		return writeErr(err, "user")
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	if err := s.checkUserUnique(ctx, u); err != nil {
		return err
	}
	if err := s.conn(ctx).Save(u).Error; err != nil {
		return writeErr(err, "user")
	}
	return nil
}

// TouchLastLogin records a successful authentication
func (s *Store) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	if err := s.conn(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_login", at).Error; err != nil {
		return apperr.Internal("failed to update last login", err)
	}
	return nil
}

// DeleteUser removes a user; their orders survive without an owner
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.GetUser(ctx, id); err != nil {
			return err
		}
		if err := tx.conn(ctx).Model(&model.Order{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return apperr.Internal("failed to detach user orders", err)
		}
		if err := tx.conn(ctx).Where("user_id = ?", id).Delete(&model.BlacklistedToken{}).Error; err != nil {
			return apperr.Internal("failed to delete user tokens", err)
		}
		if err := tx.conn(ctx).Delete(&model.User{}, id).Error; err != nil {
			return apperr.Internal("failed to delete user", err)
		}
		return nil
	})
}

// BlacklistToken revokes a refresh token; revoking twice is not an error
func (s *Store) BlacklistToken(ctx context.Context, t *model.BlacklistedToken) error {
	err := s.conn(ctx).Create(t).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Internal("failed to blacklist token", err)
	}
	return nil
}

// IsTokenBlacklisted reports whether the refresh token with this jti was revoked
func (s *Store) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	return s.exists(ctx, &model.BlacklistedToken{}, "jti = ?", jti)
}

// PurgeExpiredTokens drops blacklist entries whose token could no longer be used anyway
func (s *Store) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	result := s.conn(ctx).Where("expires_at < ?", now).Delete(&model.BlacklistedToken{})
	if result.Error != nil {
		return 0, apperr.Internal("failed to purge blacklisted tokens", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *Store) checkUserUnique(ctx context.Context, u *model.User) error {
	taken, err := s.exists(ctx, &model.User{}, "username = ? AND id <> ?", u.Username, u.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.ConflictField("username", "a user with that username already exists")
	}
	if u.Email == "" {
		return nil
	}
	taken, err = s.exists(ctx, &model.User{}, "email = ? AND id <> ?", u.Email, u.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.ConflictField("email", "a user with that email already exists")
	}
	return nil
}
