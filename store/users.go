package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"taskhub/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = models.NormalizeEmail(u.Email)
	return wrap(s.conn(ctx).Create(u).Error)
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, wrap(err)
	}
	return &u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&u).Error; err != nil {
		return nil, wrap(err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.conn(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, wrap(err)
	}
	return users, nil
}

// SaveUser writes every column of u.
func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	u.Email = models.NormalizeEmail(u.Email)
	return wrap(s.conn(ctx).Save(u).Error)
}

// DeleteUser removes the account together with its notifications and reset
// tokens. Teams and projects the user owns or belongs to are left untouched.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return wrap(s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", id).Delete(&models.PasswordReset{}).Error; err != nil {
			return err
		}
		return affected(tx.Unscoped().Delete(&models.User{}, id))
	}))
}

func (s *Store) CreatePasswordReset(ctx context.Context, r *models.PasswordReset) error {
	return wrap(s.conn(ctx).Create(r).Error)
}

func (s *Store) PasswordResetByToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	var r models.PasswordReset
	if err := s.conn(ctx).Where("token = ?", token).First(&r).Error; err != nil {
		return nil, wrap(err)
	}
	return &r, nil
}

// RedeemPasswordReset stores the new hash and burns the token in one transaction.
func (s *Store) RedeemPasswordReset(ctx context.Context, r *models.PasswordReset, passwordHash string, at time.Time) error {
	return wrap(s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PasswordReset{}).
			Where("id = ? AND used_at IS NULL", r.ID).
			Update("used_at", at)
		if err := affected(res); err != nil {
			return err
		}
		return affected(tx.Model(&models.User{}).Where("id = ?", r.UserID).Update("password_hash", passwordHash))
	}))
}
