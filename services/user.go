package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"couponHub/backend/models"
	"couponHub/backend/utils"
	"couponHub/backend/validators"
)

// ErrBadCredentials covers unknown email, wrong password and wrong one-time code alike.
var ErrBadCredentials = errors.New("invalid email or password")

type UserService struct{ db *gorm.DB }

func NewUserService(db *gorm.DB) *UserService { return &UserService{db: db} }

func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &u, nil
}

// Authenticate checks the password and, for users with a TOTP secret, the one-time code.
func (s *UserService) Authenticate(ctx context.Context, in validators.LoginInput) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(in.Email))).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPasswordHash(in.Password, u.Password) || !utils.ValidateOTP(u.TOTPSecret, in.OTP) {
		return nil, ErrBadCredentials
	}
	return &u, nil
}

// UpdateProfile changes username/email and, when NewPassword is set, the password.
// Changing the password requires the current one.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, in validators.ProfileInput) (*models.User, error) {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Username != "" {
		u.Username = strings.TrimSpace(in.Username)
	}
	if in.Email != "" {
		email := strings.ToLower(strings.TrimSpace(in.Email))
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ? AND id <> ?", email, u.ID).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if n > 0 {
			return nil, fmt.Errorf("%w: email already in use", ErrConflict)
		}
		u.Email = email
	}
	if in.NewPassword != "" {
		if !utils.CheckPasswordHash(in.CurrentPassword, u.Password) {
			return nil, fmt.Errorf("%w: current password is wrong", ErrInvalid)
		}
		hash, err := utils.HashPassword(in.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.Password = hash
	}
	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

// EnsureAdmin creates the first admin when the users table is empty. It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	u := &models.User{Username: strings.Split(email, "@")[0], Email: email, Password: hash, IsAdmin: true}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
