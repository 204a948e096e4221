package repository

import (
	"context"
	"time"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
)

// The accessors below only read or change user in memory. Callers persist
// changes with Update.

func (s *userStore) GetPasswordHash(ctx context.Context, user *model.User) (string, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return "", err
	}

	return user.PasswordHash, nil
}

func (s *userStore) SetPasswordHash(ctx context.Context, user *model.User, passwordHash string) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	user.PasswordHash = passwordHash

	return nil
}

func (s *userStore) HasPassword(ctx context.Context, user *model.User) (bool, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return false, err
	}

	return user.PasswordHash != "", nil
}

func (s *userStore) GetSecurityStamp(ctx context.Context, user *model.User) (string, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return "", err
	}

	return user.SecurityStamp, nil
}

func (s *userStore) SetSecurityStamp(ctx context.Context, user *model.User, stamp string) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}
	if stamp == "" {
		return argumentError("security stamp")
	}

	user.SecurityStamp = stamp

	return nil
}

func (s *userStore) GetEmail(ctx context.Context, user *model.User) (string, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return "", err
	}

	return user.Email, nil
}

func (s *userStore) SetEmail(ctx context.Context, user *model.User, email string) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	user.Email = email

	return nil
}

func (s *userStore) GetEmailConfirmed(ctx context.Context, user *model.User) (bool, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return false, err
	}

	return user.EmailConfirmed, nil
}

func (s *userStore) SetEmailConfirmed(ctx context.Context, user *model.User, confirmed bool) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	user.EmailConfirmed = confirmed

	return nil
}

func (s *userStore) GetNormalizedEmail(ctx context.Context, user *model.User) (string, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return "", err
	}

	return user.NormalizedEmail, nil
}

func (s *userStore) SetNormalizedEmail(ctx context.Context, user *model.User, normalizedEmail string) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	user.NormalizedEmail = normalizedEmail

	return nil
}

func (s *userStore) GetPhoneNumber(ctx context.Context, user *model.User) (string, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return "", err
	}

	return user.PhoneNumber, nil
}

func (s *userStore) SetPhoneNumber(ctx context.Context, user *model.User, phoneNumber string) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	user.PhoneNumber = phoneNumber

	return nil
}

func (s *userStore) GetPhoneNumberConfirmed(ctx context.Context, user *model.User) (bool, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return false, err
	}

	return user.PhoneNumberConfirmed, nil
}

func (s *userStore) SetPhoneNumberConfirmed(ctx context.Context, user *model.User, confirmed bool) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	user.PhoneNumberConfirmed = confirmed

	return nil
}

func (s *userStore) GetLockoutEndDate(ctx context.Context, user *model.User) (*time.Time, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return nil, err
	}

	return user.LockoutEnd, nil
}

func (s *userStore) SetLockoutEndDate(ctx context.Context, user *model.User, lockoutEnd *time.Time) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	user.LockoutEnd = lockoutEnd
	normalizeLockoutEnd(user)

	return nil
}

// normalizeLockoutEnd brings the lockout end to the precision and location
// the store reads back: UTC, whole milliseconds.
func normalizeLockoutEnd(user *model.User) {
	if user.LockoutEnd == nil {
		return
	}

	end := user.LockoutEnd.UTC().Truncate(time.Millisecond)
	user.LockoutEnd = &end
}

func (s *userStore) GetAccessFailedCount(ctx context.Context, user *model.User) (int, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return 0, err
	}

	return user.AccessFailedCount, nil
}

// IncrementAccessFailedCount returns the count after incrementing.
func (s *userStore) IncrementAccessFailedCount(ctx context.Context, user *model.User) (int, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return 0, err
	}

	user.AccessFailedCount++

	return user.AccessFailedCount, nil
}

func (s *userStore) ResetAccessFailedCount(ctx context.Context, user *model.User) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	user.AccessFailedCount = 0

	return nil
}

func (s *userStore) GetLockoutEnabled(ctx context.Context, user *model.User) (bool, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return false, err
	}

	return user.LockoutEnabled, nil
}

func (s *userStore) SetLockoutEnabled(ctx context.Context, user *model.User, enabled bool) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	user.LockoutEnabled = enabled

	return nil
}

func (s *userStore) GetTwoFactorEnabled(ctx context.Context, user *model.User) (bool, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return false, err
	}

	return user.TwoFactorEnabled, nil
}

func (s *userStore) SetTwoFactorEnabled(ctx context.Context, user *model.User, enabled bool) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	user.TwoFactorEnabled = enabled

	return nil
}
