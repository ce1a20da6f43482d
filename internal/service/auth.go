package service

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/psds-microservice/license-tracker/internal/model"
)

// CredentialVerifier checks a username/secret pair. The login handler only
// depends on this interface, so a hashing implementation can replace the
// plaintext one without touching callers.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, secret string) (bool, error)
}

// UserService is the DB-backed CredentialVerifier. It compares the secret
// against the stored plaintext password — a known weakness kept for
// compatibility with the existing users table.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Verify(ctx context.Context, username, secret string) (bool, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("username = ? AND password = ?", username, secret).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.WithStack(err)
	}
	return true, nil
}
