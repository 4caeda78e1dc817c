package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_api/internal/hash"
	"github.com/Skotchmaster/shop_api/internal/models"
)

// CredentialRepo is the persistence side of the authentication boundary. The
// session core never touches it directly; handlers verify credentials here
// and hand the registry an already-verified identity.
type CredentialRepo struct {
	DB *gorm.DB
}

func NewCredentialRepo(db *gorm.DB) *CredentialRepo {
	return &CredentialRepo{DB: db}
}

func (r *CredentialRepo) GetUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *CredentialRepo) GetAdmin(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *CredentialRepo) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user := models.User{Username: username, PasswordHash: passwordHash}
	if err := r.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureDefaultAdmin seeds one admin account when the admins table is empty,
// so a fresh database is operable. No-op when a password isn't configured or
// any admin already exists.
func (r *CredentialRepo) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		return nil
	}

	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.Admin{Username: username, PasswordHash: pwHash}
	if err := r.DB.WithContext(ctx).Create(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}
