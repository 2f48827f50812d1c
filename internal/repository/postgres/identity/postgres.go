package identity

import (
	"context"
	"errors"
	"time"

	identitydomain "expense-tracker-go/internal/domain/identity"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(identitydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user *identitydomain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, userID string) (*identitydomain.User, error) {
	var user identitydomain.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identitydomain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*identitydomain.User, error) {
	var user identitydomain.User
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identitydomain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*identitydomain.User, error) {
	var user identitydomain.User
	if err := r.db.WithContext(ctx).
		Where("lower(email) = lower(?)", email).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identitydomain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&identitydomain.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&identitydomain.User{}).
		Where("lower(email) = lower(?)", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) UpdateUser(ctx context.Context, user *identitydomain.User) error {
	return r.db.WithContext(ctx).
		Model(&identitydomain.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"password_hash": user.PasswordHash,
			"active":        user.Active,
			"updated_at":    time.Now().UTC(),
		}).Error
}
