package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/masterproject/course-platform/internal/models"
	"github.com/masterproject/course-platform/internal/repositories"
)

// LocalUserPostgreSQL mirrors identity-provider users into the local users
// table so enrollment and progress rows have a referenced parent.
type LocalUserPostgreSQL struct {
	db *gorm.DB
}

func NewLocalUserPostgreSQL(db *gorm.DB) repositories.LocalUserRepository {
	return &LocalUserPostgreSQL{db: db}
}

func (u *LocalUserPostgreSQL) Upsert(ctx context.Context, user *models.User) (bool, error) {
	var existing int64
	err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Count(&existing).Error
	if err != nil {
		return false, fmt.Errorf("failed to check local user: %w", err)
	}

	err = u.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "email", "avatar_url", "email_verified", "updated_at"}),
		}).
		Create(user).Error
	if err != nil {
		return false, fmt.Errorf("failed to upsert local user: %w", err)
	}

	return existing == 0, nil
}

func (u *LocalUserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get local user: %w", err)
	}
	return &user, nil
}
