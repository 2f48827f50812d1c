package preferences

import (
	"context"
	"errors"

	preferencesdomain "expense-tracker-go/internal/domain/preferences"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetPreference(ctx context.Context, ownerID string) (*preferencesdomain.Preference, error) {
	var preference preferencesdomain.Preference
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&preference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, preferencesdomain.ErrPreferenceNotFound
		}
		return nil, err
	}
	return &preference, nil
}

func (r *PostgresRepository) UpsertPreference(ctx context.Context, preference *preferencesdomain.Preference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"currency", "updated_at"}),
		}).
		Create(preference).Error
}
