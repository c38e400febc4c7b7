package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"wompi-harness/internal/model"
)

// ProfileRepository persists generated customer data per user, the harness
// counterpart of the browser app's in-memory user-data map.
type ProfileRepository interface {
	Save(ctx context.Context, profile *model.CustomerProfile) error
	Get(ctx context.Context, userID string) (*model.CustomerProfile, error)
	SaveLastReference(ctx context.Context, userID, reference string) error
	LastReference(ctx context.Context, userID string) (string, error)
	Clear(ctx context.Context, userID string) error
	ClearAll(ctx context.Context) error
}

type profileRepoImpl struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepoImpl{db: db}
}

// Save upserts, merging over any stored profile for the user.
func (r *profileRepoImpl) Save(ctx context.Context, profile *model.CustomerProfile) error {
	var existing model.CustomerProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", profile.UserID).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(profile).Error
	}
	if err != nil {
		return err
	}

	if profile.LastPaymentReference == "" {
		profile.LastPaymentReference = existing.LastPaymentReference
	}
	profile.CreatedAt = existing.CreatedAt

	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *profileRepoImpl) Get(ctx context.Context, userID string) (*model.CustomerProfile, error) {
	var profile model.CustomerProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *profileRepoImpl) SaveLastReference(ctx context.Context, userID, reference string) error {
	result := r.db.WithContext(ctx).Model(&model.CustomerProfile{}).
		Where("user_id = ?", userID).
		Update("last_payment_reference", reference)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.db.WithContext(ctx).Create(&model.CustomerProfile{
			UserID:               userID,
			LastPaymentReference: reference,
		}).Error
	}
	return nil
}

func (r *profileRepoImpl) LastReference(ctx context.Context, userID string) (string, error) {
	profile, err := r.Get(ctx, userID)
	if err != nil || profile == nil {
		return "", err
	}
	return profile.LastPaymentReference, nil
}

func (r *profileRepoImpl) Clear(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CustomerProfile{}).Error
}

func (r *profileRepoImpl) ClearAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&model.CustomerProfile{}).Error
}
