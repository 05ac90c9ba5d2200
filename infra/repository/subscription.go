package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/infra/repository/model"
	"github.com/impactlink/impactlink/pkg/dto"
	subscriptionrepo "github.com/impactlink/impactlink/pkg/repository/subscription"
	"gorm.io/gorm"
)

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a subscription repository on the
// given session.
func NewSubscriptionRepository(db *gorm.DB) subscriptionrepo.Repository {
	return &subscriptionRepository{db: db}
}

// Create implements subscription.Repository.
func (r *subscriptionRepository) Create(ctx context.Context, create dto.SubscriptionCreate) error {
	row := model.Subscription{
		ID:          create.ID,
		DonorID:     create.DonorID,
		ProjectID:   create.ProjectID,
		Amount:      create.Amount,
		Currency:    create.Currency,
		Frequency:   create.Frequency,
		Status:      create.Status,
		ExternalRef: create.ExternalRef,
		NextCharge:  create.NextCharge,
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&row).Error
	})
}

// Get implements subscription.Repository.
func (r *subscriptionRepository) Get(ctx context.Context, id uuid.UUID) (*dto.SubscriptionRead, error) {
	var row model.Subscription
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapSubscriptionToDTO(&row), nil
}

// GetByExternalRef implements subscription.Repository.
func (r *subscriptionRepository) GetByExternalRef(ctx context.Context, ref string) (*dto.SubscriptionRead, error) {
	var row model.Subscription
	if err := r.db.WithContext(ctx).First(&row, "external_ref = ?", ref).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapSubscriptionToDTO(&row), nil
}

// Update implements subscription.Repository.
func (r *subscriptionRepository) Update(ctx context.Context, id uuid.UUID, update dto.SubscriptionUpdate) error {
	updates := make(map[string]any)
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.NextCharge != nil {
		updates["next_charge"] = *update.NextCharge
	}
	if len(updates) == 0 {
		return nil
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).
			Model(&model.Subscription{}).
			Where("id = ?", id).
			Updates(updates).Error
	})
}

// ListByDonor implements subscription.Repository.
func (r *subscriptionRepository) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]*dto.SubscriptionRead, error) {
	var rows []model.Subscription
	err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*dto.SubscriptionRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapSubscriptionToDTO(&rows[i]))
	}
	return result, nil
}

func mapSubscriptionToDTO(row *model.Subscription) *dto.SubscriptionRead {
	return &dto.SubscriptionRead{
		ID:          row.ID,
		DonorID:     row.DonorID,
		ProjectID:   row.ProjectID,
		Amount:      row.Amount,
		Currency:    row.Currency,
		Frequency:   row.Frequency,
		Status:      row.Status,
		ExternalRef: row.ExternalRef,
		NextCharge:  row.NextCharge,
		CreatedAt:   row.CreatedAt,
	}
}
