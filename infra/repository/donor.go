package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/infra/repository/model"
	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/dto"
	donorrepo "github.com/impactlink/impactlink/pkg/repository/donor"
	"gorm.io/gorm"
)

type donorRepository struct {
	db *gorm.DB
}

// NewDonorRepository creates a donor repository on the given session.
func NewDonorRepository(db *gorm.DB) donorrepo.Repository {
	return &donorRepository{db: db}
}

// Get implements donor.Repository.
func (r *donorRepository) Get(ctx context.Context, id uuid.UUID) (*dto.DonorRead, error) {
	var row model.Donor
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return &dto.DonorRead{
		ID:            row.ID,
		Email:         row.Email,
		Name:          row.Name,
		ImpactScore:   row.ImpactScore,
		GatewayCustID: row.GatewayCustID,
	}, nil
}

// AdjustImpactScore implements donor.Repository.
func (r *donorRepository) AdjustImpactScore(ctx context.Context, id uuid.UUID, delta int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Donor{}).
		Where("id = ?", id).
		Update("impact_score", gorm.Expr("impact_score + ?", delta))
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetGatewayCustomer implements donor.Repository.
func (r *donorRepository) SetGatewayCustomer(ctx context.Context, id uuid.UUID, customerID string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Donor{}).
		Where("id = ?", id).
		Update("gateway_cust_id", customerID)
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
