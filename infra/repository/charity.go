package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/infra/repository/model"
	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/dto"
	charityrepo "github.com/impactlink/impactlink/pkg/repository/charity"
	"gorm.io/gorm"
)

type charityRepository struct {
	db *gorm.DB
}

// NewCharityRepository creates a charity repository on the given session.
func NewCharityRepository(db *gorm.DB) charityrepo.Repository {
	return &charityRepository{db: db}
}

// Get implements charity.Repository.
func (r *charityRepository) Get(ctx context.Context, id uuid.UUID) (*dto.CharityRead, error) {
	var row model.Charity
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return &dto.CharityRead{
		ID:             row.ID,
		Name:           row.Name,
		Category:       row.Category,
		Verified:       row.Verified,
		CurrentFunding: row.CurrentFunding,
		DonorCount:     row.DonorCount,
	}, nil
}

// AdjustFunding implements charity.Repository.
func (r *charityRepository) AdjustFunding(ctx context.Context, id uuid.UUID, deltaFunding, deltaDonors int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Charity{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"current_funding": gorm.Expr("current_funding + ?", deltaFunding),
			"donor_count":     gorm.Expr("donor_count + ?", deltaDonors),
		})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
