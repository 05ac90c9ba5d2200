package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/infra/repository/model"
	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/dto"
	projectrepo "github.com/impactlink/impactlink/pkg/repository/project"
	"gorm.io/gorm"
)

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a project repository on the given session.
func NewProjectRepository(db *gorm.DB) projectrepo.Repository {
	return &projectRepository{db: db}
}

// Get implements project.Repository.
func (r *projectRepository) Get(ctx context.Context, id uuid.UUID) (*dto.ProjectRead, error) {
	var row model.Project
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return &dto.ProjectRead{
		ID:             row.ID,
		CharityID:      row.CharityID,
		Title:          row.Title,
		Category:       row.Category,
		Status:         row.Status,
		FundingGoal:    row.FundingGoal,
		CurrentFunding: row.CurrentFunding,
		DonorCount:     row.DonorCount,
		Currency:       row.Currency,
	}, nil
}

// AdjustFunding implements project.Repository. The increments run as SQL
// expressions so concurrent transitions never lose updates.
func (r *projectRepository) AdjustFunding(ctx context.Context, id uuid.UUID, deltaFunding, deltaDonors int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Project{}).
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
