package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/infra/repository/model"
	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/dto"
	donationrepo "github.com/impactlink/impactlink/pkg/repository/donation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository creates a donation repository on the given session.
func NewDonationRepository(db *gorm.DB) donationrepo.Repository {
	return &donationRepository{db: db}
}

// Create implements donation.Repository.
func (r *donationRepository) Create(ctx context.Context, create dto.DonationCreate) error {
	row := model.Donation{
		ID:           create.ID,
		DonorID:      create.DonorID,
		ProjectID:    create.ProjectID,
		CharityID:    create.CharityID,
		PaymentRef:   create.PaymentRef,
		GrossAmount:  create.GrossAmount,
		PlatformFee:  create.PlatformFee,
		ProcessorFee: create.ProcessorFee,
		NetAmount:    create.NetAmount,
		Currency:     create.Currency,
		Status:       create.Status,
		Recurring:    create.Recurring,
		Message:      create.Message,
		Anonymous:    create.Anonymous,
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&row).Error
	})
}

// Get implements donation.Repository.
func (r *donationRepository) Get(ctx context.Context, id uuid.UUID) (*dto.DonationRead, error) {
	var row model.Donation
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapDonationToDTO(&row), nil
}

// GetByPaymentRef implements donation.Repository.
func (r *donationRepository) GetByPaymentRef(ctx context.Context, ref string) (*dto.DonationRead, error) {
	var row model.Donation
	if err := r.db.WithContext(ctx).First(&row, "payment_ref = ?", ref).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapDonationToDTO(&row), nil
}

// GetByPaymentRefForUpdate implements donation.Repository. The row lock
// serializes concurrent transitions on the same donation.
func (r *donationRepository) GetByPaymentRefForUpdate(ctx context.Context, ref string) (*dto.DonationRead, error) {
	var row model.Donation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "payment_ref = ?", ref).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapDonationToDTO(&row), nil
}

// GetForUpdate implements donation.Repository.
func (r *donationRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*dto.DonationRead, error) {
	var row model.Donation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapDonationToDTO(&row), nil
}

// UpdateStatus implements donation.Repository. The status predicate makes
// the update a compare-and-swap: zero affected rows means another
// transition won.
func (r *donationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus string, update dto.DonationStatusUpdate) error {
	updates := map[string]any{"status": update.Status}
	if update.ImpactScore != nil {
		updates["impact_score"] = *update.ImpactScore
	}
	if update.CompletedAt != nil {
		updates["completed_at"] = *update.CompletedAt
	}
	if update.RefundedAt != nil {
		updates["refunded_at"] = *update.RefundedAt
	}
	if update.RefundReason != nil {
		updates["refund_reason"] = *update.RefundReason
	}

	res := r.db.WithContext(ctx).
		Model(&model.Donation{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

// CountCompletedByDonorAndTarget implements donation.Repository.
func (r *donationRepository) CountCompletedByDonorAndTarget(ctx context.Context, donorID, projectID, charityID uuid.UUID) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Donation{}).
		Where("donor_id = ? AND status = ?", donorID, "completed")
	if projectID != uuid.Nil {
		q = q.Where("project_id = ?", projectID)
	} else {
		q = q.Where("charity_id = ?", charityID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, MapGormErrorToDomain(err)
	}
	return count, nil
}

// ListByDonor implements donation.Repository.
func (r *donationRepository) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]*dto.DonationRead, error) {
	var rows []model.Donation
	err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*dto.DonationRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapDonationToDTO(&rows[i]))
	}
	return result, nil
}

func mapDonationToDTO(row *model.Donation) *dto.DonationRead {
	return &dto.DonationRead{
		ID:           row.ID,
		DonorID:      row.DonorID,
		ProjectID:    row.ProjectID,
		CharityID:    row.CharityID,
		PaymentRef:   row.PaymentRef,
		GrossAmount:  row.GrossAmount,
		PlatformFee:  row.PlatformFee,
		ProcessorFee: row.ProcessorFee,
		NetAmount:    row.NetAmount,
		Currency:     row.Currency,
		Status:       row.Status,
		Recurring:    row.Recurring,
		Message:      row.Message,
		Anonymous:    row.Anonymous,
		ImpactScore:  row.ImpactScore,
		CreatedAt:    row.CreatedAt,
		CompletedAt:  row.CompletedAt,
		RefundedAt:   row.RefundedAt,
		RefundReason: row.RefundReason,
	}
}
