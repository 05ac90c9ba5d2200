package repository

import (
	"context"

	"github.com/impactlink/impactlink/pkg/repository"
	charityrepo "github.com/impactlink/impactlink/pkg/repository/charity"
	donationrepo "github.com/impactlink/impactlink/pkg/repository/donation"
	donorrepo "github.com/impactlink/impactlink/pkg/repository/donor"
	projectrepo "github.com/impactlink/impactlink/pkg/repository/project"
	subscriptionrepo "github.com/impactlink/impactlink/pkg/repository/subscription"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and repository access in one
// abstraction. Every repository handed out inside Do is bound to the
// same *gorm.DB transaction, which is what makes a status change and its
// aggregate adjustments atomic.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn in a transaction boundary, providing a UoW whose
// repositories share that transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

// session returns the transaction when inside Do, the root session
// otherwise.
func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// Donations implements repository.UnitOfWork.
func (u *UoW) Donations() (donationrepo.Repository, error) {
	return NewDonationRepository(u.session()), nil
}

// Subscriptions implements repository.UnitOfWork.
func (u *UoW) Subscriptions() (subscriptionrepo.Repository, error) {
	return NewSubscriptionRepository(u.session()), nil
}

// Projects implements repository.UnitOfWork.
func (u *UoW) Projects() (projectrepo.Repository, error) {
	return NewProjectRepository(u.session()), nil
}

// Charities implements repository.UnitOfWork.
func (u *UoW) Charities() (charityrepo.Repository, error) {
	return NewCharityRepository(u.session()), nil
}

// Donors implements repository.UnitOfWork.
func (u *UoW) Donors() (donorrepo.Repository, error) {
	return NewDonorRepository(u.session()), nil
}
