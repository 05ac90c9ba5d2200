// Package repository defines the unit-of-work contract that binds the
// entity repositories to a single transaction.
package repository

import (
	"context"

	"github.com/impactlink/impactlink/pkg/repository/charity"
	"github.com/impactlink/impactlink/pkg/repository/donation"
	"github.com/impactlink/impactlink/pkg/repository/donor"
	"github.com/impactlink/impactlink/pkg/repository/project"
	"github.com/impactlink/impactlink/pkg/repository/subscription"
)

// UnitOfWork runs a function inside a transaction boundary and hands out
// repositories bound to that transaction. Every repository obtained from
// the same UnitOfWork inside Do shares one DB session, which is what
// makes a status change and its aggregate adjustments a single atomic
// unit.
type UnitOfWork interface {
	// Do executes fn within a transaction. A returned error rolls the
	// transaction back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	Donations() (donation.Repository, error)
	Subscriptions() (subscription.Repository, error)
	Projects() (project.Repository, error)
	Charities() (charity.Repository, error)
	Donors() (donor.Repository, error)
}
