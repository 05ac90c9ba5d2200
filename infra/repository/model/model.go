// Package model holds the GORM persistence models. Mapping to and from
// DTOs happens in the repositories; nothing above infra imports this
// package.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Donation is a donation ledger row. Rows are append-plus-status-update
// only: a refund flips the status, it never deletes or rewrites amounts.
type Donation struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	DonorID      uuid.UUID `gorm:"type:uuid;index;not null"`
	ProjectID    uuid.UUID `gorm:"type:uuid;index"`
	CharityID    uuid.UUID `gorm:"type:uuid;index"`
	PaymentRef   string    `gorm:"uniqueIndex;not null"`
	GrossAmount  int64     `gorm:"not null"`
	PlatformFee  int64     `gorm:"not null"`
	ProcessorFee int64     `gorm:"not null"`
	NetAmount    int64     `gorm:"not null"`
	Currency     string    `gorm:"type:varchar(3);not null;default:'USD'"`
	Status       string    `gorm:"type:varchar(16);index;not null"`
	Recurring    bool      `gorm:"not null;default:false"`
	Message      string
	Anonymous    bool  `gorm:"not null;default:false"`
	ImpactScore  int64 `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
	RefundedAt   *time.Time
	RefundReason string
}

// TableName specifies the table name for the Donation model.
func (Donation) TableName() string { return "donations" }

// Subscription is a recurring donation registration.
type Subscription struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	DonorID     uuid.UUID `gorm:"type:uuid;index;not null"`
	ProjectID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Amount      int64     `gorm:"not null"`
	Currency    string    `gorm:"type:varchar(3);not null;default:'USD'"`
	Frequency   string    `gorm:"type:varchar(16);not null"`
	Status      string    `gorm:"type:varchar(16);index;not null"`
	ExternalRef string    `gorm:"uniqueIndex;not null"`
	NextCharge  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for the Subscription model.
func (Subscription) TableName() string { return "subscriptions" }

// Project is a charity project with its incrementally maintained funding
// aggregate.
type Project struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	CharityID      uuid.UUID `gorm:"type:uuid;index"`
	Title          string    `gorm:"not null"`
	Category       string    `gorm:"type:varchar(32);index"`
	Status         string    `gorm:"type:varchar(16);index;not null;default:'active'"`
	FundingGoal    int64     `gorm:"not null;default:0"`
	CurrentFunding int64     `gorm:"not null;default:0"`
	DonorCount     int64     `gorm:"not null;default:0"`
	Currency       string    `gorm:"type:varchar(3);not null;default:'USD'"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for the Project model.
func (Project) TableName() string { return "projects" }

// Charity is a verified organization. Charity-targeted donations keep
// their funding aggregate here.
type Charity struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"not null"`
	Category       string    `gorm:"type:varchar(32);index"`
	Verified       bool      `gorm:"not null;default:false"`
	CurrentFunding int64     `gorm:"not null;default:0"`
	DonorCount     int64     `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for the Charity model.
func (Charity) TableName() string { return "charities" }

// Donor is a donor account with their accumulated impact score.
type Donor struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email         string    `gorm:"uniqueIndex;not null"`
	Name          string
	ImpactScore   int64  `gorm:"not null;default:0"`
	GatewayCustID string `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for the Donor model.
func (Donor) TableName() string { return "donors" }
