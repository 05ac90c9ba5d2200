package donation

import "time"

// CreateRequest is the body for initiating a donation. Exactly one of
// project_id and charity_id selects the target; amount is in major
// currency units.
type CreateRequest struct {
	DonorID   string  `json:"donor_id" validate:"required,uuid"`
	ProjectID string  `json:"project_id" validate:"omitempty,uuid"`
	CharityID string  `json:"charity_id" validate:"omitempty,uuid"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Currency  string  `json:"currency" validate:"omitempty,len=3"`
	Message   string  `json:"message" validate:"omitempty,max=500"`
	Anonymous bool    `json:"anonymous"`
}

// RefundRequest is the body for refunding a completed donation.
type RefundRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// DonationDTO represents a donation for API responses. Amounts are minor
// units.
type DonationDTO struct {
	ID           string     `json:"id"`
	DonorID      string     `json:"donor_id"`
	ProjectID    string     `json:"project_id,omitempty"`
	CharityID    string     `json:"charity_id,omitempty"`
	PaymentRef   string     `json:"payment_ref"`
	GrossAmount  int64      `json:"gross_amount"`
	PlatformFee  int64      `json:"platform_fee"`
	ProcessorFee int64      `json:"processor_fee"`
	NetAmount    int64      `json:"net_amount"`
	Currency     string     `json:"currency"`
	Status       string     `json:"status"`
	Recurring    bool       `json:"recurring"`
	Message      string     `json:"message,omitempty"`
	Anonymous    bool       `json:"anonymous"`
	ImpactScore  int64      `json:"impact_score"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`
	RefundReason string     `json:"refund_reason,omitempty"`
}

// CreateResponse carries the created donation plus the client secret the
// donor's browser needs to confirm the payment.
type CreateResponse struct {
	Donation     *DonationDTO `json:"donation"`
	ClientSecret string       `json:"client_secret"`
}
