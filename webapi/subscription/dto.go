package subscription

import "time"

// CreateRequest is the body for starting a recurring donation.
type CreateRequest struct {
	DonorID          string  `json:"donor_id" validate:"required,uuid"`
	ProjectID        string  `json:"project_id" validate:"required,uuid"`
	Amount           float64 `json:"amount" validate:"required,gt=0"`
	Currency         string  `json:"currency" validate:"omitempty,len=3"`
	Frequency        string  `json:"frequency" validate:"required,oneof=weekly monthly quarterly yearly"`
	PaymentMethodRef string  `json:"payment_method_ref" validate:"required"`
}

// SubscriptionDTO represents a recurring donation for API responses.
type SubscriptionDTO struct {
	ID         string    `json:"id"`
	DonorID    string    `json:"donor_id"`
	ProjectID  string    `json:"project_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	Frequency  string    `json:"frequency"`
	Status     string    `json:"status"`
	NextCharge time.Time `json:"next_charge"`
	CreatedAt  time.Time `json:"created_at"`
}
