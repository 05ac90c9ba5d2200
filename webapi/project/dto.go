package project

// FundingDTO reports a project's progress toward its goal. Amounts are
// minor units.
type FundingDTO struct {
	ProjectID      string `json:"project_id"`
	FundingGoal    int64  `json:"funding_goal"`
	CurrentFunding int64  `json:"current_funding"`
	DonorCount     int64  `json:"donor_count"`
	Currency       string `json:"currency"`
	PercentFunded  int64  `json:"percent_funded"`
}
