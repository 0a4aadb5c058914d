package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// SpenderAmount represents the expenses attributed to one household member.
type SpenderAmount struct {
	SpenderID string `json:"spenderId"`
	Amount    Money  `json:"amount"`
}
