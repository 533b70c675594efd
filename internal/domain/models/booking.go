package models

import "github.com/shopspring/decimal"

// Booking captures the minimal booking data the delivery flow reads. The
// booking lifecycle itself is owned elsewhere; this side only validates
// parties and eligibility and pulls the rent amount for settlement.
type Booking struct {
	ID          int64           `json:"id"`
	ListingID   int64           `json:"listing_id"`
	OwnerID     string          `json:"owner_id"`
	RenterID    string          `json:"renter_id"`
	Status      string          `json:"status"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	RentAmount  decimal.Decimal `json:"rent_amount"`
}

// IsParty reports whether the user is the owner or the renter.
func (b Booking) IsParty(userID string) bool {
	return userID != "" && (userID == b.OwnerID || userID == b.RenterID)
}
