package repositories

import (
	"database/sql"
	"errors"

	"campurent/internal/domain/models"

	"github.com/shopspring/decimal"
)

// BookingRepository is read-only on this side; the booking lifecycle is
// owned by the marketplace CRUD layer.
type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) GetByID(bookingID int64) (models.Booking, bool, error) {
	query := `
		SELECT id,
		       COALESCE(listing_id, 0),
		       COALESCE(owner_id, ''),
		       COALESCE(renter_id, ''),
		       COALESCE(status, ''),
		       COALESCE(price_per_day, 0),
		       COALESCE(rent_amount, 0)
		FROM bookings
		WHERE id=? LIMIT 1`

	var (
		b                        models.Booking
		priceRaw, rentAmountRaw string
	)
	err := r.DB.QueryRow(query, bookingID).Scan(
		&b.ID, &b.ListingID, &b.OwnerID, &b.RenterID, &b.Status, &priceRaw, &rentAmountRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, false, nil
		}
		return models.Booking{}, false, err
	}
	if b.PricePerDay, err = decimal.NewFromString(priceRaw); err != nil {
		return models.Booking{}, false, err
	}
	if b.RentAmount, err = decimal.NewFromString(rentAmountRaw); err != nil {
		return models.Booking{}, false, err
	}
	return b, true, nil
}
