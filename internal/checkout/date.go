package checkout

import (
	"errors"
	"fmt"
	"time"

	"github.com/Samsuesca/uniformes-backend/internal/domain"
)

const minHistoricalYear = 2020

var (
	ErrMissingSaleDate = errors.New("historical sales require a sale date")
	ErrInvalidSaleDate = errors.New("invalid sale date")
)

// ValidateSaleDate checks that the parts form a real calendar date no older
// than 2020 and returns it at midnight local time. Combinations like
// 31/02/2024, which time.Date would silently normalize into March, are
// rejected by round-tripping the components.
func ValidateSaleDate(d domain.SaleDate) (time.Time, error) {
	if d.Day < 1 || d.Day > 31 {
		return time.Time{}, fmt.Errorf("%w: day %d out of range", ErrInvalidSaleDate, d.Day)
	}
	if d.Month < 1 || d.Month > 12 {
		return time.Time{}, fmt.Errorf("%w: month %d out of range", ErrInvalidSaleDate, d.Month)
	}
	if d.Year < minHistoricalYear {
		return time.Time{}, fmt.Errorf("%w: year %d is before %d", ErrInvalidSaleDate, d.Year, minHistoricalYear)
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.Local)
	if t.Day() != d.Day || int(t.Month()) != d.Month || t.Year() != d.Year {
		return time.Time{}, fmt.Errorf("%w: %02d/%02d/%04d does not exist", ErrInvalidSaleDate, d.Day, d.Month, d.Year)
	}
	return t, nil
}
