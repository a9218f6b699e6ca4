package checkout

import (
	"errors"
	"fmt"

	"github.com/Samsuesca/uniformes-backend/internal/domain"
	"github.com/Samsuesca/uniformes-backend/internal/ident"
)

var (
	ErrNoPaymentLines     = errors.New("at least one payment line is required")
	ErrMissingMethod      = errors.New("every payment line needs a payment method")
	ErrUnsupportedMethod  = errors.New("unsupported payment method")
	ErrNegativeAmount     = errors.New("payment amounts cannot be negative")
	ErrNoPositiveAmount   = errors.New("at least one payment line must be greater than zero")
	ErrPaymentSumMismatch = errors.New("payment lines must add up to the cart total")
)

// PaymentState tracks how the cart total is covered across payment lines.
// While it holds exactly one line that line follows the cart total
// automatically, even over a hand-typed amount; adding a second line turns
// the auto-fill off for the rest of the checkout.
type PaymentState struct {
	Lines       []domain.PaymentLine `json:"lines"`
	ManualSplit bool                 `json:"manual_split"`
}

// NewPaymentState returns a state with a single empty line, the minimum.
func NewPaymentState() PaymentState {
	return PaymentState{
		Lines: []domain.PaymentLine{{ID: ident.New("pay")}},
	}
}

// AddLine appends an empty payment line and disables auto-fill.
func (p *PaymentState) AddLine() {
	p.Lines = append(p.Lines, domain.PaymentLine{ID: ident.New("pay")})
	p.ManualSplit = true
}

// RemoveLine deletes the line with the given id. The last remaining line is
// never removed; unknown ids are ignored.
func (p *PaymentState) RemoveLine(id string) {
	if len(p.Lines) <= 1 {
		return
	}
	for i := range p.Lines {
		if p.Lines[i].ID == id {
			p.Lines = append(p.Lines[:i], p.Lines[i+1:]...)
			return
		}
	}
}

// SetAmount records a hand-typed amount on one line. A sole line still snaps
// back to the cart total on the next SyncTotal; only AddLine makes the split
// manual.
func (p *PaymentState) SetAmount(id string, cents int64) {
	for i := range p.Lines {
		if p.Lines[i].ID == id {
			p.Lines[i].AmountCents = cents
			return
		}
	}
}

// SetMethod sets the payment method on one line.
func (p *PaymentState) SetMethod(id, method string) {
	for i := range p.Lines {
		if p.Lines[i].ID == id {
			p.Lines[i].Method = method
			return
		}
	}
}

// SyncTotal keeps the single automatic line equal to the cart total. It is a
// no-op once the split became manual.
func (p *PaymentState) SyncTotal(totalCents int64) {
	if p.ManualSplit || len(p.Lines) != 1 {
		return
	}
	p.Lines[0].AmountCents = totalCents
}

// Sum returns the total covered by all lines in cents.
func (p PaymentState) Sum() int64 {
	var sum int64
	for _, line := range p.Lines {
		sum += line.AmountCents
	}
	return sum
}

// ValidatePayments checks that lines cover exactly the given total: every
// line has a supported method, no amount is negative, at least one amount is
// positive, and the sum matches the total to the cent.
func ValidatePayments(lines []domain.PaymentLine, totalCents int64) error {
	if len(lines) == 0 {
		return ErrNoPaymentLines
	}
	var sum int64
	positive := false
	for _, line := range lines {
		if line.Method == "" {
			return ErrMissingMethod
		}
		if !domain.IsSupportedPaymentMethod(line.Method) {
			return fmt.Errorf("%w: %s", ErrUnsupportedMethod, line.Method)
		}
		if line.AmountCents < 0 {
			return ErrNegativeAmount
		}
		if line.AmountCents > 0 {
			positive = true
		}
		sum += line.AmountCents
	}
	if !positive {
		return ErrNoPositiveAmount
	}
	if sum != totalCents {
		return fmt.Errorf("%w: lines add up to %d, cart total is %d", ErrPaymentSumMismatch, sum, totalCents)
	}
	return nil
}

// Validate runs ValidatePayments over the state's lines.
func (p PaymentState) Validate(totalCents int64) error {
	return ValidatePayments(p.Lines, totalCents)
}
