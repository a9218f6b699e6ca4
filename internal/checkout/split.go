package checkout

import (
	"github.com/Samsuesca/uniformes-backend/internal/domain"
)

// ApportionPayments divides validated payment lines across school groups in
// proportion to each school's subtotal. The result has one payment set per
// group, in group order, and each set sums exactly to its group's subtotal.
//
// Shares use the largest-remainder method on the exact integer product
// amount * subtotal: every line starts from the floor of its proportional
// share and the leftover cents go, one each, to the lines that were rounded
// down the hardest. Every emitted amount stays non-negative and no floating
// point is involved. With a single group the lines pass through untouched.
func ApportionPayments(groups []SchoolGroup, payments []domain.PaymentLine) [][]domain.SalePayment {
	sets := make([][]domain.SalePayment, len(groups))
	if len(groups) == 0 || len(payments) == 0 {
		return sets
	}
	if len(groups) == 1 {
		sets[0] = toSalePayments(payments)
		return sets
	}

	var total int64
	for _, g := range groups {
		total += g.SubtotalCents
	}

	for gi, g := range groups {
		set := make([]domain.SalePayment, len(payments))
		rems := make([]int64, len(payments))
		var assigned int64
		for pi, line := range payments {
			var share, rem int64
			if total > 0 {
				exact := line.AmountCents * g.SubtotalCents
				share = exact / total
				rem = exact % total
			}
			set[pi] = domain.SalePayment{Method: line.Method, AmountCents: share}
			rems[pi] = rem
			assigned += share
		}
		for assigned < g.SubtotalCents {
			best := 0
			for pi := 1; pi < len(rems); pi++ {
				if rems[pi] > rems[best] {
					best = pi
				}
			}
			set[best].AmountCents++
			rems[best] = -1
			assigned++
		}
		sets[gi] = set
	}
	return sets
}

func toSalePayments(lines []domain.PaymentLine) []domain.SalePayment {
	out := make([]domain.SalePayment, len(lines))
	for i, line := range lines {
		out[i] = domain.SalePayment{Method: line.Method, AmountCents: line.AmountCents}
	}
	return out
}
