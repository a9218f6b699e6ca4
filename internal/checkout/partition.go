package checkout

import (
	"github.com/Samsuesca/uniformes-backend/internal/domain"
)

// SchoolGroup is one school's slice of the cart, in cart order.
type SchoolGroup struct {
	SchoolID      string            `json:"school_id"`
	SchoolName    string            `json:"school_name"`
	Items         []domain.CartItem `json:"items"`
	SubtotalCents int64             `json:"subtotal_cents"`
}

// PartitionBySchool groups cart items by the school they are sold under.
// Groups come back in first-seen order, so the submission sequence is the
// order in which schools entered the cart, never map iteration order.
func PartitionBySchool(items []domain.CartItem) []SchoolGroup {
	var groups []SchoolGroup
	index := make(map[string]int)
	for _, item := range items {
		i, ok := index[item.SchoolID]
		if !ok {
			i = len(groups)
			index[item.SchoolID] = i
			groups = append(groups, SchoolGroup{
				SchoolID:   item.SchoolID,
				SchoolName: item.SchoolName,
			})
		}
		groups[i].Items = append(groups[i].Items, item)
		groups[i].SubtotalCents += int64(item.Qty) * item.UnitPriceCents
	}
	return groups
}
