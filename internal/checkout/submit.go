package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Samsuesca/uniformes-backend/internal/domain"
)

// Submission states. A submission starts Idle, moves to Submitting for the
// whole sequential run, and ends in exactly one of Succeeded or Failed.
const (
	StateIdle       = "idle"
	StateSubmitting = "submitting"
	StateSucceeded  = "succeeded"
	StateFailed     = "failed"
)

var ErrEmptyCart = errors.New("cannot submit an empty cart")

// SaleCreator persists one school's sale and can void it again if a later
// school in the same submission fails.
type SaleCreator interface {
	CreateSale(ctx context.Context, input domain.SaleInput) (*domain.Sale, error)
	VoidSale(ctx context.Context, saleID, reason string) error
}

// SubmitRequest carries an already validated checkout: the partitioned cart
// plus payment lines that sum to the grand total.
type SubmitRequest struct {
	Groups        []SchoolGroup
	Payments      []domain.PaymentLine
	ClientID      string
	Notes         string
	Source        string
	IsHistorical  bool
	EffectiveDate time.Time
}

// SubmitResult reports how far a submission got. On failure, Results covers
// the sales created before the failing school; VoidedSaleIDs and
// UnvoidedSaleIDs record how compensation went for each of them.
type SubmitResult struct {
	State           string
	Results         []domain.SchoolSaleResult
	FailedSchool    string
	VoidedSaleIDs   []string
	UnvoidedSaleIDs []string
}

// Orchestrator drives the per-school submission sequence.
type Orchestrator struct {
	creator SaleCreator
}

func NewOrchestrator(creator SaleCreator) *Orchestrator {
	return &Orchestrator{creator: creator}
}

// Submit creates one sale per school group, in group order, one at a time.
// The first failure halts the sequence; sales already created are then voided
// best effort, and the error from the failing school is returned alongside
// the result. A fully successful run returns State Succeeded with one result
// per group.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	result := SubmitResult{State: StateIdle}
	if len(req.Groups) == 0 {
		return result, ErrEmptyCart
	}
	result.State = StateSubmitting

	sets := ApportionPayments(req.Groups, req.Payments)

	for i, group := range req.Groups {
		input := domain.SaleInput{
			SchoolID:      group.SchoolID,
			ClientID:      req.ClientID,
			Items:         toItemRefs(group.Items),
			Payments:      sets[i],
			Notes:         req.Notes,
			Source:        req.Source,
			IsHistorical:  req.IsHistorical,
			EffectiveDate: req.EffectiveDate,
		}
		sale, err := o.creator.CreateSale(ctx, input)
		if err != nil {
			result.State = StateFailed
			result.FailedSchool = group.SchoolName
			o.compensate(ctx, &result)
			return result, fmt.Errorf("create sale for school %s: %w", group.SchoolName, err)
		}
		result.Results = append(result.Results, domain.SchoolSaleResult{
			SchoolID:   group.SchoolID,
			SchoolName: group.SchoolName,
			SaleID:     sale.ID,
			SaleCode:   sale.Code,
			TotalCents: sale.TotalCents,
		})
	}

	result.State = StateSucceeded
	return result, nil
}

// compensate voids every sale created before the failure. Voids that fail in
// turn are only recorded; the caller surfaces them for manual follow-up.
func (o *Orchestrator) compensate(ctx context.Context, result *SubmitResult) {
	reason := "multi-school checkout failed at " + result.FailedSchool
	for _, r := range result.Results {
		if err := o.creator.VoidSale(ctx, r.SaleID, reason); err != nil {
			result.UnvoidedSaleIDs = append(result.UnvoidedSaleIDs, r.SaleID)
			continue
		}
		result.VoidedSaleIDs = append(result.VoidedSaleIDs, r.SaleID)
	}
}

func toItemRefs(items []domain.CartItem) []domain.SaleItemRef {
	refs := make([]domain.SaleItemRef, len(items))
	for i, item := range items {
		refs[i] = domain.SaleItemRef{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			IsGlobal:  item.IsGlobal,
		}
	}
	return refs
}
