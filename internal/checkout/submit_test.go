package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Samsuesca/uniformes-backend/internal/domain"
)

// fakeCreator records sale creation order and can be told to fail on a
// specific school or to refuse voids.
type fakeCreator struct {
	created   []domain.SaleInput
	voided    []string
	failOn    string
	voidFails bool
	nextID    int
}

func (f *fakeCreator) CreateSale(_ context.Context, input domain.SaleInput) (*domain.Sale, error) {
	if input.SchoolID == f.failOn {
		return nil, errors.New("boom")
	}
	f.nextID++
	f.created = append(f.created, input)
	var total int64
	for _, p := range input.Payments {
		total += p.AmountCents
	}
	return &domain.Sale{
		ID:         fmt.Sprintf("sale-%d", f.nextID),
		Code:       fmt.Sprintf("VTA-%04d", f.nextID),
		SchoolID:   input.SchoolID,
		TotalCents: total,
	}, nil
}

func (f *fakeCreator) VoidSale(_ context.Context, saleID, _ string) error {
	if f.voidFails {
		return errors.New("void rejected")
	}
	f.voided = append(f.voided, saleID)
	return nil
}

func twoSchoolRequest() SubmitRequest {
	return SubmitRequest{
		Groups: []SchoolGroup{
			{
				SchoolID:   "sch-a",
				SchoolName: "San Jose",
				Items: []domain.CartItem{
					{ProductID: "p1", Qty: 2, UnitPriceCents: 200_00, SchoolID: "sch-a"},
				},
				SubtotalCents: 400_00,
			},
			{
				SchoolID:   "sch-b",
				SchoolName: "La Salle",
				Items: []domain.CartItem{
					{ProductID: "p2", Qty: 1, UnitPriceCents: 600_00, SchoolID: "sch-b", IsGlobal: true},
				},
				SubtotalCents: 600_00,
			},
		},
		Payments: []domain.PaymentLine{
			{Method: domain.PaymentMethodCash, AmountCents: 1000_00},
		},
		ClientID: domain.ClientWalkIn,
		Source:   domain.SaleSourcePOS,
	}
}

func TestSubmitAllSchoolsSucceed(t *testing.T) {
	creator := &fakeCreator{}
	result, err := NewOrchestrator(creator).Submit(context.Background(), twoSchoolRequest())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.State != StateSucceeded {
		t.Fatalf("state = %s, want %s", result.State, StateSucceeded)
	}
	if len(result.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(result.Results))
	}
	if creator.created[0].SchoolID != "sch-a" || creator.created[1].SchoolID != "sch-b" {
		t.Errorf("creation order = %s, %s; want cart order", creator.created[0].SchoolID, creator.created[1].SchoolID)
	}
	if got := result.Results[0].TotalCents; got != 400_00 {
		t.Errorf("first school total = %d, want %d", got, 400_00)
	}
	if got := result.Results[1].TotalCents; got != 600_00 {
		t.Errorf("second school total = %d, want %d", got, 600_00)
	}
	if !creator.created[1].Items[0].IsGlobal {
		t.Error("global flag dropped on the way to the sale input")
	}
}

func TestSubmitHaltsOnFirstFailure(t *testing.T) {
	creator := &fakeCreator{failOn: "sch-b"}
	result, err := NewOrchestrator(creator).Submit(context.Background(), twoSchoolRequest())
	if err == nil {
		t.Fatal("expected an error")
	}
	if result.State != StateFailed {
		t.Fatalf("state = %s, want %s", result.State, StateFailed)
	}
	if result.FailedSchool != "La Salle" {
		t.Errorf("failed school = %q, want La Salle", result.FailedSchool)
	}
	if len(creator.created) != 1 {
		t.Fatalf("expected submission to halt after the failure, %d sales created", len(creator.created))
	}
}

func TestSubmitCompensatesCreatedSales(t *testing.T) {
	creator := &fakeCreator{failOn: "sch-b"}
	result, _ := NewOrchestrator(creator).Submit(context.Background(), twoSchoolRequest())

	if len(result.VoidedSaleIDs) != 1 || result.VoidedSaleIDs[0] != "sale-1" {
		t.Fatalf("voided = %v, want [sale-1]", result.VoidedSaleIDs)
	}
	if len(result.UnvoidedSaleIDs) != 0 {
		t.Errorf("unvoided = %v, want none", result.UnvoidedSaleIDs)
	}
	if len(creator.voided) != 1 {
		t.Errorf("void calls = %d, want 1", len(creator.voided))
	}
}

func TestSubmitReportsUnvoidedSales(t *testing.T) {
	creator := &fakeCreator{failOn: "sch-b", voidFails: true}
	result, _ := NewOrchestrator(creator).Submit(context.Background(), twoSchoolRequest())

	if len(result.UnvoidedSaleIDs) != 1 || result.UnvoidedSaleIDs[0] != "sale-1" {
		t.Fatalf("unvoided = %v, want [sale-1]", result.UnvoidedSaleIDs)
	}
	if len(result.VoidedSaleIDs) != 0 {
		t.Errorf("voided = %v, want none", result.VoidedSaleIDs)
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	result, err := NewOrchestrator(&fakeCreator{}).Submit(context.Background(), SubmitRequest{})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("error = %v, want ErrEmptyCart", err)
	}
	if result.State != StateIdle {
		t.Errorf("state = %s, want %s", result.State, StateIdle)
	}
}

func TestSubmitSplitsPaymentsAcrossSchools(t *testing.T) {
	creator := &fakeCreator{}
	req := twoSchoolRequest()
	req.Payments = []domain.PaymentLine{
		{Method: domain.PaymentMethodCash, AmountCents: 700_00},
		{Method: domain.PaymentMethodNequi, AmountCents: 300_00},
	}
	if _, err := NewOrchestrator(creator).Submit(context.Background(), req); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	for i, input := range creator.created {
		var sum int64
		for _, p := range input.Payments {
			sum += p.AmountCents
		}
		want := req.Groups[i].SubtotalCents
		if sum != want {
			t.Errorf("school %s payments sum to %d, want %d", input.SchoolID, sum, want)
		}
	}
}
