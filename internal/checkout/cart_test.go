package checkout

import (
	"testing"

	"github.com/Samsuesca/uniformes-backend/internal/domain"
)

var (
	schoolA = domain.School{ID: "sch-a", Name: "San Jose"}
	schoolB = domain.School{ID: "sch-b", Name: "La Salle"}

	shirtA = domain.Product{ID: "prod-shirt", SchoolID: "sch-a", Name: "Camisa", Size: "10", PriceCents: 450_00}
	pantsA = domain.Product{ID: "prod-pants", SchoolID: "sch-a", Name: "Pantalon", Size: "10", PriceCents: 600_00}
	sockG  = domain.Product{ID: "prod-socks", IsGlobal: true, Name: "Medias", Size: "U", PriceCents: 120_00}
	skirtB = domain.Product{ID: "prod-skirt", SchoolID: "sch-b", Name: "Falda", Size: "8", PriceCents: 550_00}
)

func TestCartMergesSameProduct(t *testing.T) {
	var cart CartState
	cart.AddItem(shirtA, schoolA, 2)
	cart.AddItem(pantsA, schoolA, 1)
	cart.AddItem(shirtA, schoolA, 3)

	if got := len(cart.Items); got != 2 {
		t.Fatalf("expected 2 cart lines, got %d", got)
	}
	if got := cart.Items[0].Qty; got != 5 {
		t.Errorf("merged quantity = %d, want 5", got)
	}
	if got := cart.Total(); got != 5*450_00+600_00 {
		t.Errorf("total = %d, want %d", got, 5*450_00+600_00)
	}
}

func TestCartGlobalProductKeptSeparatePerFlag(t *testing.T) {
	local := sockG
	local.IsGlobal = false

	var cart CartState
	cart.AddItem(sockG, schoolA, 1)
	cart.AddItem(local, schoolA, 1)

	if got := len(cart.Items); got != 2 {
		t.Fatalf("expected separate lines for global and non-global, got %d", got)
	}

	cart.AddItem(sockG, schoolB, 4)
	if got := len(cart.Items); got != 2 {
		t.Fatalf("global re-add should merge regardless of school, got %d lines", got)
	}
	if got := cart.Items[0].Qty; got != 5 {
		t.Errorf("global line quantity = %d, want 5", got)
	}
}

func TestCartRemoveItem(t *testing.T) {
	var cart CartState
	cart.AddItem(shirtA, schoolA, 1)
	cart.AddItem(skirtB, schoolB, 1)

	cart.RemoveItem(5)
	cart.RemoveItem(-1)
	if got := len(cart.Items); got != 2 {
		t.Fatalf("out-of-range remove changed the cart: %d lines", got)
	}

	cart.RemoveItem(0)
	if got := len(cart.Items); got != 1 {
		t.Fatalf("expected 1 line after remove, got %d", got)
	}
	if cart.Items[0].ProductID != skirtB.ID {
		t.Errorf("wrong line removed, kept %s", cart.Items[0].ProductID)
	}
}
