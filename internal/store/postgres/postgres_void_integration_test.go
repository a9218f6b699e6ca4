package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

func TestVoidSaleRestoresStock(t *testing.T) {
	databaseURL := os.Getenv("UNIFORMES_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set UNIFORMES_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	schoolID := fmt.Sprintf("sch-void-it-%d", stamp)
	productID := fmt.Sprintf("prod-void-it-%d", stamp)
	saleID := fmt.Sprintf("sale-void-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_payments WHERE sale_id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_lines WHERE sale_id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_counters WHERE school_id = $1`, schoolID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM schools WHERE id = $1`, schoolID)
	})

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO schools (id, code, name, city, active, created_at)
		VALUES ($1, $2, 'Colegio Void IT', 'Medellin', true, now())
	`, schoolID, fmt.Sprintf("VIT%d", stamp%1000)); err != nil {
		t.Fatalf("insert school: %v", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, school_id, is_global, name, garment_type, size, price_cents, stock_qty, active, created_at, updated_at)
		VALUES ($1, $2, false, 'Camisa Void IT', 'Camisa', '10', 45000, 10, true, now(), now())
	`, productID, schoolID); err != nil {
		t.Fatalf("insert product: %v", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (
			id, code, school_id, client_id, total_cents, notes, source,
			is_historical, effective_date, status, void_reason, voided_at, created_at
		)
		VALUES ($1, 'VIT-2026-0001', $2, null, 90000, '', 'pos', false, now(), 'completed', null, null, now())
	`, saleID, schoolID); err != nil {
		t.Fatalf("insert sale: %v", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO sale_lines (sale_id, product_id, name, size, qty, unit_price_cents, is_global)
		VALUES ($1, $2, 'Camisa Void IT', '10', 2, 45000, false)
	`, saleID, productID); err != nil {
		t.Fatalf("insert sale line: %v", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO sale_payments (sale_id, method, amount_cents)
		VALUES ($1, 'cash', 90000)
	`, saleID); err != nil {
		t.Fatalf("insert sale payment: %v", err)
	}

	at := time.Now().UTC()
	if _, err := s.VoidSale(ctx, saleID, "integration test void", at); err != nil {
		t.Fatalf("void sale: %v", err)
	}

	var stockQty int
	if err := s.db.QueryRowContext(ctx, `
		SELECT stock_qty
		FROM products
		WHERE id = $1
	`, productID).Scan(&stockQty); err != nil {
		t.Fatalf("query stock: %v", err)
	}
	if stockQty != 12 {
		t.Fatalf("expected stock 12 after void restock, got %d", stockQty)
	}

	var status string
	if err := s.db.QueryRowContext(ctx, `
		SELECT status
		FROM sales
		WHERE id = $1
	`, saleID).Scan(&status); err != nil {
		t.Fatalf("query sale status: %v", err)
	}
	if status != "voided" {
		t.Fatalf("expected sale status voided, got %s", status)
	}
}
