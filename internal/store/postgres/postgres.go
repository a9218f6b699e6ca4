package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Samsuesca/uniformes-backend/internal/domain"
	"github.com/Samsuesca/uniformes-backend/internal/ident"
	"github.com/Samsuesca/uniformes-backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListSchools(ctx context.Context) ([]domain.School, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, city, active, created_at
		FROM schools
		WHERE active = true
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schools := make([]domain.School, 0, 16)
	for rows.Next() {
		var sch domain.School
		if err := rows.Scan(&sch.ID, &sch.Code, &sch.Name, &sch.City, &sch.Active, &sch.CreatedAt); err != nil {
			return nil, err
		}
		sch.CreatedAt = sch.CreatedAt.UTC()
		schools = append(schools, sch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return schools, nil
}

func (s *Store) GetSchoolByID(ctx context.Context, schoolID string) (*domain.School, error) {
	var sch domain.School
	err := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, city, active, created_at
		FROM schools
		WHERE id = $1
	`, schoolID).Scan(&sch.ID, &sch.Code, &sch.Name, &sch.City, &sch.Active, &sch.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	sch.CreatedAt = sch.CreatedAt.UTC()
	return &sch, nil
}

func (s *Store) CreateSchool(ctx context.Context, school domain.School) (*domain.School, error) {
	if school.Code == "" || school.Name == "" {
		return nil, store.ErrInvalidSale
	}
	if school.ID == "" {
		school.ID = ident.New("sch")
	}
	if school.CreatedAt.IsZero() {
		school.CreatedAt = time.Now().UTC()
	}
	school.Active = true

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schools (id, code, name, city, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, school.ID, school.Code, school.Name, school.City, school.Active, school.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidSale
		}
		return nil, err
	}
	created := school
	return &created, nil
}

func (s *Store) ListGarmentTypes(ctx context.Context, schoolID string) ([]domain.GarmentType, error) {
	if _, err := s.GetSchoolByID(ctx, schoolID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, school_id, name
		FROM garment_types
		WHERE school_id = $1
		ORDER BY name
	`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]domain.GarmentType, 0, 16)
	for rows.Next() {
		var gt domain.GarmentType
		if err := rows.Scan(&gt.ID, &gt.SchoolID, &gt.Name); err != nil {
			return nil, err
		}
		types = append(types, gt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return types, nil
}

func (s *Store) CreateGarmentType(ctx context.Context, gt domain.GarmentType) (*domain.GarmentType, error) {
	if gt.SchoolID == "" || strings.TrimSpace(gt.Name) == "" {
		return nil, store.ErrInvalidSale
	}
	if _, err := s.GetSchoolByID(ctx, gt.SchoolID); err != nil {
		return nil, err
	}
	if gt.ID == "" {
		gt.ID = ident.New("gt")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO garment_types (id, school_id, name)
		VALUES ($1,$2,$3)
	`, gt.ID, gt.SchoolID, gt.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidSale
		}
		return nil, err
	}
	created := gt
	return &created, nil
}

func (s *Store) ListProducts(ctx context.Context, schoolID string, garmentType string, inStockOnly bool) ([]domain.Product, error) {
	if _, err := s.GetSchoolByID(ctx, schoolID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, school_id, is_global, name, garment_type, size, price_cents, stock_qty, active
		FROM products
		WHERE active = true AND (is_global = true OR school_id = $1)
	`
	args := []any{schoolID}
	if garmentType != "" {
		args = append(args, garmentType)
		query += fmt.Sprintf(" AND LOWER(garment_type) = LOWER($%d)", len(args))
	}
	if inStockOnly {
		query += " AND stock_qty > 0"
	}
	query += " ORDER BY garment_type, name, size"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		var school sql.NullString
		if err := rows.Scan(&p.ID, &school, &p.IsGlobal, &p.Name, &p.GarmentType, &p.Size, &p.PriceCents, &p.StockQty, &p.Active); err != nil {
			return nil, err
		}
		p.SchoolID = school.String
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	var p domain.Product
	var school sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, school_id, is_global, name, garment_type, size, price_cents, stock_qty, active
		FROM products
		WHERE id = $1
	`, productID).Scan(&p.ID, &school, &p.IsGlobal, &p.Name, &p.GarmentType, &p.Size, &p.PriceCents, &p.StockQty, &p.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	p.SchoolID = school.String
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.GarmentType == "" || product.PriceCents < 1 || product.StockQty < 0 {
		return nil, store.ErrInvalidSale
	}
	if product.IsGlobal && product.SchoolID != "" {
		return nil, store.ErrInvalidSale
	}
	if product.ID == "" {
		product.ID = ident.New("prod")
	}
	product.Active = true

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, school_id, is_global, name, garment_type, size, price_cents, stock_qty, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now(),now())
	`, product.ID, nullIfEmpty(product.SchoolID), product.IsGlobal, product.Name, product.GarmentType, product.Size, product.PriceCents, product.StockQty, product.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidSale
		}
		return nil, err
	}
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.PriceCents < 1 || product.StockQty < 0 {
		return nil, store.ErrInvalidSale
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, garment_type = $3, size = $4, price_cents = $5, stock_qty = $6, active = $7, updated_at = now()
		WHERE id = $1
	`, product.ID, product.Name, product.GarmentType, product.Size, product.PriceCents, product.StockQty, product.Active)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	updated := product
	return &updated, nil
}

func (s *Store) ListClients(ctx context.Context, schoolID string, search string, limit int) ([]domain.Client, error) {
	if _, err := s.GetSchoolByID(ctx, schoolID); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 50
	}

	query := `
		SELECT id, school_id, name, phone, created_at
		FROM clients
		WHERE school_id = $1
	`
	args := []any{schoolID}
	if search = strings.TrimSpace(search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		query += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR phone LIKE $%d)", len(args), len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]domain.Client, 0, limit)
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.Name, &c.Phone, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = c.CreatedAt.UTC()
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *Store) GetClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	var c domain.Client
	err := s.db.QueryRowContext(ctx, `
		SELECT id, school_id, name, phone, created_at
		FROM clients
		WHERE id = $1
	`, clientID).Scan(&c.ID, &c.SchoolID, &c.Name, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

func (s *Store) CreateClient(ctx context.Context, client domain.Client) (*domain.Client, error) {
	if strings.TrimSpace(client.Name) == "" {
		return nil, store.ErrInvalidSale
	}
	if _, err := s.GetSchoolByID(ctx, client.SchoolID); err != nil {
		return nil, err
	}
	if client.ID == "" {
		client.ID = ident.New("cli")
	}
	if client.CreatedAt.IsZero() {
		client.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, school_id, name, phone, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, client.ID, client.SchoolID, client.Name, client.Phone, client.CreatedAt)
	if err != nil {
		return nil, err
	}
	created := client
	return &created, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if len(sale.Lines) == 0 || len(sale.Payments) == 0 {
		return nil, store.ErrInvalidSale
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var schoolCode string
	err = pgTx.QueryRowContext(ctx, `
		SELECT code FROM schools WHERE id = $1
	`, sale.SchoolID).Scan(&schoolCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	total := int64(0)
	for _, line := range sale.Lines {
		if line.Qty < 1 {
			return nil, store.ErrInvalidSale
		}
		var stockQty int
		var active bool
		err = pgTx.QueryRowContext(ctx, `
			SELECT stock_qty, active
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, line.ProductID).Scan(&stockQty, &active)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("product %s unavailable", line.ProductID)
			}
			return nil, err
		}
		if !active {
			return nil, fmt.Errorf("product %s unavailable", line.ProductID)
		}
		if !sale.IsHistorical {
			if stockQty < line.Qty {
				return nil, store.ErrInsufficientStock
			}
			_, err = pgTx.ExecContext(ctx, `
				UPDATE products
				SET stock_qty = stock_qty - $1, updated_at = now()
				WHERE id = $2
			`, line.Qty, line.ProductID)
			if err != nil {
				return nil, err
			}
		}
		total += int64(line.Qty) * line.UnitPriceCents
	}

	paid := int64(0)
	for _, p := range sale.Payments {
		if p.AmountCents < 0 || !domain.IsSupportedPaymentMethod(p.Method) {
			return nil, store.ErrInvalidSale
		}
		paid += p.AmountCents
	}
	if paid != total {
		return nil, store.ErrInvalidSale
	}

	if sale.ID == "" {
		sale.ID = ident.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	if sale.EffectiveDate.IsZero() {
		sale.EffectiveDate = sale.CreatedAt
	}
	sale.TotalCents = total
	sale.Status = domain.SaleStatusCompleted

	var seq int
	err = pgTx.QueryRowContext(ctx, `
		INSERT INTO sale_counters (school_id, seq)
		VALUES ($1, 1)
		ON CONFLICT (school_id)
		DO UPDATE SET seq = sale_counters.seq + 1
		RETURNING seq
	`, sale.SchoolID).Scan(&seq)
	if err != nil {
		return nil, err
	}
	sale.Code = fmt.Sprintf("%s-%s-%04d", schoolCode, sale.EffectiveDate.Format("2006"), seq)

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO sales (
			id, code, school_id, client_id, total_cents, notes, source,
			is_historical, effective_date, status, void_reason, voided_at, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, sale.ID, sale.Code, sale.SchoolID, nullIfEmpty(sale.ClientID), sale.TotalCents,
		strings.TrimSpace(sale.Notes), sale.Source, sale.IsHistorical, sale.EffectiveDate,
		sale.Status, nullIfEmpty(sale.VoidReason), nullTime(sale.VoidedAt), sale.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, line := range sale.Lines {
		_, err := pgTx.ExecContext(ctx, `
			INSERT INTO sale_lines (sale_id, product_id, name, size, qty, unit_price_cents, is_global)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, sale.ID, line.ProductID, line.Name, line.Size, line.Qty, line.UnitPriceCents, line.IsGlobal)
		if err != nil {
			return nil, err
		}
	}
	for _, p := range sale.Payments {
		_, err := pgTx.ExecContext(ctx, `
			INSERT INTO sale_payments (sale_id, method, amount_cents)
			VALUES ($1,$2,$3)
		`, sale.ID, p.Method, p.AmountCents)
		if err != nil {
			return nil, err
		}
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) GetSaleByID(ctx context.Context, saleID string) (*domain.Sale, error) {
	sale, err := s.scanSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if err := s.loadSaleDetails(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *Store) ListSales(ctx context.Context, schoolID string, from time.Time, to time.Time, limit int) ([]domain.Sale, error) {
	if limit < 1 {
		limit = 100
	}

	query := `
		SELECT id, code, school_id, COALESCE(client_id,''), total_cents, notes, source,
			is_historical, effective_date, status, COALESCE(void_reason,''), voided_at, created_at
		FROM sales
		WHERE 1=1
	`
	args := []any{}
	if schoolID != "" {
		args = append(args, schoolID)
		query += fmt.Sprintf(" AND school_id = $%d", len(args))
	}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND effective_date >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND effective_date < $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, limit)
	for rows.Next() {
		var sale domain.Sale
		var voidedAt sql.NullTime
		if err := rows.Scan(&sale.ID, &sale.Code, &sale.SchoolID, &sale.ClientID, &sale.TotalCents,
			&sale.Notes, &sale.Source, &sale.IsHistorical, &sale.EffectiveDate, &sale.Status,
			&sale.VoidReason, &voidedAt, &sale.CreatedAt); err != nil {
			return nil, err
		}
		if voidedAt.Valid {
			at := voidedAt.Time.UTC()
			sale.VoidedAt = &at
		}
		sale.EffectiveDate = sale.EffectiveDate.UTC()
		sale.CreatedAt = sale.CreatedAt.UTC()
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		if err := s.loadSaleDetails(ctx, &sales[i]); err != nil {
			return nil, err
		}
	}
	return sales, nil
}

func (s *Store) VoidSale(ctx context.Context, saleID string, reason string, at time.Time) (*domain.Sale, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var status string
	var isHistorical bool
	err = pgTx.QueryRowContext(ctx, `
		SELECT status, is_historical
		FROM sales
		WHERE id = $1
		FOR UPDATE
	`, saleID).Scan(&status, &isHistorical)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if status == domain.SaleStatusVoided {
		return nil, store.ErrAlreadyVoided
	}

	if !isHistorical {
		lineRows, err := pgTx.QueryContext(ctx, `
			SELECT product_id, qty
			FROM sale_lines
			WHERE sale_id = $1
		`, saleID)
		if err != nil {
			return nil, err
		}
		type lineState struct {
			productID string
			qty       int
		}
		lines := make([]lineState, 0, 8)
		for lineRows.Next() {
			var l lineState
			if err := lineRows.Scan(&l.productID, &l.qty); err != nil {
				_ = lineRows.Close()
				return nil, err
			}
			lines = append(lines, l)
		}
		if err := lineRows.Err(); err != nil {
			_ = lineRows.Close()
			return nil, err
		}
		_ = lineRows.Close()

		for _, l := range lines {
			_, err := pgTx.ExecContext(ctx, `
				UPDATE products
				SET stock_qty = stock_qty + $1, updated_at = now()
				WHERE id = $2
			`, l.qty, l.productID)
			if err != nil {
				return nil, err
			}
		}
	}

	_, err = pgTx.ExecContext(ctx, `
		UPDATE sales
		SET status = $2, void_reason = $3, voided_at = $4
		WHERE id = $1 AND status = $5
	`, saleID, domain.SaleStatusVoided, reason, at, domain.SaleStatusCompleted)
	if err != nil {
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return s.GetSaleByID(ctx, saleID)
}

func (s *Store) GetDailyReport(ctx context.Context, from time.Time, to time.Time) (domain.DailyReport, error) {
	report := domain.DailyReport{
		Date:      from.Format("2006-01-02"),
		ByPayment: make([]domain.DailyReportPayment, 0, 4),
		BySchool:  make([]domain.DailyReportSchool, 0, 4),
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)::bigint, COALESCE(SUM(total_cents),0)::bigint
		FROM sales
		WHERE effective_date >= $1
			AND effective_date < $2
			AND status <> $3
	`, from, to, domain.SaleStatusVoided).Scan(&report.Sales, &report.GrossSalesCents)
	if err != nil {
		return report, err
	}

	paymentRows, err := s.db.QueryContext(ctx, `
		SELECT sp.method, COUNT(*)::bigint, COALESCE(SUM(sp.amount_cents),0)::bigint
		FROM sale_payments sp
		JOIN sales s ON s.id = sp.sale_id
		WHERE s.effective_date >= $1
			AND s.effective_date < $2
			AND s.status <> $3
		GROUP BY sp.method
		ORDER BY sp.method
	`, from, to, domain.SaleStatusVoided)
	if err != nil {
		return report, err
	}
	for paymentRows.Next() {
		var row domain.DailyReportPayment
		if err := paymentRows.Scan(&row.PaymentMethod, &row.Sales, &row.TotalCents); err != nil {
			_ = paymentRows.Close()
			return report, err
		}
		report.ByPayment = append(report.ByPayment, row)
	}
	if err := paymentRows.Err(); err != nil {
		_ = paymentRows.Close()
		return report, err
	}
	_ = paymentRows.Close()

	schoolRows, err := s.db.QueryContext(ctx, `
		SELECT s.school_id, sch.name, COUNT(*)::bigint, COALESCE(SUM(s.total_cents),0)::bigint
		FROM sales s
		JOIN schools sch ON sch.id = s.school_id
		WHERE s.effective_date >= $1
			AND s.effective_date < $2
			AND s.status <> $3
		GROUP BY s.school_id, sch.name
		ORDER BY sch.name
	`, from, to, domain.SaleStatusVoided)
	if err != nil {
		return report, err
	}
	for schoolRows.Next() {
		var row domain.DailyReportSchool
		if err := schoolRows.Scan(&row.SchoolID, &row.SchoolName, &row.Sales, &row.TotalCents); err != nil {
			_ = schoolRows.Close()
			return report, err
		}
		report.BySchool = append(report.BySchool, row)
	}
	if err := schoolRows.Err(); err != nil {
		_ = schoolRows.Close()
		return report, err
	}
	_ = schoolRows.Close()

	return report, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = ident.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE created_at >= $1
			AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidSale
	}
	if user.Role == "" {
		user.Role = domain.RoleSeller
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidSale
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidSale
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) scanSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	var sale domain.Sale
	var voidedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, code, school_id, COALESCE(client_id,''), total_cents, notes, source,
			is_historical, effective_date, status, COALESCE(void_reason,''), voided_at, created_at
		FROM sales
		WHERE id = $1
	`, saleID).Scan(&sale.ID, &sale.Code, &sale.SchoolID, &sale.ClientID, &sale.TotalCents,
		&sale.Notes, &sale.Source, &sale.IsHistorical, &sale.EffectiveDate, &sale.Status,
		&sale.VoidReason, &voidedAt, &sale.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if voidedAt.Valid {
		at := voidedAt.Time.UTC()
		sale.VoidedAt = &at
	}
	sale.EffectiveDate = sale.EffectiveDate.UTC()
	sale.CreatedAt = sale.CreatedAt.UTC()
	return &sale, nil
}

func (s *Store) loadSaleDetails(ctx context.Context, sale *domain.Sale) error {
	lineRows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, size, qty, unit_price_cents, is_global
		FROM sale_lines
		WHERE sale_id = $1
		ORDER BY product_id
	`, sale.ID)
	if err != nil {
		return err
	}
	sale.Lines = sale.Lines[:0]
	for lineRows.Next() {
		var line domain.SaleLine
		if err := lineRows.Scan(&line.ProductID, &line.Name, &line.Size, &line.Qty, &line.UnitPriceCents, &line.IsGlobal); err != nil {
			_ = lineRows.Close()
			return err
		}
		sale.Lines = append(sale.Lines, line)
	}
	if err := lineRows.Err(); err != nil {
		_ = lineRows.Close()
		return err
	}
	_ = lineRows.Close()

	paymentRows, err := s.db.QueryContext(ctx, `
		SELECT method, amount_cents
		FROM sale_payments
		WHERE sale_id = $1
		ORDER BY method
	`, sale.ID)
	if err != nil {
		return err
	}
	sale.Payments = sale.Payments[:0]
	for paymentRows.Next() {
		var p domain.SalePayment
		if err := paymentRows.Scan(&p.Method, &p.AmountCents); err != nil {
			_ = paymentRows.Close()
			return err
		}
		sale.Payments = append(sale.Payments, p)
	}
	if err := paymentRows.Err(); err != nil {
		_ = paymentRows.Close()
		return err
	}
	_ = paymentRows.Close()

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return *val
}
