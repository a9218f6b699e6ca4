package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Samsuesca/uniformes-backend/internal/domain"
	"github.com/Samsuesca/uniformes-backend/internal/ident"
	"github.com/Samsuesca/uniformes-backend/internal/store"
)

type Store struct {
	mu              sync.RWMutex
	schoolsByID     map[string]domain.School
	schoolOrder     []string
	garmentTypes    map[string][]domain.GarmentType
	productsByID    map[string]domain.Product
	clientsByID     map[string]domain.Client
	salesByID       map[string]*domain.Sale
	saleSeqBySchool map[string]int
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_SELLER_PASSWORD; if
// unset, hardcoded dev defaults are used with a warning. These credentials
// are never used in production (the backend uses PostgreSQL when
// DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	sellerPwd := envOr("SEED_SELLER_PASSWORD", "seller123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_SELLER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_SELLER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, domain.RoleAdmin},
		{"seller", sellerPwd, domain.RoleSeller},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	now := time.Now().UTC()
	schools := []domain.School{
		{ID: "sch-sanjose", Code: "SJ", Name: "Colegio San Jose", City: "Medellin", Active: true, CreatedAt: now},
		{ID: "sch-lasalle", Code: "LS", Name: "Institucion La Salle", City: "Medellin", Active: true, CreatedAt: now},
		{ID: "sch-andes", Code: "GA", Name: "Gimnasio Los Andes", City: "Envigado", Active: true, CreatedAt: now},
	}

	garmentTypes := map[string][]domain.GarmentType{
		"sch-sanjose": {
			{ID: "gt-sj-camisa", SchoolID: "sch-sanjose", Name: "Camisa"},
			{ID: "gt-sj-pantalon", SchoolID: "sch-sanjose", Name: "Pantalon"},
			{ID: "gt-sj-sudadera", SchoolID: "sch-sanjose", Name: "Sudadera"},
		},
		"sch-lasalle": {
			{ID: "gt-ls-camisa", SchoolID: "sch-lasalle", Name: "Camisa"},
			{ID: "gt-ls-falda", SchoolID: "sch-lasalle", Name: "Falda"},
			{ID: "gt-ls-chaqueta", SchoolID: "sch-lasalle", Name: "Chaqueta"},
		},
		"sch-andes": {
			{ID: "gt-ga-camisa", SchoolID: "sch-andes", Name: "Camisa"},
			{ID: "gt-ga-pantalon", SchoolID: "sch-andes", Name: "Pantalon"},
		},
	}

	products := []domain.Product{
		{ID: "prod-sj-camisa-10", SchoolID: "sch-sanjose", Name: "Camisa San Jose", GarmentType: "Camisa", Size: "10", PriceCents: 450_00, StockQty: 40, Active: true},
		{ID: "prod-sj-camisa-12", SchoolID: "sch-sanjose", Name: "Camisa San Jose", GarmentType: "Camisa", Size: "12", PriceCents: 470_00, StockQty: 35, Active: true},
		{ID: "prod-sj-pantalon-10", SchoolID: "sch-sanjose", Name: "Pantalon San Jose", GarmentType: "Pantalon", Size: "10", PriceCents: 620_00, StockQty: 30, Active: true},
		{ID: "prod-sj-sudadera-m", SchoolID: "sch-sanjose", Name: "Sudadera San Jose", GarmentType: "Sudadera", Size: "M", PriceCents: 850_00, StockQty: 25, Active: true},
		{ID: "prod-ls-camisa-8", SchoolID: "sch-lasalle", Name: "Camisa La Salle", GarmentType: "Camisa", Size: "8", PriceCents: 430_00, StockQty: 45, Active: true},
		{ID: "prod-ls-falda-8", SchoolID: "sch-lasalle", Name: "Falda La Salle", GarmentType: "Falda", Size: "8", PriceCents: 550_00, StockQty: 28, Active: true},
		{ID: "prod-ls-chaqueta-m", SchoolID: "sch-lasalle", Name: "Chaqueta La Salle", GarmentType: "Chaqueta", Size: "M", PriceCents: 980_00, StockQty: 15, Active: true},
		{ID: "prod-ga-camisa-12", SchoolID: "sch-andes", Name: "Camisa Los Andes", GarmentType: "Camisa", Size: "12", PriceCents: 490_00, StockQty: 22, Active: true},
		{ID: "prod-ga-pantalon-12", SchoolID: "sch-andes", Name: "Pantalon Los Andes", GarmentType: "Pantalon", Size: "12", PriceCents: 640_00, StockQty: 18, Active: true},
		{ID: "prod-glb-medias", IsGlobal: true, Name: "Medias Blancas", GarmentType: "Medias", Size: "U", PriceCents: 120_00, StockQty: 200, Active: true},
		{ID: "prod-glb-camiseta", IsGlobal: true, Name: "Camiseta Blanca", GarmentType: "Camiseta", Size: "M", PriceCents: 250_00, StockQty: 120, Active: true},
	}

	clients := []domain.Client{
		{ID: "cli-maria", SchoolID: "sch-sanjose", Name: "Maria Gomez", Phone: "3001112233", CreatedAt: now},
		{ID: "cli-carlos", SchoolID: "sch-sanjose", Name: "Carlos Restrepo", Phone: "3004445566", CreatedAt: now},
		{ID: "cli-lucia", SchoolID: "sch-lasalle", Name: "Lucia Alvarez", Phone: "3007778899", CreatedAt: now},
		{ID: "cli-andres", SchoolID: "sch-andes", Name: "Andres Mejia", Phone: "3010001122", CreatedAt: now},
	}

	schoolsByID := make(map[string]domain.School, len(schools))
	schoolOrder := make([]string, 0, len(schools))
	for _, sch := range schools {
		schoolsByID[sch.ID] = sch
		schoolOrder = append(schoolOrder, sch.ID)
	}
	productsByID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}
	clientsByID := make(map[string]domain.Client, len(clients))
	for _, c := range clients {
		clientsByID[c.ID] = c
	}

	return &Store{
		schoolsByID:     schoolsByID,
		schoolOrder:     schoolOrder,
		garmentTypes:    garmentTypes,
		productsByID:    productsByID,
		clientsByID:     clientsByID,
		salesByID:       make(map[string]*domain.Sale),
		saleSeqBySchool: make(map[string]int),
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) ListSchools(_ context.Context) ([]domain.School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schools := make([]domain.School, 0, len(s.schoolOrder))
	for _, id := range s.schoolOrder {
		sch := s.schoolsByID[id]
		if !sch.Active {
			continue
		}
		schools = append(schools, sch)
	}
	return schools, nil
}

func (s *Store) GetSchoolByID(_ context.Context, schoolID string) (*domain.School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sch, exists := s.schoolsByID[schoolID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copySchool := sch
	return &copySchool, nil
}

func (s *Store) CreateSchool(_ context.Context, school domain.School) (*domain.School, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if school.Code == "" || school.Name == "" {
		return nil, store.ErrInvalidSale
	}
	for _, existing := range s.schoolsByID {
		if strings.EqualFold(existing.Code, school.Code) {
			return nil, store.ErrInvalidSale
		}
	}
	if school.ID == "" {
		school.ID = ident.New("sch")
	}
	if school.CreatedAt.IsZero() {
		school.CreatedAt = time.Now().UTC()
	}
	school.Active = true
	s.schoolsByID[school.ID] = school
	s.schoolOrder = append(s.schoolOrder, school.ID)
	created := school
	return &created, nil
}

func (s *Store) ListGarmentTypes(_ context.Context, schoolID string) ([]domain.GarmentType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.schoolsByID[schoolID]; !exists {
		return nil, store.ErrNotFound
	}
	types := s.garmentTypes[schoolID]
	result := make([]domain.GarmentType, len(types))
	copy(result, types)
	slices.SortFunc(result, func(a, b domain.GarmentType) int {
		return cmpString(a.Name, b.Name)
	})
	return result, nil
}

func (s *Store) CreateGarmentType(_ context.Context, gt domain.GarmentType) (*domain.GarmentType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gt.SchoolID == "" || strings.TrimSpace(gt.Name) == "" {
		return nil, store.ErrInvalidSale
	}
	if _, exists := s.schoolsByID[gt.SchoolID]; !exists {
		return nil, store.ErrNotFound
	}
	for _, existing := range s.garmentTypes[gt.SchoolID] {
		if strings.EqualFold(existing.Name, gt.Name) {
			return nil, store.ErrInvalidSale
		}
	}
	if gt.ID == "" {
		gt.ID = ident.New("gt")
	}
	s.garmentTypes[gt.SchoolID] = append(s.garmentTypes[gt.SchoolID], gt)
	created := gt
	return &created, nil
}

func (s *Store) ListProducts(_ context.Context, schoolID string, garmentType string, inStockOnly bool) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.schoolsByID[schoolID]; !exists {
		return nil, store.ErrNotFound
	}

	products := make([]domain.Product, 0, len(s.productsByID))
	for _, p := range s.productsByID {
		if !p.Active {
			continue
		}
		if !p.IsGlobal && p.SchoolID != schoolID {
			continue
		}
		if garmentType != "" && !strings.EqualFold(p.GarmentType, garmentType) {
			continue
		}
		if inStockOnly && p.StockQty < 1 {
			continue
		}
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.GarmentType == b.GarmentType {
			if a.Name == b.Name {
				return cmpString(a.Size, b.Size)
			}
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.GarmentType, b.GarmentType)
	})
	return products, nil
}

func (s *Store) GetProductByID(_ context.Context, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.productsByID[productID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := p
	return &copyProduct, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.GarmentType == "" || product.PriceCents < 1 || product.StockQty < 0 {
		return nil, store.ErrInvalidSale
	}
	if !product.IsGlobal {
		if _, exists := s.schoolsByID[product.SchoolID]; !exists {
			return nil, store.ErrNotFound
		}
	} else if product.SchoolID != "" {
		return nil, store.ErrInvalidSale
	}
	if product.ID == "" {
		product.ID = ident.New("prod")
	}
	if _, exists := s.productsByID[product.ID]; exists {
		return nil, store.ErrInvalidSale
	}
	product.Active = true
	s.productsByID[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" || product.Name == "" || product.PriceCents < 1 || product.StockQty < 0 {
		return nil, store.ErrInvalidSale
	}
	if _, exists := s.productsByID[product.ID]; !exists {
		return nil, store.ErrNotFound
	}
	s.productsByID[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) ListClients(_ context.Context, schoolID string, search string, limit int) ([]domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.schoolsByID[schoolID]; !exists {
		return nil, store.ErrNotFound
	}
	if limit < 1 {
		limit = 50
	}
	search = strings.ToLower(strings.TrimSpace(search))

	result := make([]domain.Client, 0, limit)
	for _, c := range s.clientsByID {
		if c.SchoolID != schoolID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) && !strings.Contains(c.Phone, search) {
			continue
		}
		result = append(result, c)
	}
	slices.SortFunc(result, func(a, b domain.Client) int {
		return cmpString(a.Name, b.Name)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) GetClientByID(_ context.Context, clientID string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.clientsByID[clientID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyClient := c
	return &copyClient, nil
}

func (s *Store) CreateClient(_ context.Context, client domain.Client) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(client.Name) == "" {
		return nil, store.ErrInvalidSale
	}
	if _, exists := s.schoolsByID[client.SchoolID]; !exists {
		return nil, store.ErrNotFound
	}
	if client.ID == "" {
		client.ID = ident.New("cli")
	}
	if client.CreatedAt.IsZero() {
		client.CreatedAt = time.Now().UTC()
	}
	s.clientsByID[client.ID] = client
	created := client
	return &created, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(sale.Lines) == 0 || len(sale.Payments) == 0 {
		return nil, store.ErrInvalidSale
	}
	school, exists := s.schoolsByID[sale.SchoolID]
	if !exists {
		return nil, store.ErrNotFound
	}

	total := int64(0)
	for _, line := range sale.Lines {
		if line.Qty < 1 {
			return nil, store.ErrInvalidSale
		}
		product, ok := s.productsByID[line.ProductID]
		if !ok || !product.Active {
			return nil, fmt.Errorf("product %s unavailable", line.ProductID)
		}
		if !sale.IsHistorical && product.StockQty < line.Qty {
			return nil, store.ErrInsufficientStock
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

	if !sale.IsHistorical {
		for _, line := range sale.Lines {
			product := s.productsByID[line.ProductID]
			product.StockQty -= line.Qty
			s.productsByID[line.ProductID] = product
		}
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
	s.saleSeqBySchool[sale.SchoolID]++
	sale.Code = fmt.Sprintf("%s-%s-%04d", school.Code, sale.EffectiveDate.Format("2006"), s.saleSeqBySchool[sale.SchoolID])
	sale.TotalCents = total
	sale.Status = domain.SaleStatusCompleted

	saleCopy := cloneSale(&sale)
	s.salesByID[sale.ID] = saleCopy
	return cloneSale(saleCopy), nil
}

func (s *Store) GetSaleByID(_ context.Context, saleID string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.salesByID[saleID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) ListSales(_ context.Context, schoolID string, from time.Time, to time.Time, limit int) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}
	result := make([]domain.Sale, 0, limit)
	for _, sale := range s.salesByID {
		if schoolID != "" && sale.SchoolID != schoolID {
			continue
		}
		if !from.IsZero() && sale.EffectiveDate.Before(from) {
			continue
		}
		if !to.IsZero() && !sale.EffectiveDate.Before(to) {
			continue
		}
		result = append(result, *cloneSale(sale))
	}

	slices.SortFunc(result, func(a, b domain.Sale) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) VoidSale(_ context.Context, saleID string, reason string, at time.Time) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.salesByID[saleID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if sale.Status == domain.SaleStatusVoided {
		return nil, store.ErrAlreadyVoided
	}

	if !sale.IsHistorical {
		for _, line := range sale.Lines {
			product, exists := s.productsByID[line.ProductID]
			if !exists {
				continue
			}
			product.StockQty += line.Qty
			s.productsByID[line.ProductID] = product
		}
	}

	sale.Status = domain.SaleStatusVoided
	sale.VoidReason = reason
	sale.VoidedAt = &at

	return cloneSale(sale), nil
}

func (s *Store) GetDailyReport(_ context.Context, from time.Time, to time.Time) (domain.DailyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := domain.DailyReport{
		Date:      from.Format("2006-01-02"),
		ByPayment: make([]domain.DailyReportPayment, 0, 4),
		BySchool:  make([]domain.DailyReportSchool, 0, 4),
	}
	byPayment := map[string]*domain.DailyReportPayment{}
	bySchool := map[string]*domain.DailyReportSchool{}

	for _, sale := range s.salesByID {
		if sale.EffectiveDate.Before(from) || !sale.EffectiveDate.Before(to) {
			continue
		}
		if sale.Status == domain.SaleStatusVoided {
			continue
		}

		report.Sales++
		report.GrossSalesCents += sale.TotalCents

		for _, p := range sale.Payments {
			payment := byPayment[p.Method]
			if payment == nil {
				payment = &domain.DailyReportPayment{PaymentMethod: p.Method}
				byPayment[p.Method] = payment
			}
			payment.Sales++
			payment.TotalCents += p.AmountCents
		}

		school := bySchool[sale.SchoolID]
		if school == nil {
			name := sale.SchoolID
			if sch, ok := s.schoolsByID[sale.SchoolID]; ok {
				name = sch.Name
			}
			school = &domain.DailyReportSchool{SchoolID: sale.SchoolID, SchoolName: name}
			bySchool[sale.SchoolID] = school
		}
		school.Sales++
		school.TotalCents += sale.TotalCents
	}

	for _, entry := range byPayment {
		report.ByPayment = append(report.ByPayment, *entry)
	}
	for _, entry := range bySchool {
		report.BySchool = append(report.BySchool, *entry)
	}

	slices.SortFunc(report.ByPayment, func(a, b domain.DailyReportPayment) int {
		return cmpString(a.PaymentMethod, b.PaymentMethod)
	})
	slices.SortFunc(report.BySchool, func(a, b domain.DailyReportSchool) int {
		return cmpString(a.SchoolName, b.SchoolName)
	})

	return report, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = ident.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AuditLog, 0, 64)
	for _, entry := range s.auditLogs {
		if !from.IsZero() && entry.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !entry.CreatedAt.Before(to) {
			continue
		}
		result = append(result, entry)
	}

	slices.SortFunc(result, func(a, b domain.AuditLog) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidSale
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidSale
	}
	user.Username = username
	if user.Role == "" {
		user.Role = domain.RoleSeller
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidSale
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cloneSale(src *domain.Sale) *domain.Sale {
	if src == nil {
		return nil
	}
	dup := *src
	dupLines := make([]domain.SaleLine, len(src.Lines))
	copy(dupLines, src.Lines)
	dup.Lines = dupLines
	dupPayments := make([]domain.SalePayment, len(src.Payments))
	copy(dupPayments, src.Payments)
	dup.Payments = dupPayments
	if src.VoidedAt != nil {
		at := *src.VoidedAt
		dup.VoidedAt = &at
	}
	return &dup
}
