package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Samsuesca/uniformes-backend/internal/checkout"
	"github.com/Samsuesca/uniformes-backend/internal/domain"
	"github.com/Samsuesca/uniformes-backend/internal/drafts"
	"github.com/Samsuesca/uniformes-backend/internal/ident"
	"github.com/Samsuesca/uniformes-backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo   store.Repository
	drafts drafts.Store
}

func New(repo store.Repository, draftStore drafts.Store) *Service {
	if draftStore == nil {
		draftStore = drafts.NewMemoryStore(0, 0)
	}
	return &Service{
		repo:   repo,
		drafts: draftStore,
	}
}

func (s *Service) ListSchools(ctx context.Context) ([]domain.School, error) {
	return s.repo.ListSchools(ctx)
}

func (s *Service) CreateSchool(ctx context.Context, req domain.SchoolCreateRequest) (domain.School, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.School{}, fmt.Errorf("admin role required")
	}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	req.Name = strings.TrimSpace(req.Name)
	req.City = strings.TrimSpace(req.City)
	if req.Code == "" || req.Name == "" {
		return domain.School{}, store.ErrInvalidSale
	}

	created, err := s.repo.CreateSchool(ctx, domain.School{
		Code: req.Code,
		Name: req.Name,
		City: req.City,
	})
	if err != nil {
		return domain.School{}, err
	}

	s.logAudit(ctx, "school_create", "school", created.ID, fmt.Sprintf("code=%s,name=%s", created.Code, created.Name))
	return *created, nil
}

func (s *Service) ListGarmentTypes(ctx context.Context, schoolID string) ([]domain.GarmentType, error) {
	schoolID = strings.TrimSpace(schoolID)
	if schoolID == "" {
		return nil, store.ErrInvalidSale
	}
	return s.repo.ListGarmentTypes(ctx, schoolID)
}

func (s *Service) CreateGarmentType(ctx context.Context, schoolID string, name string) (domain.GarmentType, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.GarmentType{}, fmt.Errorf("admin role required")
	}

	created, err := s.repo.CreateGarmentType(ctx, domain.GarmentType{
		SchoolID: strings.TrimSpace(schoolID),
		Name:     strings.TrimSpace(name),
	})
	if err != nil {
		return domain.GarmentType{}, err
	}

	s.logAudit(ctx, "garment_type_create", "garment_type", created.ID, created.Name)
	return *created, nil
}

func (s *Service) ListProducts(ctx context.Context, schoolID string, garmentType string, inStockOnly bool) ([]domain.Product, error) {
	schoolID = strings.TrimSpace(schoolID)
	if schoolID == "" {
		return nil, store.ErrInvalidSale
	}
	return s.repo.ListProducts(ctx, schoolID, strings.TrimSpace(garmentType), inStockOnly)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.GarmentType = strings.TrimSpace(req.GarmentType)
	req.Size = strings.TrimSpace(req.Size)
	if req.Name == "" || req.GarmentType == "" || req.PriceCents < 1 || req.StockQty < 0 {
		return domain.Product{}, store.ErrInvalidSale
	}
	if req.IsGlobal && req.SchoolID != "" {
		return domain.Product{}, store.ErrInvalidSale
	}
	if !req.IsGlobal && req.SchoolID == "" {
		return domain.Product{}, store.ErrInvalidSale
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		SchoolID:    req.SchoolID,
		IsGlobal:    req.IsGlobal,
		Name:        req.Name,
		GarmentType: req.GarmentType,
		Size:        req.Size,
		PriceCents:  req.PriceCents,
		StockQty:    req.StockQty,
		Active:      true,
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_create", "product", created.ID, fmt.Sprintf("name=%s,price=%d,stock=%d", created.Name, created.PriceCents, created.StockQty))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, productID string, req domain.ProductUpdateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, store.ErrInvalidSale
	}

	existing, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, store.ErrInvalidSale
		}
		updated.Name = name
	}
	if req.Size != nil {
		updated.Size = strings.TrimSpace(*req.Size)
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 1 {
			return domain.Product{}, store.ErrInvalidSale
		}
		updated.PriceCents = *req.PriceCents
	}
	if req.StockQty != nil {
		if *req.StockQty < 0 {
			return domain.Product{}, store.ErrInvalidSale
		}
		updated.StockQty = *req.StockQty
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_update", "product", saved.ID, fmt.Sprintf("active=%t,price=%d,stock=%d", saved.Active, saved.PriceCents, saved.StockQty))
	return *saved, nil
}

func (s *Service) ListClients(ctx context.Context, schoolID string, search string, limit int) ([]domain.Client, error) {
	schoolID = strings.TrimSpace(schoolID)
	if schoolID == "" {
		return nil, store.ErrInvalidSale
	}
	if limit < 1 {
		limit = 50
	}
	return s.repo.ListClients(ctx, schoolID, search, limit)
}

func (s *Service) CreateClient(ctx context.Context, req domain.ClientCreateRequest) (domain.Client, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.SchoolID == "" || req.Name == "" {
		return domain.Client{}, store.ErrInvalidSale
	}

	created, err := s.repo.CreateClient(ctx, domain.Client{
		SchoolID: req.SchoolID,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		return domain.Client{}, err
	}

	s.logAudit(ctx, "client_create", "client", created.ID, created.Name)
	return *created, nil
}

// Checkout runs the whole multi-school sale flow: prices are re-read from the
// catalog, payment lines are validated against the recomputed total, the cart
// is partitioned by school, and one sale per school is submitted in cart
// order. A failure partway voids the sales already created, best effort.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	items := normalizeItems(req.Items)
	if len(items) == 0 {
		return domain.CheckoutResponse{}, store.ErrInvalidSale
	}

	resolved, err := s.resolveCartItems(ctx, items)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	var total int64
	for _, item := range resolved {
		total += int64(item.Qty) * item.UnitPriceCents
	}
	if err := checkout.ValidatePayments(req.Payments, total); err != nil {
		return domain.CheckoutResponse{}, err
	}

	effectiveDate := time.Now().UTC()
	if req.IsHistorical {
		if req.SaleDate == nil {
			return domain.CheckoutResponse{}, checkout.ErrMissingSaleDate
		}
		effectiveDate, err = checkout.ValidateSaleDate(*req.SaleDate)
		if err != nil {
			return domain.CheckoutResponse{}, err
		}
		effectiveDate = effectiveDate.UTC()
	}

	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		clientID = domain.ClientWalkIn
	}
	if clientID != domain.ClientWalkIn {
		if _, err := s.repo.GetClientByID(ctx, clientID); err != nil {
			return domain.CheckoutResponse{}, err
		}
	}

	groups := checkout.PartitionBySchool(resolved)
	orchestrator := checkout.NewOrchestrator(&repoSaleCreator{
		repo:  s.repo,
		items: itemsByProduct(resolved),
	})

	result, submitErr := orchestrator.Submit(ctx, checkout.SubmitRequest{
		Groups:        groups,
		Payments:      req.Payments,
		ClientID:      clientID,
		Notes:         strings.TrimSpace(req.Notes),
		Source:        domain.SaleSourcePOS,
		IsHistorical:  req.IsHistorical,
		EffectiveDate: effectiveDate,
	})

	resp := domain.CheckoutResponse{
		Status:          result.State,
		Results:         result.Results,
		GrandTotal:      total,
		FailedSchool:    result.FailedSchool,
		VoidedSaleIDs:   result.VoidedSaleIDs,
		UnvoidedSaleIDs: result.UnvoidedSaleIDs,
	}
	if submitErr != nil {
		resp.Error = submitErr.Error()
		s.logAudit(ctx, "checkout_failed", "checkout", req.TerminalID,
			fmt.Sprintf("schools=%d,failed=%s,voided=%d,unvoided=%d", len(groups), result.FailedSchool, len(result.VoidedSaleIDs), len(result.UnvoidedSaleIDs)))
		return resp, submitErr
	}

	if req.DraftID != "" && req.TerminalID != "" {
		if err := s.drafts.Delete(ctx, req.TerminalID, req.DraftID); err != nil && !errors.Is(err, drafts.ErrDraftNotFound) {
			log.Printf("[service] WARN: failed to drop draft %s after checkout: %v", req.DraftID, err)
		}
	}

	s.logAudit(ctx, "checkout", "checkout", req.TerminalID,
		fmt.Sprintf("schools=%d,total=%d,historical=%t", len(groups), total, req.IsHistorical))
	return resp, nil
}

func (s *Service) GetSale(ctx context.Context, saleID string) (domain.Sale, error) {
	saleID = strings.TrimSpace(saleID)
	if saleID == "" {
		return domain.Sale{}, store.ErrInvalidSale
	}
	sale, err := s.repo.GetSaleByID(ctx, saleID)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

func (s *Service) ListSales(ctx context.Context, schoolID string, date string, limit int) (domain.SaleListResponse, error) {
	if limit < 1 {
		limit = 100
	}

	var from, to time.Time
	if strings.TrimSpace(date) != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return domain.SaleListResponse{}, store.ErrInvalidSale
		}
		from = parsed.UTC()
		to = from.Add(24 * time.Hour)
	}

	sales, err := s.repo.ListSales(ctx, strings.TrimSpace(schoolID), from, to, limit)
	if err != nil {
		return domain.SaleListResponse{}, err
	}
	return domain.SaleListResponse{Sales: sales}, nil
}

func (s *Service) VoidSale(ctx context.Context, req domain.VoidSaleRequest) (domain.VoidSaleResponse, error) {
	if req.SaleID == "" {
		return domain.VoidSaleResponse{}, store.ErrInvalidSale
	}
	if req.Reason == "" {
		req.Reason = "unspecified"
	}

	voidedAt := time.Now().UTC()
	sale, err := s.repo.VoidSale(ctx, req.SaleID, req.Reason, voidedAt)
	if err != nil {
		return domain.VoidSaleResponse{}, err
	}

	s.logAudit(ctx, "void_sale", "sale", sale.ID, req.Reason)

	return domain.VoidSaleResponse{
		SaleID:   sale.ID,
		Status:   sale.Status,
		VoidedAt: voidedAt.Format(time.RFC3339),
	}, nil
}

func (s *Service) SaveDraft(ctx context.Context, req domain.DraftSaveRequest) (domain.SaleDraft, error) {
	req.TerminalID = strings.TrimSpace(req.TerminalID)
	if req.TerminalID == "" {
		return domain.SaleDraft{}, store.ErrInvalidSale
	}
	items := normalizeItems(req.Items)
	if len(items) == 0 {
		return domain.SaleDraft{}, store.ErrInvalidSale
	}

	draft := domain.SaleDraft{
		ID:           strings.TrimSpace(req.DraftID),
		TerminalID:   req.TerminalID,
		SchoolID:     req.SchoolID,
		ClientID:     req.ClientID,
		Items:        items,
		Payments:     req.Payments,
		Notes:        strings.TrimSpace(req.Notes),
		IsHistorical: req.IsHistorical,
		SaleDate:     req.SaleDate,
		SavedAt:      time.Now().UTC(),
	}
	if draft.ID == "" {
		draft.ID = ident.New("draft")
	}

	if err := s.drafts.Save(ctx, draft); err != nil {
		return domain.SaleDraft{}, err
	}

	s.logAudit(ctx, "draft_save", "draft", draft.ID, fmt.Sprintf("terminal=%s,items=%d", draft.TerminalID, len(draft.Items)))
	return draft, nil
}

func (s *Service) ListDrafts(ctx context.Context, terminalID string) (domain.DraftListResponse, error) {
	terminalID = strings.TrimSpace(terminalID)
	if terminalID == "" {
		return domain.DraftListResponse{}, store.ErrInvalidSale
	}

	items, err := s.drafts.List(ctx, terminalID)
	if err != nil {
		return domain.DraftListResponse{}, err
	}
	return domain.DraftListResponse{Drafts: items}, nil
}

// ResumeDraft returns the draft and removes it from its terminal's slots.
func (s *Service) ResumeDraft(ctx context.Context, terminalID string, draftID string) (domain.SaleDraft, error) {
	terminalID = strings.TrimSpace(terminalID)
	draftID = strings.TrimSpace(draftID)
	if terminalID == "" || draftID == "" {
		return domain.SaleDraft{}, store.ErrInvalidSale
	}

	draft, err := s.drafts.Get(ctx, terminalID, draftID)
	if err != nil {
		return domain.SaleDraft{}, err
	}
	if err := s.drafts.Delete(ctx, terminalID, draftID); err != nil && !errors.Is(err, drafts.ErrDraftNotFound) {
		return domain.SaleDraft{}, err
	}

	s.logAudit(ctx, "draft_resume", "draft", draft.ID, fmt.Sprintf("terminal=%s,items=%d", terminalID, len(draft.Items)))
	return *draft, nil
}

func (s *Service) DiscardDraft(ctx context.Context, terminalID string, draftID string) error {
	terminalID = strings.TrimSpace(terminalID)
	draftID = strings.TrimSpace(draftID)
	if terminalID == "" || draftID == "" {
		return store.ErrInvalidSale
	}

	if err := s.drafts.Delete(ctx, terminalID, draftID); err != nil {
		return err
	}

	s.logAudit(ctx, "draft_discard", "draft", draftID, "discarded")
	return nil
}

func (s *Service) DailyReport(ctx context.Context, date string) (domain.DailyReport, error) {
	var day time.Time
	if strings.TrimSpace(date) == "" {
		now := time.Now().UTC()
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return domain.DailyReport{}, store.ErrInvalidSale
		}
		day = parsed.UTC()
	}
	from := day
	to := from.Add(24 * time.Hour)

	report, err := s.repo.GetDailyReport(ctx, from, to)
	if err != nil {
		return domain.DailyReport{}, err
	}
	report.Date = from.Format("2006-01-02")
	return report, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = time.Now().UTC().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, store.ErrInvalidSale
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.repo.ListAuditLogs(ctx, from, to, limit)
}

// resolveCartItems re-reads every product so prices, names, and the global
// flag come from the catalog, never from the client. Global products take the
// school named on the cart line; school products must belong to an existing
// school.
func (s *Service) resolveCartItems(ctx context.Context, items []domain.CartItem) ([]domain.CartItem, error) {
	resolved := make([]domain.CartItem, 0, len(items))
	schoolNames := make(map[string]string)

	for _, item := range items {
		product, err := s.repo.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Active {
			return nil, fmt.Errorf("product %s unavailable", item.ProductID)
		}

		schoolID := product.SchoolID
		if product.IsGlobal {
			schoolID = strings.TrimSpace(item.SchoolID)
			if schoolID == "" {
				return nil, fmt.Errorf("%w: global product %s needs a school", store.ErrInvalidSale, product.ID)
			}
		}
		name, ok := schoolNames[schoolID]
		if !ok {
			school, err := s.repo.GetSchoolByID(ctx, schoolID)
			if err != nil {
				return nil, err
			}
			name = school.Name
			schoolNames[schoolID] = name
		}

		resolved = append(resolved, domain.CartItem{
			ProductID:      product.ID,
			DisplayName:    product.Name,
			Size:           product.Size,
			Qty:            item.Qty,
			UnitPriceCents: product.PriceCents,
			IsGlobal:       product.IsGlobal,
			SchoolID:       schoolID,
			SchoolName:     name,
		})
	}
	return resolved, nil
}

// repoSaleCreator adapts the repository to the submission sequence, turning
// each school group into a persisted sale with full line detail.
type repoSaleCreator struct {
	repo  store.Repository
	items map[string]domain.CartItem
}

func (c *repoSaleCreator) CreateSale(ctx context.Context, input domain.SaleInput) (*domain.Sale, error) {
	lines := make([]domain.SaleLine, 0, len(input.Items))
	for _, ref := range input.Items {
		item, ok := c.items[ref.ProductID]
		if !ok {
			return nil, store.ErrInvalidSale
		}
		lines = append(lines, domain.SaleLine{
			ProductID:      ref.ProductID,
			Name:           item.DisplayName,
			Size:           item.Size,
			Qty:            ref.Qty,
			UnitPriceCents: item.UnitPriceCents,
			IsGlobal:       ref.IsGlobal,
		})
	}

	clientID := input.ClientID
	if clientID == domain.ClientWalkIn {
		clientID = ""
	}

	return c.repo.CreateSale(ctx, domain.Sale{
		SchoolID:      input.SchoolID,
		ClientID:      clientID,
		Lines:         lines,
		Payments:      input.Payments,
		Notes:         input.Notes,
		Source:        input.Source,
		IsHistorical:  input.IsHistorical,
		EffectiveDate: input.EffectiveDate,
	})
}

func (c *repoSaleCreator) VoidSale(ctx context.Context, saleID, reason string) error {
	_, err := c.repo.VoidSale(ctx, saleID, reason, time.Now().UTC())
	return err
}

func itemsByProduct(items []domain.CartItem) map[string]domain.CartItem {
	byProduct := make(map[string]domain.CartItem, len(items))
	for _, item := range items {
		byProduct[item.ProductID] = item
	}
	return byProduct
}

// normalizeItems merges duplicate cart lines by product and global flag, and
// drops lines with a non-positive quantity.
func normalizeItems(items []domain.CartItem) []domain.CartItem {
	normalized := make([]domain.CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Qty < 1 {
			continue
		}
		key := fmt.Sprintf("%s|%t", item.ProductID, item.IsGlobal)
		if i, ok := index[key]; ok {
			normalized[i].Qty += item.Qty
			continue
		}
		index[key] = len(normalized)
		normalized = append(normalized, item)
	}
	return normalized
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            ident.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}
