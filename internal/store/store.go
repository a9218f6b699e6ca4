package store

import (
	"context"
	"errors"
	"time"

	"github.com/Samsuesca/uniformes-backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidSale       = errors.New("invalid sale")
	ErrAlreadyVoided     = errors.New("sale already voided")
)

type Repository interface {
	ListSchools(ctx context.Context) ([]domain.School, error)
	GetSchoolByID(ctx context.Context, schoolID string) (*domain.School, error)
	CreateSchool(ctx context.Context, school domain.School) (*domain.School, error)
	ListGarmentTypes(ctx context.Context, schoolID string) ([]domain.GarmentType, error)
	CreateGarmentType(ctx context.Context, gt domain.GarmentType) (*domain.GarmentType, error)
	// ListProducts returns a school's products plus the global catalog.
	// garmentType filters by garment type name when non-empty; inStockOnly
	// drops products with zero stock.
	ListProducts(ctx context.Context, schoolID string, garmentType string, inStockOnly bool) ([]domain.Product, error)
	GetProductByID(ctx context.Context, productID string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	ListClients(ctx context.Context, schoolID string, search string, limit int) ([]domain.Client, error)
	GetClientByID(ctx context.Context, clientID string) (*domain.Client, error)
	CreateClient(ctx context.Context, client domain.Client) (*domain.Client, error)
	// CreateSale persists the sale, assigns its per-school code, and
	// decrements stock for non-historical sales. It fails with
	// ErrInsufficientStock when any line exceeds available stock.
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	GetSaleByID(ctx context.Context, saleID string) (*domain.Sale, error)
	ListSales(ctx context.Context, schoolID string, from time.Time, to time.Time, limit int) ([]domain.Sale, error)
	// VoidSale marks the sale voided and restores the stock its lines
	// consumed. Historical sales restore nothing.
	VoidSale(ctx context.Context, saleID string, reason string, at time.Time) (*domain.Sale, error)
	GetDailyReport(ctx context.Context, from time.Time, to time.Time) (domain.DailyReport, error)
	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
