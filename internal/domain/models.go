package domain

import "time"

type School struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type GarmentType struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`
	Name     string `json:"name"`
}

// Product is a catalog entry. Global products carry an empty SchoolID and
// IsGlobal=true; they are attributed to a concrete school only at sale time.
type Product struct {
	ID          string `json:"id"`
	SchoolID    string `json:"school_id,omitempty"`
	IsGlobal    bool   `json:"is_global"`
	Name        string `json:"name"`
	GarmentType string `json:"garment_type"`
	Size        string `json:"size,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	StockQty    int    `json:"stock_qty"`
	Active      bool   `json:"active"`
}

type Client struct {
	ID        string    `json:"id"`
	SchoolID  string    `json:"school_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CartItem is one selected line in an in-progress checkout. SchoolID is
// always resolvable to a known school, even for global products.
type CartItem struct {
	ProductID      string `json:"product_id"`
	DisplayName    string `json:"display_name"`
	Size           string `json:"size,omitempty"`
	Qty            int    `json:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	IsGlobal       bool   `json:"is_global"`
	SchoolID       string `json:"school_id"`
	SchoolName     string `json:"school_name"`
}

// PaymentLine is one tender of a checkout. ID is client-local; Method is one
// of the PaymentMethod* constants, or empty while the user has not picked one.
type PaymentLine struct {
	ID          string `json:"id"`
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method"`
}

// SaleDate is a fully-specified calendar date for historical sales.
type SaleDate struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

type CheckoutRequest struct {
	TerminalID   string        `json:"terminal_id"`
	ClientID     string        `json:"client_id,omitempty"`
	Items        []CartItem    `json:"items"`
	Payments     []PaymentLine `json:"payments"`
	Notes        string        `json:"notes,omitempty"`
	IsHistorical bool          `json:"is_historical"`
	SaleDate     *SaleDate     `json:"sale_date,omitempty"`
	DraftID      string        `json:"draft_id,omitempty"`
}

// SchoolSaleResult is the per-school receipt line of a multi-school checkout.
type SchoolSaleResult struct {
	SchoolID   string `json:"school_id"`
	SchoolName string `json:"school_name"`
	SaleID     string `json:"sale_id"`
	SaleCode   string `json:"sale_code"`
	TotalCents int64  `json:"total_cents"`
}

type CheckoutResponse struct {
	Status          string             `json:"status"`
	Results         []SchoolSaleResult `json:"results"`
	GrandTotal      int64              `json:"grand_total_cents"`
	FailedSchool    string             `json:"failed_school,omitempty"`
	Error           string             `json:"error,omitempty"`
	VoidedSaleIDs   []string           `json:"voided_sale_ids,omitempty"`
	UnvoidedSaleIDs []string           `json:"unvoided_sale_ids,omitempty"`
}

type SaleLine struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Size           string `json:"size,omitempty"`
	Qty            int    `json:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	IsGlobal       bool   `json:"is_global"`
}

type SalePayment struct {
	Method      string `json:"method"`
	AmountCents int64  `json:"amount_cents"`
}

type Sale struct {
	ID            string        `json:"id"`
	Code          string        `json:"code"`
	SchoolID      string        `json:"school_id"`
	ClientID      string        `json:"client_id,omitempty"`
	Lines         []SaleLine    `json:"lines"`
	Payments      []SalePayment `json:"payments"`
	TotalCents    int64         `json:"total_cents"`
	Notes         string        `json:"notes,omitempty"`
	Source        string        `json:"source"`
	IsHistorical  bool          `json:"is_historical"`
	EffectiveDate time.Time     `json:"effective_date"`
	Status        string        `json:"status"`
	VoidReason    string        `json:"void_reason,omitempty"`
	VoidedAt      *time.Time    `json:"voided_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// SaleInput is the school-scoped payload handed to the repository by the
// submission flow: one school, one payment set, items by product reference
// (prices are re-derived from the catalog at creation time).
type SaleInput struct {
	SchoolID      string
	ClientID      string
	Items         []SaleItemRef
	Payments      []SalePayment
	Notes         string
	Source        string
	IsHistorical  bool
	EffectiveDate time.Time
}

type SaleItemRef struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"quantity"`
	IsGlobal  bool   `json:"is_global"`
}

type VoidSaleRequest struct {
	SaleID     string `json:"sale_id"`
	Reason     string `json:"reason"`
	ManagerPIN string `json:"manager_pin"`
}

type VoidSaleResponse struct {
	SaleID   string `json:"sale_id"`
	Status   string `json:"status"`
	VoidedAt string `json:"voided_at"`
}

type SaleListResponse struct {
	Sales []Sale `json:"sales"`
}

// SaleDraft is a resumable snapshot of an in-progress checkout, scoped to a
// terminal. Drafts are session-scoped: they survive modal close/reopen but
// are not durable storage.
type SaleDraft struct {
	ID           string        `json:"id"`
	TerminalID   string        `json:"terminal_id"`
	SchoolID     string        `json:"school_id,omitempty"`
	ClientID     string        `json:"client_id,omitempty"`
	Items        []CartItem    `json:"items"`
	Payments     []PaymentLine `json:"payments"`
	Notes        string        `json:"notes,omitempty"`
	IsHistorical bool          `json:"is_historical"`
	SaleDate     *SaleDate     `json:"sale_date,omitempty"`
	SavedAt      time.Time     `json:"saved_at"`
}

type DraftSaveRequest struct {
	DraftID      string        `json:"draft_id,omitempty"`
	TerminalID   string        `json:"terminal_id"`
	SchoolID     string        `json:"school_id,omitempty"`
	ClientID     string        `json:"client_id,omitempty"`
	Items        []CartItem    `json:"items"`
	Payments     []PaymentLine `json:"payments"`
	Notes        string        `json:"notes,omitempty"`
	IsHistorical bool          `json:"is_historical"`
	SaleDate     *SaleDate     `json:"sale_date,omitempty"`
}

type DraftListResponse struct {
	Drafts []SaleDraft `json:"drafts"`
}

type DailyReportPayment struct {
	PaymentMethod string `json:"payment_method"`
	Sales         int64  `json:"sales"`
	TotalCents    int64  `json:"total_cents"`
}

type DailyReportSchool struct {
	SchoolID   string `json:"school_id"`
	SchoolName string `json:"school_name"`
	Sales      int64  `json:"sales"`
	TotalCents int64  `json:"total_cents"`
}

type DailyReport struct {
	Date            string               `json:"date"`
	Sales           int64                `json:"sales"`
	GrossSalesCents int64                `json:"gross_sales_cents"`
	ByPayment       []DailyReportPayment `json:"by_payment"`
	BySchool        []DailyReportSchool  `json:"by_school"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type SellerCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SchoolCreateRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

type ProductCreateRequest struct {
	SchoolID    string `json:"school_id,omitempty"`
	IsGlobal    bool   `json:"is_global"`
	Name        string `json:"name"`
	GarmentType string `json:"garment_type"`
	Size        string `json:"size,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	StockQty    int    `json:"stock_qty"`
}

// ProductUpdateRequest patches only the fields the caller set.
type ProductUpdateRequest struct {
	Name       *string `json:"name,omitempty"`
	Size       *string `json:"size,omitempty"`
	PriceCents *int64  `json:"price_cents,omitempty"`
	StockQty   *int    `json:"stock_qty,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

type ClientCreateRequest struct {
	SchoolID string `json:"school_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
}

type SellerUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

const (
	PaymentMethodCash     = "cash"
	PaymentMethodNequi    = "nequi"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCard     = "card"
	PaymentMethodCredit   = "credit"
)

const (
	SaleStatusCompleted = "completed"
	SaleStatusVoided    = "voided"
)

const (
	SaleSourcePOS = "pos"
	SaleSourceWeb = "web"
)

const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
)

// ClientWalkIn is the sentinel sent when a sale has no registered client.
const ClientWalkIn = "no-client"

func IsSupportedPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodNequi, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodCredit:
		return true
	default:
		return false
	}
}
