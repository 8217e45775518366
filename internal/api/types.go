package api

// Item categories as served by the catalog.
const (
	CategoryLeft = "Left"
	CategoryNeed = "Need"
)

type Item struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Category   string `json:"category"`
	Unit       string `json:"unit"`
	SupplierID string `json:"supplier_id"`
	SortOrder  int    `json:"sort_order"`
}

type OrderStatus string

const (
	StatusDraft     OrderStatus = "draft"
	StatusSubmitted OrderStatus = "submitted"
	StatusSent      OrderStatus = "sent"
)

// Editable reports whether the order still accepts edits and submission.
// Status transitions are enforced server-side; this only gates which
// actions the screens offer.
func (s OrderStatus) Editable() bool {
	return s != StatusSent
}

type User struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func (u User) IsAdmin() bool {
	return u.Role == "admin"
}

type OrderSummary struct {
	ID           int         `json:"id"`
	Status       OrderStatus `json:"status"`
	ToEmail      string      `json:"toEmail"`
	Message      string      `json:"message"`
	CreatedAt    string      `json:"created_at"`
	UpdatedAt    string      `json:"updated_at"`
	TotalQty     float64     `json:"totalQty"`
	NonZeroLines int         `json:"nonZeroLines"`
}

type Order struct {
	ID             int         `json:"id"`
	Status         OrderStatus `json:"status"`
	CreatedByName  string      `json:"created_by_name"`
	CreatedByEmail string      `json:"created_by_email"`
}

// CreatedBy is the display string for the order's creator, preferring the
// display name over the email.
func (o Order) CreatedBy() string {
	if o.CreatedByName != "" {
		return o.CreatedByName
	}
	return o.CreatedByEmail
}

type OrderLine struct {
	ItemKey string  `json:"itemKey"`
	Qty     float64 `json:"qty"`
}

// LoginResult is the answer to a password login. RequiresPIN means the
// token is a pre-auth token that must be upgraded via VerifyPIN before it
// grants anything; User is only present when the login is complete.
type LoginResult struct {
	Token       string `json:"token"`
	RequiresPIN bool   `json:"requiresPin"`
	User        *User  `json:"user"`
}

// AuthResult is a completed authentication: a full token plus the user.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type ListOrdersParams struct {
	Limit  int
	Status OrderStatus
}
