package commerce

import "time"

// Product is a catalog product as exposed by the commerce REST API.
type Product struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	SKU        string    `json:"sku"`
	Status     string    `json:"status"`
	Price      string    `json:"price"`
	Category   string    `json:"category"`
	StoreID    string    `json:"store_id"`
	StockCount int       `json:"stock_quantity"`
	UpdatedAt  time.Time `json:"date_modified"`
}

// Order is a marketplace order.
type Order struct {
	ID         int64      `json:"id"`
	Status     string     `json:"status"`
	Total      string     `json:"total"`
	Currency   string     `json:"currency"`
	CustomerID int64      `json:"customer_id"`
	StoreID    string     `json:"store_id"`
	LineItems  []LineItem `json:"line_items"`
	CreatedAt  time.Time  `json:"date_created"`
}

// LineItem is one product line on an order.
type LineItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Total     string `json:"total"`
}

// SellerStatus is the moderation state of a seller store.
type SellerStatus string

// Seller statuses.
const (
	SellerPending   SellerStatus = "pending"
	SellerActive    SellerStatus = "active"
	SellerSuspended SellerStatus = "suspended"
)

// Seller is a vendor store on the marketplace.
type Seller struct {
	ID           string       `json:"id"`
	StoreName    string       `json:"store_name"`
	Email        string       `json:"email"`
	Status       SellerStatus `json:"status"`
	ProductCount int          `json:"product_count"`
	RegisteredAt time.Time    `json:"registered"`
}

// ContractStatus is the validation state of a seller contract.
type ContractStatus string

// Contract statuses.
const (
	ContractPending     ContractStatus = "pending"
	ContractValidated   ContractStatus = "validated"
	ContractInvalidated ContractStatus = "invalidated"
)

// Contract is a seller agreement handled in the admin back office.
type Contract struct {
	ID          string         `json:"id"`
	SellerID    string         `json:"seller_id"`
	Title       string         `json:"title"`
	Status      ContractStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
	ValidatedAt *time.Time     `json:"validated_at,omitempty"`
}

// TicketStatus is the lifecycle state of a helpdesk ticket.
type TicketStatus string

// Ticket statuses.
const (
	TicketOpen     TicketStatus = "open"
	TicketAnswered TicketStatus = "answered"
	TicketClosed   TicketStatus = "closed"
)

// Ticket is a helpdesk support ticket.
type Ticket struct {
	ID          string        `json:"id"`
	SellerID    string        `json:"seller_id"`
	Subject     string        `json:"subject"`
	Status      TicketStatus  `json:"status"`
	Replies     []TicketReply `json:"replies"`
	SurveyScore *int          `json:"survey_score,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TicketReply is one message on a ticket thread.
type TicketReply struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

// Invoice statuses.
const (
	InvoiceUnpaid InvoiceStatus = "unpaid"
	InvoicePaid   InvoiceStatus = "paid"
)

// Invoice is a seller billing invoice.
type Invoice struct {
	ID          string        `json:"id"`
	SellerID    string        `json:"seller_id"`
	Number      string        `json:"number"`
	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
	Status      InvoiceStatus `json:"status"`
	IssuedAt    time.Time     `json:"issued_at"`
	DueAt       time.Time     `json:"due_at"`
	PaidAt      *time.Time    `json:"paid_at,omitempty"`
}

// ServiceListing is a service a seller offers alongside products.
type ServiceListing struct {
	ID         string    `json:"id"`
	SellerID   string    `json:"seller_id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Active     bool      `json:"active"`
	UpdatedAt  time.Time `json:"updated_at"`
}
