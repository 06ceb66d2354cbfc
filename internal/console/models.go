package console

import (
	"github.com/Liutianci99/grad-pilipala/internal/vocabulary"
)

// Credentials are the login form fields. The backend looks users up by
// username and role together.
type Credentials struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     vocabulary.Role `json:"role"`
}

// User is the profile returned by a successful login.
type User struct {
	ID            int64           `json:"id"`
	Username      string          `json:"username"`
	Role          vocabulary.Role `json:"role"`
	Token         string          `json:"token"`
	WarehouseID   *int            `json:"warehouseId,omitempty"`
	WarehouseName string          `json:"warehouseName,omitempty"`
}

// InventoryItem is a stocked product.
type InventoryItem struct {
	ProductID     int    `json:"productId"`
	UserID        int    `json:"userId"`
	ProductName   string `json:"productName"`
	Quantity      int    `json:"quantity"`
	StockInDate   string `json:"stockInDate"`
	ImageURL      string `json:"imageUrl"`
	IsPublished   int    `json:"isPublished"`
	WarehouseID   int    `json:"warehouseId"`
	WarehouseName string `json:"warehouseName,omitempty"`
}

// Listing is a product published to the mall.
type Listing struct {
	ProductID         int     `json:"productId"`
	MerchantID        int     `json:"merchantId"`
	WarehouseID       int     `json:"warehouseId"`
	ProductName       string  `json:"productName"`
	Description       string  `json:"description"`
	AvailableQuantity int     `json:"availableQuantity"`
	Price             float64 `json:"price"`
	IsPublished       int     `json:"isPublished"`
	PublishTime       string  `json:"publishTime"`
	ImageURL          string  `json:"imageUrl"`
}

// Order is a customer order as listed by the backend.
type Order struct {
	OrderID       int                     `json:"orderId"`
	ProductID     int                     `json:"productId"`
	CustomerID    int                     `json:"customerId"`
	MerchantID    int                     `json:"merchantId"`
	ProductName   string                  `json:"productName"`
	Quantity      int                     `json:"quantity"`
	UnitPrice     float64                 `json:"unitPrice"`
	TotalAmount   float64                 `json:"totalAmount"`
	ImageURL      string                  `json:"imageUrl"`
	WarehouseID   int                     `json:"warehouseId"`
	WarehouseName string                  `json:"warehouseName,omitempty"`
	CustomerName  string                  `json:"customerName,omitempty"`
	Status        *vocabulary.OrderStatus `json:"status"`
	OrderTime     string                  `json:"orderTime"`
}

// StatusText renders the order status, 未知 when absent or unrecognized.
func (o Order) StatusText() string {
	return vocabulary.TextOf(o.Status)
}

// OrderDate renders the order time as a calendar date.
func (o Order) OrderDate() string {
	return vocabulary.FormatDate(o.OrderTime)
}

// DeliveryBatch is a driver's batch with its orders.
type DeliveryBatch struct {
	BatchID int                     `json:"batchId"`
	Status  *vocabulary.BatchStatus `json:"status"`
	// TotalDistance is in meters, TotalDuration in seconds.
	TotalDistance *int    `json:"totalDistance"`
	TotalDuration *int    `json:"totalDuration"`
	CreatedAt     string  `json:"createdAt"`
	StartedAt     string  `json:"startedAt,omitempty"`
	CompletedAt   string  `json:"completedAt,omitempty"`
	Orders        []Order `json:"orders"`
}

func (b DeliveryBatch) StatusText() string {
	return vocabulary.TextOf(b.Status)
}

// CreatedBatch is the planning result of a new delivery batch.
type CreatedBatch struct {
	BatchID       int   `json:"batchId"`
	TotalDistance int   `json:"totalDistance"`
	TotalDuration int   `json:"totalDuration"`
	OrderCount    int   `json:"orderCount"`
	StopOrder     []int `json:"stopOrder"`
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	Status *vocabulary.OrderStatus
	Search string
}

type publishRequest struct {
	ProductID   int     `json:"productId"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}
