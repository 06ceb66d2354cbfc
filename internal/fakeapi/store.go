package fakeapi

import (
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Liutianci99/grad-pilipala/internal/console"
	"github.com/Liutianci99/grad-pilipala/internal/vocabulary"
	dErrors "github.com/Liutianci99/grad-pilipala/pkg/domain-errors"
)

// Business rejections, worded as the backend words them.
const (
	MsgAccountNotFound     = "用户或角色不存在"
	MsgWrongPassword       = "密码错误"
	MsgProductNotFound     = "商品不存在"
	MsgAlreadyPublished    = "商品已上架"
	MsgExceedsStock        = "上架数量不能超过库存数量"
	MsgOrderNotFound       = "订单不存在"
	MsgOrderNotDeliverable = "订单未揽收，无法配送"
)

// Stub route planning figures per stop.
const (
	metersPerStop  = 1500
	secondsPerStop = 420
)

type account struct {
	id            int64
	username      string
	role          vocabulary.Role
	passwordHash  []byte
	warehouseID   *int
	warehouseName string
}

type batch struct {
	console.DeliveryBatch
	driverID    int64
	warehouseID int
}

// Store is the stub backend's in-memory data.
type Store struct {
	mu        sync.Mutex
	accounts  []account
	inventory []console.InventoryItem
	listings  []console.Listing
	orders    []console.Order
	batches   []batch
	nextID    int
}

// SeedAccount describes a login the stub accepts.
type SeedAccount struct {
	ID            int64
	Username      string
	Password      string
	Role          vocabulary.Role
	WarehouseID   *int
	WarehouseName string
}

// DefaultAccounts is one account per role.
func DefaultAccounts() []SeedAccount {
	warehouse := 1
	return []SeedAccount{
		{ID: 1, Username: "admin", Password: "admin123", Role: vocabulary.RoleAdmin},
		{ID: 2, Username: "merchant1", Password: "123456", Role: vocabulary.RoleMerchant},
		{ID: 3, Username: "consumer1", Password: "123456", Role: vocabulary.RoleConsumer},
		{ID: 4, Username: "driver1", Password: "123456", Role: vocabulary.RoleDriver, WarehouseID: &warehouse, WarehouseName: "北京仓"},
	}
}

// NewStore hashes the seed accounts with cost and loads demo orders.
func NewStore(accounts []SeedAccount, cost int) (*Store, error) {
	s := &Store{nextID: 100}
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), cost)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash seed password")
		}
		s.accounts = append(s.accounts, account{
			id:            a.ID,
			username:      a.Username,
			role:          a.Role,
			passwordHash:  hash,
			warehouseID:   a.WarehouseID,
			warehouseName: a.WarehouseName,
		})
	}
	s.seedOrders()
	return s, nil
}

func (s *Store) seedOrders() {
	statuses := []vocabulary.OrderStatus{
		vocabulary.OrderNotShipped,
		vocabulary.OrderShipped,
		vocabulary.OrderPickedUp,
		vocabulary.OrderPickedUp,
		vocabulary.OrderReceived,
	}
	names := []string{"苹果", "香蕉", "橙子", "牛奶", "面包"}
	for i, st := range statuses {
		status := st
		s.orders = append(s.orders, console.Order{
			OrderID:       i + 1,
			ProductID:     i + 1,
			CustomerID:    3,
			MerchantID:    2,
			ProductName:   names[i],
			Quantity:      i + 1,
			UnitPrice:     9.9,
			TotalAmount:   9.9 * float64(i+1),
			WarehouseID:   1,
			WarehouseName: "北京仓",
			CustomerName:  "consumer1",
			Status:        &status,
			OrderTime:     "2025-01-1" + strconv.Itoa(i) + "T10:30:00",
		})
	}
}

func (s *Store) id() int {
	s.nextID++
	return s.nextID
}

// Authenticate checks a username, role and password.
func (s *Store) Authenticate(creds console.Credentials) (console.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.username != creds.Username || a.role != creds.Role {
			continue
		}
		if bcrypt.CompareHashAndPassword(a.passwordHash, []byte(creds.Password)) != nil {
			return console.User{}, dErrors.New(dErrors.CodeRejected, MsgWrongPassword)
		}
		return console.User{
			ID:            a.id,
			Username:      a.username,
			Role:          a.role,
			WarehouseID:   a.warehouseID,
			WarehouseName: a.warehouseName,
		}, nil
	}
	return console.User{}, dErrors.New(dErrors.CodeRejected, MsgAccountNotFound)
}

// StockIn records an inventory item. The image is not stored, only named.
func (s *Store) StockIn(item console.InventoryItem, filename string) console.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ProductID = s.id()
	item.ImageURL = "/uploads/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
	item.IsPublished = 0
	s.inventory = append(s.inventory, item)
	return item
}

// Inventory lists a merchant's items.
func (s *Store) Inventory(userID int) []console.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []console.InventoryItem{}
	for _, it := range s.inventory {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out
}

// Publish moves an unpublished inventory item to the mall.
func (s *Store) Publish(merchantID, productID int, description string, quantity int, price float64) (console.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.inventory, func(it console.InventoryItem) bool { return it.ProductID == productID })
	if i < 0 {
		return console.Listing{}, dErrors.New(dErrors.CodeRejected, MsgProductNotFound)
	}
	item := &s.inventory[i]
	if item.IsPublished == 1 {
		return console.Listing{}, dErrors.New(dErrors.CodeRejected, MsgAlreadyPublished)
	}
	if quantity > item.Quantity {
		return console.Listing{}, dErrors.New(dErrors.CodeRejected, MsgExceedsStock)
	}
	item.IsPublished = 1
	listing := console.Listing{
		ProductID:         item.ProductID,
		MerchantID:        merchantID,
		WarehouseID:       item.WarehouseID,
		ProductName:       item.ProductName,
		Description:       description,
		AvailableQuantity: quantity,
		Price:             price,
		IsPublished:       1,
		ImageURL:          item.ImageURL,
	}
	s.listings = append(s.listings, listing)
	return listing, nil
}

// Listings returns the published products.
func (s *Store) Listings() []console.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.listings)
}

// CustomerOrders filters a customer's orders by status and product name.
func (s *Store) CustomerOrders(customerID int, status *int, search string) []console.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []console.Order{}
	for _, o := range s.orders {
		if o.CustomerID != customerID {
			continue
		}
		if status != nil && (o.Status == nil || int(*o.Status) != *status) {
			continue
		}
		if search != "" && !strings.Contains(o.ProductName, search) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// CreateBatch groups picked-up orders into a delivery batch and moves them
// into transit. Stops are visited in ascending order id.
func (s *Store) CreateBatch(driverID int64, orderIDs []int) (console.CreatedBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(orderIDs) == 0 {
		return console.CreatedBatch{}, dErrors.New(dErrors.CodeInvalidInput, "订单ID列表不能为空")
	}
	idx := make([]int, 0, len(orderIDs))
	for _, id := range orderIDs {
		i := slices.IndexFunc(s.orders, func(o console.Order) bool { return o.OrderID == id })
		if i < 0 {
			return console.CreatedBatch{}, dErrors.New(dErrors.CodeRejected, MsgOrderNotFound)
		}
		if st := s.orders[i].Status; st == nil || *st != vocabulary.OrderPickedUp {
			return console.CreatedBatch{}, dErrors.New(dErrors.CodeRejected, MsgOrderNotDeliverable)
		}
		idx = append(idx, i)
	}

	stops := slices.Clone(orderIDs)
	slices.Sort(stops)
	stops = slices.Compact(stops)

	pending := vocabulary.BatchPending
	distance := metersPerStop * len(stops)
	duration := secondsPerStop * len(stops)
	b := batch{
		DeliveryBatch: console.DeliveryBatch{
			BatchID:       s.id(),
			Status:        &pending,
			TotalDistance: &distance,
			TotalDuration: &duration,
		},
		driverID:    driverID,
		warehouseID: s.orders[idx[0]].WarehouseID,
	}
	inTransit := vocabulary.OrderInTransit
	for _, i := range idx {
		s.orders[i].Status = &inTransit
		b.Orders = append(b.Orders, s.orders[i])
	}
	s.batches = append(s.batches, b)

	return console.CreatedBatch{
		BatchID:       b.BatchID,
		TotalDistance: distance,
		TotalDuration: duration,
		OrderCount:    len(stops),
		StopOrder:     stops,
	}, nil
}

// DriverBatches lists a driver's batches, optionally for one warehouse.
func (s *Store) DriverBatches(driverID int64, warehouseID *int) []console.DeliveryBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []console.DeliveryBatch{}
	for _, b := range s.batches {
		if b.driverID != driverID {
			continue
		}
		if warehouseID != nil && b.warehouseID != *warehouseID {
			continue
		}
		out = append(out, b.DeliveryBatch)
	}
	return out
}
