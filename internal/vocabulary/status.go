// Package vocabulary maps closed domain code spaces (order status, batch status,
// role identifiers) to display text.
//
// Numeric codes outside their enumeration render as Unknown. Role identifiers
// outside the known set render as themselves.
package vocabulary

// Unknown is the display text for any status code outside its enumeration.
const Unknown = "未知"

// OrderStatus is the lifecycle code of an order.
type OrderStatus int

const (
	OrderNotShipped OrderStatus = iota
	OrderShipped
	OrderPickedUp
	OrderInTransit
	OrderArrived
	OrderReceived
)

var orderStatusText = map[OrderStatus]string{
	OrderNotShipped: "未发货",
	OrderShipped:    "已发货",
	OrderPickedUp:   "已揽收",
	OrderInTransit:  "运输中",
	OrderArrived:    "已到达",
	OrderReceived:   "已收货",
}

// Text returns the display text for s, or Unknown.
func (s OrderStatus) Text() string {
	if text, ok := orderStatusText[s]; ok {
		return text
	}
	return Unknown
}

// BatchStatus is the lifecycle code of a delivery batch.
type BatchStatus int

const (
	BatchPending BatchStatus = iota
	BatchDelivering
	BatchCompleted
)

var batchStatusText = map[BatchStatus]string{
	BatchPending:    "待出发",
	BatchDelivering: "配送中",
	BatchCompleted:  "已完成",
}

// Text returns the display text for s, or Unknown.
func (s BatchStatus) Text() string {
	if text, ok := batchStatusText[s]; ok {
		return text
	}
	return Unknown
}

// Texter is implemented by every status type in this package.
type Texter interface {
	Text() string
}

// TextOf renders an optional status. A nil pointer (a field the server did not
// send) renders as Unknown.
func TextOf[T Texter](s *T) string {
	if s == nil {
		return Unknown
	}
	return (*s).Text()
}
