// Package console implements the console's call sites: sign-in, validated
// form submissions and the order and batch listings. Every backend call goes
// through the authenticated request client.
package console

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Liutianci99/grad-pilipala/internal/apiclient"
	"github.com/Liutianci99/grad-pilipala/internal/notify"
	"github.com/Liutianci99/grad-pilipala/internal/platform/metrics"
	"github.com/Liutianci99/grad-pilipala/internal/validation"
	dErrors "github.com/Liutianci99/grad-pilipala/pkg/domain-errors"
	"github.com/Liutianci99/grad-pilipala/pkg/requestcontext"
)

// Messages shown when the backend rejects a call without saying why.
const (
	MsgLoginFailed      = "登录失败"
	MsgOperationFailed  = "操作失败"
	MsgNoOrdersSelected = "请选择要配送的订单"
)

const stockInDateLayout = "2006-01-02T15:04:05"

// Requester sends one request through the request pipeline.
type Requester interface {
	Do(ctx context.Context, req apiclient.Request, out any) error
}

// Session stores the token a login produces.
type Session interface {
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Service runs the console operations.
type Service struct {
	api      Requester
	session  Session
	notifier notify.Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New builds a Service. The requester, session and notifier are required.
func New(api Requester, session Session, notifier notify.Notifier, opts ...Option) (*Service, error) {
	if api == nil {
		return nil, errors.New("requester is required")
	}
	if session == nil {
		return nil, errors.New("session is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	s := &Service{
		api:      api,
		session:  session,
		notifier: notifier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login signs in and stores the issued token. A business rejection is
// reported once and returned as an unauthorized domain error.
func (s *Service) Login(ctx context.Context, creds Credentials) (*User, error) {
	user, err := call[User](ctx, s, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   creds,
	}, dErrors.CodeUnauthorized, MsgLoginFailed)
	if err != nil {
		return nil, err
	}
	if user.Token == "" {
		s.notifier.Error(ctx, MsgLoginFailed)
		return nil, dErrors.New(dErrors.CodeUnauthorized, MsgLoginFailed)
	}
	if err := s.session.SetToken(ctx, user.Token); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "store session token")
	}
	s.logger.InfoContext(ctx, "signed in",
		"user_id", user.ID,
		"role", string(user.Role),
	)
	return &user, nil
}

// Logout drops the session token.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "clear session token")
	}
	return nil
}

// SubmitStockIn validates the form and, when it passes, uploads it with its
// image. A rejected form never reaches the network.
func (s *Service) SubmitStockIn(ctx context.Context, userID int, form validation.StockInForm) (*InventoryItem, error) {
	if violations := validation.ValidateStockIn(form); !violations.OK() {
		return nil, s.rejectForm(ctx, "stock_in", violations)
	}
	image := form.Image
	item, err := call[InventoryItem](ctx, s, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/inventory/stock-in",
		Multipart: &apiclient.Multipart{
			Fields: []apiclient.Field{
				{Name: "userId", Value: strconv.Itoa(userID)},
				{Name: "warehouseId", Value: strconv.Itoa(form.WarehouseID)},
				{Name: "productName", Value: form.ProductName},
				{Name: "quantity", Value: strconv.Itoa(form.Quantity)},
				{Name: "stockInDate", Value: requestcontext.Now(ctx).Format(stockInDateLayout)},
			},
			Files: []apiclient.FilePart{{
				FieldName:   "image",
				Filename:    image.Filename,
				ContentType: image.ContentType,
				Content:     image.Content,
			}},
		},
	}, dErrors.CodeRejected, MsgOperationFailed)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// PublishListing validates the listing form and publishes the product.
func (s *Service) PublishListing(ctx context.Context, form validation.ListingForm) (*Listing, error) {
	if violations := validation.ValidateListing(form); !violations.OK() {
		return nil, s.rejectForm(ctx, "listing", violations)
	}
	listing, err := call[Listing](ctx, s, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/mall/publish",
		Body: publishRequest{
			ProductID:   form.ProductID,
			Description: form.Description,
			Quantity:    form.ListingQuantity,
			Price:       form.ListingPrice,
		},
	}, dErrors.CodeRejected, MsgOperationFailed)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// MyOrders lists a customer's orders.
func (s *Service) MyOrders(ctx context.Context, customerID int, filter OrderFilter) ([]Order, error) {
	query := url.Values{"customerId": {strconv.Itoa(customerID)}}
	if filter.Status != nil {
		query.Set("status", strconv.Itoa(int(*filter.Status)))
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	return call[[]Order](ctx, s, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/orders/my",
		Query:  query,
	}, dErrors.CodeRejected, MsgOperationFailed)
}

// DeliveryBatches lists a driver's batches with their status. A nil
// warehouseID lists across warehouses.
func (s *Service) DeliveryBatches(ctx context.Context, driverID int64, warehouseID *int) ([]DeliveryBatch, error) {
	query := url.Values{"deliveryPersonnelId": {strconv.FormatInt(driverID, 10)}}
	if warehouseID != nil {
		query.Set("warehouseId", strconv.Itoa(*warehouseID))
	}
	return call[[]DeliveryBatch](ctx, s, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/orders/delivery-batches-with-status",
		Query:  query,
	}, dErrors.CodeRejected, MsgOperationFailed)
}

// CreateDeliveryBatch groups orders into a batch for the driver. The backend
// plans the route before answering, so the call runs on the client's long
// default timeout unless timeout is positive.
func (s *Service) CreateDeliveryBatch(ctx context.Context, driverID int64, orderIDs []int, timeout time.Duration) (*CreatedBatch, error) {
	if len(orderIDs) == 0 {
		return nil, s.rejectForm(ctx, "delivery_batch", validation.Violations{MsgNoOrdersSelected})
	}
	batch, err := call[CreatedBatch](ctx, s, apiclient.Request{
		Method:  http.MethodPost,
		Path:    "/orders/delivery-batch",
		Query:   url.Values{"deliveryPersonnelId": {strconv.FormatInt(driverID, 10)}},
		Body:    orderIDs,
		Timeout: timeout,
	}, dErrors.CodeRejected, MsgOperationFailed)
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// call sends req and unwraps the result envelope. Transport and server
// failures were already reported by the client; a success=false envelope is
// reported here with the server's message or fallback.
func call[T any](ctx context.Context, s *Service, req apiclient.Request, code dErrors.Code, fallback string) (T, error) {
	var zero T
	var env apiclient.Envelope[T]
	if err := s.api.Do(ctx, req, &env); err != nil {
		s.requestFailed(ctx, err)
		return zero, err
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fallback
		}
		s.notifier.Error(ctx, msg)
		return zero, dErrors.New(code, msg)
	}
	return env.Data, nil
}

// requestFailed invalidates the session when the server no longer accepts
// the token.
func (s *Service) requestFailed(ctx context.Context, err error) {
	if !apiclient.IsUnauthorized(err) {
		return
	}
	if clearErr := s.session.Clear(ctx); clearErr != nil {
		s.logger.WarnContext(ctx, "failed to clear rejected session token",
			"error", clearErr,
		)
		return
	}
	s.logger.InfoContext(ctx, "session token rejected by server, signed out")
}

// rejectForm reports the first violation and returns all of them.
func (s *Service) rejectForm(ctx context.Context, form string, violations validation.Violations) error {
	s.metrics.IncrementValidationRejection(form)
	s.notifier.Error(ctx, violations[0])
	return violations.Err()
}
