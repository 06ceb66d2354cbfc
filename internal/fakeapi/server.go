// Package fakeapi is a development stand-in for the logistics backend. It
// serves the /api endpoints the console calls, with the same result envelope,
// bearer checks and business rejections, over in-memory data.
package fakeapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Liutianci99/grad-pilipala/internal/console"
	dErrors "github.com/Liutianci99/grad-pilipala/pkg/domain-errors"
	"github.com/Liutianci99/grad-pilipala/pkg/platform/httputil"
	"github.com/Liutianci99/grad-pilipala/pkg/platform/middleware/auth"
	"github.com/Liutianci99/grad-pilipala/pkg/platform/middleware/metadata"
	"github.com/Liutianci99/grad-pilipala/pkg/platform/middleware/request"
	"github.com/Liutianci99/grad-pilipala/pkg/requestcontext"
)

const (
	maxUploadBytes = 10 << 20
	stockInLayout  = "2006-01-02T15:04:05"
)

// Server handles the stub API.
type Server struct {
	store         *Store
	tokens        *TokenService
	logger        *slog.Logger
	planningDelay time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithPlanningDelay makes batch creation wait, the way route planning does.
func WithPlanningDelay(d time.Duration) Option {
	return func(s *Server) {
		s.planningDelay = d
	}
}

func NewServer(store *Store, tokens *TokenService, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{store: store, tokens: tokens, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes mounts the API under /api.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(request.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(chimw.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Get("/auth/test", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "Backend is running!")
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.tokens, s.logger))
			r.Post("/inventory/stock-in", s.handleStockIn)
			r.Get("/inventory/list", s.handleInventory)
			r.Post("/mall/publish", s.handlePublish)
			r.Get("/mall/products", s.handleProducts)
			r.Get("/orders/my", s.handleMyOrders)
			r.Post("/orders/delivery-batch", s.handleCreateBatch)
			r.Get("/orders/delivery-batches-with-status", s.handleBatches)
		})
	})
	return r
}

// loginResponse is the login body: same shape as the envelope but without a code.
type loginResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    *console.User `json:"data"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var creds console.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	user, err := s.store.Authenticate(creds)
	if err != nil {
		de, ok := dErrors.Is(err)
		if !ok {
			s.internal(w, r, err)
			return
		}
		s.logger.InfoContext(ctx, "login rejected",
			"username", creds.Username,
			"role", string(creds.Role),
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteJSON(w, http.StatusOK, loginResponse{Message: de.Message})
		return
	}
	token, err := s.tokens.Issue(user.ID, user.Username, string(user.Role), requestcontext.Now(ctx))
	if err != nil {
		s.internal(w, r, err)
		return
	}
	user.Token = token
	client := metadata.ClientFrom(ctx)
	s.logger.InfoContext(ctx, "login succeeded",
		"user_id", user.ID,
		"role", string(user.Role),
		"client_ip", client.IP,
		"browser", client.Browser,
		"os", client.OS,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, loginResponse{Success: true, Message: "登录成功", Data: &user})
}

func (s *Server) handleStockIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid multipart body"))
		return
	}
	userID, err := formInt(r.FormValue("userId"), "userId")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	warehouseID, err := formInt(r.FormValue("warehouseId"), "warehouseId")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	quantity, err := formInt(r.FormValue("quantity"), "quantity")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	_, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "缺少参数 image"))
		return
	}
	stockInDate := r.FormValue("stockInDate")
	if stockInDate == "" {
		stockInDate = requestcontext.Now(r.Context()).Format(stockInLayout)
	}

	item := s.store.StockIn(console.InventoryItem{
		UserID:      userID,
		ProductName: r.FormValue("productName"),
		Quantity:    quantity,
		StockInDate: stockInDate,
		WarehouseID: warehouseID,
	}, header.Filename)
	httputil.WriteSuccess(w, "操作成功", item)
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	userID, err := s.principalID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if raw := r.URL.Query().Get("userId"); raw != "" {
		if userID, err = formInt(raw, "userId"); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	httputil.WriteSuccess(w, "操作成功", s.store.Inventory(userID))
}

type publishRequest struct {
	ProductID   int     `json:"productId"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	merchantID, err := s.principalID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	listing, err := s.store.Publish(merchantID, req.ProductID, req.Description, req.Quantity, req.Price)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, "操作成功", listing)
}

func (s *Server) handleProducts(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteSuccess(w, "操作成功", s.store.Listings())
}

func (s *Server) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customerID, err := formInt(q.Get("customerId"), "customerId")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var status *int
	if raw := q.Get("status"); raw != "" {
		v, err := formInt(raw, "status")
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		status = &v
	}
	httputil.WriteSuccess(w, "操作成功", s.store.CustomerOrders(customerID, status, q.Get("search")))
}

func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	driverID, err := strconv.ParseInt(r.URL.Query().Get("deliveryPersonnelId"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "缺少参数 deliveryPersonnelId"))
		return
	}
	var orderIDs []int
	if err := json.NewDecoder(r.Body).Decode(&orderIDs); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	if s.planningDelay > 0 {
		select {
		case <-time.After(s.planningDelay):
		case <-r.Context().Done():
			return
		}
	}

	created, err := s.store.CreateBatch(driverID, orderIDs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, "创建送货批次成功", created)
}

func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	driverID, err := strconv.ParseInt(q.Get("deliveryPersonnelId"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "缺少参数 deliveryPersonnelId"))
		return
	}
	var warehouseID *int
	if raw := q.Get("warehouseId"); raw != "" {
		v, err := formInt(raw, "warehouseId")
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		warehouseID = &v
	}
	httputil.WriteSuccess(w, "操作成功", s.store.DriverBatches(driverID, warehouseID))
}

func (s *Server) principalID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(requestcontext.UserID(r.Context()))
	if err != nil {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "未登录或登录已过期")
	}
	return id, nil
}

func (s *Server) internal(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	s.logger.ErrorContext(ctx, "request failed",
		"error", err,
		"path", r.URL.Path,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, err)
}

func formInt(raw, name string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "缺少参数 "+name)
	}
	return v, nil
}
