package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	appcart "github.com/xiebiao/bookshop/internal/application/cart"
	apporder "github.com/xiebiao/bookshop/internal/application/order"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/internal/testutil/memstore"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/mq"
)

type envelope struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Details map[string]interface{} `json:"details"`
}

type RouterSuite struct {
	suite.Suite
	store    *memstore.Store
	sessions *redis.SessionStore
	jwt      *jwt.Manager
	engine   *gin.Engine
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	mr := miniredis.RunT(s.T())
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })

	s.store = memstore.New()
	s.sessions = redis.NewSessionStore(client)
	s.jwt = jwt.NewManager("test-secret", time.Hour)

	st := s.store
	cartHandler := handler.NewCartHandler(
		appcart.NewManageCartUseCase(st, st.Carts()),
		appcart.NewAddLineItemUseCase(st, st.Carts(), st.LineItems(), st.Books()),
		appcart.NewRemoveLineItemUseCase(st, st.Carts(), st.LineItems()),
		appcart.NewUpdateCartUseCase(st, st.Carts(), st.Addresses()),
	)
	orderHandler := handler.NewOrderHandler(
		apporder.NewCreateOrderUseCase(st, st.Carts(), st.Orders(), st.Inventories(),
			cart.NewValidator(st.Inventories(), 4), mq.NopPublisher{}, zap.NewNop()),
		apporder.NewGetOrderUseCase(st.Orders(), st.Carts()),
	)

	s.engine = New(Options{
		Mode:           gin.TestMode,
		ServiceName:    "bookshop-test",
		Logger:         zap.NewNop(),
		AuthMiddleware: middleware.NewAuthMiddleware(s.jwt, s.sessions),
		CartHandler:    cartHandler,
		OrderHandler:   orderHandler,
	})
}

func (s *RouterSuite) token(customerID uint) string {
	tok, err := s.jwt.GenerateToken(customerID, fmt.Sprintf("c%d@example.com", customerID))
	s.Require().NoError(err)
	return tok
}

func (s *RouterSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *RouterSuite) TestPing() {
	w, _ := s.do(http.MethodGet, "/ping", "", nil)

	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get(middleware.HeaderRequestID))
}

func (s *RouterSuite) TestRequestIDPropagated() {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	s.Equal("req-123", w.Header().Get(middleware.HeaderRequestID))
}

func (s *RouterSuite) TestMetricsEndpoint() {
	s.do(http.MethodGet, "/ping", "", nil)

	w, _ := s.do(http.MethodGet, "/metrics", "", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `http_requests_total{method="GET",path="/ping",status="200"}`)
}

func (s *RouterSuite) TestAuth() {
	expired := jwt.NewManager("test-secret", -time.Minute)
	expiredToken, err := expired.GenerateToken(1, "x@example.com")
	s.Require().NoError(err)

	blacklisted := s.token(2)
	s.Require().NoError(s.sessions.AddToBlacklist(s.T().Context(), blacklisted, time.Hour))

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"缺少Token", "", apperrors.ErrCodeUnauthorized},
		{"格式错误", "Token abc", apperrors.ErrCodeInvalidToken},
		{"签名错误", "Bearer " + s.forged(), apperrors.ErrCodeInvalidToken},
		{"已过期", "Bearer " + expiredToken, apperrors.ErrCodeTokenExpired},
		{"已加入黑名单", "Bearer " + blacklisted, apperrors.ErrCodeTokenExpired},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/carts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			s.engine.ServeHTTP(w, req)

			var env envelope
			s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
			s.Equal(http.StatusUnauthorized, w.Code)
			s.Equal(tt.code, env.Code)
		})
	}
}

func (s *RouterSuite) forged() string {
	tok, err := jwt.NewManager("other-secret", time.Hour).GenerateToken(1, "x@example.com")
	s.Require().NoError(err)
	return tok
}

func (s *RouterSuite) TestCartLifecycle() {
	const customerID uint = 42
	tok := s.token(customerID)
	b := s.store.SeedBook(s.T(), "12.50")
	addr := s.store.SeedAddress(s.T(), customerID)

	w, env := s.do(http.MethodPost, "/api/v1/carts", tok, nil)
	s.Require().Equal(http.StatusCreated, w.Code)
	var created appcart.CartResponse
	s.Require().NoError(json.Unmarshal(env.Data, &created))
	s.Equal("active", created.Status)
	s.Equal("0.00", created.TotalPrice)

	cartPath := fmt.Sprintf("/api/v1/carts/%d", created.ID)

	w, env = s.do(http.MethodPost, cartPath+"/items", tok, map[string]interface{}{"book_id": b.ID, "quantity": 3})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var withItem appcart.CartResponse
	s.Require().NoError(json.Unmarshal(env.Data, &withItem))
	s.Require().Len(withItem.LineItems, 1)
	s.Equal("37.50", withItem.TotalPrice)

	w, env = s.do(http.MethodPatch, cartPath, tok, map[string]interface{}{
		"billing_address_id":  addr.ID,
		"shipping_address_id": addr.ID,
		"delivery_method":     "express",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated appcart.CartResponse
	s.Require().NoError(json.Unmarshal(env.Data, &updated))
	s.Require().NotNil(updated.DeliveryMethod)
	s.Equal("express", *updated.DeliveryMethod)
	s.Equal(addr.ID, *updated.BillingAddressID)

	itemPath := fmt.Sprintf("%s/items/%d?quantity=3", cartPath, withItem.LineItems[0].ID)
	w, env = s.do(http.MethodDelete, itemPath, tok, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var emptied appcart.CartResponse
	s.Require().NoError(json.Unmarshal(env.Data, &emptied))
	s.Empty(emptied.LineItems)
	s.Equal("0.00", emptied.TotalPrice)

	w, _ = s.do(http.MethodDelete, cartPath, tok, nil)
	s.Equal(http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, cartPath, tok, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(apperrors.ErrCodeCartNotFound, env.Code)
}

func (s *RouterSuite) TestCartErrors() {
	rc := s.store.SeedReadyCart(s.T(), 10, 10)
	owner := s.token(rc.CustomerID)
	cartPath := fmt.Sprintf("/api/v1/carts/%d", rc.Cart.ID)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		status int
		code   int
	}{
		{"非法ID", http.MethodGet, "/api/v1/carts/abc", owner, nil, http.StatusBadRequest, apperrors.ErrCodeInvalidParams},
		{"他人购物车", http.MethodGet, cartPath, s.token(rc.CustomerID + 1), nil, http.StatusForbidden, apperrors.ErrCodeCartAccessDenied},
		{"数量超限", http.MethodPost, cartPath + "/items", owner, map[string]interface{}{"book_id": rc.BookA.ID, "quantity": 1000}, http.StatusBadRequest, apperrors.ErrCodeInvalidParams},
		{"空的更新", http.MethodPatch, cartPath, owner, map[string]interface{}{}, http.StatusBadRequest, apperrors.ErrCodeInvalidParams},
		{"不能手动结算", http.MethodPatch, cartPath, owner, map[string]interface{}{"status": "inactive"}, http.StatusBadRequest, apperrors.ErrCodeInvalidCartStatusTransfer},
		{"缺少移除数量", http.MethodDelete, fmt.Sprintf("%s/items/%d", cartPath, rc.LineItemA.ID), owner, nil, http.StatusBadRequest, apperrors.ErrCodeInvalidParams},
		{"明细不存在", http.MethodDelete, cartPath + "/items/999999?quantity=1", owner, nil, http.StatusNotFound, apperrors.ErrCodeLineItemNotFound},
		{"非空购物车不能删除", http.MethodDelete, cartPath, owner, nil, http.StatusBadRequest, apperrors.ErrCodeCartNotEmpty},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w, env := s.do(tt.method, tt.path, tt.token, tt.body)
			s.Equal(tt.status, w.Code, w.Body.String())
			s.Equal(tt.code, env.Code)
		})
	}
}

func (s *RouterSuite) TestCheckout() {
	rc := s.store.SeedReadyCart(s.T(), 5, 5)
	tok := s.token(rc.CustomerID)

	w, env := s.do(http.MethodPost, "/api/v1/orders", tok, map[string]interface{}{
		"cart_id":        rc.Cart.ID,
		"payment_method": "credit_card",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created apporder.OrderResponse
	s.Require().NoError(json.Unmarshal(env.Data, &created))
	s.Equal("25.00", created.TotalPrice)
	s.NotEmpty(created.OrderNo)
	s.Equal(3, s.store.InventoryOf(s.T(), rc.BookA.ID))
	s.Equal(4, s.store.InventoryOf(s.T(), rc.BookB.ID))

	w, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", created.ID), tok, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var fetched apporder.OrderResponse
	s.Require().NoError(json.Unmarshal(env.Data, &fetched))
	s.Equal(created.OrderNo, fetched.OrderNo)

	// 其他人查不到
	w, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", created.ID), s.token(rc.CustomerID+1), nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(apperrors.ErrCodeOrderNotFound, env.Code)

	// 已结算的购物车不能再结算
	w, env = s.do(http.MethodPost, "/api/v1/orders", tok, map[string]interface{}{
		"cart_id":        rc.Cart.ID,
		"payment_method": "credit_card",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperrors.ErrCodeCartNotActive, env.Code)
}

func (s *RouterSuite) TestCheckout_OutOfInventoryDetails() {
	rc := s.store.SeedReadyCart(s.T(), 1, 5)

	w, env := s.do(http.MethodPost, "/api/v1/orders", s.token(rc.CustomerID), map[string]interface{}{
		"cart_id":        rc.Cart.ID,
		"payment_method": "paypal",
	})

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperrors.ErrCodeLineItemOutOfInventory, env.Code)
	s.EqualValues(rc.LineItemA.ID, env.Details["line_item_id"])
	s.Equal(0, s.store.OrderCount())
	s.Equal(1, s.store.InventoryOf(s.T(), rc.BookA.ID))
}

func (s *RouterSuite) TestCheckout_BindErrors() {
	tok := s.token(1)

	w, env := s.do(http.MethodPost, "/api/v1/orders", tok, map[string]interface{}{"payment_method": "paypal"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperrors.ErrCodeInvalidParams, env.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func TestNew_SwaggerOnlyWhenEnabled(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	engine := New(Options{
		Mode:           gin.TestMode,
		Logger:         zap.NewNop(),
		AuthMiddleware: middleware.NewAuthMiddleware(jwt.NewManager("s", time.Hour), redis.NewSessionStore(client)),
		CartHandler:    &handler.CartHandler{},
		OrderHandler:   &handler.OrderHandler{},
	})

	routes := make([]string, 0)
	for _, r := range engine.Routes() {
		routes = append(routes, r.Method+" "+r.Path)
	}
	assert.NotContains(t, routes, "GET /swagger/*any")
	assert.Contains(t, routes, "PATCH /api/v1/carts/:id")
	assert.Contains(t, routes, "DELETE /api/v1/carts/:id/items/:item_id")
	require.Contains(t, routes, "GET /metrics")
}
