package handler

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
	"github.com/gaelxxl34/alsabil-service/internal/events"
	"github.com/gaelxxl34/alsabil-service/internal/repository"
	"github.com/gaelxxl34/alsabil-service/internal/service"
	"github.com/gaelxxl34/alsabil-service/pkg/middleware"
)

// memOrders / memUsers are in-memory stands-in for the DynamoDB
// repositories, enough to drive the full handler stack in tests.

type memOrders struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func (s *memOrders) Create(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = *o
	return nil
}

func (s *memOrders) Update(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = *o
	return nil
}

func (s *memOrders) Get(_ context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return &o, nil
}

func (s *memOrders) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, id)
	return nil
}

func (s *memOrders) ListBySeller(_ context.Context, sellerID string) ([]domain.Order, error) {
	return s.list(func(o domain.Order) bool { return o.SellerID == sellerID }), nil
}

func (s *memOrders) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	return s.list(func(o domain.Order) bool { return o.CustomerID == customerID }), nil
}

func (s *memOrders) ListAll(_ context.Context) ([]domain.Order, error) {
	return s.list(func(domain.Order) bool { return true }), nil
}

func (s *memOrders) list(keep func(domain.Order) bool) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Order{}
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (s *memUsers) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
	return nil
}

func (s *memUsers) Get(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUsers) ListCustomersOfSeller(_ context.Context, sellerID string) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.User{}
	for _, u := range s.users {
		if u.Role == domain.RoleCustomer && u.SellerID == sellerID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *memUsers) ListAll(_ context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.User{}
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *memUsers) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

type fixture struct {
	router *gin.Engine
	relay  *events.Relay
	orders *memOrders
}

// password shared by every seeded account.
const testPassword = "correct-horse-battery"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	users := &memUsers{users: map[string]domain.User{
		"admin-1":  {ID: "admin-1", Email: "admin@alsabil.test", Role: domain.RoleAdmin, Name: "Admin", PasswordHash: string(hash)},
		"seller-1": {ID: "seller-1", Email: "seller1@alsabil.test", Role: domain.RoleSeller, Name: "Seller One", PasswordHash: string(hash)},
		"seller-2": {ID: "seller-2", Email: "seller2@alsabil.test", Role: domain.RoleSeller, Name: "Seller Two", PasswordHash: string(hash)},
		"cust-1":   {ID: "cust-1", Email: "cust1@alsabil.test", Role: domain.RoleCustomer, SellerID: "seller-1", Name: "Customer One", PasswordHash: string(hash)},
		"cust-2":   {ID: "cust-2", Email: "cust2@alsabil.test", Role: domain.RoleCustomer, SellerID: "seller-2", Name: "Customer Two", PasswordHash: string(hash)},
	}}
	orders := &memOrders{orders: map[string]domain.Order{}}

	logger := zap.NewNop()
	relay := events.NewRelay(0, logger)

	authSvc := service.NewAuthService(users, []byte("test-key"), time.Hour, logger)
	orderSvc := service.NewOrderService(orders, users, relay, logger)
	userSvc := service.NewUserService(users, orderSvc, logger)

	authH := NewAuthHandler(authSvc, false, logger)
	orderH := NewOrderHandler(orderSvc, logger)
	userH := NewUserHandler(userSvc, logger)
	eventsH := NewEventsHandler(relay, logger)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/logout", authH.Logout)

	authed := api.Group("")
	authed.Use(middleware.Auth(authSvc))
	authed.GET("/auth/me", authH.Me)
	authed.POST("/orders", orderH.Create)
	authed.GET("/orders", orderH.List)
	authed.GET("/orders/:id", orderH.Get)
	authed.PUT("/orders/:id", orderH.Update)
	authed.GET("/events/orders", eventsH.StreamOrders)
	authed.GET("/users", userH.List)
	authed.DELETE("/users/:id", userH.Delete)

	return &fixture{router: router, relay: relay, orders: orders}
}
