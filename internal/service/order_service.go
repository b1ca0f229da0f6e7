package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
	"github.com/gaelxxl34/alsabil-service/internal/events"
	"github.com/gaelxxl34/alsabil-service/internal/repository"
)

// OrderStore is the persistence surface OrderService needs. The DynamoDB
// repository satisfies it; tests use an in-memory fake.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id string) error
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
}

// Emitter receives order lifecycle events. The process-local relay
// satisfies it; the optional Kafka bridge hangs off the relay, not off the
// service.
type Emitter interface {
	Emit(evt events.OrderEvent)
}

type OrderService struct {
	orders OrderStore
	users  UserStore
	relay  Emitter
	logger *zap.Logger
}

func NewOrderService(orders OrderStore, users UserStore, relay Emitter, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		users:  users,
		relay:  relay,
		logger: logger,
	}
}

// CreateOrder validates the request against the caller's scope, derives the
// monetary fields and persists the order. The customer/seller pairing is
// checked once here against the customer document; later mutations trust it.
func (s *OrderService) CreateOrder(ctx context.Context, ident domain.Identity, req domain.CreateOrderRequest, requestID string) (*domain.Order, error) {
	switch {
	case ident.Role == domain.RoleAdmin:
	case ident.Role == domain.RoleCustomer && ident.UserID == req.CustomerID:
	default:
		return nil, domain.ForbiddenError("only the customer or an admin may create this order")
	}

	customer, err := s.users.Get(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("customer %s: %w", req.CustomerID, domain.ErrNotFound)
		}
		return nil, err
	}
	if customer.Role != domain.RoleCustomer || customer.SellerID != req.SellerID {
		return nil, domain.ForbiddenError("customer does not belong to this seller")
	}

	now := time.Now().UTC()

	deliveryFee := domain.DefaultDeliveryFee
	if *req.Subtotal >= domain.DeliveryFeeThreshold {
		deliveryFee = 0
	}
	if req.DeliveryFee != nil {
		deliveryFee = *req.DeliveryFee
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "credit"
	}

	order := &domain.Order{
		ID:              uuid.New().String(),
		CustomerID:      req.CustomerID,
		SellerID:        req.SellerID,
		Items:           req.Items,
		Subtotal:        *req.Subtotal,
		DeliveryFee:     deliveryFee,
		Payments:        []domain.Payment{},
		CreditNotes:     []domain.CreditNote{},
		Status:          domain.OrderStatusPending,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryDate:    req.DeliveryDate,
		PaymentMethod:   paymentMethod,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.Recalculate(now)

	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("failed to save order",
			zap.String("order_id", order.ID),
			zap.Error(err))
		return nil, err
	}

	s.emit(events.TypeOrderCreated, order, requestID)

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("customer_id", order.CustomerID),
		zap.String("seller_id", order.SellerID),
		zap.Float64("total", order.Total))

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, ident domain.Identity, id string) (*domain.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !canAccessOrder(ident, order) {
		return nil, domain.ForbiddenError("order belongs to another account")
	}
	return order, nil
}

// ListOrders returns the orders visible to the caller. The store query is
// already scoped for sellers and customers, but results are re-filtered in
// memory anyway: the store cannot enforce equality on two security-relevant
// fields at once, so a caller-supplied filter must never widen the scope.
func (s *OrderService) ListOrders(ctx context.Context, ident domain.Identity, customerID, sellerID string) ([]domain.Order, error) {
	var (
		orders []domain.Order
		err    error
	)

	switch ident.Role {
	case domain.RoleAdmin:
		switch {
		case customerID != "":
			orders, err = s.orders.ListByCustomer(ctx, customerID)
		case sellerID != "":
			orders, err = s.orders.ListBySeller(ctx, sellerID)
		default:
			orders, err = s.orders.ListAll(ctx)
		}
	case domain.RoleSeller:
		orders, err = s.orders.ListBySeller(ctx, ident.UserID)
		sellerID = ident.UserID
	case domain.RoleCustomer:
		orders, err = s.orders.ListByCustomer(ctx, ident.UserID)
		customerID = ident.UserID
	default:
		return nil, domain.ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if sellerID != "" && o.SellerID != sellerID {
			continue
		}
		if customerID != "" && o.CustomerID != customerID {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered, nil
}

// UpdateOrder applies a partial update and any payment or credit-note
// submission, then recomputes the balance. The read-modify-write is not
// transactional: two concurrent updates of the same order are
// last-writer-wins, including on totalPaid and remainingAmount.
func (s *OrderService) UpdateOrder(ctx context.Context, ident domain.Identity, id string, req domain.UpdateOrderRequest, requestID string) (*domain.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	switch ident.Role {
	case domain.RoleAdmin:
	case domain.RoleSeller:
		if order.SellerID != ident.UserID {
			return nil, domain.ForbiddenError("order belongs to another seller")
		}
	default:
		return nil, domain.ForbiddenError("only the seller or an admin may update an order")
	}

	now := time.Now().UTC()

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, domain.ValidationError(fmt.Sprintf("unknown status %q", *req.Status))
		}
		order.Status = *req.Status
	}
	if req.Items != nil {
		order.Items = req.Items
	}
	if req.Subtotal != nil {
		order.Subtotal = *req.Subtotal
	}
	if req.DeliveryFee != nil {
		order.DeliveryFee = *req.DeliveryFee
	}
	if req.DeliveryAddress != nil {
		order.DeliveryAddress = *req.DeliveryAddress
	}
	if req.DeliveryDate != nil {
		order.DeliveryDate = *req.DeliveryDate
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	if req.Payment != nil {
		method := req.Payment.Method
		if method == "" {
			method = order.PaymentMethod
		}
		date := req.Payment.Date
		if date == "" {
			date = now.Format("2006-01-02")
		}
		order.Payments = append(order.Payments, domain.Payment{
			Amount:    req.Payment.Amount,
			Date:      date,
			Method:    method,
			CreatedBy: ident.UserID,
			CreatedAt: now,
		})
	}

	if req.CreditNote != nil {
		date := req.CreditNote.Date
		if date == "" {
			date = now.Format("2006-01-02")
		}
		order.CreditNotes = append(order.CreditNotes, domain.CreditNote{
			Amount:    req.CreditNote.Amount,
			Reason:    req.CreditNote.Reason,
			Date:      date,
			CreatedBy: ident.UserID,
			CreatedAt: now,
		})
	}

	order.Recalculate(now)

	// An explicit paymentStatus in the request wins over the derived value.
	// The override is applied after the recompute and logged so a divergence
	// is visible, never silent.
	if req.PaymentStatus != nil {
		if !req.PaymentStatus.Valid() {
			return nil, domain.ValidationError(fmt.Sprintf("unknown payment status %q", *req.PaymentStatus))
		}
		if *req.PaymentStatus != order.PaymentStatus {
			s.logger.Warn("payment status override",
				zap.String("order_id", order.ID),
				zap.String("derived", string(order.PaymentStatus)),
				zap.String("override", string(*req.PaymentStatus)),
				zap.String("by", ident.UserID))
		}
		order.PaymentStatus = *req.PaymentStatus
	}

	order.UpdatedAt = now

	if err := s.orders.Update(ctx, order); err != nil {
		s.logger.Error("failed to update order",
			zap.String("order_id", order.ID),
			zap.Error(err))
		return nil, err
	}

	s.emit(events.TypeOrderUpdated, order, requestID)

	return order, nil
}

// DeleteOrdersOfUser removes every order tied to the user, called from the
// admin user-deletion cascade.
func (s *OrderService) DeleteOrdersOfUser(ctx context.Context, user *domain.User) error {
	var (
		orders []domain.Order
		err    error
	)
	switch user.Role {
	case domain.RoleSeller:
		orders, err = s.orders.ListBySeller(ctx, user.ID)
	case domain.RoleCustomer:
		orders, err = s.orders.ListByCustomer(ctx, user.ID)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	for i := range orders {
		if err := s.orders.Delete(ctx, orders[i].ID); err != nil {
			return err
		}
		s.emit(events.TypeOrderDeleted, &orders[i], "")
	}

	s.logger.Info("cascaded order deletion",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.Int("orders", len(orders)))

	return nil
}

func (s *OrderService) emit(eventType string, order *domain.Order, requestID string) {
	snapshot := *order
	s.relay.Emit(events.OrderEvent{
		EventID:   uuid.New().String(),
		Type:      eventType,
		Order:     &snapshot,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	})
}

func canAccessOrder(ident domain.Identity, order *domain.Order) bool {
	switch ident.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleSeller:
		return order.SellerID == ident.UserID
	case domain.RoleCustomer:
		return order.CustomerID == ident.UserID
	}
	return false
}
