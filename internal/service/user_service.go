package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
	"github.com/gaelxxl34/alsabil-service/internal/repository"
)

type UserService struct {
	users  UserStore
	orders *OrderService
	logger *zap.Logger
}

func NewUserService(users UserStore, orders *OrderService, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		orders: orders,
		logger: logger,
	}
}

// CreateUser provisions an account. Admins create any role; a seller may
// create customer accounts pinned to themselves.
func (s *UserService) CreateUser(ctx context.Context, ident domain.Identity, req domain.CreateUserRequest) (*domain.User, error) {
	if !req.Role.Valid() {
		return nil, domain.ValidationError("unknown role")
	}

	switch ident.Role {
	case domain.RoleAdmin:
	case domain.RoleSeller:
		if req.Role != domain.RoleCustomer {
			return nil, domain.ForbiddenError("sellers may only create customer accounts")
		}
		if req.SellerID != "" && req.SellerID != ident.UserID {
			return nil, domain.ForbiddenError("sellers may only create their own customers")
		}
		req.SellerID = ident.UserID
	default:
		return nil, domain.ErrForbidden
	}

	if req.Role == domain.RoleCustomer && req.SellerID == "" {
		return nil, domain.ValidationError("customer accounts require a sellerId")
	}
	if req.Role != domain.RoleCustomer {
		req.SellerID = ""
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, domain.ValidationError("email already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Name:         req.Name,
		SellerID:     req.SellerID,
		Phone:        req.Phone,
		Address:      req.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("failed to save user", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))

	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, ident domain.Identity, id string) (*domain.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	switch {
	case ident.Role == domain.RoleAdmin:
	case ident.UserID == user.ID:
	case ident.Role == domain.RoleSeller && user.SellerID == ident.UserID:
	default:
		return nil, domain.ForbiddenError("account belongs to another seller")
	}

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, ident domain.Identity) ([]domain.User, error) {
	switch ident.Role {
	case domain.RoleAdmin:
		return s.users.ListAll(ctx)
	case domain.RoleSeller:
		return s.users.ListCustomersOfSeller(ctx, ident.UserID)
	}
	return nil, domain.ErrForbidden
}

// DeleteUser removes an account and cascades to its orders. Admin only.
func (s *UserService) DeleteUser(ctx context.Context, ident domain.Identity, id string) error {
	if ident.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	if err := s.orders.DeleteOrdersOfUser(ctx, user); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted",
		zap.String("user_id", id),
		zap.String("role", string(user.Role)),
		zap.String("by", ident.UserID))

	return nil
}
