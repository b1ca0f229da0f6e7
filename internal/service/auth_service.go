package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
	"github.com/gaelxxl34/alsabil-service/internal/repository"
)

// UserStore is the persistence surface the auth and user services need.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListCustomersOfSeller(ctx context.Context, sellerID string) ([]domain.User, error)
	ListAll(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id string) error
}

type sessionClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies the session credential carried by the
// session cookie. The token is opaque to clients; the server re-resolves
// the user document on every request so a deleted account is locked out
// immediately rather than at token expiry.
type AuthService struct {
	users      UserStore
	signingKey []byte
	sessionTTL time.Duration
	logger     *zap.Logger
}

func NewAuthService(users UserStore, signingKey []byte, sessionTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		signingKey: signingKey,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Login checks the credentials and returns the user with a fresh session
// token. Bad email and bad password both come back as ErrUnauthorized so
// the response does not reveal which one was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", domain.ErrUnauthorized
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrUnauthorized
	}

	now := time.Now().UTC()
	claims := sessionClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))

	return user, token, nil
}

// VerifySession resolves a session token into the caller's identity. Any
// parse, signature or expiry failure maps to ErrUnauthorized.
func (s *AuthService) VerifySession(ctx context.Context, token string) (domain.Identity, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return domain.Identity{}, domain.ErrUnauthorized
	}

	user, err := s.users.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.Identity{}, domain.ErrUnauthorized
		}
		return domain.Identity{}, err
	}

	ident := domain.Identity{
		UserID: user.ID,
		Role:   user.Role,
	}
	switch user.Role {
	case domain.RoleSeller:
		ident.SellerID = user.ID
	case domain.RoleCustomer:
		ident.SellerID = user.SellerID
	}

	return ident, nil
}

// GetUser fetches the full user document behind an identity.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}
