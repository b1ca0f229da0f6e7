package domain

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSeller   Role = "seller"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleCustomer:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id" dynamodbav:"id"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"passwordHash"`
	Role         Role      `json:"role" dynamodbav:"role"`
	Name         string    `json:"name" dynamodbav:"name"`
	// SellerID is set on customer accounts only and pins the customer to
	// the seller that owns the relationship.
	SellerID  string    `json:"sellerId,omitempty" dynamodbav:"sellerId"`
	Phone     string    `json:"phone,omitempty" dynamodbav:"phone"`
	Address   string    `json:"address,omitempty" dynamodbav:"address"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Identity is the per-request caller resolved by the access guard.
type Identity struct {
	UserID string
	Role   Role
	// SellerID carries the customer's owning seller when Role is customer,
	// and equals UserID when Role is seller.
	SellerID string
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     Role   `json:"role" binding:"required"`
	Name     string `json:"name" binding:"required"`
	SellerID string `json:"sellerId"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}
