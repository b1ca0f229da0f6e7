package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
	"github.com/gaelxxl34/alsabil-service/internal/service"
)

type UserHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

func NewUserHandler(users *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

func (h *UserHandler) Create(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid user payload: "+err.Error())
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), ident, req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, user)
}

func (h *UserHandler) List(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	users, err := h.users.ListUsers(c.Request.Context(), ident)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, users)
}

func (h *UserHandler) Get(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), ident, c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, user)
}

// Delete removes a user and cascades to their orders.
func (h *UserHandler) Delete(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), ident, c.Param("id")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, nil)
}
