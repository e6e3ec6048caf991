// Package authhdl - các Fiber handler của domain auth.
package authhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authdto "vca_production/internal/api/auth/dto"
	authmodels "vca_production/internal/api/auth/models"
	authsvc "vca_production/internal/api/auth/service"
	basehdl "vca_production/internal/api/base/handler"
	"vca_production/internal/common"
)

// UserHandler xử lý các request liên quan đến người dùng
type UserHandler struct {
	*basehdl.BaseHandler[authmodels.User, authdto.UserCreateInput, authdto.UserUpdateInput]
	UserService *authsvc.UserService
}

// NewUserHandler tạo mới UserHandler
func NewUserHandler() (*UserHandler, error) {
	userService, err := authsvc.NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}

	hdl := &UserHandler{UserService: userService}
	hdl.BaseHandler = basehdl.NewBaseHandler[authmodels.User, authdto.UserCreateInput, authdto.UserUpdateInput](userService.BaseServiceMongoImpl)
	return hdl, nil
}

// HandleProfile trả về hồ sơ của người dùng đã xác thực.
// Auth middleware đã verify token và đặt user vào locals.
func (h *UserHandler) HandleProfile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		user, ok := c.Locals("user").(*authmodels.User)
		if !ok || user == nil {
			h.HandleResponse(c, nil, common.ErrNotAuthenticated)
			return nil
		}
		h.HandleResponse(c, user, nil)
		return nil
	})
}

// HandleBlockUser khóa một tài khoản theo email
func (h *UserHandler) HandleBlockUser(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.BlockUserInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		user, err := h.UserService.SetBlockState(c.Context(), input.Email, true, input.Note)
		h.HandleResponse(c, user, err)
		return nil
	})
}

// HandleUnBlockUser mở khóa một tài khoản theo email
func (h *UserHandler) HandleUnBlockUser(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.UnBlockUserInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		user, err := h.UserService.SetBlockState(c.Context(), input.Email, false, "")
		h.HandleResponse(c, user, err)
		return nil
	})
}
