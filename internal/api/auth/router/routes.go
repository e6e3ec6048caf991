// Package router đăng ký các route thuộc domain auth: system, user.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authhdl "vca_production/internal/api/auth/handler"
	basehdl "vca_production/internal/api/base/handler"
	"vca_production/internal/api/middleware"
	apirouter "vca_production/internal/api/router"
)

// Register đăng ký tất cả route auth (system, user) lên v1
func Register(v1 fiber.Router, r *apirouter.Router) error {
	if err := registerSystemRoutes(v1); err != nil {
		return err
	}
	if err := registerUserRoutes(v1, r); err != nil {
		return err
	}
	return nil
}

func registerSystemRoutes(router fiber.Router) error {
	systemHandler, err := basehdl.NewSystemHandler()
	if err != nil {
		return fmt.Errorf("failed to create system handler: %w", err)
	}
	// Health check không cần xác thực
	router.Get("/system/health", systemHandler.HandleHealth)
	return nil
}

func registerUserRoutes(router fiber.Router, r *apirouter.Router) error {
	userHandler, err := authhdl.NewUserHandler()
	if err != nil {
		return fmt.Errorf("failed to create user handler: %w", err)
	}

	auth := []fiber.Handler{middleware.AuthMiddleware()}

	// Profile của người dùng hiện tại (user đã được tạo/đồng bộ bởi middleware)
	apirouter.RegisterRouteWithMiddleware(router, "/auth", "GET", "/profile", auth, userHandler.HandleProfile)

	// Quản lý tài khoản
	apirouter.RegisterRouteWithMiddleware(router, "/admin/user", "POST", "/block", auth, userHandler.HandleBlockUser)
	apirouter.RegisterRouteWithMiddleware(router, "/admin/user", "POST", "/unblock", auth, userHandler.HandleUnBlockUser)

	// Tra cứu user
	crudConfig := apirouter.ReadOnlyConfig
	crudConfig.UpdById = true
	r.RegisterCRUDRoutes(router, "/user", userHandler, crudConfig, auth)
	return nil
}
