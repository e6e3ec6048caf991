// Package router đăng ký các route thuộc domain production: project,
// assignment, file, upload.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"vca_production/internal/api/middleware"
	productionhdl "vca_production/internal/api/production/handler"
	apirouter "vca_production/internal/api/router"
)

// Register đăng ký tất cả route production lên v1
func Register(v1 fiber.Router, r *apirouter.Router) error {
	if err := registerProjectRoutes(v1, r); err != nil {
		return err
	}
	if err := registerAssignmentRoutes(v1, r); err != nil {
		return err
	}
	if err := registerFileRoutes(v1, r); err != nil {
		return err
	}
	return nil
}

func registerProjectRoutes(router fiber.Router, r *apirouter.Router) error {
	projectHandler, err := productionhdl.NewProjectHandler()
	if err != nil {
		return fmt.Errorf("failed to create project handler: %w", err)
	}

	auth := []fiber.Handler{middleware.AuthMiddleware()}

	// Submission & review
	apirouter.RegisterRouteWithMiddleware(router, "/project", "POST", "/submit", auth, projectHandler.HandleSubmit)
	apirouter.RegisterRouteWithMiddleware(router, "/project", "POST", "/:id/approve", auth, projectHandler.HandleApprove)
	apirouter.RegisterRouteWithMiddleware(router, "/project", "POST", "/:id/reject", auth, projectHandler.HandleReject)
	apirouter.RegisterRouteWithMiddleware(router, "/project", "POST", "/:id/disapprove", auth, projectHandler.HandleDisapprove)
	apirouter.RegisterRouteWithMiddleware(router, "/project", "POST", "/:id/dissolve", auth, projectHandler.HandleDissolve)

	// Pipeline
	apirouter.RegisterRouteWithMiddleware(router, "/project", "POST", "/:id/transition", auth, projectHandler.HandleTransition)
	apirouter.RegisterRouteWithMiddleware(router, "/project", "POST", "/:id/claim", auth, projectHandler.HandleClaim)
	apirouter.RegisterRouteWithMiddleware(router, "/project", "GET", "/claim-queue", auth, projectHandler.HandleClaimQueue)

	// Publish loop
	apirouter.RegisterRouteWithMiddleware(router, "/project", "PUT", "/:id/posting-details", auth, projectHandler.HandleSetPostingDetails)
	apirouter.RegisterRouteWithMiddleware(router, "/project", "POST", "/:id/mark-as-posted", auth, projectHandler.HandleMarkAsPosted)
	apirouter.RegisterRouteWithMiddleware(router, "/project", "GET", "/:id/post-history", auth, projectHandler.HandlePostHistory)
	apirouter.RegisterRouteWithMiddleware(router, "/project", "GET", "/:id/post-counts", auth, projectHandler.HandlePostCounts)

	// CRUD tra cứu; project không có delete (dissolve là soft delete)
	crudConfig := apirouter.ReadOnlyConfig
	crudConfig.UpdById = true
	r.RegisterCRUDRoutes(router, "/project", projectHandler, crudConfig, auth)
	return nil
}

func registerAssignmentRoutes(router fiber.Router, r *apirouter.Router) error {
	assignmentHandler, err := productionhdl.NewAssignmentHandler()
	if err != nil {
		return fmt.Errorf("failed to create assignment handler: %w", err)
	}

	auth := []fiber.Handler{middleware.AuthMiddleware()}

	apirouter.RegisterRouteWithMiddleware(router, "/assignment", "GET", "/by-project/:id", auth, assignmentHandler.HandleListByProject)
	apirouter.RegisterRouteWithMiddleware(router, "/assignment", "GET", "/mine", auth, assignmentHandler.HandleListMine)

	// Assignment là immutable: chỉ đọc + insert trực tiếp (đường admin)
	crudConfig := apirouter.ReadOnlyConfig
	crudConfig.InsOne = true
	r.RegisterCRUDRoutes(router, "/assignment", assignmentHandler, crudConfig, auth)
	return nil
}

func registerFileRoutes(router fiber.Router, r *apirouter.Router) error {
	fileHandler, err := productionhdl.NewFileHandler()
	if err != nil {
		return fmt.Errorf("failed to create file handler: %w", err)
	}

	auth := []fiber.Handler{middleware.AuthMiddleware()}

	apirouter.RegisterRouteWithMiddleware(router, "/file", "POST", "/upload/:id", auth, fileHandler.HandleUploadBatch)
	apirouter.RegisterRouteWithMiddleware(router, "/file", "GET", "/by-project/:id", auth, fileHandler.HandleListByProject)
	apirouter.RegisterRouteWithMiddleware(router, "/file", "POST", "/:id/review", auth, fileHandler.HandleReview)
	apirouter.RegisterRouteWithMiddleware(router, "/file", "DELETE", "/:id/soft", auth, fileHandler.HandleSoftDelete)
	apirouter.RegisterRouteWithMiddleware(router, "/file", "POST", "/:id/restore", auth, fileHandler.HandleRestore)
	apirouter.RegisterRouteWithMiddleware(router, "/file", "DELETE", "/:id/hard", auth, fileHandler.HandleHardDelete)

	r.RegisterCRUDRoutes(router, "/file", fileHandler, apirouter.ReadOnlyConfig, auth)
	return nil
}
