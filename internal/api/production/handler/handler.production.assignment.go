package productionhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "vca_production/internal/api/base/handler"
	productiondto "vca_production/internal/api/production/dto"
	productionmodels "vca_production/internal/api/production/models"
	productionsvc "vca_production/internal/api/production/service"
)

// AssignmentHandler xử lý các request tra cứu Assignment.
// Assignment chỉ được tạo qua claim (ProjectHandler.HandleClaim) hoặc gán
// trực tiếp; không có endpoint update vì assignment là immutable.
type AssignmentHandler struct {
	*basehdl.BaseHandler[productionmodels.Assignment, productiondto.AssignmentCreateInput, productiondto.AssignmentUpdateInput]
	AssignmentService *productionsvc.AssignmentService
}

// NewAssignmentHandler tạo mới AssignmentHandler
func NewAssignmentHandler() (*AssignmentHandler, error) {
	projectService, err := productionsvc.NewProjectService()
	if err != nil {
		return nil, fmt.Errorf("failed to create project service: %v", err)
	}
	assignmentService, err := productionsvc.NewAssignmentService(projectService)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment service: %v", err)
	}

	hdl := &AssignmentHandler{AssignmentService: assignmentService}
	hdl.BaseHandler = basehdl.NewBaseHandler[productionmodels.Assignment, productiondto.AssignmentCreateInput, productiondto.AssignmentUpdateInput](assignmentService.BaseServiceMongoImpl)
	return hdl, nil
}

// HandleListByProject liệt kê các assignment của một project
func (h *AssignmentHandler) HandleListByProject(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectID, err := parseProjectID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		ctx, _, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		assignments, err := h.AssignmentService.ListByProject(ctx, projectID)
		h.HandleResponse(c, assignments, err)
		return nil
	})
}

// HandleListMine liệt kê các assignment của người dùng hiện tại
func (h *AssignmentHandler) HandleListMine(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		ctx, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		assignments, err := h.AssignmentService.ListByUser(ctx, userID)
		h.HandleResponse(c, assignments, err)
		return nil
	})
}
