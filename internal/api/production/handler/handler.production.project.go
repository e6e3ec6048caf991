// Package productionhdl - các Fiber handler của domain production.
package productionhdl

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authsvc "vca_production/internal/api/auth/service"
	basehdl "vca_production/internal/api/base/handler"
	productiondto "vca_production/internal/api/production/dto"
	productionmodels "vca_production/internal/api/production/models"
	productionsvc "vca_production/internal/api/production/service"
	"vca_production/internal/common"
	"vca_production/internal/logger"
)

// ProjectHandler xử lý các request liên quan đến Project
type ProjectHandler struct {
	*basehdl.BaseHandler[productionmodels.Project, productiondto.ProjectCreateInput, productiondto.ProjectUpdateInput]
	ProjectService    *productionsvc.ProjectService
	AssignmentService *productionsvc.AssignmentService
}

// NewProjectHandler tạo mới ProjectHandler
func NewProjectHandler() (*ProjectHandler, error) {
	projectService, err := productionsvc.NewProjectService()
	if err != nil {
		return nil, fmt.Errorf("failed to create project service: %v", err)
	}
	assignmentService, err := productionsvc.NewAssignmentService(projectService)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment service: %v", err)
	}

	hdl := &ProjectHandler{
		ProjectService:    projectService,
		AssignmentService: assignmentService,
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[productionmodels.Project, productiondto.ProjectCreateInput, productiondto.ProjectUpdateInput](projectService.BaseServiceMongoImpl)
	return hdl, nil
}

// currentUserID lấy ObjectID của người dùng đã xác thực từ Fiber locals
func currentUserID(c fiber.Ctx) (primitive.ObjectID, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok || raw == "" {
		return primitive.NilObjectID, common.ErrNotAuthenticated
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, common.ErrNotAuthenticated
	}
	return id, nil
}

// requestContext trả về context của request kèm userID cho audit
func requestContext(c fiber.Ctx) (ctx context.Context, userID primitive.ObjectID, err error) {
	userID, err = currentUserID(c)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	return authsvc.SetUserIDToContext(c.Context(), userID), userID, nil
}

// parseProjectID đọc và validate param :id
func parseProjectID(c fiber.Ctx) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat,
			"ID không đúng định dạng ObjectID", common.StatusBadRequest, nil)
	}
	return id, nil
}

// HandleSubmit nhận kịch bản mới từ người dùng, tạo project ở trạng thái PENDING
func (h *ProjectHandler) HandleSubmit(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input productiondto.ProjectCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest, err))
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		ctx, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		project, err := h.ProjectService.Submit(ctx, &input, userID)
		h.HandleResponse(c, project, err)
		return nil
	})
}

// HandleApprove duyệt kịch bản PENDING -> APPROVED
func (h *ProjectHandler) HandleApprove(c fiber.Ctx) error {
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

		project, err := h.ProjectService.Approve(ctx, projectID)
		h.HandleResponse(c, project, err)
		return nil
	})
}

// HandleReject từ chối kịch bản PENDING -> REJECTED kèm lý do
func (h *ProjectHandler) HandleReject(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectID, err := parseProjectID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input productiondto.ProjectRejectInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		ctx, _, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		project, err := h.ProjectService.Reject(ctx, projectID, input.Reason)
		h.HandleResponse(c, project, err)
		return nil
	})
}

// HandleDisapprove rút duyệt project APPROVED: quay về PENDING/PLANNING,
// tăng disapprovalCount
func (h *ProjectHandler) HandleDisapprove(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectID, err := parseProjectID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input productiondto.ProjectDisapproveInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		ctx, _, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		project, err := h.ProjectService.Disapprove(ctx, projectID, input.Reason)
		h.HandleResponse(c, project, err)
		return nil
	})
}

// HandleDissolve giải tán project (soft delete)
func (h *ProjectHandler) HandleDissolve(c fiber.Ctx) error {
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

		project, err := h.ProjectService.Dissolve(ctx, projectID)
		h.HandleResponse(c, project, err)
		return nil
	})
}

// HandleTransition chuyển stage project theo bảng transition
func (h *ProjectHandler) HandleTransition(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectID, err := parseProjectID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input productiondto.TransitionInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		ctx, _, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		project, err := h.ProjectService.Transition(ctx, projectID, input.Target)
		if err == nil {
			// Bảng transition tuyến tính nên stage nguồn suy ra được từ đích
			fromStage, _ := productionsvc.PrevStage(project.Stage)
			logger.LogStageTransition(projectID.Hex(), fromStage, project.Stage, c, nil)
		}
		h.HandleResponse(c, project, err)
		return nil
	})
}

// HandleClaim nhận một vai trò trong project cho người dùng hiện tại
func (h *ProjectHandler) HandleClaim(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectID, err := parseProjectID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input productiondto.ClaimInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		ctx, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var profileID *primitive.ObjectID
		if input.ProfileID != "" {
			id, err := primitive.ObjectIDFromHex(input.ProfileID)
			if err != nil {
				h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat,
					"profileId không đúng định dạng ObjectID", common.StatusBadRequest, nil))
				return nil
			}
			profileID = &id
		}

		assignment, err := h.AssignmentService.Claim(ctx, projectID, input.Role, userID, profileID)
		if err == nil {
			logger.LogClaim(projectID.Hex(), input.Role, c, nil)
		}
		h.HandleResponse(c, assignment, err)
		return nil
	})
}

// HandleClaimQueue liệt kê project đang chờ người nhận cho một vai trò.
// Query: role (bắt buộc), exclude (danh sách ID cách nhau dấu phẩy - các
// project phiên hiện tại muốn ẩn), page, limit.
func (h *ProjectHandler) HandleClaimQueue(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		role := c.Query("role")
		if role == "" {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput,
				"Thiếu query parameter role", common.StatusBadRequest, nil))
			return nil
		}

		var excludeIDs []primitive.ObjectID
		if raw := c.Query("exclude"); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				id, err := primitive.ObjectIDFromHex(part)
				if err != nil {
					h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat,
						fmt.Sprintf("exclude chứa ID không hợp lệ: %s", part), common.StatusBadRequest, nil))
					return nil
				}
				excludeIDs = append(excludeIDs, id)
			}
		}

		ctx, _, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		page, limit := h.ParsePagination(c)
		result, err := h.ProjectService.ListClaimQueue(ctx, role, excludeIDs, page, limit)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleSetPostingDetails gán thông tin đăng bài cho nền tảng hiện tại
func (h *ProjectHandler) HandleSetPostingDetails(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectID, err := parseProjectID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input productiondto.PostingDetailsInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		ctx, _, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		project, err := h.ProjectService.SetPostingDetails(ctx, projectID, &input)
		h.HandleResponse(c, project, err)
		return nil
	})
}

// HandleMarkAsPosted xác nhận đã đăng bài lên nền tảng hiện tại
func (h *ProjectHandler) HandleMarkAsPosted(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectID, err := parseProjectID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input productiondto.MarkAsPostedInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		ctx, _, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		project, err := h.ProjectService.MarkAsPosted(ctx, projectID, input.URL, input.KeepInQueue)
		h.HandleResponse(c, project, err)
		return nil
	})
}

// HandlePostHistory trả về lịch sử đăng bài của project
func (h *ProjectHandler) HandlePostHistory(c fiber.Ctx) error {
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

		history, err := h.ProjectService.PostHistory(ctx, projectID)
		h.HandleResponse(c, history, err)
		return nil
	})
}

// HandlePostCounts trả về số lần đã đăng theo từng nền tảng
func (h *ProjectHandler) HandlePostCounts(c fiber.Ctx) error {
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

		counts, err := h.ProjectService.PostCountsByPlatform(ctx, projectID)
		h.HandleResponse(c, counts, err)
		return nil
	})
}
