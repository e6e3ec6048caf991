// Package productionsvc - nghiệp vụ pipeline sản xuất (project, assignment, file).
package productionsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "vca_production/internal/api/base/models"
	basesvc "vca_production/internal/api/base/service"
	models "vca_production/internal/api/production/models"
	productiondto "vca_production/internal/api/production/dto"
	"vca_production/internal/common"
	"vca_production/internal/global"
	"vca_production/internal/logger"
)

// stageTransitions là bảng chuyển stage hợp lệ. Stage chỉ tiến về phía trước;
// mọi cạnh không có trong bảng đều bị từ chối. READY_TO_POST -> POSTED không
// nằm trong bảng vì chỉ đi qua MarkAsPosted.
var stageTransitions = map[string]string{
	models.StagePlanning:     models.StageShooting,
	models.StageShooting:     models.StageReadyForEdit,
	models.StageReadyForEdit: models.StageEditing,
	models.StageEditing:      models.StageReadyToPost,
}

// claimableStages ánh xạ vai trò -> stage mà vai trò đó được phép claim
var claimableStages = map[string]string{
	models.RoleVideographer:   models.StagePlanning,
	models.RoleEditor:         models.StageReadyForEdit,
	models.RolePostingManager: models.StageReadyToPost,
}

// ProjectService là cấu trúc chứa các phương thức nghiệp vụ của Project
type ProjectService struct {
	*basesvc.BaseServiceMongoImpl[models.Project]
	assignments *basesvc.BaseServiceMongoImpl[models.Assignment] // Đọc assignment khi kiểm tra guard
	files       *basesvc.BaseServiceMongoImpl[models.ProductionFile]
}

// NewProjectService tạo mới ProjectService
func NewProjectService() (*ProjectService, error) {
	projectCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ProductionProjects)
	if !exist {
		return nil, fmt.Errorf("failed to get production projects collection: %v", common.ErrNotFound)
	}
	assignmentCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ProductionAssignments)
	if !exist {
		return nil, fmt.Errorf("failed to get production assignments collection: %v", common.ErrNotFound)
	}
	fileCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ProductionFiles)
	if !exist {
		return nil, fmt.Errorf("failed to get production files collection: %v", common.ErrNotFound)
	}

	return &ProjectService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Project](projectCol),
		assignments:          basesvc.NewBaseServiceMongo[models.Assignment](assignmentCol),
		files:                basesvc.NewBaseServiceMongo[models.ProductionFile](fileCol),
	}, nil
}

// ===== SUBMISSION & REVIEW =====

// Submit tạo project mới từ kịch bản người dùng gửi lên.
// Project mới luôn ở status PENDING, stage PLANNING.
func (s *ProjectService) Submit(ctx context.Context, input *productiondto.ProjectCreateInput, createdBy primitive.ObjectID) (models.Project, error) {
	project := models.Project{
		Title:       input.Title,
		Script:      input.Script,
		Description: input.Description,
		Priority:    input.Priority,
		Deadline:    input.Deadline,
		Status:      models.ProjectStatusPending,
		Stage:       models.StagePlanning,
		CreatedBy:   createdBy,
	}
	return s.BaseServiceMongoImpl.InsertOne(ctx, project)
}

// Approve duyệt một kịch bản, chuyển PENDING -> APPROVED.
// Chỉ project đã APPROVED mới vào được pipeline (claim, chuyển stage).
func (s *ProjectService) Approve(ctx context.Context, projectID primitive.ObjectID) (models.Project, error) {
	filter := bson.M{"_id": projectID, "status": models.ProjectStatusPending, "isDissolved": bson.M{"$ne": true}}
	update := &basesvc.UpdateData{Set: map[string]interface{}{
		"status":       models.ProjectStatusApproved,
		"rejectReason": "",
	}}
	project, err := s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if errors.Is(err, common.ErrNotFound) {
		return s.reviewStateError(ctx, projectID, "chỉ duyệt được kịch bản đang chờ duyệt")
	}
	return project, err
}

// Reject từ chối một kịch bản đang chờ duyệt, kèm lý do
func (s *ProjectService) Reject(ctx context.Context, projectID primitive.ObjectID, reason string) (models.Project, error) {
	filter := bson.M{"_id": projectID, "status": models.ProjectStatusPending, "isDissolved": bson.M{"$ne": true}}
	update := &basesvc.UpdateData{Set: map[string]interface{}{
		"status":       models.ProjectStatusRejected,
		"rejectReason": reason,
	}}
	project, err := s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if errors.Is(err, common.ErrNotFound) {
		return s.reviewStateError(ctx, projectID, "chỉ từ chối được kịch bản đang chờ duyệt")
	}
	return project, err
}

// Disapprove rút duyệt một project đã APPROVED: status về PENDING, stage về
// PLANNING, disapprovalCount tăng 1. Không xóa assignment hay file nào.
func (s *ProjectService) Disapprove(ctx context.Context, projectID primitive.ObjectID, reason string) (models.Project, error) {
	filter := bson.M{"_id": projectID, "status": models.ProjectStatusApproved, "isDissolved": bson.M{"$ne": true}}
	now := time.Now().UnixMilli()
	// Dùng collection trực tiếp vì cần $inc (UpdateData không hỗ trợ)
	update := bson.M{
		"$set": bson.M{
			"status":            models.ProjectStatusPending,
			"stage":             models.StagePlanning,
			"disapprovalReason": reason,
			"disapprovedAt":     now,
			"updatedAt":         now,
		},
		"$inc": bson.M{"disapprovalCount": 1},
	}

	var project models.Project
	err := s.Collection().FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&project)
	if err != nil {
		converted := common.ConvertMongoError(err)
		if errors.Is(converted, common.ErrNotFound) {
			return s.reviewStateError(ctx, projectID, "chỉ rút duyệt được project đang ở trạng thái APPROVED")
		}
		return project, converted
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"project_id":        projectID.Hex(),
		"disapproval_count": project.DisapprovalCount,
	}).Info("Project bị rút duyệt, quay về PLANNING")
	return project, nil
}

// Dissolve giải tán project (soft delete). Project không bao giờ bị xóa cứng.
func (s *ProjectService) Dissolve(ctx context.Context, projectID primitive.ObjectID) (models.Project, error) {
	update := &basesvc.UpdateData{Set: map[string]interface{}{"isDissolved": true}}
	return s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, bson.M{"_id": projectID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
}

// reviewStateError phân biệt "không tồn tại" với "sai trạng thái" sau khi
// một conditional update không match document nào
func (s *ProjectService) reviewStateError(ctx context.Context, projectID primitive.ObjectID, msg string) (models.Project, error) {
	var zero models.Project
	exists, err := s.BaseServiceMongoImpl.DocumentExists(ctx, bson.M{"_id": projectID})
	if err != nil {
		return zero, err
	}
	if !exists {
		return zero, common.ErrNotFound
	}
	return zero, common.NewError(common.ErrCodeBusinessState, msg, common.StatusConflict, nil)
}

// ===== STAGE TRANSITION =====

// Transition chuyển project sang stage kế tiếp sau khi kiểm tra guard.
// Cạnh không hợp lệ hoặc guard không thỏa -> ErrStageGuardViolation.
// Filter conditional trên stage hiện tại đảm bảo hai request đua nhau chỉ
// một bên chuyển được.
func (s *ProjectService) Transition(ctx context.Context, projectID primitive.ObjectID, target string) (models.Project, error) {
	var zero models.Project

	project, err := s.BaseServiceMongoImpl.FindOneById(ctx, projectID)
	if err != nil {
		return zero, err
	}

	if project.IsDissolved {
		return zero, common.NewError(common.ErrCodeBusinessState, "Project đã bị giải tán", common.StatusConflict, nil)
	}
	if project.Status != models.ProjectStatusApproved {
		return zero, common.NewError(common.ErrCodeProductionStage,
			"Project chưa được duyệt, không thể chuyển stage", common.StatusConflict, nil)
	}

	if target == models.StagePosted {
		// POSTED chỉ đi qua MarkAsPosted với một posting record hợp lệ
		return zero, common.ErrStageGuardViolation
	}
	if next, ok := stageTransitions[project.Stage]; !ok || next != target {
		return zero, common.NewError(common.ErrCodeProductionStage,
			fmt.Sprintf("Không thể chuyển stage từ %s sang %s", project.Stage, target),
			common.StatusConflict, nil)
	}

	if err := s.checkTransitionGuard(ctx, &project, target); err != nil {
		return zero, err
	}

	filter := bson.M{"_id": projectID, "stage": project.Stage}
	update := &basesvc.UpdateData{Set: map[string]interface{}{"stage": target}}
	updated, err := s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if errors.Is(err, common.ErrNotFound) {
		// Stage đã thay đổi bởi request khác giữa lúc đọc và lúc ghi
		return zero, common.ErrStageGuardViolation
	}
	if err != nil {
		return zero, err
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"project_id": projectID.Hex(),
		"from":       project.Stage,
		"to":         target,
	}).Info("Chuyển stage project")
	return updated, nil
}

// checkTransitionGuard kiểm tra điều kiện tiền đề của từng cạnh chuyển stage
func (s *ProjectService) checkTransitionGuard(ctx context.Context, project *models.Project, target string) error {
	switch target {
	case models.StageShooting:
		return s.requireAssignment(ctx, project.ID, models.RoleVideographer)

	case models.StageReadyForEdit:
		// Phải có ít nhất một raw footage chưa bị xóa
		count, err := s.files.CountDocuments(ctx, bson.M{
			"projectId": project.ID,
			"type":      models.FileTypeRaw,
			"isDeleted": false,
		})
		if err != nil {
			return err
		}
		if count == 0 {
			return common.ErrInsufficientFiles
		}
		return nil

	case models.StageEditing, models.StageReadyToPost:
		return s.requireAssignment(ctx, project.ID, models.RoleEditor)
	}
	return nil
}

// requireAssignment kiểm tra project đã có người nhận vai trò tương ứng chưa
func (s *ProjectService) requireAssignment(ctx context.Context, projectID primitive.ObjectID, role string) error {
	exists, err := s.assignments.DocumentExists(ctx, bson.M{"projectId": projectID, "role": role})
	if err != nil {
		return err
	}
	if !exists {
		return common.NewError(common.ErrCodeProductionStage,
			fmt.Sprintf("Project chưa có người nhận vai trò %s", role), common.StatusConflict, nil)
	}
	return nil
}

// ===== PUBLISH LOOP =====

// SetPostingDetails gán thông tin đăng bài cho nền tảng hiện tại.
// Platform và caption là bắt buộc; YOUTUBE và TIKTOK bắt buộc thêm heading.
func (s *ProjectService) SetPostingDetails(ctx context.Context, projectID primitive.ObjectID, input *productiondto.PostingDetailsInput) (models.Project, error) {
	var zero models.Project

	if err := ValidatePostingDetails(input); err != nil {
		return zero, err
	}

	filter := bson.M{"_id": projectID, "stage": models.StageReadyToPost}
	update := &basesvc.UpdateData{Set: map[string]interface{}{
		"posting": models.PostingDetails{
			Platform:      input.Platform,
			Caption:       input.Caption,
			Heading:       input.Heading,
			Hashtags:      input.Hashtags,
			ScheduledTime: input.ScheduledTime,
		},
	}}
	project, err := s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if errors.Is(err, common.ErrNotFound) {
		return s.postingStateError(ctx, projectID)
	}
	return project, err
}

// ValidatePostingDetails kiểm tra ràng buộc nghiệp vụ của thông tin đăng bài.
// Validator struct tag đã đảm bảo platform thuộc enum và caption không rỗng.
func ValidatePostingDetails(input *productiondto.PostingDetailsInput) error {
	if input.Platform == "" || input.Caption == "" {
		return common.NewError(common.ErrCodeProductionPosting,
			"Platform và caption là bắt buộc", common.StatusBadRequest, nil)
	}
	switch input.Platform {
	case models.PlatformYoutube, models.PlatformTiktok:
		if input.Heading == "" {
			return common.NewError(common.ErrCodeProductionPosting,
				fmt.Sprintf("Nền tảng %s bắt buộc phải có heading", input.Platform),
				common.StatusBadRequest, nil)
		}
	}
	return nil
}

// MarkAsPosted ghi nhận đã đăng bài lên nền tảng hiện tại.
//   - keepInQueue = true:  ghi {url, platform, postedAt} vào postHistory, xóa
//     posting details, project ở lại READY_TO_POST để đăng nền tảng tiếp theo.
//   - keepInQueue = false: chuyển POSTED (trạng thái cuối), lưu postedUrl và
//     completedAt. Gọi lại trên project đã POSTED -> ErrStageGuardViolation.
func (s *ProjectService) MarkAsPosted(ctx context.Context, projectID primitive.ObjectID, url string, keepInQueue bool) (models.Project, error) {
	var zero models.Project

	project, err := s.BaseServiceMongoImpl.FindOneById(ctx, projectID)
	if err != nil {
		return zero, err
	}
	if project.Stage == models.StagePosted {
		return zero, common.ErrStageGuardViolation
	}
	if project.Stage != models.StageReadyToPost {
		return zero, common.NewError(common.ErrCodeProductionStage,
			"Project chưa ở giai đoạn sẵn sàng đăng bài", common.StatusConflict, nil)
	}
	if project.Posting == nil || project.Posting.Platform == "" {
		return zero, common.NewError(common.ErrCodeProductionPosting,
			"Chưa có thông tin đăng bài cho nền tảng hiện tại", common.StatusPreconditionFailed, nil)
	}

	record := models.PostRecord{
		URL:      url,
		Platform: project.Posting.Platform,
		PostedAt: time.Now().UnixMilli(),
	}
	update := buildMarkAsPostedUpdate(record, keepInQueue)

	filter := bson.M{"_id": projectID, "stage": models.StageReadyToPost}
	updated, err := s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if errors.Is(err, common.ErrNotFound) {
		return zero, common.ErrStageGuardViolation
	}
	return updated, err
}

// buildMarkAsPostedUpdate dựng update document cho MarkAsPosted.
// Mọi nhánh đều ghi record vào postHistory và xóa posting details của nền tảng
// vừa đăng; chỉ khi không giữ lại trong queue mới chốt stage POSTED kèm
// postedUrl và completedAt.
func buildMarkAsPostedUpdate(record models.PostRecord, keepInQueue bool) *basesvc.UpdateData {
	update := &basesvc.UpdateData{
		Push:  map[string]interface{}{"postHistory": record},
		Unset: map[string]interface{}{"posting": ""},
	}
	if !keepInQueue {
		update.Set = map[string]interface{}{
			"stage":       models.StagePosted,
			"postedUrl":   record.URL,
			"completedAt": record.PostedAt,
		}
	}
	return update
}

// postingStateError phân biệt project không tồn tại với project sai stage
func (s *ProjectService) postingStateError(ctx context.Context, projectID primitive.ObjectID) (models.Project, error) {
	var zero models.Project
	exists, err := s.BaseServiceMongoImpl.DocumentExists(ctx, bson.M{"_id": projectID})
	if err != nil {
		return zero, err
	}
	if !exists {
		return zero, common.ErrNotFound
	}
	return zero, common.NewError(common.ErrCodeProductionStage,
		"Project chưa ở giai đoạn sẵn sàng đăng bài", common.StatusConflict, nil)
}

// PostHistory trả về lịch sử đăng bài của project
func (s *ProjectService) PostHistory(ctx context.Context, projectID primitive.ObjectID) ([]models.PostRecord, error) {
	project, err := s.BaseServiceMongoImpl.FindOneById(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return project.PostHistory, nil
}

// PostCountsByPlatform đếm số lần đã đăng theo từng nền tảng
func (s *ProjectService) PostCountsByPlatform(ctx context.Context, projectID primitive.ObjectID) (map[string]int, error) {
	history, err := s.PostHistory(ctx, projectID)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, record := range history {
		counts[record.Platform]++
	}
	return counts, nil
}

// ===== CLAIM QUEUE =====

// ListClaimQueue liệt kê các project đang chờ người nhận cho một vai trò.
// excludeIDs là danh sách project người dùng muốn ẩn trong phiên hiện tại
// (ví dụ: các project vừa claim hụt) - truyền tường minh, server không giữ
// trạng thái phiên.
func (s *ProjectService) ListClaimQueue(ctx context.Context, role string, excludeIDs []primitive.ObjectID, page, limit int64) (*basemodels.PaginateResult[models.Project], error) {
	stage, ok := claimableStages[role]
	if !ok {
		return nil, common.NewError(common.ErrCodeValidationInput,
			fmt.Sprintf("Vai trò không hợp lệ: %s", role), common.StatusBadRequest, nil)
	}

	filter := bson.M{
		"status":      models.ProjectStatusApproved,
		"stage":       stage,
		"isDissolved": bson.M{"$ne": true},
	}

	notIn := append([]primitive.ObjectID{}, excludeIDs...)
	if role == models.RolePostingManager {
		// Claim của POSTING_MANAGER không chuyển stage, nên loại các project
		// đã có người nhận vai trò này ra khỏi queue
		claimed, err := s.assignments.Distinct(ctx, "projectId", bson.M{"role": models.RolePostingManager})
		if err != nil {
			return nil, err
		}
		for _, v := range claimed {
			if id, ok := v.(primitive.ObjectID); ok {
				notIn = append(notIn, id)
			}
		}
	}
	if len(notIn) > 0 {
		filter["_id"] = bson.M{"$nin": notIn}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: -1},
		{Key: "deadline", Value: 1},
		{Key: "createdAt", Value: 1},
	})
	return s.BaseServiceMongoImpl.FindWithPagination(ctx, filter, page, limit, opts)
}

// ClaimableStage trả về stage mà một vai trò được phép claim
func ClaimableStage(role string) (string, bool) {
	stage, ok := claimableStages[role]
	return stage, ok
}

// NextStage trả về stage kế tiếp trong bảng transition
func NextStage(current string) (string, bool) {
	next, ok := stageTransitions[current]
	return next, ok
}

// PrevStage trả về stage nguồn dẫn tới một stage đích. Bảng transition
// tuyến tính nên mỗi đích có nhiều nhất một nguồn.
func PrevStage(target string) (string, bool) {
	for from, to := range stageTransitions {
		if to == target {
			return from, true
		}
	}
	return "", false
}
