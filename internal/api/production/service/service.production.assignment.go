package productionsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "vca_production/internal/api/base/service"
	models "vca_production/internal/api/production/models"
	"vca_production/internal/common"
	"vca_production/internal/global"
	"vca_production/internal/logger"
)

// AssignmentService là cấu trúc chứa các phương thức nghiệp vụ của Assignment
type AssignmentService struct {
	*basesvc.BaseServiceMongoImpl[models.Assignment]
	projects *ProjectService
}

// NewAssignmentService tạo mới AssignmentService
func NewAssignmentService(projects *ProjectService) (*AssignmentService, error) {
	assignmentCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ProductionAssignments)
	if !exist {
		return nil, fmt.Errorf("failed to get production assignments collection: %v", common.ErrNotFound)
	}

	return &AssignmentService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Assignment](assignmentCol),
		projects:             projects,
	}, nil
}

// Claim nhận một vai trò trong project cho người dùng hiện tại.
//
// Unique index (projectId, role) là trọng tài duy nhất khi nhiều người cùng
// claim: đúng một insert thành công, các insert còn lại nhận duplicate key
// và trả về ErrAlreadyClaimed. Pre-check phía trước chỉ là fast path, không
// phải cơ chế đảm bảo.
//
// Side effect khi thành công:
//   - Nếu truyền profileID và project chưa có contentId: sinh contentId đúng
//     một lần (conditional update trên contentId chưa tồn tại).
//   - VIDEOGRAPHER và EDITOR: chuyển stage theo cạnh tương ứng.
//     POSTING_MANAGER ở lại READY_TO_POST cho tới khi MarkAsPosted.
func (s *AssignmentService) Claim(ctx context.Context, projectID primitive.ObjectID, role string, userID primitive.ObjectID, profileID *primitive.ObjectID) (models.Assignment, error) {
	var zero models.Assignment

	claimStage, ok := ClaimableStage(role)
	if !ok {
		return zero, common.NewError(common.ErrCodeValidationInput,
			fmt.Sprintf("Vai trò không hợp lệ: %s", role), common.StatusBadRequest, nil)
	}

	project, err := s.projects.FindOneById(ctx, projectID)
	if err != nil {
		return zero, err
	}
	if project.IsDissolved {
		return zero, common.NewError(common.ErrCodeBusinessState, "Project đã bị giải tán", common.StatusConflict, nil)
	}
	if project.Status != models.ProjectStatusApproved {
		return zero, common.NewError(common.ErrCodeProductionStage,
			"Project chưa được duyệt, không thể nhận vai trò", common.StatusConflict, nil)
	}
	if project.Stage != claimStage {
		return zero, common.NewError(common.ErrCodeProductionStage,
			fmt.Sprintf("Vai trò %s chỉ nhận được ở giai đoạn %s", role, claimStage),
			common.StatusConflict, nil)
	}

	// Fast path: vai trò đã có người nhận thì từ chối ngay, khỏi tốn insert
	taken, err := s.BaseServiceMongoImpl.DocumentExists(ctx, bson.M{"projectId": projectID, "role": role})
	if err != nil {
		return zero, err
	}
	if taken {
		return zero, common.ErrAlreadyClaimed
	}

	assignment := models.Assignment{
		ProjectID:  projectID,
		Role:       role,
		UserID:     userID,
		AssignedBy: userID,
		AssignedAt: time.Now().UnixMilli(),
	}
	created, err := claimAssignment(ctx, s.BaseServiceMongoImpl.InsertOne, assignment)
	if err != nil {
		return zero, err
	}

	logger.GetAuditLogger().WithFields(logrus.Fields{
		"project_id": projectID.Hex(),
		"role":       role,
		"user_id":    userID.Hex(),
	}).Info("Claim vai trò thành công")

	if profileID != nil && !profileID.IsZero() {
		if err := s.ensureContentID(ctx, projectID, *profileID); err != nil {
			logger.GetErrorLogger().WithError(err).WithField("project_id", projectID.Hex()).
				Error("Không gán được contentId sau khi claim")
		}
	}

	// Chuyển stage theo cạnh của vai trò; claim vẫn tính là thành công nếu
	// transition thua một request song song (stage đã tiến rồi)
	if next, ok := NextStage(claimStage); ok && role != models.RolePostingManager {
		if _, err := s.projects.Transition(ctx, projectID, next); err != nil &&
			!errors.Is(err, common.ErrStageGuardViolation) {
			logger.GetErrorLogger().WithError(err).WithFields(logrus.Fields{
				"project_id": projectID.Hex(),
				"target":     next,
			}).Error("Không chuyển được stage sau khi claim")
		}
	}

	return created, nil
}

// assignmentInserter là thao tác insert-if-absent của assignment: ghi thành
// công nếu (projectId, role) chưa tồn tại, ngược lại trả về ErrMongoDuplicate
type assignmentInserter func(ctx context.Context, a models.Assignment) (models.Assignment, error)

// claimAssignment ghi assignment qua inserter và quy duplicate key về
// ErrAlreadyClaimed. Mọi lỗi ghi khác được trả nguyên vẹn - chỉ thua cuộc
// đua claim mới được coi là AlreadyClaimed.
func claimAssignment(ctx context.Context, insert assignmentInserter, a models.Assignment) (models.Assignment, error) {
	created, err := insert(ctx, a)
	if err != nil {
		if errors.Is(err, common.ErrMongoDuplicate) {
			// Thua cuộc đua claim: index (projectId, role) đã có người thắng
			return models.Assignment{}, common.ErrAlreadyClaimed
		}
		return models.Assignment{}, err
	}
	return created, nil
}

// ensureContentID sinh contentId cho project đúng một lần.
// Conditional update trên "contentId chưa tồn tại" đảm bảo idempotent: nếu
// một claim trước đó đã gán rồi thì update này không match và bị bỏ qua.
func (s *AssignmentService) ensureContentID(ctx context.Context, projectID primitive.ObjectID, profileID primitive.ObjectID) error {
	filter := bson.M{
		"_id":       projectID,
		"contentId": bson.M{"$exists": false},
	}
	update := &basesvc.UpdateData{Set: map[string]interface{}{
		"contentId": GenerateContentID(),
		"profileId": profileID,
	}}

	_, err := s.projects.FindOneAndUpdate(ctx, filter, update, nil)
	if errors.Is(err, common.ErrNotFound) {
		// contentId đã được gán từ trước
		return nil
	}
	return err
}

// GenerateContentID sinh mã nội dung duy nhất dạng CNT-XXXXXXXXXXXX
func GenerateContentID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "CNT-" + raw[:12]
}

// ListByProject liệt kê các assignment của một project
func (s *AssignmentService) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Assignment, error) {
	return s.BaseServiceMongoImpl.Find(ctx, bson.M{"projectId": projectID}, nil)
}

// ListByUser liệt kê các assignment của một người dùng
func (s *AssignmentService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Assignment, error) {
	return s.BaseServiceMongoImpl.Find(ctx, bson.M{"userId": userID}, nil)
}
