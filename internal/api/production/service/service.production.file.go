package productionsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "vca_production/internal/api/base/service"
	models "vca_production/internal/api/production/models"
	"vca_production/internal/common"
	"vca_production/internal/global"
	"vca_production/internal/logger"
	"vca_production/internal/upload"
)

// FileService là cấu trúc chứa các phương thức nghiệp vụ của ProductionFile
type FileService struct {
	*basesvc.BaseServiceMongoImpl[models.ProductionFile]
	gateway upload.Gateway // Xóa object trên storage khi hard delete
}

// NewFileService tạo mới FileService
func NewFileService(gateway upload.Gateway) (*FileService, error) {
	fileCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ProductionFiles)
	if !exist {
		return nil, fmt.Errorf("failed to get production files collection: %v", common.ErrNotFound)
	}

	return &FileService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.ProductionFile](fileCol),
		gateway:              gateway,
	}, nil
}

// LinkUploaded tạo File record cho một object vừa upload thành công.
// Engine gọi hàm này trong callback per-file của batch.
func (s *FileService) LinkUploaded(ctx context.Context, projectID primitive.ObjectID, fileType string, obj *upload.ObjectInfo, name string, uploadedBy primitive.ObjectID, batchID string) (models.ProductionFile, error) {
	file := models.ProductionFile{
		ProjectID:      projectID,
		Type:           fileType,
		Name:           name,
		Size:           obj.Size,
		ContentType:    obj.ContentType,
		URL:            obj.URL,
		StoragePath:    obj.StoragePath,
		ApprovalStatus: models.FileApprovalPending,
		UploadedBy:     uploadedBy,
		BatchID:        batchID,
	}
	return s.BaseServiceMongoImpl.InsertOne(ctx, file)
}

// Review duyệt hoặc từ chối một file chưa bị xóa
func (s *FileService) Review(ctx context.Context, fileID primitive.ObjectID, status string, note string, reviewedBy primitive.ObjectID) (models.ProductionFile, error) {
	if status != models.FileApprovalApproved && status != models.FileApprovalRejected {
		return models.ProductionFile{}, common.NewError(common.ErrCodeValidationInput,
			fmt.Sprintf("Trạng thái duyệt không hợp lệ: %s", status), common.StatusBadRequest, nil)
	}

	filter := bson.M{"_id": fileID, "isDeleted": false}
	update := &basesvc.UpdateData{Set: map[string]interface{}{
		"approvalStatus": status,
		"reviewNote":     note,
		"reviewedBy":     reviewedBy,
		"reviewedAt":     time.Now().UnixMilli(),
	}}
	file, err := s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if errors.Is(err, common.ErrNotFound) {
		return file, s.deletedOrMissing(ctx, fileID)
	}
	return file, err
}

// SoftDelete xóa mềm một file. File đã xóa vẫn giữ record và object trên
// storage, có thể Restore lại.
func (s *FileService) SoftDelete(ctx context.Context, fileID primitive.ObjectID, deletedBy primitive.ObjectID) (models.ProductionFile, error) {
	filter := bson.M{"_id": fileID, "isDeleted": false}
	update := &basesvc.UpdateData{Set: map[string]interface{}{
		"isDeleted": true,
		"deletedBy": deletedBy,
		"deletedAt": time.Now().UnixMilli(),
	}}
	file, err := s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if errors.Is(err, common.ErrNotFound) {
		return file, s.deletedOrMissing(ctx, fileID)
	}
	return file, err
}

// Restore khôi phục một file đã xóa mềm
func (s *FileService) Restore(ctx context.Context, fileID primitive.ObjectID) (models.ProductionFile, error) {
	filter := bson.M{"_id": fileID, "isDeleted": true}
	update := &basesvc.UpdateData{
		Set:   map[string]interface{}{"isDeleted": false},
		Unset: map[string]interface{}{"deletedBy": "", "deletedAt": ""},
	}
	file, err := s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if errors.Is(err, common.ErrNotFound) {
		var zero models.ProductionFile
		exists, existsErr := s.BaseServiceMongoImpl.DocumentExists(ctx, bson.M{"_id": fileID})
		if existsErr != nil {
			return zero, existsErr
		}
		if !exists {
			return zero, common.ErrNotFound
		}
		return zero, common.NewError(common.ErrCodeBusinessState, "File chưa bị xóa", common.StatusConflict, nil)
	}
	return file, err
}

// HardDelete xóa hẳn file: xóa object trên storage trước, rồi xóa record.
// Chỉ dùng cho dọn dẹp; luồng nghiệp vụ bình thường dùng SoftDelete.
func (s *FileService) HardDelete(ctx context.Context, fileID primitive.ObjectID) error {
	file, err := s.BaseServiceMongoImpl.FindOneById(ctx, fileID)
	if err != nil {
		return err
	}

	if s.gateway != nil && file.StoragePath != "" {
		if err := s.gateway.Delete(ctx, file.StoragePath); err != nil {
			logger.GetErrorLogger().WithError(err).WithField("storage_path", file.StoragePath).
				Error("Không xóa được object trên storage")
			return err
		}
	}

	return s.BaseServiceMongoImpl.DeleteById(ctx, fileID)
}

// ListByProject liệt kê file của project, mặc định ẩn file đã xóa mềm
func (s *FileService) ListByProject(ctx context.Context, projectID primitive.ObjectID, includeDeleted bool) ([]models.ProductionFile, error) {
	filter := bson.M{"projectId": projectID}
	if !includeDeleted {
		filter["isDeleted"] = false
	}
	return s.BaseServiceMongoImpl.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

// CountRawFiles đếm raw footage chưa bị xóa của project
func (s *FileService) CountRawFiles(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	return s.BaseServiceMongoImpl.CountDocuments(ctx, bson.M{
		"projectId": projectID,
		"type":      models.FileTypeRaw,
		"isDeleted": false,
	})
}

// deletedOrMissing phân biệt file không tồn tại với file đã bị xóa mềm
func (s *FileService) deletedOrMissing(ctx context.Context, fileID primitive.ObjectID) error {
	exists, err := s.BaseServiceMongoImpl.DocumentExists(ctx, bson.M{"_id": fileID})
	if err != nil {
		return err
	}
	if !exists {
		return common.ErrNotFound
	}
	return common.NewError(common.ErrCodeBusinessState, "File đã bị xóa", common.StatusConflict, nil)
}
