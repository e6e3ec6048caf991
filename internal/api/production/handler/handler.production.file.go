package productionhdl

import (
	"context"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authsvc "vca_production/internal/api/auth/service"
	basehdl "vca_production/internal/api/base/handler"
	productiondto "vca_production/internal/api/production/dto"
	productionmodels "vca_production/internal/api/production/models"
	productionsvc "vca_production/internal/api/production/service"
	"vca_production/internal/common"
	"vca_production/internal/global"
	"vca_production/internal/logger"
	"vca_production/internal/upload"
	"vca_production/internal/utility"
)

// FileHandler xử lý các request liên quan đến ProductionFile
type FileHandler struct {
	*basehdl.BaseHandler[productionmodels.ProductionFile, productiondto.FileCreateInput, productiondto.FileUpdateInput]
	FileService *productionsvc.FileService
	Engine      *upload.Engine
}

// NewFileHandler tạo mới FileHandler kèm upload engine trên Firebase Storage
func NewFileHandler() (*FileHandler, error) {
	gateway := upload.NewFirebaseGateway(utility.GetFirebaseStorage(), global.MongoDB_ServerConfig.FirebaseStorageBucket)

	fileService, err := productionsvc.NewFileService(gateway)
	if err != nil {
		return nil, fmt.Errorf("failed to create file service: %v", err)
	}

	hdl := &FileHandler{
		FileService: fileService,
		Engine:      upload.NewEngine(gateway, global.MongoDB_ServerConfig),
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[productionmodels.ProductionFile, productiondto.FileCreateInput, productiondto.FileUpdateInput](fileService.BaseServiceMongoImpl)
	return hdl, nil
}

// HandleUploadBatch nhận nhiều file qua multipart form và đẩy qua upload
// engine. Form field "files" chứa các file, query "type" là loại file
// (RAW/EDITED/OTHER, mặc định RAW). Response trả về tổng kết batch sau khi
// drain xong; file thành công được tạo record ngay trong callback per-file.
func (h *FileHandler) HandleUploadBatch(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		projectID, err := parseProjectID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		fileType := c.Query("type", productionmodels.FileTypeRaw)
		if fileType != productionmodels.FileTypeRaw &&
			fileType != productionmodels.FileTypeEdited &&
			fileType != productionmodels.FileTypeOther {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput,
				fmt.Sprintf("Loại file không hợp lệ: %s", fileType), common.StatusBadRequest, nil))
			return nil
		}

		ctx, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		form, err := c.MultipartForm()
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat,
				"Request không phải multipart form hợp lệ", common.StatusBadRequest, err))
			return nil
		}
		headers := form.File["files"]
		if len(headers) == 0 {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput,
				"Không có file nào trong form field 'files'", common.StatusBadRequest, nil))
			return nil
		}

		specs := make([]upload.FileSpec, 0, len(headers))
		for _, header := range headers {
			header := header
			specs = append(specs, upload.FileSpec{
				Name:        header.Filename,
				Size:        header.Size,
				ContentType: header.Header.Get("Content-Type"),
				Open: func() (io.ReadCloser, error) {
					return header.Open()
				},
			})
		}

		// Callback per-file chạy trên goroutine riêng và có thể sống lâu hơn
		// request, nên dùng context tách khỏi request
		linkCtx := authsvc.SetUserIDToContext(context.Background(), userID)
		callbacks := upload.Callbacks{
			OnFileDone: func(result upload.FileResult) {
				if result.State != upload.FileStateSuccess {
					return
				}
				if _, err := h.FileService.LinkUploaded(linkCtx, projectID, fileType, result.Object, result.Name, userID, result.FileID); err != nil {
					logger.GetErrorLogger().WithError(err).WithFields(map[string]interface{}{
						"project_id": projectID.Hex(),
						"name":       result.Name,
					}).Error("Không tạo được file record sau khi upload")
				}
			},
		}

		batch, err := h.Engine.StartBatch(ctx, projectID.Hex(), fileType, specs, callbacks)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		summary := batch.Wait()
		h.HandleResponse(c, summary, nil)
		return nil
	})
}

// HandleListByProject liệt kê file của một project.
// Query includeDeleted=true để xem cả file đã xóa mềm.
func (h *FileHandler) HandleListByProject(c fiber.Ctx) error {
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

		includeDeleted := c.Query("includeDeleted") == "true"
		files, err := h.FileService.ListByProject(ctx, projectID, includeDeleted)
		h.HandleResponse(c, files, err)
		return nil
	})
}

// HandleReview duyệt hoặc từ chối một file
func (h *FileHandler) HandleReview(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		fileID, err := parseFileID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input productiondto.FileReviewInput
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

		file, err := h.FileService.Review(ctx, fileID, input.Status, input.Note, userID)
		h.HandleResponse(c, file, err)
		return nil
	})
}

// HandleSoftDelete xóa mềm một file
func (h *FileHandler) HandleSoftDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		fileID, err := parseFileID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		ctx, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		file, err := h.FileService.SoftDelete(ctx, fileID, userID)
		h.HandleResponse(c, file, err)
		return nil
	})
}

// HandleRestore khôi phục một file đã xóa mềm
func (h *FileHandler) HandleRestore(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		fileID, err := parseFileID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		ctx, _, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		file, err := h.FileService.Restore(ctx, fileID)
		h.HandleResponse(c, file, err)
		return nil
	})
}

// HandleHardDelete xóa hẳn file (cả object trên storage)
func (h *FileHandler) HandleHardDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		fileID, err := parseFileID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		ctx, _, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.FileService.HardDelete(ctx, fileID)
		h.HandleResponse(c, fiber.Map{"deleted": err == nil}, err)
		return nil
	})
}

// parseFileID đọc và validate param :id của file
func parseFileID(c fiber.Ctx) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat,
			"ID không đúng định dạng ObjectID", common.StatusBadRequest, nil)
	}
	return id, nil
}
