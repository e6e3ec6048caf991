package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileType phân loại file theo giai đoạn sản xuất
const (
	FileTypeRaw    = "RAW"    // Raw footage do videographer upload
	FileTypeEdited = "EDITED" // Bản dựng do editor upload
	FileTypeOther  = "OTHER"  // Tài liệu khác (thumbnail, phụ đề...)
)

// FileApprovalStatus trạng thái duyệt của một file
const (
	FileApprovalPending  = "PENDING"  // Chưa được review
	FileApprovalApproved = "APPROVED" // Đã duyệt
	FileApprovalRejected = "REJECTED" // Bị từ chối, cần upload lại
)

// ProductionFile là metadata của một file đã upload lên cloud storage.
// Nội dung file nằm ở storage bucket (StoragePath), document này chỉ giữ
// metadata và trạng thái duyệt. Xóa file là soft delete (IsDeleted) và có
// thể restore; hard delete xóa cả object trên storage.
type ProductionFile struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của file

	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId" index:"single:1"` // Project chứa file

	// ===== FILE INFO =====
	Type        string `json:"type" bson:"type"`                                   // RAW, EDITED, OTHER
	Name        string `json:"name" bson:"name"`                                   // Tên file gốc
	Size        int64  `json:"size" bson:"size"`                                   // Kích thước (bytes)
	ContentType string `json:"contentType,omitempty" bson:"contentType,omitempty"` // MIME type
	URL         string `json:"url,omitempty" bson:"url,omitempty"`                 // URL truy cập công khai
	StoragePath string `json:"storagePath" bson:"storagePath"`                     // Đường dẫn object trên bucket

	// ===== REVIEW =====
	ApprovalStatus string `json:"approvalStatus" bson:"approvalStatus" default:"PENDING"` // PENDING, APPROVED, REJECTED
	ReviewNote     string `json:"reviewNote,omitempty" bson:"reviewNote,omitempty"`       // Ghi chú của người duyệt
	ReviewedBy     primitive.ObjectID `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	ReviewedAt     int64              `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"` // Thời điểm duyệt (UnixMilli)

	// ===== SOFT DELETE =====
	IsDeleted bool               `json:"isDeleted" bson:"isDeleted"`                     // File đã bị xóa mềm
	DeletedBy primitive.ObjectID `json:"deletedBy,omitempty" bson:"deletedBy,omitempty"` // Người xóa
	DeletedAt int64              `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"` // Thời điểm xóa (UnixMilli)

	// ===== UPLOAD =====
	UploadedBy primitive.ObjectID `json:"uploadedBy,omitempty" bson:"uploadedBy,omitempty"` // Người upload
	BatchID    string             `json:"batchId,omitempty" bson:"batchId,omitempty"`       // Batch upload sinh ra file này

	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
