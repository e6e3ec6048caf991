// Package models - các model thuộc domain production (Project, Assignment, File).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectStatus định nghĩa trạng thái duyệt của project
const (
	ProjectStatusPending  = "PENDING"  // Đang chờ duyệt
	ProjectStatusApproved = "APPROVED" // Đã duyệt, được phép vào pipeline sản xuất
	ProjectStatusRejected = "REJECTED" // Bị từ chối
)

// ProjectStage định nghĩa giai đoạn sản xuất của project.
// Stage chỉ tiến về phía trước theo bảng transition; ngoại lệ duy nhất là
// disapprove (reset về PLANNING).
const (
	StagePlanning     = "PLANNING"       // Lên kế hoạch, chờ videographer nhận
	StageShooting     = "SHOOTING"       // Đang quay
	StageReadyForEdit = "READY_FOR_EDIT" // Đã có raw footage, chờ editor nhận
	StageEditing      = "EDITING"        // Đang dựng
	StageReadyToPost  = "READY_TO_POST"  // Đã dựng xong, chờ đăng (có thể đăng nhiều nền tảng)
	StagePosted       = "POSTED"         // Đã đăng xong - trạng thái cuối
)

// AllStages liệt kê các stage theo thứ tự pipeline
var AllStages = []string{
	StagePlanning,
	StageShooting,
	StageReadyForEdit,
	StageEditing,
	StageReadyToPost,
	StagePosted,
}

// PostingPlatform định nghĩa các nền tảng đăng bài
const (
	PlatformYoutube   = "YOUTUBE"
	PlatformTiktok    = "TIKTOK"
	PlatformInstagram = "INSTAGRAM"
	PlatformFacebook  = "FACEBOOK"
)

// PostRecord là một lần đăng bài trong lịch sử (append-only)
type PostRecord struct {
	URL      string `json:"url" bson:"url"`                               // URL bài đã đăng
	Platform string `json:"platform,omitempty" bson:"platform,omitempty"` // Nền tảng của lần đăng
	PostedAt int64  `json:"postedAt" bson:"postedAt"`                     // Thời điểm đăng (UnixMilli)
}

// PostingDetails là thông tin đăng bài cho nền tảng hiện tại (ephemeral,
// được xóa sau mỗi lần MarkAsPosted với keepInQueue)
type PostingDetails struct {
	Platform      string   `json:"platform,omitempty" bson:"platform,omitempty"`           // Nền tảng: YOUTUBE, TIKTOK, INSTAGRAM, FACEBOOK
	Caption       string   `json:"caption,omitempty" bson:"caption,omitempty"`             // Nội dung mô tả
	Heading       string   `json:"heading,omitempty" bson:"heading,omitempty"`             // Tiêu đề (bắt buộc với YOUTUBE, TIKTOK)
	Hashtags      []string `json:"hashtags,omitempty" bson:"hashtags,omitempty"`           // Danh sách hashtag
	ScheduledTime int64    `json:"scheduledTime,omitempty" bson:"scheduledTime,omitempty"` // Thời điểm hẹn đăng (UnixMilli, tùy chọn)
}

// Project đại diện cho một dự án sản xuất nội dung.
// Project được tạo khi submit kịch bản, đi qua review rồi pipeline sản xuất,
// không bao giờ bị hard-delete (chỉ soft-dissolve).
type Project struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của project

	// ===== CONTENT =====
	Title       string `json:"title" bson:"title"`                               // Tên dự án
	Script      string `json:"script,omitempty" bson:"script,omitempty"`         // Nội dung kịch bản
	Description string `json:"description,omitempty" bson:"description,omitempty"`

	// ===== REVIEW =====
	Status            string `json:"status" bson:"status" index:"single:1" default:"PENDING"` // PENDING, APPROVED, REJECTED
	RejectReason      string `json:"rejectReason,omitempty" bson:"rejectReason,omitempty"`                 // Lý do từ chối khi REJECTED
	DisapprovalCount  int    `json:"disapprovalCount" bson:"disapprovalCount"`                             // Số lần bị disapprove sau khi đã APPROVED
	DisapprovalReason string `json:"disapprovalReason,omitempty" bson:"disapprovalReason,omitempty"`       // Lý do lần disapprove gần nhất
	DisapprovedAt     int64  `json:"disapprovedAt,omitempty" bson:"disapprovedAt,omitempty"`               // Thời điểm disapprove gần nhất

	// ===== PIPELINE =====
	Stage    string `json:"stage" bson:"stage" index:"single:1" default:"PLANNING"` // Giai đoạn sản xuất hiện tại
	Priority int    `json:"priority" bson:"priority"`                                            // Độ ưu tiên (cao hơn = gấp hơn)
	Deadline int64  `json:"deadline,omitempty" bson:"deadline,omitempty"`                        // Hạn hoàn thành (UnixMilli)

	// ===== CONTENT ID (gán tối đa một lần) =====
	ContentID string             `json:"contentId,omitempty" bson:"contentId,omitempty"` // Mã nội dung, sinh một lần khi claim đầu tiên kèm profile
	ProfileID primitive.ObjectID `json:"profileId,omitempty" bson:"profileId,omitempty"` // Profile đích của nội dung

	// ===== POSTING =====
	Posting     *PostingDetails `json:"posting,omitempty" bson:"posting,omitempty"`         // Thông tin đăng bài cho nền tảng hiện tại (ephemeral)
	PostHistory []PostRecord    `json:"postHistory,omitempty" bson:"postHistory,omitempty"` // Lịch sử đăng bài (append-only)
	PostedURL   string          `json:"postedUrl,omitempty" bson:"postedUrl,omitempty"`     // URL cuối cùng khi stage = POSTED
	CompletedAt int64           `json:"completedAt,omitempty" bson:"completedAt,omitempty"` // Thời điểm đóng project (UnixMilli)

	// ===== OWNERSHIP =====
	CreatedBy primitive.ObjectID `json:"createdBy,omitempty" bson:"createdBy,omitempty" index:"single:1"` // Người submit kịch bản

	// ===== SOFT DISSOLVE =====
	IsDissolved bool `json:"isDissolved" bson:"isDissolved"` // Project bị giải tán (thay cho hard delete)

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
