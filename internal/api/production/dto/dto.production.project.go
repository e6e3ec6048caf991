// Package productiondto - các DTO đầu vào của domain production.
package productiondto

// ProjectCreateInput dữ liệu đầu vào khi submit một kịch bản mới
type ProjectCreateInput struct {
	Title       string `json:"title" validate:"required,max=300"`
	Script      string `json:"script" validate:"required"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority,omitempty"`
	Deadline    int64  `json:"deadline,omitempty"`
}

// ProjectUpdateInput dữ liệu đầu vào khi cập nhật project
type ProjectUpdateInput struct {
	Title       string `json:"title,omitempty" validate:"omitempty,max=300"`
	Script      string `json:"script,omitempty"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority,omitempty"`
	Deadline    int64  `json:"deadline,omitempty"`
}

// ProjectRejectInput lý do từ chối kịch bản khi review
type ProjectRejectInput struct {
	Reason string `json:"reason" validate:"required"`
}

// ProjectDisapproveInput lý do rút duyệt một project đã APPROVED.
// Project quay về PLANNING và disapprovalCount tăng 1.
type ProjectDisapproveInput struct {
	Reason string `json:"reason" validate:"required"`
}

// TransitionInput dữ liệu đầu vào khi chuyển stage project
type TransitionInput struct {
	Target string `json:"target" validate:"required,production_stage"`
}

// ClaimInput dữ liệu đầu vào khi nhận một vai trò trong project
type ClaimInput struct {
	Role      string `json:"role" validate:"required,production_role"`
	ProfileID string `json:"profileId,omitempty" transform:"str_objectid,optional"` // Profile đích, chỉ dùng ở lần claim sinh contentId
}

// PostingDetailsInput thông tin đăng bài cho nền tảng hiện tại.
// Heading bắt buộc với YOUTUBE và TIKTOK (kiểm tra ở service).
type PostingDetailsInput struct {
	Platform      string   `json:"platform" validate:"required,posting_platform"`
	Caption       string   `json:"caption" validate:"required"`
	Heading       string   `json:"heading,omitempty"`
	Hashtags      []string `json:"hashtags,omitempty"`
	ScheduledTime int64    `json:"scheduledTime,omitempty"`
}

// MarkAsPostedInput dữ liệu khi xác nhận đã đăng bài.
// KeepInQueue = true: ghi lịch sử, xóa posting details, project ở lại
// READY_TO_POST để đăng nền tảng tiếp theo. False: chuyển POSTED (kết thúc).
type MarkAsPostedInput struct {
	URL         string `json:"url" validate:"required,url"`
	KeepInQueue bool   `json:"keepInQueue,omitempty"`
}
