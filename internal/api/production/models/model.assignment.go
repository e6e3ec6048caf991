package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentRole định nghĩa vai trò trong một project.
// Mỗi (projectId, role) chỉ có tối đa một assignment - unique index
// "assignment_project_role_unique" là trọng tài duy nhất khi nhiều người
// cùng claim một vai trò.
const (
	RoleVideographer   = "VIDEOGRAPHER"    // Người quay - claim ở stage PLANNING
	RoleEditor         = "EDITOR"          // Người dựng - claim ở stage READY_FOR_EDIT
	RolePostingManager = "POSTING_MANAGER" // Người đăng bài - claim ở stage READY_TO_POST
)

// AllRoles liệt kê các vai trò hợp lệ
var AllRoles = []string{
	RoleVideographer,
	RoleEditor,
	RolePostingManager,
}

// Assignment ghi nhận một người đã nhận một vai trò trong một project.
// Document là immutable sau khi tạo: claim thành công = insert thành công,
// không có update.
type Assignment struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của assignment

	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId" index:"compound:assignment_project_role_unique"` // Project được nhận
	Role      string             `json:"role" bson:"role" index:"compound:assignment_project_role_unique"`           // VIDEOGRAPHER, EDITOR, POSTING_MANAGER
	UserID    primitive.ObjectID `json:"userId" bson:"userId" index:"single:1"`                                      // Người nhận vai trò

	AssignedBy primitive.ObjectID `json:"assignedBy,omitempty" bson:"assignedBy,omitempty"` // Người gán (trùng UserID khi tự claim)
	AssignedAt int64              `json:"assignedAt" bson:"assignedAt"`                     // Thời điểm nhận (UnixMilli)

	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
