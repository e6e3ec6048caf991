package productiondto

// AssignmentCreateInput gán trực tiếp một vai trò cho user (đường admin,
// không qua claim). Vẫn đi qua unique index (projectId, role).
type AssignmentCreateInput struct {
	ProjectID string `json:"projectId" validate:"required" transform:"str_objectid"`
	Role      string `json:"role" validate:"required,production_role"`
	UserID    string `json:"userId" validate:"required" transform:"str_objectid"`
}

// AssignmentUpdateInput - assignment là immutable, không có field cập nhật
type AssignmentUpdateInput struct{}
