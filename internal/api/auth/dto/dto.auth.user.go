// Package authdto - các DTO đầu vào của domain auth.
package authdto

// UserCreateInput dữ liệu đầu vào khi tạo người dùng (đường admin; luồng
// bình thường user được tạo tự động ở lần đăng nhập Firebase đầu tiên)
type UserCreateInput struct {
	Name        string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	FirebaseUID string `json:"firebaseUid" validate:"required"`
}

// UserUpdateInput dữ liệu đầu vào khi cập nhật hồ sơ người dùng
type UserUpdateInput struct {
	Name      string `json:"name,omitempty" validate:"omitempty,max=200"`
	AvatarURL string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// BlockUserInput dữ liệu đầu vào khi khóa một tài khoản
type BlockUserInput struct {
	Email string `json:"email" validate:"required,email"`
	Note  string `json:"note" validate:"required"`
}

// UnBlockUserInput dữ liệu đầu vào khi mở khóa một tài khoản
type UnBlockUserInput struct {
	Email string `json:"email" validate:"required,email"`
}
