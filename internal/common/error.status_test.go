// Package common - Test so sánh lỗi qua errors.Is: các nhóm lỗi phải tách
// biệt theo mã lỗi, đặc biệt là các nhóm lỗi database.
package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs_SoSanhTheoMaLoi(t *testing.T) {
	// Hai *Error cùng mã lỗi khớp nhau dù message khác (wrap thêm chi tiết)
	wrapped := NewError(ErrCodeProductionClaim, "vai trò EDITOR đã có người nhận", StatusConflict, nil)
	assert.ErrorIs(t, wrapped, ErrAlreadyClaimed)
	assert.NotErrorIs(t, wrapped, ErrStageGuardViolation)

	var nilTarget error
	customErr, ok := ErrAlreadyClaimed.(*Error)
	assert.True(t, ok)
	assert.False(t, customErr.Is(nilTarget))
}

func TestErrorIs_CacNhomLoiDatabaseTachBiet(t *testing.T) {
	// Not-found, duplicate, write và query là bốn nhóm riêng: một lỗi ghi
	// Mongo bất kỳ không được khớp nhầm thành duplicate hay not-found
	assert.NotErrorIs(t, ErrMongoWrite, ErrMongoDuplicate)
	assert.NotErrorIs(t, ErrMongoQuery, ErrMongoDuplicate)
	assert.NotErrorIs(t, ErrMongoDuplicate, ErrNotFound)
	assert.NotErrorIs(t, ErrMongoQuery, ErrNotFound)
	assert.NotErrorIs(t, ErrMongoWrite, ErrNotFound)

	// Cùng nhóm vẫn khớp nhau
	assert.ErrorIs(t, ErrMongoDuplicate, ErrDuplicate)
}

func TestErrorCodes_TaiKhoanBiKhoaLaLoiRieng(t *testing.T) {
	// Tài khoản bị block trả về 403 với mã credentials, không lẫn với
	// token hỏng (401) hay thiếu danh tính
	blocked := NewError(ErrCodeAuthCredentials, "Tài khoản đã bị khóa", StatusForbidden, nil)

	assert.NotErrorIs(t, blocked, ErrTokenInvalid)
	assert.NotErrorIs(t, blocked, ErrNotAuthenticated)
	assert.Equal(t, StatusForbidden, blocked.(*Error).StatusCode)
}

func TestConvertMongoError_GiuNguyenLoiHeThong(t *testing.T) {
	// Lỗi đã là *Error đi qua convert không bị bọc lại
	assert.Equal(t, ErrNotFound, ConvertMongoError(ErrNotFound))
	assert.Equal(t, ErrAlreadyClaimed, ConvertMongoError(ErrAlreadyClaimed))
	assert.NoError(t, ConvertMongoError(nil))
}
