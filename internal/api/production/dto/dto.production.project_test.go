// Package productiondto - Test các rule validate của DTO production qua
// validator đã đăng ký (production_stage, production_role, posting_platform).
package productiondto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vca_production/internal/global"
)

func init() {
	global.InitValidator()
}

func TestTransitionInput_ChiNhanStageHopLe(t *testing.T) {
	for _, stage := range []string{"PLANNING", "SHOOTING", "READY_FOR_EDIT", "EDITING", "READY_TO_POST", "POSTED"} {
		err := global.Validate.Struct(&TransitionInput{Target: stage})
		assert.NoError(t, err, "stage %s phải hợp lệ", stage)
	}

	assert.Error(t, global.Validate.Struct(&TransitionInput{Target: "ARCHIVED"}))
	assert.Error(t, global.Validate.Struct(&TransitionInput{Target: "planning"}), "tên stage phân biệt hoa thường")
	assert.Error(t, global.Validate.Struct(&TransitionInput{Target: ""}))
}

func TestClaimInput_ChiNhanVaiTroHopLe(t *testing.T) {
	for _, role := range []string{"VIDEOGRAPHER", "EDITOR", "POSTING_MANAGER"} {
		err := global.Validate.Struct(&ClaimInput{Role: role})
		assert.NoError(t, err, "vai trò %s phải hợp lệ", role)
	}

	assert.Error(t, global.Validate.Struct(&ClaimInput{Role: "DIRECTOR"}))
	assert.Error(t, global.Validate.Struct(&ClaimInput{Role: ""}))
}

func TestPostingDetailsInput_PlatformVaCaption(t *testing.T) {
	assert.NoError(t, global.Validate.Struct(&PostingDetailsInput{
		Platform: "INSTAGRAM",
		Caption:  "caption",
	}))

	assert.Error(t, global.Validate.Struct(&PostingDetailsInput{
		Platform: "THREADS",
		Caption:  "caption",
	}), "nền tảng ngoài danh sách phải bị từ chối")

	assert.Error(t, global.Validate.Struct(&PostingDetailsInput{
		Platform: "YOUTUBE",
	}), "thiếu caption phải bị từ chối")
}

func TestMarkAsPostedInput_URLBatBuoc(t *testing.T) {
	assert.NoError(t, global.Validate.Struct(&MarkAsPostedInput{
		URL:         "https://youtube.com/watch?v=abc123",
		KeepInQueue: true,
	}))

	assert.Error(t, global.Validate.Struct(&MarkAsPostedInput{URL: ""}))
	assert.Error(t, global.Validate.Struct(&MarkAsPostedInput{URL: "không phải url"}))
}

func TestProjectCreateInput_TitleVaScript(t *testing.T) {
	assert.NoError(t, global.Validate.Struct(&ProjectCreateInput{
		Title:  "Video giới thiệu sản phẩm",
		Script: "Kịch bản chi tiết...",
	}))

	assert.Error(t, global.Validate.Struct(&ProjectCreateInput{Script: "Kịch bản"}), "thiếu title")
	assert.Error(t, global.Validate.Struct(&ProjectCreateInput{Title: "Tiêu đề"}), "thiếu script")
}
