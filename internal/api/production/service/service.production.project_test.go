// Package productionsvc - Test bảng chuyển stage, stage claim theo vai trò
// và validate posting details theo nền tảng.
package productionsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	productiondto "vca_production/internal/api/production/dto"
	models "vca_production/internal/api/production/models"
)

func TestNextStage_PipelineTienVePhiaTruoc(t *testing.T) {
	cases := []struct {
		from string
		want string
	}{
		{models.StagePlanning, models.StageShooting},
		{models.StageShooting, models.StageReadyForEdit},
		{models.StageReadyForEdit, models.StageEditing},
		{models.StageEditing, models.StageReadyToPost},
	}
	for _, c := range cases {
		next, ok := NextStage(c.from)
		require.True(t, ok, "stage %s phải có bước kế tiếp", c.from)
		assert.Equal(t, c.want, next)
	}

	// READY_TO_POST không tự chuyển tiếp: sang POSTED chỉ qua mark-as-posted
	_, ok := NextStage(models.StageReadyToPost)
	assert.False(t, ok)

	// POSTED là trạng thái cuối
	_, ok = NextStage(models.StagePosted)
	assert.False(t, ok)
}

func TestClaimableStage_TheoVaiTro(t *testing.T) {
	stage, ok := ClaimableStage(models.RoleVideographer)
	require.True(t, ok)
	assert.Equal(t, models.StagePlanning, stage)

	stage, ok = ClaimableStage(models.RoleEditor)
	require.True(t, ok)
	assert.Equal(t, models.StageReadyForEdit, stage)

	stage, ok = ClaimableStage(models.RolePostingManager)
	require.True(t, ok)
	assert.Equal(t, models.StageReadyToPost, stage)

	_, ok = ClaimableStage("DIRECTOR")
	assert.False(t, ok, "vai trò lạ không được phép claim")
}

func TestValidatePostingDetails_PlatformVaCaptionBatBuoc(t *testing.T) {
	err := ValidatePostingDetails(&productiondto.PostingDetailsInput{
		Platform: "",
		Caption:  "caption",
	})
	assert.Error(t, err)

	err = ValidatePostingDetails(&productiondto.PostingDetailsInput{
		Platform: models.PlatformFacebook,
		Caption:  "",
	})
	assert.Error(t, err)
}

func TestValidatePostingDetails_HeadingTheoNenTang(t *testing.T) {
	// YOUTUBE và TIKTOK bắt buộc heading
	for _, platform := range []string{models.PlatformYoutube, models.PlatformTiktok} {
		err := ValidatePostingDetails(&productiondto.PostingDetailsInput{
			Platform: platform,
			Caption:  "caption",
		})
		assert.Error(t, err, "nền tảng %s thiếu heading phải bị từ chối", platform)

		err = ValidatePostingDetails(&productiondto.PostingDetailsInput{
			Platform: platform,
			Caption:  "caption",
			Heading:  "heading",
		})
		assert.NoError(t, err)
	}

	// INSTAGRAM và FACEBOOK không cần heading
	for _, platform := range []string{models.PlatformInstagram, models.PlatformFacebook} {
		err := ValidatePostingDetails(&productiondto.PostingDetailsInput{
			Platform: platform,
			Caption:  "caption",
		})
		assert.NoError(t, err, "nền tảng %s không yêu cầu heading", platform)
	}
}

func TestAllStages_KhopVoiBangChuyenStage(t *testing.T) {
	// Mọi stage nguồn trong bảng chuyển phải là stage hợp lệ
	for from, to := range stageTransitions {
		assert.Contains(t, models.AllStages, from)
		assert.Contains(t, models.AllStages, to)
	}
	// Mọi stage claim được phải là stage hợp lệ
	for _, role := range models.AllRoles {
		stage, ok := ClaimableStage(role)
		require.True(t, ok, "vai trò %s phải có stage claim", role)
		assert.Contains(t, models.AllStages, stage)
	}
}

func TestBuildMarkAsPostedUpdate_KeepInQueueGiuLaiTrongQueue(t *testing.T) {
	record := models.PostRecord{
		URL:      "https://youtube.com/watch?v=abc",
		Platform: models.PlatformYoutube,
		PostedAt: 1756700000000,
	}

	update := buildMarkAsPostedUpdate(record, true)

	// Luôn ghi vào lịch sử và xóa posting details của nền tảng vừa đăng
	assert.Equal(t, record, update.Push["postHistory"])
	assert.Contains(t, update.Unset, "posting")

	// Giữ lại trong queue: không đụng tới stage, project ở lại READY_TO_POST
	assert.Nil(t, update.Set)
}

func TestBuildMarkAsPostedUpdate_KetThucChuyenPosted(t *testing.T) {
	record := models.PostRecord{
		URL:      "https://tiktok.com/@kenh/video/123",
		Platform: models.PlatformTiktok,
		PostedAt: 1756700000000,
	}

	update := buildMarkAsPostedUpdate(record, false)

	assert.Equal(t, record, update.Push["postHistory"])
	assert.Contains(t, update.Unset, "posting")

	// Không giữ trong queue: chốt stage POSTED kèm postedUrl và completedAt
	require.NotNil(t, update.Set)
	assert.Equal(t, models.StagePosted, update.Set["stage"])
	assert.Equal(t, record.URL, update.Set["postedUrl"])
	assert.Equal(t, record.PostedAt, update.Set["completedAt"])
}
