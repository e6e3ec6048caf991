// Package productionsvc - Test nghiệp vụ assignment: cuộc đua claim qua
// insert-if-absent và sinh content ID.
package productionsvc

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "vca_production/internal/api/production/models"
	"vca_production/internal/common"
)

// fakeAssignmentStore giả lập unique index (projectId, role) bằng map:
// insert đầu tiên cho một cặp key thắng, các insert sau nhận duplicate
type fakeAssignmentStore struct {
	mu       sync.Mutex
	claimed  map[string]bool
	writeErr error
}

func (s *fakeAssignmentStore) insert(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return models.Assignment{}, s.writeErr
	}

	key := a.ProjectID.Hex() + "/" + a.Role
	if s.claimed[key] {
		return models.Assignment{}, common.ErrMongoDuplicate
	}
	if s.claimed == nil {
		s.claimed = map[string]bool{}
	}
	s.claimed[key] = true
	return a, nil
}

func TestClaimAssignment_NConcurrentChiMotNguoiThang(t *testing.T) {
	store := &fakeAssignmentStore{claimed: map[string]bool{}}
	projectID := primitive.NewObjectID()

	const contenders = 32
	results := make(chan error, contenders)

	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < contenders; i++ {
		go func() {
			start.Wait() // mọi goroutine xuất phát cùng lúc
			_, err := claimAssignment(context.Background(), store.insert, models.Assignment{
				ProjectID: projectID,
				Role:      models.RoleEditor,
				UserID:    primitive.NewObjectID(),
			})
			results <- err
		}()
	}
	start.Done()

	var won, lost int
	for i := 0; i < contenders; i++ {
		err := <-results
		if err == nil {
			won++
		} else {
			require.ErrorIs(t, err, common.ErrAlreadyClaimed)
			lost++
		}
	}

	assert.Equal(t, 1, won, "đúng một claim thắng cuộc đua")
	assert.Equal(t, contenders-1, lost, "các claim còn lại đều nhận AlreadyClaimed")
}

func TestClaimAssignment_VaiTroKhacKhongChanNhau(t *testing.T) {
	store := &fakeAssignmentStore{claimed: map[string]bool{}}
	projectID := primitive.NewObjectID()

	_, err := claimAssignment(context.Background(), store.insert, models.Assignment{
		ProjectID: projectID, Role: models.RoleVideographer, UserID: primitive.NewObjectID(),
	})
	require.NoError(t, err)

	// Cùng project nhưng vai trò khác vẫn claim được
	_, err = claimAssignment(context.Background(), store.insert, models.Assignment{
		ProjectID: projectID, Role: models.RoleEditor, UserID: primitive.NewObjectID(),
	})
	assert.NoError(t, err)

	// Cùng cặp (project, role) thì bị chặn
	_, err = claimAssignment(context.Background(), store.insert, models.Assignment{
		ProjectID: projectID, Role: models.RoleEditor, UserID: primitive.NewObjectID(),
	})
	assert.ErrorIs(t, err, common.ErrAlreadyClaimed)
}

func TestClaimAssignment_LoiGhiKhacKhongThanhAlreadyClaimed(t *testing.T) {
	// Chỉ duplicate key mới được quy về AlreadyClaimed, lỗi ghi khác phải
	// được trả nguyên vẹn để caller không từ chối claim oan
	store := &fakeAssignmentStore{writeErr: common.ErrMongoWrite}

	_, err := claimAssignment(context.Background(), store.insert, models.Assignment{
		ProjectID: primitive.NewObjectID(),
		Role:      models.RoleEditor,
		UserID:    primitive.NewObjectID(),
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrAlreadyClaimed)
	assert.ErrorIs(t, err, common.ErrMongoWrite)
}

func TestGenerateContentID_DinhDang(t *testing.T) {
	id := GenerateContentID()

	assert.True(t, strings.HasPrefix(id, "CNT-"), "content ID phải có prefix CNT-, nhận được: %s", id)
	assert.Len(t, id, len("CNT-")+12)

	suffix := strings.TrimPrefix(id, "CNT-")
	assert.Equal(t, strings.ToUpper(suffix), suffix, "phần suffix phải viết hoa")
	assert.NotContains(t, suffix, "-")
}

func TestGenerateContentID_KhongTrungLap(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := GenerateContentID()
		assert.False(t, seen[id], "content ID bị trùng: %s", id)
		seen[id] = true
	}
}
