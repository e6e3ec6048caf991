// Package middleware - Test invalidate cache identity khi document user thay đổi.
package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "vca_production/internal/api/auth/models"
	"vca_production/internal/api/events"
	"vca_production/internal/utility"
)

func TestInvalidateCachedIdentities_XoaMoiTokenCuaUserThayDoi(t *testing.T) {
	cache := utility.NewCache(time.Minute, time.Minute)

	blocked := primitive.NewObjectID()
	other := primitive.NewObjectID()

	// Một user có thể đăng nhập trên nhiều thiết bị -> nhiều token trong cache
	cache.Set("auth_token:tk1", cachedIdentity{UserID: blocked.Hex(), FirebaseUID: "fb1"})
	cache.Set("auth_token:tk2", cachedIdentity{UserID: blocked.Hex(), FirebaseUID: "fb1"})
	cache.Set("auth_token:tk3", cachedIdentity{UserID: other.Hex(), FirebaseUID: "fb2"})

	invalidateCachedIdentities(cache, events.DataChangeEvent{
		CollectionName: "users",
		Operation:      events.OpUpdate,
		Document:       authmodels.User{ID: blocked, IsBlock: true},
	})

	_, found := cache.Get("auth_token:tk1")
	assert.False(t, found, "user bị block phải mất hiệu lực ngay, không đợi hết TTL")
	_, found = cache.Get("auth_token:tk2")
	assert.False(t, found)
	_, found = cache.Get("auth_token:tk3")
	assert.True(t, found, "identity của user khác phải còn nguyên")
}

func TestInvalidateCachedIdentities_InsertVaDocumentRongBoQua(t *testing.T) {
	cache := utility.NewCache(time.Minute, time.Minute)

	userID := primitive.NewObjectID()
	cache.Set("auth_token:tk1", cachedIdentity{UserID: userID.Hex(), FirebaseUID: "fb1"})

	// User mới chưa thể có token trong cache
	invalidateCachedIdentities(cache, events.DataChangeEvent{
		Operation: events.OpInsert,
		Document:  authmodels.User{ID: userID},
	})
	_, found := cache.Get("auth_token:tk1")
	assert.True(t, found)

	// Event không có document thì không có gì để đối chiếu
	invalidateCachedIdentities(cache, events.DataChangeEvent{
		Operation: events.OpDelete,
		Document:  nil,
	})
	_, found = cache.Get("auth_token:tk1")
	assert.True(t, found)
}
