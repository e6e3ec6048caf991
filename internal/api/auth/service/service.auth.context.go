// package authsvc xử lý xác thực người dùng qua Firebase Auth
package authsvc

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context key type để tránh conflict
type contextKey string

const (
	userIDContextKey      contextKey = "user_id"
	firebaseUIDContextKey contextKey = "firebase_uid"
)

// SetUserIDToContext lưu userID vào context
func SetUserIDToContext(ctx context.Context, userID primitive.ObjectID) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// GetUserIDFromContext lấy userID từ context
func GetUserIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	userID, ok := ctx.Value(userIDContextKey).(primitive.ObjectID)
	return userID, ok
}

// SetFirebaseUIDToContext lưu Firebase UID vào context
func SetFirebaseUIDToContext(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, firebaseUIDContextKey, uid)
}

// GetFirebaseUIDFromContext lấy Firebase UID từ context
func GetFirebaseUIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(firebaseUIDContextKey).(string)
	return uid, ok
}
