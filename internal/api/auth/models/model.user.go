// Package models - model người dùng (User) thuộc domain auth.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User định nghĩa mô hình người dùng.
// Xác thực qua Firebase Auth: FirebaseUID là định danh gốc, các field còn lại
// được đồng bộ từ Firebase token ở lần đăng nhập đầu tiên.
type User struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Email         string             `json:"email,omitempty" bson:"email,omitempty" index:"unique,sparse"`
	FirebaseUID   string             `json:"firebaseUid" bson:"firebaseUid" index:"unique"`
	EmailVerified bool               `json:"emailVerified" bson:"emailVerified"`
	AvatarURL     string             `json:"avatarUrl" bson:"avatarUrl"`
	IsBlock       bool               `json:"-" bson:"isBlock"`
	BlockNote     string             `json:"-" bson:"blockNote"`
	CreatedAt     int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt     int64              `json:"updatedAt" bson:"updatedAt"`
}
