// Package authsvc - service người dùng (User).
package authsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	models "vca_production/internal/api/auth/models"
	basesvc "vca_production/internal/api/base/service"
	"vca_production/internal/common"
	"vca_production/internal/global"
	"vca_production/internal/utility"
)

// UserService là cấu trúc chứa các phương thức liên quan đến người dùng
type UserService struct {
	*basesvc.BaseServiceMongoImpl[models.User]
}

// NewUserService tạo mới UserService
func NewUserService() (*UserService, error) {
	userCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}

	return &UserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.User](userCollection),
	}, nil
}

// EnsureFromFirebaseToken verify Firebase ID token rồi đồng bộ (upsert) user tương ứng.
// Lần đăng nhập đầu tiên sẽ tạo document user mới; các lần sau đồng bộ lại profile từ Firebase.
func (s *UserService) EnsureFromFirebaseToken(ctx context.Context, idToken string) (*models.User, error) {
	token, err := utility.VerifyIDToken(ctx, idToken)
	if err != nil {
		logrus.WithError(err).Warn("EnsureFromFirebaseToken: Lỗi verify Firebase ID token")
		return nil, common.ErrTokenInvalid
	}

	firebaseUser, err := utility.GetUserByUID(ctx, token.UID)
	if err != nil {
		logrus.WithFields(logrus.Fields{"firebase_uid": token.UID, "error": err.Error()}).Error("EnsureFromFirebaseToken: Lỗi lấy thông tin user từ Firebase")
		return nil, err
	}

	updateData := &basesvc.UpdateData{Set: make(map[string]interface{})}
	updateData.Set["firebaseUid"] = token.UID
	updateData.Set["emailVerified"] = firebaseUser.EmailVerified
	if firebaseUser.DisplayName != "" {
		updateData.Set["name"] = firebaseUser.DisplayName
	}
	if firebaseUser.PhotoURL != "" {
		updateData.Set["avatarUrl"] = firebaseUser.PhotoURL
	}
	if firebaseUser.Email != "" {
		updateData.Set["email"] = firebaseUser.Email
	}

	filter := bson.M{"firebaseUid": token.UID}
	user, err := s.BaseServiceMongoImpl.Upsert(ctx, filter, updateData)
	if err != nil {
		// Hai request đầu tiên của cùng một user có thể đua nhau tạo document,
		// unique index trên firebaseUid đảm bảo chỉ một bên thắng
		if errors.Is(err, common.ErrMongoDuplicate) {
			if found, findErr := s.BaseServiceMongoImpl.FindOne(ctx, filter, nil); findErr == nil {
				user = found
			} else {
				return nil, err
			}
		} else {
			logrus.WithFields(logrus.Fields{"firebase_uid": token.UID, "error": err.Error()}).Error("EnsureFromFirebaseToken: Lỗi khi upsert user")
			return nil, err
		}
	}

	if user.IsBlock {
		return nil, common.NewError(common.ErrCodeAuthCredentials, "Tài khoản đã bị khóa: "+user.BlockNote, common.StatusForbidden, nil)
	}

	return &user, nil
}

// FindByFirebaseUID tìm user theo Firebase UID
func (s *UserService) FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"firebaseUid": uid}, nil)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetBlockState khóa hoặc mở khóa một tài khoản theo email
func (s *UserService) SetBlockState(ctx context.Context, email string, block bool, note string) (*models.User, error) {
	updateData := &basesvc.UpdateData{Set: map[string]interface{}{
		"isBlock":   block,
		"blockNote": note,
	}}
	user, err := s.BaseServiceMongoImpl.UpdateOne(ctx, bson.M{"email": email}, updateData, nil)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
