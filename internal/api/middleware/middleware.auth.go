package middleware

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	authsvc "vca_production/internal/api/auth/service"
	"vca_production/internal/api/events"
	"vca_production/internal/common"
	"vca_production/internal/global"
	"vca_production/internal/logger"
	"vca_production/internal/utility"
)

// AuthManager quản lý xác thực người dùng qua Firebase Auth
type AuthManager struct {
	UserCRUD *authsvc.UserService
	Cache    *utility.Cache
}

var (
	authManagerInstance *AuthManager
	authManagerOnce     sync.Once
)

// GetAuthManager trả về instance duy nhất của AuthManager (singleton pattern)
func GetAuthManager() *AuthManager {
	authManagerOnce.Do(func() {
		var err error
		authManagerInstance, err = newAuthManager()
		if err != nil {
			panic(err)
		}
	})
	return authManagerInstance
}

// newAuthManager khởi tạo một instance mới của AuthManager (private constructor)
func newAuthManager() (*AuthManager, error) {
	newManager := new(AuthManager)

	userService, err := authsvc.NewUserService()
	if err != nil {
		return nil, err
	}
	newManager.UserCRUD = userService

	// Cache kết quả verify token để giảm số lần gọi Firebase + query Mongo.
	// TTL 5 phút là đủ ngắn so với thời hạn 1 giờ của Firebase ID token.
	newManager.Cache = utility.NewCache(5*time.Minute, 10*time.Minute)

	// User thay đổi trong Mongo (ví dụ bị block qua SetBlockState) thì các
	// identity đã cache của user đó phải mất hiệu lực ngay, không đợi hết TTL
	events.OnDataChanged(func(ctx context.Context, e events.DataChangeEvent) {
		if e.CollectionName != global.MongoDB_ColNames.Users {
			return
		}
		invalidateCachedIdentities(newManager.Cache, e)
	})

	return newManager, nil
}

// invalidateCachedIdentities xóa mọi identity đã cache của user trong event.
// Event insert bỏ qua vì user mới chưa thể có token nằm trong cache.
func invalidateCachedIdentities(cache *utility.Cache, e events.DataChangeEvent) {
	if e.Operation == events.OpInsert {
		return
	}
	userID := events.GetObjectIDField(e.Document, "ID")
	if userID.IsZero() {
		return
	}
	hex := userID.Hex()
	cache.DeleteFunc(func(_ string, v interface{}) bool {
		identity, ok := v.(cachedIdentity)
		return ok && identity.UserID == hex
	})
}

// cachedIdentity là kết quả xác thực được cache theo token
type cachedIdentity struct {
	UserID      string
	FirebaseUID string
}

// AuthMiddleware middleware xác thực cho Fiber.
// Token là Firebase ID token trong header Authorization (Bearer).
// Sau khi verify, userID và firebaseUid được lưu vào Locals cho handler phía sau.
func AuthMiddleware() fiber.Handler {
	// Sử dụng singleton instance của AuthManager
	authManager := GetAuthManager()

	return func(c fiber.Ctx) error {
		// Lấy token từ header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("[AUTH] Thiếu Authorization header")
			HandleErrorResponse(c, common.ErrNotAuthenticated)
			return nil
		}

		// Kiểm tra định dạng token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		token := parts[1]

		// Kiểm tra cache trước để tránh verify lại token còn hạn
		if cached, found := authManager.Cache.Get("auth_token:" + token); found {
			identity := cached.(cachedIdentity)
			c.Locals("user_id", identity.UserID)
			c.Locals("firebase_uid", identity.FirebaseUID)
			return c.Next()
		}

		// Verify token với Firebase và đồng bộ user vào Mongo
		user, err := authManager.UserCRUD.EnsureFromFirebaseToken(c.Context(), token)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}).Warn("[AUTH] Token không hợp lệ")
			HandleErrorResponse(c, err)
			return nil
		}

		// Lưu thông tin user vào context
		c.Locals("user_id", user.ID.Hex())
		c.Locals("firebase_uid", user.FirebaseUID)
		c.Locals("user", *user)

		authManager.Cache.Set("auth_token:"+token, cachedIdentity{
			UserID:      user.ID.Hex(),
			FirebaseUID: user.FirebaseUID,
		})

		return c.Next()
	}
}
