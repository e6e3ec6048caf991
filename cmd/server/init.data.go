package main

import (
	"vca_production/internal/logger"
)

// InitDefaultData kiểm tra dữ liệu khởi tạo của hệ thống.
// Hệ thống không cần seed dữ liệu mẫu: user được tự động tạo khi đăng nhập
// lần đầu qua Firebase (EnsureFromFirebaseToken), project/assignment/file
// đều do người dùng tạo qua API.
func InitDefaultData() {
	log := logger.GetAppLogger()
	log.Info("🔄 [INIT] Checking default data...")
	log.Info("✅ [INIT] No seed data required (users are provisioned on first login)")
}
