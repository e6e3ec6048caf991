package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"vca_production/config"
	authmodels "vca_production/internal/api/auth/models"
	productionmodels "vca_production/internal/api/production/models"
	"vca_production/internal/database"
	"vca_production/internal/global"
	"vca_production/internal/utility"
)

// InitGlobal khởi tạo các biến toàn cục theo thứ tự phụ thuộc
func InitGlobal() {
	initColNames()         // Tên các collection trong database
	initValidator()        // Validator
	initConfig()           // Cấu hình server
	initDatabase_MongoDB() // Kết nối database + index
	initFirebase()         // Firebase Auth + Storage
}

// initColNames khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.Users = "auth_users"
	global.MongoDB_ColNames.ProductionProjects = "production_projects"
	global.MongoDB_ColNames.ProductionAssignments = "production_assignments"
	global.MongoDB_ColNames.ProductionFiles = "production_files"

	logrus.Info("Initialized collection names")
}

// initValidator khởi tạo validator (global.InitValidator đăng ký custom validators)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// initConfig khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// initDatabase_MongoDB kết nối MongoDB, đảm bảo collections tồn tại và tạo index
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	// Khởi tạo các db và collections nếu chưa có
	database.EnsureDatabaseAndCollections(global.MongoDB_Session)
	logrus.Info("Ensured database and collections")

	// Index theo tag trên model
	dbName := global.MongoDB_ServerConfig.MongoDB_DBName
	db := global.MongoDB_Session.Database(dbName)
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Users), authmodels.User{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.ProductionProjects), productionmodels.Project{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.ProductionAssignments), productionmodels.Assignment{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.ProductionFiles), productionmodels.ProductionFile{})

	// Index compound bổ sung của pipeline sản xuất
	if err := database.CreateProductionAdditionalIndexes(context.TODO(), db); err != nil {
		logrus.Fatalf("Failed to create production indexes: %v", err)
	}
	logrus.Info("Created indexes")
}

// initFirebase khởi tạo Firebase Admin SDK (Auth + Storage)
func initFirebase() {
	cfg := global.MongoDB_ServerConfig

	if cfg.FirebaseProjectID == "" || cfg.FirebaseCredentialsPath == "" {
		logrus.Warn("Firebase config không đầy đủ, bỏ qua khởi tạo Firebase")
		return
	}

	err := utility.InitFirebase(cfg.FirebaseProjectID, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket)
	if err != nil {
		// Không fatal để hệ thống vẫn chạy được các phần không cần Firebase
		logrus.Errorf("Failed to initialize Firebase: %v", err)
		return
	}

	logrus.Info("Firebase initialized successfully")
}
