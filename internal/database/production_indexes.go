// Package database - Index bổ sung cho pipeline sản xuất (compound) không thể định nghĩa qua model tags.
package database

import (
	"context"
	"strings"

	"vca_production/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateProductionAdditionalIndexes tạo các index bổ sung cho pipeline sản xuất.
// Gọi sau CreateIndexes cho từng collection.
func CreateProductionAdditionalIndexes(ctx context.Context, db *mongo.Database) error {
	// Index unique (projectId, role) của production_assignments được tạo qua
	// tag `compound:assignment_project_role_unique` trên model Assignment.

	// production_files: (projectId, isDeleted, type) — guard đếm file raw khi chuyển stage
	files := db.Collection(global.MongoDB_ColNames.ProductionFiles)
	if _, err := files.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "projectId", Value: 1},
			{Key: "isDeleted", Value: 1},
			{Key: "type", Value: 1},
		},
		Options: options.Index().SetName("file_project_deleted_type"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// production_projects: (status, stage) — danh sách queue theo vai trò
	projects := db.Collection(global.MongoDB_ColNames.ProductionProjects)
	if _, err := projects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "stage", Value: 1},
		},
		Options: options.Index().SetName("project_status_stage"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// production_projects: (stage, scheduledTime) sparse — worker quét bài đến hạn đăng
	if _, err := projects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "stage", Value: 1},
			{Key: "posting.scheduledTime", Value: 1},
		},
		Options: options.Index().SetName("project_stage_scheduled").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
