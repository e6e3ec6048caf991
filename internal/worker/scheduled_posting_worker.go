// Package worker - các background worker chạy định kỳ của pipeline sản xuất.
package worker

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	productionmodels "vca_production/internal/api/production/models"
	productionsvc "vca_production/internal/api/production/service"
	"vca_production/internal/logger"
)

// ScheduledPostingWorker quét các project đang READY_TO_POST có hẹn giờ đăng
// đã đến hạn mà chưa được đánh dấu đã đăng, và cảnh báo cho posting manager
// qua audit log. Worker không tự đăng bài — việc đăng vẫn do người thực hiện
// và xác nhận qua MarkAsPosted.
type ScheduledPostingWorker struct {
	projectService *productionsvc.ProjectService
	interval       time.Duration // Khoảng thời gian giữa các lần quét
	batchSize      int64         // Số project tối đa mỗi lần quét
}

// NewScheduledPostingWorker tạo mới ScheduledPostingWorker
// Tham số:
//   - interval: Khoảng thời gian giữa các lần quét (mặc định: 5 phút)
//   - batchSize: Số project tối đa mỗi lần quét (mặc định: 100)
func NewScheduledPostingWorker(interval time.Duration, batchSize int64) (*ScheduledPostingWorker, error) {
	projectService, err := productionsvc.NewProjectService()
	if err != nil {
		return nil, err
	}

	if interval < time.Minute {
		interval = 5 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	return &ScheduledPostingWorker{
		projectService: projectService,
		interval:       interval,
		batchSize:      batchSize,
	}, nil
}

// Start chạy worker trong vòng lặp cho tới khi ctx bị hủy
func (w *ScheduledPostingWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":  w.interval.String(),
		"batchSize": w.batchSize,
	}).Info("⏰ [SCHEDULED_POSTING] Starting Scheduled Posting Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("⏰ [SCHEDULED_POSTING] Scheduled Posting Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("⏰ [SCHEDULED_POSTING] Panic khi quét bài đến hạn, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				count, err := w.scanOverdue(ctx)
				if err != nil {
					log.WithError(err).Error("⏰ [SCHEDULED_POSTING] Failed to scan overdue scheduled posts")
					return
				}

				if count > 0 {
					log.WithFields(map[string]interface{}{
						"overdueCount": count,
					}).Warn("⏰ [SCHEDULED_POSTING] Có bài hẹn giờ đã quá hạn chưa đăng")
				}
				// count = 0 thì không log (giảm log noise)
			}()
		}
	}
}

// scanOverdue tìm các project quá hạn đăng và ghi audit log cho từng project
func (w *ScheduledPostingWorker) scanOverdue(ctx context.Context) (int, error) {
	now := time.Now().UnixMilli()
	filter := bson.M{
		"stage":                 productionmodels.StageReadyToPost,
		"isDissolved":           bson.M{"$ne": true},
		"posting.scheduledTime": bson.M{"$gt": 0, "$lte": now},
	}

	opts := options.Find().
		SetLimit(w.batchSize).
		SetSort(bson.D{{Key: "posting.scheduledTime", Value: 1}})

	overdue, err := w.projectService.Find(ctx, filter, opts)
	if err != nil {
		return 0, err
	}

	audit := logger.GetAuditLogger()
	for _, project := range overdue {
		audit.WithFields(map[string]interface{}{
			"project_id":     project.ID.Hex(),
			"title":          project.Title,
			"platform":       project.Posting.Platform,
			"scheduled_time": project.Posting.ScheduledTime,
			"overdue_ms":     now - project.Posting.ScheduledTime,
		}).Warn("Bài hẹn giờ đã quá hạn chưa được đăng")
	}

	return len(overdue), nil
}
