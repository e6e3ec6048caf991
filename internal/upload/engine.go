package upload

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vca_production/config"
	"vca_production/internal/common"
	"vca_production/internal/logger"
	"vca_production/internal/utility"
)

// Trạng thái của một file trong queue
const (
	FileStatePending   = "pending"
	FileStateUploading = "uploading"
	FileStateSuccess   = "success"
	FileStateError     = "error"
	FileStateCancelled = "cancelled"
)

// Trạng thái của cả batch
const (
	BatchStateIdle      = "idle"
	BatchStateRunning   = "running"
	BatchStateCompleted = "completed"
	BatchStateCancelled = "cancelled"
)

// FileSpec mô tả một file cần upload
type FileSpec struct {
	Name        string
	Size        int64 // Kích thước khai báo (bytes), dùng cho preflight và chọn số worker
	ContentType string
	Open        func() (io.ReadCloser, error) // Mở data source khi worker bắt đầu xử lý
}

// FileResult là kết quả cuối cùng của một file
type FileResult struct {
	FileID string
	Name   string
	Size   int64
	State  string      // success, error, cancelled
	Object *ObjectInfo // Chỉ khác nil khi success
	Err    error       // Chỉ khác nil khi error
}

// BatchSummary tổng kết một batch sau khi drain xong hoặc bị hủy
type BatchSummary struct {
	BatchID   string
	State     string // completed hoặc cancelled
	Succeeded int
	Failed    int
	Cancelled int
	Results   []FileResult
}

// Callbacks là các hook sự kiện của một batch. Mọi callback đều có thể nil.
type Callbacks struct {
	OnProgress  func(fileID string, written int64, total int64) // Throttle theo Upload_ProgressStepBytes
	OnFileDone  func(result FileResult)                         // Gọi một lần cho mỗi file khi kết thúc
	OnBatchDone func(summary BatchSummary)                      // Gọi đúng một lần khi batch kết thúc
}

// task là một file đang nằm trong queue của batch
type task struct {
	id      string
	spec    FileSpec
	fileCtx context.Context    // Gắn khi worker nhận task
	cancel  context.CancelFunc // Hủy riêng file này
}

// Engine điều phối upload theo batch qua worker pool giới hạn.
// Số worker thích ứng theo dung lượng trung bình của batch: batch toàn file
// lớn chạy ít worker hơn để không nghẽn băng thông.
type Engine struct {
	gateway Gateway
	cfg     *config.Configuration
}

// NewEngine tạo engine trên một gateway
func NewEngine(gateway Gateway, cfg *config.Configuration) *Engine {
	return &Engine{gateway: gateway, cfg: cfg}
}

// Batch là một lần upload nhiều file vào cùng một destination
type Batch struct {
	ID          string
	ProjectID   string
	Category    string
	Destination string

	mu        sync.Mutex
	queue     []*task          // FIFO, worker pull từ đầu queue
	inflight  map[string]*task // Task đang được worker xử lý, theo fileID
	results   []FileResult
	state     string
	cancelled bool

	callbacks Callbacks
	done      chan struct{}
	summary   BatchSummary
	startedAt time.Time
}

// workerCount chọn số worker theo dung lượng trung bình của batch
func (e *Engine) workerCount(files []FileSpec) int {
	if len(files) == 0 {
		return e.cfg.Upload_SmallBatchWorkers
	}
	var total int64
	for _, f := range files {
		total += f.Size
	}
	// So sánh tổng thay vì chia trung bình để không mất phần dư
	if total > e.cfg.Upload_LargeFileMeanMB*1024*1024*int64(len(files)) {
		return e.cfg.Upload_LargeBatchWorkers
	}
	return e.cfg.Upload_SmallBatchWorkers
}

// StartBatch resolve destination một lần, preflight giới hạn dung lượng rồi
// khởi chạy worker pool drain queue. Trả về ngay; theo dõi qua callbacks
// hoặc Wait().
//
// File vượt quá Upload_MaxFileSizeMB bị loại ngay từ preflight với state
// error (ErrSizeLimitExceeded), các file còn lại vẫn upload bình thường.
func (e *Engine) StartBatch(ctx context.Context, projectID string, category string, files []FileSpec, callbacks Callbacks) (*Batch, error) {
	destination, err := e.gateway.ResolveOrCreateDestination(ctx, projectID, category)
	if err != nil {
		return nil, err
	}

	b := &Batch{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Category:    category,
		Destination: destination,
		inflight:    map[string]*task{},
		state:       BatchStateIdle,
		callbacks:   callbacks,
		done:        make(chan struct{}),
		startedAt:   time.Now(),
	}

	sizeCap := e.cfg.Upload_MaxFileSizeMB * 1024 * 1024
	for _, spec := range files {
		t := &task{id: uuid.NewString(), spec: spec}
		if sizeCap > 0 && spec.Size > sizeCap {
			b.finishTask(t, FileResult{
				FileID: t.id,
				Name:   spec.Name,
				Size:   spec.Size,
				State:  FileStateError,
				Err:    common.ErrSizeLimitExceeded,
			})
			continue
		}
		b.queue = append(b.queue, t)
	}

	var totalSize int64
	for _, spec := range files {
		totalSize += spec.Size
	}

	workers := e.workerCount(files)
	logger.GetAppLogger().WithFields(logrus.Fields{
		"batch_id":    b.ID,
		"project_id":  projectID,
		"destination": destination,
		"files":       len(files),
		"total_size":  utility.FormatBytes(totalSize),
		"workers":     workers,
	}).Info("Bắt đầu batch upload")

	b.mu.Lock()
	b.state = BatchStateRunning
	pending := len(b.queue)
	b.mu.Unlock()

	if pending == 0 {
		b.finalize()
		return b, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.runWorker(ctx, b)
		}()
	}
	go func() {
		wg.Wait()
		b.finalize()
	}()

	return b, nil
}

// runWorker pull từng task từ queue cho tới khi queue cạn hoặc batch bị hủy
func (e *Engine) runWorker(ctx context.Context, b *Batch) {
	for {
		t, ok := b.pull(ctx)
		if !ok {
			return
		}
		e.uploadTask(ctx, b, t)
	}
}

// pull lấy task kế tiếp khỏi queue. Kiểm tra cờ hủy batch trước mỗi lần pull:
// batch bị hủy thì các task còn lại trong queue chuyển thẳng sang cancelled.
func (b *Batch) pull(ctx context.Context) (*task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ctx.Err() != nil {
		// Request cha bị hủy (client disconnect) tương đương hủy cả batch,
		// finalize phải báo cancelled chứ không phải completed
		b.cancelled = true
	}
	if b.cancelled {
		for _, t := range b.queue {
			b.finishTaskLocked(t, FileResult{
				FileID: t.id,
				Name:   t.spec.Name,
				Size:   t.spec.Size,
				State:  FileStateCancelled,
			})
		}
		b.queue = nil
		return nil, false
	}

	if len(b.queue) == 0 {
		return nil, false
	}

	t := b.queue[0]
	b.queue = b.queue[1:]

	fileCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	b.inflight[t.id] = t
	// Giữ ctx của file trong task để uploadTask dùng
	t.fileCtx = fileCtx
	return t, true
}

// uploadTask upload một file và ghi nhận kết quả.
// Lỗi của một file không ảnh hưởng các file còn lại trong batch.
func (e *Engine) uploadTask(ctx context.Context, b *Batch, t *task) {
	defer func() {
		if t.cancel != nil {
			t.cancel()
		}
	}()

	reader, err := t.spec.Open()
	if err != nil {
		b.completeInflight(t, FileResult{
			FileID: t.id, Name: t.spec.Name, Size: t.spec.Size,
			State: FileStateError,
			Err:   common.NewError(common.ErrCodeUploadTransfer, err.Error(), common.StatusBadGateway, nil),
		})
		return
	}
	defer reader.Close()

	throttle := newProgressThrottle(e.cfg.Upload_ProgressStepBytes, t.spec.Size, func(written int64) {
		if b.callbacks.OnProgress != nil {
			b.callbacks.OnProgress(t.id, written, t.spec.Size)
		}
	})

	obj, err := e.gateway.Upload(t.fileCtx, b.Destination, t.spec.Name, reader, t.spec.ContentType, throttle.report)
	if err != nil {
		state := FileStateError
		if errors.Is(err, common.ErrUploadCancelled) || t.fileCtx.Err() != nil {
			// Hủy chủ động không tính vào thống kê lỗi
			state = FileStateCancelled
			err = nil
		}
		b.completeInflight(t, FileResult{
			FileID: t.id, Name: t.spec.Name, Size: t.spec.Size,
			State: state, Err: err,
		})
		return
	}

	throttle.flush()
	b.completeInflight(t, FileResult{
		FileID: t.id, Name: t.spec.Name, Size: t.spec.Size,
		State: FileStateSuccess, Object: obj,
	})
}

// Cancel hủy cả batch: task chưa chạy chuyển sang cancelled ở lần pull kế
// tiếp, task đang chạy bị abort qua ctx của file
func (b *Batch) Cancel() {
	b.mu.Lock()
	b.cancelled = true
	for _, t := range b.inflight {
		if t.cancel != nil {
			t.cancel()
		}
	}
	b.mu.Unlock()
}

// CancelFile hủy một file đang chạy hoặc đang chờ trong queue
func (b *Batch) CancelFile(fileID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.inflight[fileID]; ok && t.cancel != nil {
		t.cancel()
		return
	}

	for i, t := range b.queue {
		if t.id == fileID {
			b.queue = append(b.queue[:i], b.queue[i+1:]...)
			b.finishTaskLocked(t, FileResult{
				FileID: t.id, Name: t.spec.Name, Size: t.spec.Size,
				State: FileStateCancelled,
			})
			return
		}
	}
}

// FileIDs trả về ID các file đang chờ hoặc đang chạy (phục vụ hủy từng file).
// File đang chờ đứng trước theo thứ tự queue, file đang chạy đứng sau.
func (b *Batch) FileIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]string, 0, len(b.queue)+len(b.inflight))
	for _, t := range b.queue {
		ids = append(ids, t.id)
	}
	for id := range b.inflight {
		ids = append(ids, id)
	}
	return ids
}

// Wait chặn cho tới khi batch kết thúc và trả về tổng kết
func (b *Batch) Wait() BatchSummary {
	<-b.done
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.summary
}

// completeInflight ghi kết quả cho task đang chạy
func (b *Batch) completeInflight(t *task, result FileResult) {
	b.mu.Lock()
	delete(b.inflight, t.id)
	b.finishTaskLocked(t, result)
	b.mu.Unlock()
}

// finishTask ghi kết quả khi chưa giữ lock
func (b *Batch) finishTask(t *task, result FileResult) {
	b.mu.Lock()
	b.finishTaskLocked(t, result)
	b.mu.Unlock()
}

// finishTaskLocked ghi kết quả một file và phát sự kiện per-file.
// Caller phải đang giữ b.mu.
func (b *Batch) finishTaskLocked(t *task, result FileResult) {
	b.results = append(b.results, result)
	if b.callbacks.OnFileDone != nil {
		// Chạy trên goroutine riêng để callback được phép gọi ngược vào batch
		go b.callbacks.OnFileDone(result)
	}
}

// finalize chốt trạng thái batch và phát sự kiện tổng kết đúng một lần
func (b *Batch) finalize() {
	b.mu.Lock()
	summary := BatchSummary{BatchID: b.ID, Results: b.results}
	for _, r := range b.results {
		switch r.State {
		case FileStateSuccess:
			summary.Succeeded++
		case FileStateError:
			summary.Failed++
		case FileStateCancelled:
			summary.Cancelled++
		}
	}
	if b.cancelled {
		summary.State = BatchStateCancelled
	} else {
		summary.State = BatchStateCompleted
	}
	b.state = summary.State
	b.summary = summary
	b.mu.Unlock()

	logger.GetAppLogger().WithFields(logrus.Fields{
		"batch_id":  b.ID,
		"state":     summary.State,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"cancelled": summary.Cancelled,
	}).Info("Batch upload kết thúc")

	logger.GetPerformanceLogger().WithFields(logrus.Fields{
		"batch_id":    b.ID,
		"duration_ms": time.Since(b.startedAt).Milliseconds(),
		"files":       len(summary.Results),
	}).Info("Thời gian xử lý batch upload")

	if b.callbacks.OnBatchDone != nil {
		b.callbacks.OnBatchDone(summary)
	}
	close(b.done)
}

// State trả về trạng thái hiện tại của batch
func (b *Batch) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
