// Package upload - Test engine upload theo batch: chọn số worker, preflight
// giới hạn dung lượng, cô lập lỗi từng file, hủy batch và hủy từng file.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vca_production/config"
	"vca_production/internal/common"
)

// fakeGateway giả lập storage backend trong bộ nhớ
type fakeGateway struct {
	mu           sync.Mutex
	resolveCalls int
	active       int
	maxActive    int
	uploaded     []string
	failNames    map[string]bool

	// started nhận tên file mỗi khi một upload bắt đầu (nil = không theo dõi)
	started chan string
	// release chặn upload cho tới khi được đóng (nil = không chặn)
	release chan struct{}
}

func (g *fakeGateway) ResolveOrCreateDestination(ctx context.Context, projectID string, category string) (string, error) {
	g.mu.Lock()
	g.resolveCalls++
	g.mu.Unlock()
	return fmt.Sprintf("projects/%s/%s", projectID, strings.ToLower(category)), nil
}

func (g *fakeGateway) Upload(ctx context.Context, destination string, name string, reader io.Reader, contentType string, progress func(written int64)) (*ObjectInfo, error) {
	g.mu.Lock()
	g.active++
	if g.active > g.maxActive {
		g.maxActive = g.active
	}
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.active--
		g.mu.Unlock()
	}()

	if g.started != nil {
		g.started <- name
	}
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, common.ErrUploadCancelled
		}
	}

	if g.failNames[name] {
		return nil, common.NewError(common.ErrCodeUploadTransfer, "mất kết nối tới storage", common.StatusBadGateway, nil)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress(int64(len(data)))
	}

	g.mu.Lock()
	g.uploaded = append(g.uploaded, name)
	g.mu.Unlock()

	return &ObjectInfo{
		StoragePath: destination + "/" + name,
		URL:         "https://storage.example.com/" + destination + "/" + name,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

func (g *fakeGateway) Delete(ctx context.Context, storagePath string) error {
	return nil
}

func testConfig() *config.Configuration {
	return &config.Configuration{
		Upload_MaxFileSizeMB:     2048,
		Upload_LargeBatchWorkers: 2,
		Upload_SmallBatchWorkers: 3,
		Upload_LargeFileMeanMB:   500,
		Upload_ProgressStepBytes: 256 * 1024,
	}
}

func specFromBytes(name string, data []byte) FileSpec {
	return FileSpec{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: "video/mp4",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func specWithSize(name string, size int64) FileSpec {
	return FileSpec{
		Name:        name,
		Size:        size,
		ContentType: "video/mp4",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("")), nil
		},
	}
}

func TestWorkerCount_ThichUngTheoDungLuongTrungBinh(t *testing.T) {
	e := NewEngine(&fakeGateway{}, testConfig())

	const mib = int64(1024 * 1024)

	// Batch file nhỏ -> nhiều worker
	small := []FileSpec{specWithSize("a.mp4", 10*mib), specWithSize("b.mp4", 20*mib)}
	assert.Equal(t, 3, e.workerCount(small))

	// Trung bình vượt ngưỡng 500MB -> ít worker
	large := []FileSpec{specWithSize("a.mp4", 900*mib), specWithSize("b.mp4", 200*mib)}
	assert.Equal(t, 2, e.workerCount(large))

	// Đúng bằng ngưỡng (không vượt) -> vẫn là batch nhỏ
	boundary := []FileSpec{specWithSize("a.mp4", 500*mib), specWithSize("b.mp4", 500*mib)}
	assert.Equal(t, 3, e.workerCount(boundary))

	// Vượt ngưỡng đúng 1 byte -> batch lớn (so tổng, không chia trung bình)
	over := []FileSpec{specWithSize("a.mp4", 500*mib), specWithSize("b.mp4", 500*mib+1)}
	assert.Equal(t, 2, e.workerCount(over))

	// Batch rỗng không panic
	assert.Equal(t, 3, e.workerCount(nil))
}

func TestStartBatch_UploadThanhCong(t *testing.T) {
	g := &fakeGateway{}
	e := NewEngine(g, testConfig())

	var doneFiles []FileResult
	var mu sync.Mutex

	batch, err := e.StartBatch(context.Background(), "proj1", "RAW", []FileSpec{
		specFromBytes("clip1.mp4", []byte("aaaa")),
		specFromBytes("clip2.mp4", []byte("bbbbbb")),
	}, Callbacks{
		OnFileDone: func(r FileResult) {
			mu.Lock()
			doneFiles = append(doneFiles, r)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	summary := batch.Wait()
	assert.Equal(t, BatchStateCompleted, summary.State)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.Cancelled)

	// Destination chỉ resolve đúng một lần cho cả batch
	assert.Equal(t, 1, g.resolveCalls)

	for _, r := range summary.Results {
		require.NotNil(t, r.Object, "file success phải có ObjectInfo")
		assert.Equal(t, "projects/proj1/raw/"+r.Name, r.Object.StoragePath)
	}

	// OnFileDone chạy trên goroutine riêng, chờ chúng kịp ghi nhận
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(doneFiles) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestStartBatch_PreflightLoaiFileQuaLon(t *testing.T) {
	g := &fakeGateway{}
	cfg := testConfig()
	cfg.Upload_MaxFileSizeMB = 1 // cap 1MB để test
	e := NewEngine(g, cfg)

	big := specWithSize("phim-goc.mov", 5*1024*1024)
	ok := specFromBytes("thumb.jpg", []byte("nhỏ thôi"))

	batch, err := e.StartBatch(context.Background(), "proj1", "RAW", []FileSpec{big, ok}, Callbacks{})
	require.NoError(t, err)

	summary := batch.Wait()
	assert.Equal(t, BatchStateCompleted, summary.State, "file bị loại ở preflight không hủy cả batch")
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	var bigResult *FileResult
	for i := range summary.Results {
		if summary.Results[i].Name == "phim-goc.mov" {
			bigResult = &summary.Results[i]
		}
	}
	require.NotNil(t, bigResult)
	assert.Equal(t, FileStateError, bigResult.State)
	assert.ErrorIs(t, bigResult.Err, common.ErrSizeLimitExceeded)

	// File quá lớn không bao giờ chạm tới gateway
	assert.Equal(t, []string{"thumb.jpg"}, g.uploaded)
}

func TestStartBatch_LoiMotFileKhongLayLanSangFileKhac(t *testing.T) {
	g := &fakeGateway{failNames: map[string]bool{"hong.mp4": true}}
	e := NewEngine(g, testConfig())

	batch, err := e.StartBatch(context.Background(), "proj1", "RAW", []FileSpec{
		specFromBytes("ok1.mp4", []byte("xxxx")),
		specFromBytes("hong.mp4", []byte("yyyy")),
		specFromBytes("ok2.mp4", []byte("zzzz")),
	}, Callbacks{})
	require.NoError(t, err)

	summary := batch.Wait()
	assert.Equal(t, BatchStateCompleted, summary.State)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	for _, r := range summary.Results {
		if r.Name == "hong.mp4" {
			assert.Equal(t, FileStateError, r.State)
			assert.ErrorIs(t, r.Err, common.ErrUploadFailed)
		} else {
			assert.Equal(t, FileStateSuccess, r.State)
		}
	}
}

func TestBatch_CancelHuyFileDangChayVaFileConTrongQueue(t *testing.T) {
	g := &fakeGateway{
		started: make(chan string, 4),
		release: make(chan struct{}),
	}
	cfg := testConfig()
	cfg.Upload_SmallBatchWorkers = 1 // 1 worker để dồn file vào queue
	e := NewEngine(g, cfg)

	batch, err := e.StartBatch(context.Background(), "proj1", "RAW", []FileSpec{
		specFromBytes("f1.mp4", []byte("aaaa")),
		specFromBytes("f2.mp4", []byte("bbbb")),
		specFromBytes("f3.mp4", []byte("cccc")),
	}, Callbacks{})
	require.NoError(t, err)

	// Chờ file đầu tiên vào gateway rồi mới hủy
	<-g.started
	batch.Cancel()

	summary := batch.Wait()
	assert.Equal(t, BatchStateCancelled, summary.State)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed, "hủy chủ động không được tính là lỗi")
	assert.Equal(t, 3, summary.Cancelled)
	for _, r := range summary.Results {
		assert.Equal(t, FileStateCancelled, r.State)
		assert.NoError(t, r.Err)
	}
}

func TestBatch_CancelFileChiHuyDungFileDo(t *testing.T) {
	g := &fakeGateway{
		started: make(chan string, 2),
		release: make(chan struct{}),
	}
	cfg := testConfig()
	cfg.Upload_SmallBatchWorkers = 1
	e := NewEngine(g, cfg)

	batch, err := e.StartBatch(context.Background(), "proj1", "RAW", []FileSpec{
		specFromBytes("dang-chay.mp4", []byte("aaaa")),
		specFromBytes("trong-queue.mp4", []byte("bbbb")),
	}, Callbacks{})
	require.NoError(t, err)

	// Chờ worker nhận file đầu, file thứ hai chắc chắn còn trong queue
	<-g.started

	// FileIDs liệt kê file đang chờ trước file đang chạy
	ids := batch.FileIDs()
	require.Len(t, ids, 2)
	queuedID := ids[0]

	batch.CancelFile(queuedID)
	close(g.release) // cho file đang chạy hoàn tất

	summary := batch.Wait()
	assert.Equal(t, BatchStateCompleted, summary.State, "hủy một file không đổi trạng thái batch")
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Cancelled)

	for _, r := range summary.Results {
		switch r.Name {
		case "dang-chay.mp4":
			assert.Equal(t, FileStateSuccess, r.State)
		case "trong-queue.mp4":
			assert.Equal(t, FileStateCancelled, r.State)
		}
	}
}

func TestBatch_ContextChaBiHuyBaoBatchCancelled(t *testing.T) {
	g := &fakeGateway{
		started: make(chan string, 4),
		release: make(chan struct{}),
	}
	cfg := testConfig()
	cfg.Upload_SmallBatchWorkers = 1
	e := NewEngine(g, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	batch, err := e.StartBatch(ctx, "proj1", "RAW", []FileSpec{
		specFromBytes("f1.mp4", []byte("aaaa")),
		specFromBytes("f2.mp4", []byte("bbbb")),
	}, Callbacks{})
	require.NoError(t, err)

	// Client disconnect giữa chừng: hủy context của cả request
	<-g.started
	cancel()

	summary := batch.Wait()
	assert.Equal(t, BatchStateCancelled, summary.State, "mọi file bị hủy thì batch phải báo cancelled")
	assert.Equal(t, BatchStateCancelled, batch.State())
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, summary.Cancelled)
}

func TestStartBatch_KhongVuotQuaSoWorker(t *testing.T) {
	g := &fakeGateway{}
	cfg := testConfig()
	cfg.Upload_SmallBatchWorkers = 2
	e := NewEngine(g, cfg)

	files := make([]FileSpec, 6)
	for i := range files {
		files[i] = specFromBytes(fmt.Sprintf("f%d.mp4", i), bytes.Repeat([]byte("x"), 64))
	}

	batch, err := e.StartBatch(context.Background(), "proj1", "RAW", files, Callbacks{})
	require.NoError(t, err)

	summary := batch.Wait()
	assert.Equal(t, 6, summary.Succeeded)

	g.mu.Lock()
	defer g.mu.Unlock()
	assert.LessOrEqual(t, g.maxActive, 2, "số upload song song không được vượt số worker")
}

func TestStartBatch_BaoTienDoQuaCallback(t *testing.T) {
	g := &fakeGateway{}
	cfg := testConfig()
	cfg.Upload_ProgressStepBytes = 1
	e := NewEngine(g, cfg)

	var mu sync.Mutex
	progress := map[string]int64{}

	data := bytes.Repeat([]byte("v"), 1024)
	batch, err := e.StartBatch(context.Background(), "proj1", "RAW", []FileSpec{
		specFromBytes("clip.mp4", data),
	}, Callbacks{
		OnProgress: func(fileID string, written int64, total int64) {
			mu.Lock()
			progress[fileID] = written
			mu.Unlock()
			assert.Equal(t, int64(len(data)), total)
		},
	})
	require.NoError(t, err)

	summary := batch.Wait()
	require.Equal(t, 1, summary.Succeeded)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, progress, 1)
	for _, written := range progress {
		assert.Equal(t, int64(len(data)), written, "tiến độ cuối cùng phải bằng tổng số byte")
	}
}
