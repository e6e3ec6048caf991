// Package upload - engine upload file theo batch lên cloud storage.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	fbstorage "firebase.google.com/go/v4/storage"

	"vca_production/internal/common"
)

// ObjectInfo là metadata của một object sau khi upload thành công
type ObjectInfo struct {
	StoragePath string // Đường dẫn object trên bucket
	URL         string // URL truy cập công khai
	Size        int64  // Số byte đã ghi
	ContentType string
}

// Gateway trừu tượng hóa remote storage. Triển khai thật là FirebaseGateway;
// test dùng fake in-memory.
type Gateway interface {
	// ResolveOrCreateDestination trả về prefix đích cho một (project, category),
	// tạo mới nếu chưa tồn tại. Engine gọi đúng một lần mỗi batch và cache kết quả.
	ResolveOrCreateDestination(ctx context.Context, projectID string, category string) (string, error)

	// Upload ghi nội dung từ reader lên destination/name. Hủy ctx sẽ abort
	// transfer đang chạy. progress được gọi với tổng số byte đã ghi (không throttle,
	// caller tự throttle).
	Upload(ctx context.Context, destination string, name string, reader io.Reader, contentType string, progress func(written int64)) (*ObjectInfo, error)

	// Delete xóa object khỏi bucket
	Delete(ctx context.Context, storagePath string) error
}

// FirebaseGateway triển khai Gateway trên Firebase Storage
// (bucket Cloud Storage qua Firebase Admin SDK)
type FirebaseGateway struct {
	client     *fbstorage.Client
	bucketName string
}

// NewFirebaseGateway tạo gateway trên bucket mặc định của Firebase app
func NewFirebaseGateway(client *fbstorage.Client, bucketName string) *FirebaseGateway {
	return &FirebaseGateway{client: client, bucketName: bucketName}
}

func (g *FirebaseGateway) bucket() (*storage.BucketHandle, error) {
	if g.client == nil {
		return nil, fmt.Errorf("firebase storage chưa được khởi tạo")
	}
	return g.client.DefaultBucket()
}

// ResolveOrCreateDestination đảm bảo prefix projects/<id>/<category> tồn tại
// trên bucket (qua object marker .keep) và trả về prefix đó
func (g *FirebaseGateway) ResolveOrCreateDestination(ctx context.Context, projectID string, category string) (string, error) {
	bucket, err := g.bucket()
	if err != nil {
		return "", err
	}

	prefix := fmt.Sprintf("projects/%s/%s", projectID, strings.ToLower(category))
	marker := bucket.Object(prefix + "/.keep")

	_, err = marker.Attrs(ctx)
	if err == nil {
		return prefix, nil
	}
	if !errors.Is(err, storage.ErrObjectNotExist) {
		return "", fmt.Errorf("không kiểm tra được destination %s: %w", prefix, err)
	}

	w := marker.NewWriter(ctx)
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("không tạo được destination %s: %w", prefix, err)
	}
	return prefix, nil
}

// Upload ghi file lên bucket với progress callback theo từng chunk ghi được.
// Writer gắn với ctx của file: hủy ctx là abort transfer, object dở dang
// không được commit.
func (g *FirebaseGateway) Upload(ctx context.Context, destination string, name string, reader io.Reader, contentType string, progress func(written int64)) (*ObjectInfo, error) {
	bucket, err := g.bucket()
	if err != nil {
		return nil, err
	}

	storagePath := destination + "/" + name
	obj := bucket.Object(storagePath)

	w := obj.NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	written, err := io.Copy(&countingWriter{w: w, onWrite: progress}, reader)
	if err != nil {
		w.Close()
		if ctx.Err() != nil {
			return nil, common.ErrUploadCancelled
		}
		return nil, common.NewError(common.ErrCodeUploadTransfer, err.Error(), common.StatusBadGateway, nil)
	}
	if err := w.Close(); err != nil {
		if ctx.Err() != nil {
			return nil, common.ErrUploadCancelled
		}
		return nil, common.NewError(common.ErrCodeUploadTransfer, err.Error(), common.StatusBadGateway, nil)
	}

	return &ObjectInfo{
		StoragePath: storagePath,
		URL:         fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucketName, storagePath),
		Size:        written,
		ContentType: contentType,
	}, nil
}

// Delete xóa object khỏi bucket. Object không tồn tại không tính là lỗi.
func (g *FirebaseGateway) Delete(ctx context.Context, storagePath string) error {
	bucket, err := g.bucket()
	if err != nil {
		return err
	}
	if err := bucket.Object(storagePath).Delete(ctx); err != nil &&
		!errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("không xóa được object %s: %w", storagePath, err)
	}
	return nil
}

// countingWriter đếm tổng byte đã ghi và báo qua callback
type countingWriter struct {
	w       io.Writer
	total   int64
	onWrite func(written int64)
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.total += int64(n)
	if c.onWrite != nil && n > 0 {
		c.onWrite(c.total)
	}
	return n, err
}
