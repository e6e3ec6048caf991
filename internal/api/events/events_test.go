// Package events - Test phát sự kiện thay đổi dữ liệu và các helper đọc field.
package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type eventDoc struct {
	ID        primitive.ObjectID
	ProfileID *primitive.ObjectID
	PostedAt  int64
	Views     uint32
	Name      string
}

func TestEmitDataChanged_GoiHandlerDaDangKy(t *testing.T) {
	received := make(chan DataChangeEvent, 1)
	OnDataChanged(func(ctx context.Context, e DataChangeEvent) {
		if e.CollectionName == "test_emit" {
			received <- e
		}
	})

	EmitDataChanged(context.Background(), DataChangeEvent{
		CollectionName: "test_emit",
		Operation:      OpUpdate,
		Document:       eventDoc{Name: "x"},
	})

	// Handler chạy trên goroutine riêng
	select {
	case e := <-received:
		assert.Equal(t, OpUpdate, e.Operation)
	case <-time.After(time.Second):
		t.Fatal("handler không nhận được event")
	}
}

func TestEmitDataChanged_HandlerPanicKhongLamSapCacHandlerKhac(t *testing.T) {
	received := make(chan struct{}, 1)
	OnDataChanged(func(ctx context.Context, e DataChangeEvent) {
		if e.CollectionName == "test_panic" {
			panic("handler hỏng")
		}
	})
	OnDataChanged(func(ctx context.Context, e DataChangeEvent) {
		if e.CollectionName == "test_panic" {
			received <- struct{}{}
		}
	})

	EmitDataChanged(context.Background(), DataChangeEvent{
		CollectionName: "test_panic",
		Operation:      OpDelete,
	})

	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("handler thứ hai phải vẫn chạy khi handler khác panic")
	}
}

func TestGetObjectIDField(t *testing.T) {
	id := primitive.NewObjectID()
	profile := primitive.NewObjectID()

	doc := eventDoc{ID: id, ProfileID: &profile}
	assert.Equal(t, id, GetObjectIDField(doc, "ID"))
	assert.Equal(t, profile, GetObjectIDField(doc, "ProfileID"), "field con trỏ phải được deref")
	assert.Equal(t, id, GetObjectIDField(&doc, "ID"), "document truyền theo con trỏ vẫn đọc được")

	require.True(t, GetObjectIDField(doc, "KhongTonTai").IsZero())
	require.True(t, GetObjectIDField(doc, "Name").IsZero(), "field sai kiểu trả về zero")
	require.True(t, GetObjectIDField(nil, "ID").IsZero())
	require.True(t, GetObjectIDField(eventDoc{}, "ProfileID").IsZero(), "con trỏ nil trả về zero")
}

func TestGetInt64Field(t *testing.T) {
	doc := eventDoc{PostedAt: 1756700000000, Views: 42}

	assert.Equal(t, int64(1756700000000), GetInt64Field(doc, "PostedAt"))
	assert.Equal(t, int64(42), GetInt64Field(doc, "Views"), "kiểu unsigned được convert sang int64")
	assert.Equal(t, int64(0), GetInt64Field(doc, "Name"))
	assert.Equal(t, int64(0), GetInt64Field(nil, "PostedAt"))
	assert.Equal(t, int64(0), GetInt64Field(&doc, "KhongTonTai"))
}
