// Package upload - Test throttle báo tiến độ theo bước byte tối thiểu.
package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressThrottle_ChiPhatKhiVuotStep(t *testing.T) {
	var emitted []int64
	p := newProgressThrottle(100, 1000, func(written int64) {
		emitted = append(emitted, written)
	})

	p.report(50) // chưa đủ step
	assert.Empty(t, emitted, "chưa vượt step thì không được phát")

	p.report(120) // vượt step
	assert.Equal(t, []int64{120}, emitted)

	p.report(180) // mới thêm 60 byte từ lần phát trước
	assert.Equal(t, []int64{120}, emitted, "60 byte < step, không phát thêm")

	p.report(250)
	assert.Equal(t, []int64{120, 250}, emitted)
}

func TestProgressThrottle_PhatNgayKhiDatTotal(t *testing.T) {
	var emitted []int64
	p := newProgressThrottle(1024, 200, func(written int64) {
		emitted = append(emitted, written)
	})

	// 200 byte < step 1024 nhưng đã đạt total -> phát ngay
	p.report(200)
	assert.Equal(t, []int64{200}, emitted)
}

func TestProgressThrottle_FlushPhatPhanConLai(t *testing.T) {
	var emitted []int64
	p := newProgressThrottle(100, 1000, func(written int64) {
		emitted = append(emitted, written)
	})

	p.report(150)
	p.report(170) // phần dư 20 byte chưa được phát
	p.flush()
	assert.Equal(t, []int64{150, 170}, emitted)

	// flush lần nữa không phát trùng
	p.flush()
	assert.Equal(t, []int64{150, 170}, emitted)
}

func TestProgressThrottle_StepKhongHopLeVeDefault(t *testing.T) {
	p := newProgressThrottle(0, 10*1024*1024, func(int64) {})
	assert.Equal(t, int64(256*1024), p.step, "step <= 0 phải rơi về mặc định 256KiB")
}
