package upload

// progressThrottle giảm tần suất báo tiến độ: chỉ phát khi số byte ghi thêm
// từ lần báo trước vượt step, hoặc khi file ghi xong. Gateway gọi report từ
// đúng một goroutine cho mỗi file nên không cần lock.
type progressThrottle struct {
	step     int64
	total    int64
	lastSent int64
	written  int64
	emit     func(written int64)
}

func newProgressThrottle(step int64, total int64, emit func(written int64)) *progressThrottle {
	if step <= 0 {
		step = 256 * 1024
	}
	return &progressThrottle{step: step, total: total, emit: emit}
}

func (p *progressThrottle) report(written int64) {
	p.written = written
	if written-p.lastSent < p.step && written < p.total {
		return
	}
	p.lastSent = written
	p.emit(written)
}

// flush phát tiến độ cuối cùng nếu còn phần chưa báo
func (p *progressThrottle) flush() {
	if p.written > p.lastSent {
		p.emit(p.written)
		p.lastSent = p.written
	}
}
