// Package ids 生成按时间有序的 ULID，用于请求 ID 与快照对象键.
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New 生成当前时间的 ULID.
func New() string {
	return NewAt(time.Now())
}

// NewAt 生成指定时间的 ULID，同一毫秒内单调递增.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
