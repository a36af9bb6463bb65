package filestore

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const lockStripes = 64

// ticketLock 先到先得的互斥锁，保证同一路径的写按到达顺序落库.
type ticketLock struct {
	mu      sync.Mutex
	cond    *sync.Cond
	next    uint64 // 下一张票
	serving uint64 // 当前可执行的票
}

func newTicketLock() *ticketLock {
	l := &ticketLock{}
	l.cond = sync.NewCond(&l.mu)

	return l
}

// take 领票，在调用方 goroutine 中立即确定顺序.
func (l *ticketLock) take() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.next
	l.next++

	return t
}

// wait 阻塞直到轮到 ticket.
func (l *ticketLock) wait(ticket uint64) {
	l.mu.Lock()
	for l.serving != ticket {
		l.cond.Wait()
	}
	l.mu.Unlock()
}

func (l *ticketLock) release() {
	l.mu.Lock()
	l.serving++
	l.mu.Unlock()
	l.cond.Broadcast()
}

// pathLocks 按路径哈希分片的 ticket 锁.
// 不同路径可能落在同一分片，只会多一点串行，不影响正确性.
type pathLocks struct {
	stripes [lockStripes]*ticketLock
}

func newPathLocks() *pathLocks {
	p := &pathLocks{}
	for i := range p.stripes {
		p.stripes[i] = newTicketLock()
	}

	return p
}

// lock 锁住 path 所在分片，返回解锁函数.
func (p *pathLocks) lock(path string) func() {
	l := p.stripes[xxhash.Sum64String(path)%lockStripes]

	t := l.take()
	l.wait(t)

	return l.release
}
