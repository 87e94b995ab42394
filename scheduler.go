package go_scrapy

import (
	"context"
	"sync"

	"github.com/siskinc/zijiyou/dedup"
)

type Scheduler interface {
	// AddRequest queues r and reports whether it was new. It never blocks.
	AddRequest(r *Request) bool
	NextRequest(ctx context.Context) (*Request, error)
	Len() int
}

type SchedulerConfig struct {
	// ReqQueueLen is the initial capacity of the request queue. The queue
	// grows past it.
	ReqQueueLen int
}

// DupeFilterScheduler drops requests whose fingerprint was already queued.
type DupeFilterScheduler struct {
	locker         sync.Mutex
	reqQueue       []*Request
	ready          chan struct{}
	reqFingerPrint *dedup.Set
}

func NewDupeFilterScheduler(config *SchedulerConfig) *DupeFilterScheduler {
	reqQueueLen := 0
	if config != nil {
		reqQueueLen = config.ReqQueueLen
	}
	if reqQueueLen < 0 {
		reqQueueLen = 0
	}
	return &DupeFilterScheduler{
		reqQueue:       make([]*Request, 0, reqQueueLen),
		ready:          make(chan struct{}, 1),
		reqFingerPrint: dedup.NewSet(),
	}
}

// AddRequest appends r to the queue. Spiders call it from Parse on the same
// goroutine that drains the queue, so it must not wait for a consumer.
func (d *DupeFilterScheduler) AddRequest(r *Request) bool {
	if d.reqFingerPrint.CheckAndAdd(r.Fingerprint()) {
		return false
	}
	d.locker.Lock()
	d.reqQueue = append(d.reqQueue, r)
	d.locker.Unlock()
	select {
	case d.ready <- struct{}{}:
	default:
	}
	return true
}

// NextRequest pops the oldest queued request, waiting for one until ctx is
// done.
func (d *DupeFilterScheduler) NextRequest(ctx context.Context) (*Request, error) {
	for {
		if r := d.pop(); r != nil {
			return r, nil
		}
		select {
		case <-d.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (d *DupeFilterScheduler) pop() *Request {
	d.locker.Lock()
	defer d.locker.Unlock()
	if len(d.reqQueue) == 0 {
		return nil
	}
	r := d.reqQueue[0]
	d.reqQueue[0] = nil
	d.reqQueue = d.reqQueue[1:]
	return r
}

func (d *DupeFilterScheduler) Len() int {
	d.locker.Lock()
	defer d.locker.Unlock()
	return len(d.reqQueue)
}

// Seen is the number of distinct requests ever scheduled.
func (d *DupeFilterScheduler) Seen() int {
	return d.reqFingerPrint.Len()
}
