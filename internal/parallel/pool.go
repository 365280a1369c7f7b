// Package parallel runs panel work on a resizable worker pool.
package parallel

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Pool is a fixed set of worker goroutines draining an unbounded task queue.
// Submit never blocks, so tasks may submit follow-up tasks.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	closing bool
	workers int
	wg      sync.WaitGroup
}

// NewPool starts a pool with n workers (at least one).
func NewPool(n int) *Pool {
	p := &Pool{}
	p.cond = sync.NewCond(&p.mu)
	p.start(max(n, 1))
	return p
}

func (p *Pool) start(n int) {
	p.workers = n
	p.closing = false
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closing {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		task := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()
		task()
	}
}

// Submit queues a task.
func (p *Pool) Submit(task func()) {
	p.mu.Lock()
	p.queue = append(p.queue, task)
	p.mu.Unlock()
	p.cond.Signal()
}

// Workers returns the current worker count.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workers
}

// Resize drains the queue, stops every worker and starts n new ones. It must
// only be called between frames.
func (p *Pool) Resize(n int) {
	n = max(n, 1)
	if p.Workers() == n {
		return
	}
	old := p.Workers()
	p.stop()
	p.mu.Lock()
	p.start(n)
	p.mu.Unlock()
	logrus.Infof("worker pool resized from %d to %d", old, n)
}

func (p *Pool) stop() {
	p.mu.Lock()
	p.closing = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}

// Close drains the queue and stops the workers.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.stop()
}
