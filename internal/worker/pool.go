package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by a Pool.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a Job produces. Failed jobs report through GetError
// rather than aborting the pool.
type Result interface {
	GetError() error
}

// Pool fans jobs out to a fixed number of worker goroutines. Usage is
// Start, Submit each job, then a single Wait to collect everything.
// Results are drained as they arrive, so Submit never waits on the
// caller collecting them; at most it backpressures on busy workers.
type Pool struct {
	size      int
	jobs      chan Job
	results   chan Result
	collected *ResultCollector
	drained   chan struct{}
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	once      sync.Once
}

// NewPool creates a pool with the given number of workers. Sizes below
// one fall back to a single worker.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		size:      size,
		jobs:      make(chan Job, size*2),
		results:   make(chan Result, size*2),
		collected: NewResultCollector(),
		drained:   make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the worker goroutines and the result drain.
func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run()
	}
	go func() {
		for res := range p.results {
			p.collected.Add(res)
		}
		close(p.drained)
	}()
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			res := job.Execute(p.ctx)
			select {
			case p.results <- res:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. Submissions after Shutdown are dropped.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait closes the queue, waits for the workers to drain it, and returns
// every result. Call it exactly once, after the final Submit.
func (p *Pool) Wait() []Result {
	close(p.jobs)
	p.wg.Wait()
	p.once.Do(func() { close(p.results) })
	<-p.drained
	return p.collected.Results()
}

// Shutdown cancels in-flight jobs and stops the workers without
// collecting results.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.once.Do(func() { close(p.results) })
	<-p.drained
}

// ResultCollector accumulates results across goroutines.
type ResultCollector struct {
	mu      sync.Mutex
	results []Result
}

// NewResultCollector creates an empty collector.
func NewResultCollector() *ResultCollector {
	return &ResultCollector{results: make([]Result, 0)}
}

// Add appends a result.
func (c *ResultCollector) Add(result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

// Results returns everything collected so far.
func (c *ResultCollector) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}
