package meshing

import (
	"context"
	"sync"
	"sync/atomic"

	"deepvoxel/internal/voxel"
)

// JobKind tells a worker which function to run — generation and meshing
// share one pool per SPEC_FULL.md's concurrency model ("any worker may
// pick up any task"), generalizing the teacher's mesh-only WorkerPool.
type JobKind int

const (
	JobGenerate JobKind = iota
	JobMesh
)

// Job is one unit of background work: generate a section, or mesh one
// that's already loaded. Token lets submitters cancel a stale job
// cooperatively (the advisory mesh-task cancellation spec.md's Chunk
// Pipeline requires) without the pool needing to know why.
//
// Generation jobs never touch the Store directly — the Voxel Store is
// main-thread-write-only per the concurrency model, so a generate worker
// builds a standalone *voxel.Section and hands it back in Result for the
// pipeline's tick to merge in.
type Job struct {
	Kind       JobKind
	Section    voxel.SectionID
	Generator  *voxel.Generator
	Store      *voxel.Store
	WaterLevel int
	Caves      bool
	CaveCheese float32
	CaveSpag   float32
	Token      *CancelToken
	ResultChan chan Result
}

// Result is what a worker sends back after processing a Job.
type Result struct {
	Kind      JobKind
	Section   voxel.SectionID
	Mesh      Mesh
	Generated *voxel.Section
	Error     error
}

// CancelToken is a cooperative, advisory cancellation flag checked by the
// worker: a job cancelled before it starts is skipped, and a job cancelled
// while it runs still finishes but its result is dropped instead of sent.
// The Chunk Pipeline does not check tokens on results it receives.
type CancelToken struct {
	cancelled atomic.Bool
}

func NewCancelToken() *CancelToken { return &CancelToken{} }
func (t *CancelToken) Cancel()     { t.cancelled.Store(true) }
func (t *CancelToken) Cancelled() bool {
	if t == nil {
		return false
	}
	return t.cancelled.Load()
}

// WorkerPool is the shared generation+meshing work-stealing pool, adapted
// from the teacher's internal/meshing/pool.go (channel job queue,
// context.Context-driven shutdown, sync.WaitGroup draining).
type WorkerPool struct {
	jobQueue chan Job
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWorkerPool starts a pool of `workers` goroutines draining a
// `queueSize`-deep job channel.
func NewWorkerPool(workers, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		jobQueue: make(chan Job, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

// SubmitJob enqueues a job without blocking; returns false if the queue is full.
func (p *WorkerPool) SubmitJob(job Job) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// SubmitJobBlocking enqueues a job, blocking until there's room or the pool shuts down.
func (p *WorkerPool) SubmitJobBlocking(job Job) {
	select {
	case p.jobQueue <- job:
	case <-p.ctx.Done():
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			p.process(job)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *WorkerPool) process(job Job) {
	if job.Token.Cancelled() {
		return
	}
	var res Result
	res.Kind = job.Kind
	res.Section = job.Section

	switch job.Kind {
	case JobGenerate:
		res.Generated = job.Generator.Generate(job.Section, job.WaterLevel, job.Caves, job.CaveCheese, job.CaveSpag)
	case JobMesh:
		grid, err := job.Store.PaddedView(job.Section)
		if err != nil {
			res.Error = err
			break
		}
		res.Mesh = Extract(grid[:])
	}

	if job.Token.Cancelled() {
		return
	}
	select {
	case job.ResultChan <- res:
	case <-p.ctx.Done():
	}
}

// Shutdown cancels outstanding jobs and waits for workers to drain.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// QueueLength reports how many jobs are currently queued.
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}
