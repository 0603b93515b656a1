package component

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	"github.com/onflow/flow-blocksync/module"
	"github.com/onflow/flow-blocksync/module/irrecoverable"
	"github.com/onflow/flow-blocksync/module/util"
)

// Component is started once with a SignalerContext and runs until that
// context is cancelled or one of its routines throws. Done closes in both
// cases.
type Component interface {
	module.Startable
	module.ReadyDoneAware
}

// ReadyFunc is called by a worker once it is ready to process work.
type ReadyFunc func()

// ComponentWorker is a long-running routine of a component. It must call
// ready exactly once it is able to process work, and return when ctx is
// cancelled. Irrecoverable errors are thrown with ctx.
type ComponentWorker func(ctx irrecoverable.SignalerContext, ready ReadyFunc)

// ComponentManagerBuilder collects the workers of a ComponentManager. It is
// not safe for concurrent use.
type ComponentManagerBuilder struct {
	workers []ComponentWorker
}

func NewComponentManagerBuilder() *ComponentManagerBuilder {
	return &ComponentManagerBuilder{}
}

// AddWorker registers a worker. All workers run concurrently once the
// manager is started.
func (b *ComponentManagerBuilder) AddWorker(worker ComponentWorker) *ComponentManagerBuilder {
	b.workers = append(b.workers, worker)
	return b
}

func (b *ComponentManagerBuilder) Build() *ComponentManager {
	workers := make([]ComponentWorker, len(b.workers))
	copy(workers, b.workers)
	return &ComponentManager{
		started: atomic.NewBool(false),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
		workers: workers,
	}
}

var _ Component = (*ComponentManager)(nil)

// ComponentManager implements Component on top of a fixed set of workers.
// Embedding it gives a type its Start, Ready and Done methods.
//
// Ready closes once every worker has called its ReadyFunc. A worker that
// returns without calling it keeps Ready open forever. Done closes once every
// worker has returned. The first error thrown by any worker cancels the
// remaining workers and is rethrown on the context passed to Start.
type ComponentManager struct {
	started *atomic.Bool
	ready   chan struct{}
	done    chan struct{}
	workers []ComponentWorker
}

// Start launches the workers. It panics with module.ErrMultipleStartup when
// called a second time.
func (c *ComponentManager) Start(parent irrecoverable.SignalerContext) {
	if !c.started.CompareAndSwap(false, true) {
		panic(module.ErrMultipleStartup)
	}

	ctx, cancel := context.WithCancel(parent)
	workerCtx, errChan := irrecoverable.WithSignaler(ctx)

	var readyGroup, doneGroup sync.WaitGroup
	readyGroup.Add(len(c.workers))
	doneGroup.Add(len(c.workers))
	for _, worker := range c.workers {
		go func(worker ComponentWorker) {
			defer doneGroup.Done()
			var once sync.Once
			worker(workerCtx, func() { once.Do(readyGroup.Done) })
		}(worker)
	}

	workersDone := make(chan struct{})
	go func() {
		readyGroup.Wait()
		close(c.ready)
	}()
	go func() {
		doneGroup.Wait()
		close(workersDone)
	}()

	go func() {
		// Throw exits this goroutine, so done is closed in a deferred call
		// and only after the error reached the parent.
		defer func() {
			cancel()
			<-workersDone
			close(c.done)
		}()
		err := util.WaitError(errChan, workersDone)
		if err != nil {
			cancel()
			parent.Throw(err)
		}
	}()
}

func (c *ComponentManager) Ready() <-chan struct{} {
	return c.ready
}

func (c *ComponentManager) Done() <-chan struct{} {
	return c.done
}
