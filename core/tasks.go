package orchestration

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type task struct {
	name       string
	pipelineID uuid.UUID
	done       chan struct{}
}

// taskRegistry tracks in-flight background tasks so shutdown can join
// them. Once closed it refuses new tasks.
type taskRegistry struct {
	mu     sync.Mutex
	closed bool
	nextID uint64
	tasks  map[uint64]*task
}

func newTaskRegistry() *taskRegistry {
	return &taskRegistry{tasks: map[uint64]*task{}}
}

// spawn runs fn on its own goroutine. It reports false without running fn
// when the registry is closed or allow returns false.
func (r *taskRegistry) spawn(ctx context.Context, name string, pipelineID uuid.UUID, allow func() bool, fn func(context.Context)) bool {
	r.mu.Lock()
	if r.closed || (allow != nil && !allow()) {
		r.mu.Unlock()
		return false
	}
	r.nextID++
	id := r.nextID
	t := &task{name: name, pipelineID: pipelineID, done: make(chan struct{})}
	r.tasks[id] = t
	r.mu.Unlock()

	go func() {
		defer r.remove(id)
		defer close(t.done)
		fn(ctx)
	}()
	return true
}

func (r *taskRegistry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
}

func (r *taskRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// closeAndJoin stops accepting tasks and waits up to timeout for each task
// still running. The registry is empty afterwards; the number of tasks that
// did not finish in time is returned.
func (r *taskRegistry) closeAndJoin(timeout time.Duration) int {
	r.mu.Lock()
	r.closed = true
	pending := make([]*task, 0, len(r.tasks))
	for _, t := range r.tasks {
		pending = append(pending, t)
	}
	r.mu.Unlock()

	abandoned := 0
	for _, t := range pending {
		timer := time.NewTimer(timeout)
		select {
		case <-t.done:
		case <-timer.C:
			abandoned++
			logger.Warn("abandoning task that did not stop in time",
				"task", t.name, "pipeline_id", t.pipelineID.String(), "timeout", timeout)
		}
		timer.Stop()
	}

	r.mu.Lock()
	clear(r.tasks)
	r.mu.Unlock()
	return abandoned
}
