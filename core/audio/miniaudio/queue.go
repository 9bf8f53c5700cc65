package miniaudio

import "sync"

// playQueue holds audio waiting for the speaker callback. Marks are
// released once everything queued before them has been handed to the
// device, or when the queue is cleared.
type playQueue struct {
	mu      sync.Mutex
	pending []byte
	marks   []queueMark
}

type queueMark struct {
	remaining int
	done      chan struct{}
}

func (q *playQueue) push(data []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, data...)
}

// mark returns a channel closed when the audio queued so far has played.
func (q *playQueue) mark() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()

	done := make(chan struct{})
	if len(q.pending) == 0 {
		close(done)
		return done
	}
	q.marks = append(q.marks, queueMark{remaining: len(q.pending), done: done})
	return done
}

// fill copies queued audio into out and pads the rest with silence.
func (q *playQueue) fill(out []byte) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	played := copy(out, q.pending)
	clear(out[played:])
	q.pending = q.pending[played:]
	if len(q.pending) == 0 {
		q.pending = nil
	}

	released := 0
	for i := range q.marks {
		q.marks[i].remaining -= played
		if q.marks[i].remaining <= 0 {
			close(q.marks[i].done)
			released++
		}
	}
	q.marks = q.marks[released:]
	return played
}

func (q *playQueue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = nil
	for _, mark := range q.marks {
		close(mark.done)
	}
	q.marks = nil
}

func (q *playQueue) buffered() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
