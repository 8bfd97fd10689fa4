package intake

import "sync"

// NoteQueue holds pending context notes produced by side-channel events
// (document processed, URL submitted). Notes accumulate in FIFO order and are
// consumed exactly once, on the next turn the user sends.
type NoteQueue struct {
	mu    sync.Mutex
	notes []string
}

// Push appends a note to the queue.
func (q *NoteQueue) Push(note string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notes = append(q.notes, note)
}

// Drain removes and returns all queued notes in the order they were pushed.
func (q *NoteQueue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	drained := q.notes
	q.notes = nil
	return drained
}

// Len reports the number of queued notes.
func (q *NoteQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.notes)
}

// requeue puts notes back at the front of the queue, preserving their order.
// Used when a turn fails before the notes reached the model.
func (q *NoteQueue) requeue(notes []string) {
	if len(notes) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notes = append(append([]string{}, notes...), q.notes...)
}
