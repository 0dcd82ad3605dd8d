package deliberation

import (
	"sync"

	"github.com/rcliao/sentiment-agent/internal/model"
)

// history is a fixed-capacity ring of the most recent thoughts.
type history struct {
	mu    sync.RWMutex
	buf   []model.Thought
	next  int // index the next thought is written to
	size  int
	total int
}

func newHistory(capacity int) *history {
	if capacity < 1 {
		capacity = 1
	}
	return &history{buf: make([]model.Thought, capacity)}
}

func (h *history) push(thoughts ...model.Thought) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range thoughts {
		h.buf[h.next] = t
		h.next = (h.next + 1) % len(h.buf)
		if h.size < len(h.buf) {
			h.size++
		}
		h.total++
	}
}

// recent returns up to n thoughts, oldest first.
func (h *history) recent(n int) []model.Thought {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n > h.size {
		n = h.size
	}
	if n <= 0 {
		return []model.Thought{}
	}
	out := make([]model.Thought, n)
	start := h.next - n
	if start < 0 {
		start += len(h.buf)
	}
	for i := range out {
		out[i] = h.buf[(start+i)%len(h.buf)]
	}
	return out
}

func (h *history) counts() (retained, total int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size, h.total
}
