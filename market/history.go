package market

import "sync"

// DefaultHistoryLimit is how many points per symbol a History keeps.
const DefaultHistoryLimit = 50

// History keeps the most recent quotes per symbol, oldest first.
type History struct {
	mu     sync.RWMutex
	limit  int
	points map[string][]Quote
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{
		limit:  limit,
		points: make(map[string][]Quote),
	}
}

func (h *History) Limit() int { return h.limit }

func (h *History) Add(q Quote) {
	if !q.Valid() {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	pts := append(h.points[q.Symbol], q)
	if over := len(pts) - h.limit; over > 0 {
		// copy so the dropped prefix can be collected
		pts = append([]Quote(nil), pts[over:]...)
	}
	h.points[q.Symbol] = pts
}

// Points returns a copy of the recorded quotes for symbol.
func (h *History) Points(symbol string) []Quote {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Quote(nil), h.points[symbol]...)
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.points = make(map[string][]Quote)
}
