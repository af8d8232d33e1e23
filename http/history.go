package http

// history holds the two most recent error reports seen by the dispatch
// loop and decides whether the next connection is answered with the most
// recent one instead of being routed.
type history[R comparable] struct {
	recent [2]R
	count  int
}

func (h *history[R]) Record(report R) {
	h.recent[1] = h.recent[0]
	h.recent[0] = report
	if h.count < 2 {
		h.count++
	}
}

func (h *history[R]) Reset() {
	*h = history[R]{}
}

// Override yields the latest report when it is the only one held or when
// it differs from the one before it. Two identical reports in a row yield
// nothing.
func (h *history[R]) Override() (R, bool) {
	switch {
	case h.count == 1:
		return h.recent[0], true
	case h.count == 2 && h.recent[0] != h.recent[1]:
		return h.recent[0], true
	}

	var zero R
	return zero, false
}
