package supervisor

import "sync"

// logBuffer keeps the most recent child output lines in a fixed-size
// ring. Writers never block and never grow memory past max lines.
type logBuffer struct {
	mu    sync.Mutex
	lines []string
	max   int
	head  int
	count int
}

func newLogBuffer(max int) *logBuffer {
	if max <= 0 {
		max = 1
	}
	return &logBuffer{lines: make([]string, max), max: max}
}

// Add appends a line, evicting the oldest when full.
func (b *logBuffer) Add(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines[(b.head+b.count)%b.max] = line
	if b.count < b.max {
		b.count++
		return
	}
	b.head = (b.head + 1) % b.max
}

// Tail returns the last n lines in arrival order. n <= 0 returns all
// buffered lines.
func (b *logBuffer) Tail(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 || n > b.count {
		n = b.count
	}
	out := make([]string, 0, n)
	start := b.count - n
	for i := start; i < b.count; i++ {
		out = append(out, b.lines[(b.head+i)%b.max])
	}
	return out
}

// Len reports the number of buffered lines.
func (b *logBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Clear drops all buffered lines.
func (b *logBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = 0
	b.count = 0
}
