package bar

import (
	"bufio"
	"io"
	"sync"
)

// sourceBacklog bounds how many lines a source buffers before its pump
// blocks (or Push starts dropping).
const sourceBacklog = 64

// Source pumps an input stream line by line so the scheduler can multiplex
// any number of readables through a single wake channel. A source is
// "ready" when at least one whole line (or the stream's terminal error) is
// buffered, which reproduces select(2) semantics: an already-ready source
// makes the block step return immediately.
type Source struct {
	lines chan string

	mu      sync.Mutex
	wake    chan<- struct{}
	err     error
	closed  bool
	errSeen bool
}

// NewSource starts a pump goroutine reading r until EOF or error. The
// trailing newline is stripped from every line.
func NewSource(r io.Reader) *Source {
	s := newSource()
	go s.pump(r)
	return s
}

// NewPushSource returns a source fed by Push instead of a stream, used for
// injected control-plane events.
func NewPushSource() *Source { return newSource() }

func newSource() *Source {
	return &Source{lines: make(chan string, sourceBacklog)}
}

func (s *Source) pump(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s.lines <- sc.Text()
		s.signal()
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	s.fail(err)
}

// Push enqueues a line as if it had been read from the stream. It reports
// false, dropping the line, when the backlog is full; callers must not be
// allowed to block the control plane on a stalled loop.
func (s *Source) Push(line string) bool {
	select {
	case s.lines <- line:
		s.signal()
		return true
	default:
		return false
	}
}

// notify registers the loop's wake channel. The scheduler calls this once
// before it first blocks; lines buffered earlier are caught by the ready
// check that precedes every block.
func (s *Source) notify(wake chan<- struct{}) {
	s.mu.Lock()
	s.wake = wake
	s.mu.Unlock()
}

func (s *Source) signal() {
	s.mu.Lock()
	wake := s.wake
	s.mu.Unlock()
	if wake == nil {
		return
	}
	select {
	case wake <- struct{}{}:
	default:
	}
}

func (s *Source) fail(err error) {
	s.mu.Lock()
	s.closed = true
	s.err = err
	s.mu.Unlock()
	s.signal()
}

// Ready reports whether TryNext or Err would yield something. A terminal
// error counts as ready exactly once; after it is consumed the source goes
// permanently quiet instead of spinning the loop.
func (s *Source) Ready() bool {
	if len(s.lines) > 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed && !s.errSeen
}

// TryNext pops one buffered line without blocking.
func (s *Source) TryNext() (line string, ok bool) {
	select {
	case line = <-s.lines:
		return line, true
	default:
		return "", false
	}
}

// Err surfaces the stream's terminal error (io.EOF included) once all
// buffered lines are drained. The error is delivered a single time;
// subsequent calls return nil.
func (s *Source) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed && !s.errSeen {
		s.errSeen = true
		return s.err
	}
	return nil
}
