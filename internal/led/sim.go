package led

import "sync"

// Sim keeps every frame in memory. Useful for headless runs and tests.
type Sim struct {
	mu     sync.Mutex
	count  int
	frames [][]byte
	closed bool

	// Fail, when set, is returned from Write instead of recording the frame.
	Fail error
}

func NewSim(count int) *Sim { return &Sim{count: count} }

func (s *Sim) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.Fail != nil {
		return s.Fail
	}
	if err := checkFrame(rgb, s.count); err != nil {
		return err
	}
	s.frames = append(s.frames, append([]byte(nil), rgb...))
	return nil
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Count returns how many frames were written.
func (s *Sim) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// Last returns a copy of the most recent frame, or nil.
func (s *Sim) Last() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil
	}
	return append([]byte(nil), s.frames[len(s.frames)-1]...)
}

// Frames returns copies of all frames in write order.
func (s *Sim) Frames() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.frames))
	for i, f := range s.frames {
		out[i] = append([]byte(nil), f...)
	}
	return out
}
