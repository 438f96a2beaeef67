package display

import (
	"sync"

	"github.com/tauraamui/prismdaemon/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

type mockSink struct {
	mu       sync.Mutex
	isClosed bool
	shown    int
}

func Mock() Sink {
	return &mockSink{}
}

func (s *mockSink) Show(frame videoframe.NoCloser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return xerror.New("sink is closed")
	}
	s.shown++
	return nil
}

func (s *mockSink) ShownCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

func (s *mockSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isClosed = true
	return nil
}
