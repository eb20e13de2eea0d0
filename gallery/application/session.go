package application

import "sync"

// SessionState is a point-in-time copy of a Session.
type SessionState struct {
	CameraOpen  bool
	PhotoShown  bool
	LastLocator string
}

// Session holds the presentation state of a single capture session.
type Session struct {
	mu    sync.RWMutex
	state SessionState
}

func (s *Session) OpenCamera() {
	s.mu.Lock()
	s.state.CameraOpen = true
	s.state.PhotoShown = false
	s.mu.Unlock()
}

func (s *Session) CloseCamera() {
	s.mu.Lock()
	s.state.CameraOpen = false
	s.mu.Unlock()
}

// captured moves the session from the viewfinder to the captured photo.
func (s *Session) captured(locator string) {
	s.mu.Lock()
	s.state.CameraOpen = false
	s.state.PhotoShown = true
	s.state.LastLocator = locator
	s.mu.Unlock()
}

func (s *Session) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
