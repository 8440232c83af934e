package handlers

import "sync"

// Pending admin actions, keyed by the admin's user id. The next plain
// message from that admin is consumed by the pending action.
const (
	actionBroadcast   = "broadcast"
	actionAddMaterial = "add_material"
)

// AdminState tracks which admins are in the middle of a multi-step panel
// action. Safe for concurrent use by update handlers.
type AdminState struct {
	mu      sync.Mutex
	pending map[int64]string
}

// NewAdminState creates an empty state tracker.
func NewAdminState() *AdminState {
	return &AdminState{pending: make(map[int64]string)}
}

// Set records a pending action for the admin, replacing any previous one.
func (s *AdminState) Set(adminID int64, action string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[adminID] = action
}

// Take returns and clears the admin's pending action, if any.
func (s *AdminState) Take(adminID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	action, ok := s.pending[adminID]
	if ok {
		delete(s.pending, adminID)
	}
	return action, ok
}

// Clear drops the admin's pending action.
func (s *AdminState) Clear(adminID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, adminID)
}
