// Package session keeps the dataset a user uploaded, scoped to one browser
// session. Handlers receive the *Session explicitly.
package session

import (
	"sync"
	"time"

	"sales-dashboard/internal/dataset"
)

type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.RWMutex
	dataset  *dataset.Dataset
	branch   string
	lastSeen time.Time
}

func (s *Session) Dataset() *dataset.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Replace swaps the whole dataset and resets the branch selection.
func (s *Session) Replace(ds *dataset.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = ds
	s.branch = ""
}

func (s *Session) Clear() {
	s.Replace(nil)
}

func (s *Session) Branch() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.branch
}

func (s *Session) SelectBranch(branch string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.branch = branch
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}
