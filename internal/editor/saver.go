package editor

import (
	"context"

	"go.uber.org/zap"
)

// scheduleSaveLocked (re)arms the debounce timer. Each call bumps saveGen, so
// only the most recently armed timer can commit; intermediate states inside
// the window are never written.
func (s *Session) scheduleSaveLocked() {
	if s.project == nil || s.closed {
		return
	}
	s.saveGen++
	gen := s.saveGen
	s.pending = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.sched.AfterFunc(s.debounce, func() { s.commit(gen) })
}

func (s *Session) cancelSaveLocked() {
	s.saveGen++
	s.pending = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// commit is the timer callback for generation gen. writeMu serializes writes
// so an older snapshot can never land after a newer one.
func (s *Session) commit(gen uint64) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if gen != s.saveGen || !s.pending || s.project == nil {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.timer = nil
	p := s.stampLocked()
	s.mu.Unlock()

	s.write(p.ID, func(ctx context.Context) error { return s.gateway.Put(ctx, p) })
}

// flush writes a pending save right away.
func (s *Session) flush() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if !s.pending || s.project == nil {
		s.mu.Unlock()
		return
	}
	s.cancelSaveLocked()
	p := s.stampLocked()
	s.mu.Unlock()

	s.write(p.ID, func(ctx context.Context) error { return s.gateway.Put(ctx, p) })
}

// write runs put detached from any caller context. Failures are logged and
// not retried; the next mutation's save is the only retry.
func (s *Session) write(projectID string, put func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()
	if err := put(ctx); err != nil {
		s.log.Error("project save failed", zap.String("project_id", projectID), zap.Error(err))
		return
	}
	s.log.Debug("project saved", zap.String("project_id", projectID))
}
