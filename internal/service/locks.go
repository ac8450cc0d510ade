package service

import "sync"

// registerLocks hands out one mutex per register code. Session open/close and
// Z finalization serialize on it so two concurrent calls racing against the
// same register cannot both pass their pre-checks.
type registerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newRegisterLocks() *registerLocks {
	return &registerLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *registerLocks) get(registerCode string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[registerCode]
	if !ok {
		m = &sync.Mutex{}
		l.locks[registerCode] = m
	}
	return m
}
