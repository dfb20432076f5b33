package window

import "sync"

type listener struct {
	id uint64
	fn func()
}

// listenerSet is an ordered per-event listener registry.
type listenerSet struct {
	mu     sync.Mutex
	nextID uint64
	byType map[EventType][]listener
}

func (s *listenerSet) add(ev EventType, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byType == nil {
		s.byType = make(map[EventType][]listener)
	}
	s.nextID++
	id := s.nextID
	s.byType[ev] = append(s.byType[ev], listener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(ev, id) })
	}
}

func (s *listenerSet) remove(ev EventType, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls := s.byType[ev]
	for i, l := range ls {
		if l.id == id {
			s.byType[ev] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// emit calls every listener for ev outside the lock.
func (s *listenerSet) emit(ev EventType) {
	s.mu.Lock()
	ls := make([]listener, len(s.byType[ev]))
	copy(ls, s.byType[ev])
	s.mu.Unlock()

	for _, l := range ls {
		l.fn()
	}
}

func (s *listenerSet) count(ev EventType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byType[ev])
}
