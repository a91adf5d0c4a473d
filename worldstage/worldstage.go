package worldstage

import (
	"sync"
	"sync/atomic"
)

type Stage string

const (
	Init         Stage = "Init"         // The default stage of the app
	Starting     Stage = "Starting"     // App is moved to this stage after Start() is called
	Recovering   Stage = "Recovering"   // App is moved to this stage while it replays a snapshot
	Ready        Stage = "Ready"        // App is moved to this stage when it's ready to start running frames
	Running      Stage = "Running"      // App is moved to this stage when the frame loop starts
	ShuttingDown Stage = "ShuttingDown" // App is moved to this stage when it receives a shutdown signal
	ShutDown     Stage = "ShutDown"     // App is moved to this stage when it has successfully shut down
)

type Manager struct {
	current *atomic.Value

	mu        sync.Mutex
	notifyChs map[Stage]chan struct{}
	reached   map[Stage]bool
}

func NewManager() *Manager {
	m := &Manager{
		current:   &atomic.Value{},
		notifyChs: map[Stage]chan struct{}{},
		reached:   map[Stage]bool{},
	}
	m.Store(Init)
	return m
}

func (m *Manager) CompareAndSwap(oldStage, newStage Stage) (swapped bool) {
	swapped = m.current.CompareAndSwap(oldStage, newStage)
	if swapped {
		m.markReached(newStage)
	}
	return swapped
}

func (m *Manager) Current() Stage {
	return m.current.Load().(Stage)
}

func (m *Manager) Store(val Stage) {
	m.current.Store(val)
	m.markReached(val)
}

// NotifyOnStage returns a channel that is closed once the given stage is
// reached. If the stage was already reached, the returned channel is closed
// from the start.
func (m *Manager) NotifyOnStage(stage Stage) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.notifyChs[stage]
	if !ok {
		ch = make(chan struct{})
		m.notifyChs[stage] = ch
		if m.reached[stage] {
			close(ch)
		}
	}
	return ch
}

func (m *Manager) markReached(stage Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reached[stage] {
		return
	}
	m.reached[stage] = true
	if ch, ok := m.notifyChs[stage]; ok {
		close(ch)
	}
}
