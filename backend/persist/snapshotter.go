package persist

import (
	"log"
	"sync"
	"time"

	"strix/backend/repository"
	"strix/backend/repository/events"
)

// Snapshotter 快照管理器：订阅事件总线，防抖后落盘。
type Snapshotter struct {
	path  string
	store repository.Snapshottable

	mu       sync.Mutex
	pending  bool
	dirty    bool
	debounce time.Duration

	saveMu sync.Mutex
}

// NewSnapshotter 创建快照管理器
func NewSnapshotter(path string, store repository.Snapshottable) *Snapshotter {
	return &Snapshotter{
		path:     path,
		store:    store,
		debounce: 200 * time.Millisecond,
	}
}

// SetDebounce 设置防抖延迟
func (s *Snapshotter) SetDebounce(d time.Duration) {
	s.mu.Lock()
	s.debounce = d
	s.mu.Unlock()
}

// SubscribeEvents 订阅事件总线（所有写操作触发持久化）
func (s *Snapshotter) SubscribeEvents(bus *events.Bus) {
	bus.SubscribeAll(func(event events.Event) {
		s.Schedule()
	})
}

// Schedule 调度快照（防抖）
func (s *Snapshotter) Schedule() {
	s.mu.Lock()
	if s.pending {
		s.dirty = true
		s.mu.Unlock()
		return
	}
	s.pending = true
	s.dirty = false
	s.mu.Unlock()

	go func() {
		for {
			s.mu.Lock()
			debounce := s.debounce
			s.mu.Unlock()

			time.Sleep(debounce)
			_ = s.save()

			s.mu.Lock()
			if s.dirty {
				s.dirty = false
				s.mu.Unlock()
				continue
			}
			s.pending = false
			s.mu.Unlock()
			return
		}
	}()
}

// SaveNow 立即保存（同步）
func (s *Snapshotter) SaveNow() error {
	return s.save()
}

func (s *Snapshotter) save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := Save(s.path, s.store.Snapshot()); err != nil {
		log.Printf("[Snapshot] save failed: %v", err)
		return err
	}
	return nil
}
