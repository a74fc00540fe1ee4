package memory

import (
	"sort"
	"sync"
	"time"

	"strix/backend/domain"
	"strix/backend/repository/events"

	"github.com/google/uuid"
)

// Store 内存存储引擎
type Store struct {
	mu sync.RWMutex

	// 数据存储
	settings domain.Settings
	history  map[string]domain.HistoryEntry // 按 URL 索引

	// 单例状态
	lastVPNLocation string

	// 事件总线
	eventBus *events.Bus
}

// NewStore 创建新的内存存储
func NewStore(eventBus *events.Bus) *Store {
	return &Store{
		settings: make(domain.Settings),
		history:  make(map[string]domain.HistoryEntry),
		eventBus: eventBus,
	}
}

// ========== 锁操作（供仓储使用）==========

// RLock 获取读锁
func (s *Store) RLock() { s.mu.RLock() }

// RUnlock 释放读锁
func (s *Store) RUnlock() { s.mu.RUnlock() }

// Lock 获取写锁
func (s *Store) Lock() { s.mu.Lock() }

// Unlock 释放写锁
func (s *Store) Unlock() { s.mu.Unlock() }

// ========== 事件发布 ==========

// PublishEvent 发布事件（异步，应在锁外调用）
func (s *Store) PublishEvent(event events.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(event)
	}
}

// ========== 数据访问（供仓储内部使用）==========

// Settings 返回设置映射（需持有锁）
func (s *Store) Settings() domain.Settings { return s.settings }

// SetSettingKey 写入单个设置键（需持有锁）
func (s *Store) SetSettingKey(key string, value any) {
	s.settings[key] = cloneValue(value)
}

// History 返回历史映射（需持有锁）
func (s *Store) History() map[string]domain.HistoryEntry { return s.history }

// ReplaceHistory 整体替换历史映射（需持有锁）
func (s *Store) ReplaceHistory(entries map[string]domain.HistoryEntry) {
	if entries == nil {
		entries = make(map[string]domain.HistoryEntry)
	}
	s.history = entries
}

// LastVPNLocation 获取最后连接位置（需持有锁）
func (s *Store) LastVPNLocation() string { return s.lastVPNLocation }

// SetLastVPNLocation 设置最后连接位置（需持有锁）
func (s *Store) SetLastVPNLocation(location string) { s.lastVPNLocation = location }

// ========== 快照与恢复 ==========

// Snapshot 生成状态快照
func (s *Store) Snapshot() domain.ShellState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// 复制历史（持久化时按最近访问倒序排列，读取侧无需重排）
	history := make([]domain.HistoryEntry, 0, len(s.history))
	for _, entry := range s.history {
		history = append(history, entry)
	}
	sort.Slice(history, func(i, j int) bool {
		if history[i].LastVisitedAt.Equal(history[j].LastVisitedAt) {
			return history[i].URL < history[j].URL
		}
		return history[i].LastVisitedAt.After(history[j].LastVisitedAt)
	})

	return domain.ShellState{
		Settings:        cloneSettings(s.settings),
		History:         history,
		LastVPNLocation: s.lastVPNLocation,
		GeneratedAt:     time.Now(),
	}
}

// LoadState 加载状态
func (s *Store) LoadState(state domain.ShellState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	s.settings = cloneSettings(state.Settings)
	if s.settings == nil {
		s.settings = make(domain.Settings)
	}

	s.history = make(map[string]domain.HistoryEntry)
	for _, entry := range state.History {
		if entry.URL == "" {
			continue
		}
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.VisitCount <= 0 {
			entry.VisitCount = 1
		}
		if entry.LastVisitedAt.IsZero() {
			entry.LastVisitedAt = now
		}
		s.history[entry.URL] = entry
	}

	s.lastVPNLocation = state.LastVPNLocation
}

func cloneSettings(in domain.Settings) domain.Settings {
	if in == nil {
		return nil
	}
	out := make(domain.Settings, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(x))
		for _, item := range x {
			out = append(out, cloneValue(item))
		}
		return out
	case []string:
		out := make([]string, len(x))
		copy(out, x)
		return out
	default:
		return v
	}
}
