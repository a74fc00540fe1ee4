package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"strix/backend/domain"
	"strix/backend/repository"
	"strix/backend/repository/events"

	"github.com/google/uuid"
)

// HistoryRepo 历史记录仓储实现
type HistoryRepo struct {
	store *Store
}

// NewHistoryRepo 创建历史记录仓储
func NewHistoryRepo(store *Store) *HistoryRepo {
	return &HistoryRepo{store: store}
}

// Upsert 按 URL 去重记录一次访问
func (r *HistoryRepo) Upsert(ctx context.Context, url, title string) (domain.HistoryEntry, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return domain.HistoryEntry{}, repository.ErrInvalidData
	}

	now := time.Now()

	r.store.Lock()
	entry, ok := r.store.History()[url]
	if !ok {
		entry = domain.HistoryEntry{
			ID:  uuid.NewString(),
			URL: url,
		}
	}
	if strings.TrimSpace(title) != "" {
		entry.Title = title
	}
	entry.VisitCount++
	entry.LastVisitedAt = now
	r.store.History()[url] = entry
	r.store.Unlock()

	// 在锁外发布事件
	r.store.PublishEvent(events.HistoryEvent{EventType: events.EventHistoryChanged})

	return entry, nil
}

// Search 标题/URL 子串匹配（不区分大小写），按最近访问倒序，最多 limit 条。
// 空查询返回空结果。
func (r *HistoryRepo) Search(ctx context.Context, query string, limit int) ([]domain.HistoryEntry, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return []domain.HistoryEntry{}, nil
	}

	r.store.RLock()
	matches := make([]domain.HistoryEntry, 0)
	for _, entry := range r.store.History() {
		if strings.Contains(strings.ToLower(entry.Title), query) ||
			strings.Contains(strings.ToLower(entry.URL), query) {
			matches = append(matches, entry)
		}
	}
	r.store.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].LastVisitedAt.Equal(matches[j].LastVisitedAt) {
			return matches[i].URL < matches[j].URL
		}
		return matches[i].LastVisitedAt.After(matches[j].LastVisitedAt)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Count 当前条目数
func (r *HistoryRepo) Count(ctx context.Context) (int, error) {
	r.store.RLock()
	defer r.store.RUnlock()
	return len(r.store.History()), nil
}

// Prune 裁剪到最多 max 条，保留最近访问的条目
func (r *HistoryRepo) Prune(ctx context.Context, max int) (int, error) {
	if max < 0 {
		max = 0
	}

	r.store.Lock()
	total := len(r.store.History())
	if total <= max {
		r.store.Unlock()
		return 0, nil
	}

	entries := make([]domain.HistoryEntry, 0, total)
	for _, entry := range r.store.History() {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastVisitedAt.After(entries[j].LastVisitedAt)
	})

	kept := make(map[string]domain.HistoryEntry, max)
	for _, entry := range entries[:max] {
		kept[entry.URL] = entry
	}
	r.store.ReplaceHistory(kept)
	r.store.Unlock()

	removed := total - max
	r.store.PublishEvent(events.HistoryEvent{EventType: events.EventHistoryChanged})
	return removed, nil
}

// Clear 清空全部历史
func (r *HistoryRepo) Clear(ctx context.Context) error {
	r.store.Lock()
	changed := len(r.store.History()) > 0
	r.store.ReplaceHistory(nil)
	r.store.Unlock()

	if changed {
		r.store.PublishEvent(events.HistoryEvent{EventType: events.EventHistoryChanged})
	}
	return nil
}

// 确保实现接口
var _ repository.HistoryRepository = (*HistoryRepo)(nil)
