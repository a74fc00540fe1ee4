package memory

import (
	"context"
	"strings"

	"strix/backend/domain"
	"strix/backend/repository"
	"strix/backend/repository/events"
)

// SettingsRepo 设置仓储实现
type SettingsRepo struct {
	store *Store
}

// NewSettingsRepo 创建设置仓储
func NewSettingsRepo(store *Store) *SettingsRepo {
	return &SettingsRepo{store: store}
}

// All 返回完整设置映射（深拷贝）
func (r *SettingsRepo) All(ctx context.Context) (domain.Settings, error) {
	r.store.RLock()
	defer r.store.RUnlock()
	settings := cloneSettings(r.store.Settings())
	if settings == nil {
		settings = make(domain.Settings)
	}
	return settings, nil
}

// SetKey 写入单个键（键级写入，不做跨键事务）
func (r *SettingsRepo) SetKey(ctx context.Context, key string, value any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return repository.ErrInvalidData
	}

	r.store.Lock()
	r.store.SetSettingKey(key, value)
	r.store.Unlock()

	// 在锁外发布事件
	r.store.PublishEvent(events.SettingsEvent{
		EventType: events.EventSettingsChanged,
		Key:       key,
	})

	return nil
}

// 确保实现接口
var _ repository.SettingsRepository = (*SettingsRepo)(nil)
