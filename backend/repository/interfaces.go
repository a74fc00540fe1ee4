package repository

import (
	"context"

	"strix/backend/domain"
)

// SettingsRepository 设置仓储接口
type SettingsRepository interface {
	// All 返回完整设置映射（深拷贝，只含显式写入过的键）
	All(ctx context.Context) (domain.Settings, error)

	// SetKey 写入单个键并触发持久化事件
	SetKey(ctx context.Context, key string, value any) error
}

// HistoryRepository 历史记录仓储接口
type HistoryRepository interface {
	// Upsert 按 URL 去重记录一次访问（visitCount+1、刷新 lastVisitedAt）
	Upsert(ctx context.Context, url, title string) (domain.HistoryEntry, error)

	// Search 按标题/URL 子串匹配（不区分大小写），按最近访问倒序，最多 limit 条
	Search(ctx context.Context, query string, limit int) ([]domain.HistoryEntry, error)

	// Count 当前条目数
	Count(ctx context.Context) (int, error)

	// Prune 裁剪到最多 max 条（按最近访问保留），返回删除数量
	Prune(ctx context.Context, max int) (int, error)

	// Clear 清空全部历史
	Clear(ctx context.Context) error
}

// VPNStateRepository VPN 持久化状态（仅最后一次连接的位置码）
type VPNStateRepository interface {
	LastLocation(ctx context.Context) (string, error)
	SetLastLocation(ctx context.Context, location string) error
}

// Snapshottable 可生成持久化快照的存储
type Snapshottable interface {
	Snapshot() domain.ShellState
}

// Repositories 仓储集合（注入服务层）
type Repositories struct {
	Settings SettingsRepository
	History  HistoryRepository
	VPNState VPNStateRepository
}

// NewRepositories 创建仓储集合
func NewRepositories(settings SettingsRepository, history HistoryRepository, vpnState VPNStateRepository) Repositories {
	return Repositories{
		Settings: settings,
		History:  history,
		VPNState: vpnState,
	}
}
