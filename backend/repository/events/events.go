package events

import "strix/backend/domain"

// EventType 事件类型
type EventType string

const (
	// VPN 事件
	EventVPNStatusChanged EventType = "vpn.status_changed"

	// 设置事件
	EventSettingsChanged         EventType = "settings.changed"
	EventThemeChanged            EventType = "settings.theme_changed"
	EventPermissionPolicyChanged EventType = "settings.permission_policy_changed"

	// 会话代理事件
	EventSessionProxyChanged EventType = "session.proxy_changed"

	// 历史记录事件
	EventHistoryChanged EventType = "history.changed"

	// 下载事件
	EventDownloadStarted   EventType = "download.started"
	EventDownloadCompleted EventType = "download.completed"
	EventDownloadFailed    EventType = "download.failed"

	// 通配符事件（用于订阅所有事件）
	EventAll EventType = "*"
)

// Event 事件接口
type Event interface {
	Type() EventType
}

// VPNStatusEvent VPN 状态事件（对应前端 vpn-status 推送）
type VPNStatusEvent struct {
	EventType EventType
	Status    domain.VPNStatus
}

func (e VPNStatusEvent) Type() EventType { return e.EventType }

// SettingsEvent 设置变更事件（Key 为空表示批量变更）
type SettingsEvent struct {
	EventType EventType
	Key       string
}

func (e SettingsEvent) Type() EventType { return e.EventType }

// ThemeEvent 主题变更事件（对应前端 apply-theme 推送）
type ThemeEvent struct {
	EventType EventType
	Theme     string
}

func (e ThemeEvent) Type() EventType { return e.EventType }

// PermissionPolicyEvent 权限策略变更事件
type PermissionPolicyEvent struct {
	EventType EventType
	Policy    domain.PermissionPolicy
}

func (e PermissionPolicyEvent) Type() EventType { return e.EventType }

// SessionProxyEvent 会话代理规则变更事件（Rules 为空表示清除）
type SessionProxyEvent struct {
	EventType EventType
	Rules     string
}

func (e SessionProxyEvent) Type() EventType { return e.EventType }

// HistoryEvent 历史记录变更事件
type HistoryEvent struct {
	EventType EventType
}

func (e HistoryEvent) Type() EventType { return e.EventType }

// DownloadEvent 下载生命周期事件（对应前端 download-started/completed 推送）
type DownloadEvent struct {
	EventType EventType
	Item      domain.DownloadItem
}

func (e DownloadEvent) Type() EventType { return e.EventType }
