package domain

import "time"

// Settings 浏览器设置映射（扁平 key/value）。
// 所有键都有默认值（见 settings.Defaults）；未知键按原样存储，不做校验。
type Settings map[string]any

// 设置键名（与前端 IPC 协议保持一致）
const (
	SettingStartupPage          = "startupPage"
	SettingNewTabDefault        = "newTabDefault"
	SettingTheme                = "theme"
	SettingClearHistoryOnExit   = "clearHistoryOnExit"
	SettingTrackingProtection   = "trackingProtection"
	SettingHardwareAcceleration = "hardwareAcceleration"
	SettingDownloadLocation     = "downloadLocation"
	SettingVPNAutoConnect       = "vpnAutoConnect"
	SettingSearchEngine         = "searchEngine"
)

// Bool 按布尔读取设置值；类型不符或不存在时返回 fallback。
func (s Settings) Bool(key string, fallback bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return fallback
}

// String 按字符串读取设置值；类型不符或不存在时返回 fallback。
func (s Settings) String(key string, fallback string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return fallback
}

// VPNStatus VPN 连接状态（推送给前端，也作为 connect/disconnect 的返回值）
type VPNStatus struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message,omitempty"`
	Proxy     string `json:"proxy,omitempty"`
	Location  string `json:"location,omitempty"`
}

// HistoryEntry 历史记录条目
type HistoryEntry struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	VisitCount    int       `json:"visitCount"`
	LastVisitedAt time.Time `json:"lastVisitedAt"`
}

// Suggestion 历史建议（地址栏补全用的精简形态）
type Suggestion struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// DownloadState 下载状态
type DownloadState string

const (
	DownloadPending   DownloadState = "pending"
	DownloadRunning   DownloadState = "running"
	DownloadCompleted DownloadState = "completed"
	DownloadFailed    DownloadState = "failed"
)

// DownloadItem 单个下载任务
type DownloadItem struct {
	ID        string        `json:"id"`
	URL       string        `json:"url"`
	Filename  string        `json:"filename"`
	SavePath  string        `json:"savePath"`
	State     DownloadState `json:"state"`
	Received  int64         `json:"received"`
	Total     int64         `json:"total"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	EndedAt   time.Time     `json:"endedAt,omitempty"`
}

// BatteryStatus 电池状态。探测失败时返回哨兵值
// {percentage:-1, isCharging:false, timeRemaining:0}，不向上抛错。
type BatteryStatus struct {
	Percentage    int  `json:"percentage"`
	IsCharging    bool `json:"isCharging"`
	TimeRemaining int  `json:"timeRemaining"` // 剩余分钟数，未知为 0
}

// UnknownBattery 电池探测失败/不支持平台的哨兵值
func UnknownBattery() BatteryStatus {
	return BatteryStatus{Percentage: -1, IsCharging: false, TimeRemaining: 0}
}

// RAMUsage 内存占用（整数 MB，四舍五入）
type RAMUsage struct {
	BrowserRAM int64 `json:"browserRAM"`
	HeapUsed   int64 `json:"heapUsed"`
}

// NetworkSpeed 网速（Mbps）
type NetworkSpeed struct {
	DownloadSpeed float64 `json:"downloadSpeed"`
	UploadSpeed   float64 `json:"uploadSpeed"`
}

// PermissionPolicy 权限策略：按单个布尔放行或拒绝所有权限请求（不做按域名粒度）。
type PermissionPolicy struct {
	AllowAll  bool      `json:"allowAll"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ShellState 持久化状态快照（browser-settings 存储）
type ShellState struct {
	SchemaVersion   int            `json:"schemaVersion,omitempty"`
	Settings        Settings       `json:"settings,omitempty"`
	History         []HistoryEntry `json:"history,omitempty"`
	LastVPNLocation string         `json:"lastVpnLocation,omitempty"`
	GeneratedAt     time.Time      `json:"generatedAt"`
}
