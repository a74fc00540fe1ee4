// Package settings 实现设置存储与变更副作用。
//
// 设置是进程级的扁平 key/value：启动时从快照合并默认值加载一次，
// 之后通过 Update 变更、同步读取。Update 逐键写入后触发副作用，
// 各副作用相互独立、尽力而为：失败只记日志，不向调用方报告，
// 也不回滚已写入的键（无跨键原子性保证）。
package settings

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"strix/backend/domain"
	"strix/backend/repository"
	"strix/backend/repository/events"
	"strix/backend/service/shared"
)

// DownloadDirBinder 下载目录绑定点（downloads.Service 实现）
type DownloadDirBinder interface {
	SetDirectory(dir string)
}

// Service 设置服务
type Service struct {
	repo  repository.SettingsRepository
	bus   *events.Bus
	flags *shared.LaunchFlagsFile

	downloadDir DownloadDirBinder

	mu     sync.Mutex
	policy domain.PermissionPolicy
}

// NewService 创建设置服务
func NewService(repo repository.SettingsRepository, bus *events.Bus, flags *shared.LaunchFlagsFile) *Service {
	return &Service{
		repo:  repo,
		bus:   bus,
		flags: flags,
	}
}

// SetDownloadDirBinder 注入下载目录绑定点（构造顺序原因，不走构造函数）
func (s *Service) SetDownloadDirBinder(binder DownloadDirBinder) {
	s.downloadDir = binder
}

// Defaults 声明的默认设置。每个键都有默认值。
func Defaults() domain.Settings {
	return domain.Settings{
		domain.SettingStartupPage:          false,
		domain.SettingNewTabDefault:        true,
		domain.SettingTheme:                "system",
		domain.SettingClearHistoryOnExit:   false,
		domain.SettingTrackingProtection:   true,
		domain.SettingHardwareAcceleration: true,
		domain.SettingDownloadLocation:     shared.DefaultDownloadsDir(),
		domain.SettingVPNAutoConnect:       false,
		domain.SettingSearchEngine:         "google",
	}
}

// Get 返回完整设置映射：持久化值合并在默认值之上（缺失键回退默认）。
func (s *Service) Get(ctx context.Context) (domain.Settings, error) {
	stored, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	merged := Defaults()
	for key, value := range stored {
		merged[key] = value
	}
	return merged, nil
}

// Set 写入单个键（立即触发事件驱动的持久化）。未知键按原样存储。
func (s *Service) Set(ctx context.Context, key string, value any) error {
	return s.repo.SetKey(ctx, key, value)
}

// Update 应用部分设置映射：逐键 Set，再执行副作用。
// 中途失败会留下部分更新的状态；失败只记日志。
func (s *Service) Update(ctx context.Context, partial domain.Settings) error {
	if len(partial) == 0 {
		return nil
	}

	// 固定键序，让并发 Update 的交错至少是可复现的
	keys := make([]string, 0, len(partial))
	for key := range partial {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := s.Set(ctx, key, partial[key]); err != nil {
			log.Printf("[Settings] set %s failed: %v", key, err)
		}
	}

	s.applySettings(ctx, partial)
	return nil
}

// PermissionPolicy 当前权限策略（trackingProtection 的派生物）
func (s *Service) PermissionPolicy() domain.PermissionPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// Bootstrap 启动时按已加载的设置对齐副作用落点（不发事件）。
func (s *Service) Bootstrap(ctx context.Context) error {
	settings, err := s.Get(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.policy = domain.PermissionPolicy{
		AllowAll:  !settings.Bool(domain.SettingTrackingProtection, true),
		UpdatedAt: time.Now(),
	}
	s.mu.Unlock()

	if s.downloadDir != nil {
		if dir := strings.TrimSpace(settings.String(domain.SettingDownloadLocation, "")); dir != "" {
			s.downloadDir.SetDirectory(dir)
		}
	}
	return nil
}

// applySettings 执行设置变更副作用。每项独立、尽力而为。
func (s *Service) applySettings(ctx context.Context, partial domain.Settings) {
	if theme, ok := partial[domain.SettingTheme].(string); ok {
		s.applyTheme(theme)
	}
	if _, ok := partial[domain.SettingHardwareAcceleration]; ok {
		s.applyHardwareAcceleration(partial.Bool(domain.SettingHardwareAcceleration, true))
	}
	if _, ok := partial[domain.SettingTrackingProtection]; ok {
		s.applyTrackingProtection(partial.Bool(domain.SettingTrackingProtection, true))
	}
	if location, ok := partial[domain.SettingDownloadLocation].(string); ok {
		s.applyDownloadLocation(location)
	}
}

// applyTheme 通知前端套用主题（fire-and-forget）
func (s *Service) applyTheme(theme string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.ThemeEvent{
		EventType: events.EventThemeChanged,
		Theme:     theme,
	})
}

// applyHardwareAcceleration 翻转进程级开关。
// 开关写入启动开关文件，下次壳进程启动才生效；不在这里绕过这个限制。
func (s *Service) applyHardwareAcceleration(enabled bool) {
	if s.flags == nil {
		return
	}
	if err := s.flags.Mutate(func(flags shared.LaunchFlags) shared.LaunchFlags {
		flags.DisableHardwareAcceleration = !enabled
		return flags
	}); err != nil {
		log.Printf("[Settings] write launch flags failed: %v", err)
	}
}

// applyTrackingProtection 替换权限策略：按单个布尔放行/拒绝所有权限请求。
func (s *Service) applyTrackingProtection(enabled bool) {
	policy := domain.PermissionPolicy{
		AllowAll:  !enabled,
		UpdatedAt: time.Now(),
	}

	s.mu.Lock()
	s.policy = policy
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(events.PermissionPolicyEvent{
			EventType: events.EventPermissionPolicyChanged,
			Policy:    policy,
		})
	}
}

// applyDownloadLocation 重绑后续保存操作使用的下载目录
func (s *Service) applyDownloadLocation(dir string) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return
	}
	if s.downloadDir != nil {
		s.downloadDir.SetDirectory(dir)
	}
}

// ChooseDownloadLocation 校验并持久化前端选择的下载目录；
// dir 为空时返回当前生效值（choose-download-location 的取当前默认分支）。
func (s *Service) ChooseDownloadLocation(ctx context.Context, dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		settings, err := s.Get(ctx)
		if err != nil {
			return "", err
		}
		return settings.String(domain.SettingDownloadLocation, shared.DefaultDownloadsDir()), nil
	}

	if err := s.Set(ctx, domain.SettingDownloadLocation, dir); err != nil {
		return "", fmt.Errorf("persist download location: %w", err)
	}
	s.applyDownloadLocation(dir)
	return dir, nil
}
