package service

import (
	"context"
	"log"
	"time"

	"strix/backend/domain"
	"strix/backend/repository"
	"strix/backend/service/downloads"
	"strix/backend/service/history"
	"strix/backend/service/sessionproxy"
	settingssvc "strix/backend/service/settings"
	"strix/backend/service/telemetry"
	"strix/backend/service/vpn"
)

// Facade 服务门面（API 聚合层）
type Facade struct {
	settings     *settingssvc.Service
	vpn          *vpn.Service
	sessionProxy *sessionproxy.Service
	telemetry    *telemetry.Service
	history      *history.Service
	downloads    *downloads.Service

	appLogPath      string
	appLogStartedAt time.Time

	state repository.Snapshottable
	repos repository.Repositories
}

// NewFacade 创建门面服务
func NewFacade(
	settingsSvc *settingssvc.Service,
	vpnSvc *vpn.Service,
	sessionProxySvc *sessionproxy.Service,
	telemetrySvc *telemetry.Service,
	historySvc *history.Service,
	downloadsSvc *downloads.Service,
	repos repository.Repositories,
) *Facade {
	return &Facade{
		settings:     settingsSvc,
		vpn:          vpnSvc,
		sessionProxy: sessionProxySvc,
		telemetry:    telemetrySvc,
		history:      historySvc,
		downloads:    downloadsSvc,
		repos:        repos,
	}
}

func (f *Facade) SetAppLog(path string, startedAt time.Time) {
	f.appLogPath = path
	f.appLogStartedAt = startedAt
}

// SetStateSource 注入状态快照来源（/snapshot 调试接口用）
func (f *Facade) SetStateSource(state repository.Snapshottable) {
	f.state = state
}

// Snapshot 获取完整状态快照
func (f *Facade) Snapshot() domain.ShellState {
	if f.state == nil {
		return domain.ShellState{}
	}
	return f.state.Snapshot()
}

func (f *Facade) Settings() *settingssvc.Service      { return f.settings }
func (f *Facade) VPN() *vpn.Service                   { return f.vpn }
func (f *Facade) SessionProxy() *sessionproxy.Service { return f.sessionProxy }
func (f *Facade) Telemetry() *telemetry.Service       { return f.telemetry }
func (f *Facade) History() *history.Service           { return f.history }
func (f *Facade) Downloads() *downloads.Service       { return f.downloads }

func (f *Facade) AppLog() (string, time.Time) {
	return f.appLogPath, f.appLogStartedAt
}

// Shutdown 退出收尾：断开 VPN、等待在途下载、按设置清理历史记录。
func (f *Facade) Shutdown(ctx context.Context) {
	if status := f.vpn.Status(); status.Connected {
		if _, err := f.vpn.Disconnect(ctx); err != nil {
			log.Printf("[Facade] disconnect on shutdown failed: %v", err)
		}
	}

	f.downloads.Wait()

	settings, err := f.settings.Get(ctx)
	if err != nil {
		log.Printf("[Facade] read settings on shutdown failed: %v", err)
		return
	}
	if settings.Bool(domain.SettingClearHistoryOnExit, false) {
		if err := f.history.Clear(ctx); err != nil {
			log.Printf("[Facade] clear history on exit failed: %v", err)
		}
	}
}
