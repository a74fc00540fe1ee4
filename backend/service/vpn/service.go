// Package vpn 实现位置码到静态代理端点的切换控制器。
//
// 状态显式建模为 Disconnected / Connected(location, endpoint)，
// 不从进程开关反推。端点在最宽的可用范围（启动开关，即之后新建的进程）
// 下发，并尽力同步到当前会话。
package vpn

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"strix/backend/domain"
	"strix/backend/repository"
	"strix/backend/repository/events"
)

// ErrInvalidLocation 位置码不在固定表内
var ErrInvalidLocation = errors.New("unknown vpn location")

// locationTable 固定位置表（编译期常量，不可变）
var locationTable = map[string]string{
	"us": "us.proxy.strix.app:8443",
	"uk": "uk.proxy.strix.app:8443",
	"de": "de.proxy.strix.app:8443",
	"ca": "ca.proxy.strix.app:8443",
	"nl": "nl.proxy.strix.app:8443",
}

// Locations 返回支持的位置码列表（排序不保证）
func Locations() []string {
	codes := make([]string, 0, len(locationTable))
	for code := range locationTable {
		codes = append(codes, code)
	}
	return codes
}

// SwitchApplier 进程级代理开关
type SwitchApplier interface {
	ApplyProxy(endpoint string) error
	ClearProxy() error
}

// SessionApplier 会话级代理（尽力而为的即时生效通道）
type SessionApplier interface {
	Apply(rules string) error
	Clear() error
}

// Service VPN 控制器
type Service struct {
	switchApplier  SwitchApplier
	sessionApplier SessionApplier
	stateRepo      repository.VPNStateRepository
	bus            *events.Bus

	mu        sync.Mutex
	connected bool
	location  string
	endpoint  string
}

// NewService 创建 VPN 控制器
func NewService(switchApplier SwitchApplier, sessionApplier SessionApplier, stateRepo repository.VPNStateRepository, bus *events.Bus) *Service {
	return &Service{
		switchApplier:  switchApplier,
		sessionApplier: sessionApplier,
		stateRepo:      stateRepo,
		bus:            bus,
	}
}

// Connect 连接到指定位置。
// 已连接时再次调用直接套用新位置（last-write-wins），不报"已连接"错误。
func (s *Service) Connect(ctx context.Context, location string) (domain.VPNStatus, error) {
	endpoint, ok := locationTable[location]
	if !ok {
		return domain.VPNStatus{}, fmt.Errorf("%w: %q", ErrInvalidLocation, location)
	}

	if err := s.switchApplier.ApplyProxy(endpoint); err != nil {
		return domain.VPNStatus{}, fmt.Errorf("apply proxy switch: %w", err)
	}

	// 开关只影响之后新建的进程；尽力把端点同步到当前会话。
	if s.sessionApplier != nil {
		if err := s.sessionApplier.Apply(endpoint); err != nil {
			log.Printf("[VPN] session apply failed (switch applied): %v", err)
		}
	}

	s.mu.Lock()
	s.connected = true
	s.location = location
	s.endpoint = endpoint
	s.mu.Unlock()

	if s.stateRepo != nil {
		if err := s.stateRepo.SetLastLocation(ctx, location); err != nil {
			log.Printf("[VPN] persist last location failed: %v", err)
		}
	}

	status := domain.VPNStatus{
		Connected: true,
		Message:   fmt.Sprintf("Connected to %s", location),
		Proxy:     endpoint,
		Location:  location,
	}
	s.publish(status)
	return status, nil
}

// Disconnect 断开连接。未连接时是空操作成功。
func (s *Service) Disconnect(ctx context.Context) (domain.VPNStatus, error) {
	if err := s.switchApplier.ClearProxy(); err != nil {
		return domain.VPNStatus{}, fmt.Errorf("clear proxy switch: %w", err)
	}
	if s.sessionApplier != nil {
		if err := s.sessionApplier.Clear(); err != nil {
			log.Printf("[VPN] session clear failed: %v", err)
		}
	}

	s.mu.Lock()
	s.connected = false
	s.location = ""
	s.endpoint = ""
	s.mu.Unlock()

	status := domain.VPNStatus{Connected: false, Message: "Disconnected"}
	s.publish(status)
	return status, nil
}

// Status 当前连接状态
func (s *Service) Status() domain.VPNStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return domain.VPNStatus{Connected: false}
	}
	return domain.VPNStatus{
		Connected: true,
		Proxy:     s.endpoint,
		Location:  s.location,
	}
}

// AutoConnect 启动时按上次位置重连（vpnAutoConnect 为 true 时由 main 调用）。
func (s *Service) AutoConnect(ctx context.Context) {
	if s.stateRepo == nil {
		return
	}
	location, err := s.stateRepo.LastLocation(ctx)
	if err != nil || location == "" {
		return
	}
	if _, err := s.Connect(ctx, location); err != nil {
		log.Printf("[VPN] auto connect to %s failed: %v", location, err)
	}
}

func (s *Service) publish(status domain.VPNStatus) {
	if s.bus != nil {
		s.bus.Publish(events.VPNStatusEvent{
			EventType: events.EventVPNStatusChanged,
			Status:    status,
		})
	}
}
