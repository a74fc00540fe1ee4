// Package sessionproxy 管理会话级代理规则（只影响当前浏览会话）。
//
// 它与 VPN 控制器的进程级开关相互独立：开关影响之后新建的进程/上下文，
// 会话规则立即作用于当前会话。两者可能不一致，这是接受的设计张力，不做统一。
package sessionproxy

import (
	"errors"
	"strings"
	"sync"

	"strix/backend/repository/events"
)

// ErrEmptyRules 规则串为空
var ErrEmptyRules = errors.New("proxy rules must not be empty")

// Service 会话代理服务
type Service struct {
	bus *events.Bus

	mu    sync.Mutex
	rules string
}

// NewService 创建会话代理服务
func NewService(bus *events.Bus) *Service {
	return &Service{bus: bus}
}

// Apply 对当前会话应用代理规则（set-proxy-for-all-tabs）。
// 规则推送给壳进程，由它落到活动会话上。
func (s *Service) Apply(rules string) error {
	rules = strings.TrimSpace(rules)
	if rules == "" {
		return ErrEmptyRules
	}

	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()

	s.publish(rules)
	return nil
}

// Clear 清除会话代理规则（clear-proxy-for-all-tabs）。幂等。
func (s *Service) Clear() error {
	s.mu.Lock()
	changed := s.rules != ""
	s.rules = ""
	s.mu.Unlock()

	if changed {
		s.publish("")
	}
	return nil
}

// Current 当前生效的规则串（空串表示无规则）
func (s *Service) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules
}

func (s *Service) publish(rules string) {
	if s.bus != nil {
		s.bus.Publish(events.SessionProxyEvent{
			EventType: events.EventSessionProxyChanged,
			Rules:     rules,
		})
	}
}
