// Package telemetry 提供系统遥测：电池、内存、网速。
//
// 所有查询都不因底层探测失败而报错：失败时返回与成功同形的哨兵值，
// 前端状态栏据此渲染"未知"而不是断开轮询。
package telemetry

import (
	"context"
	"log"
	"time"

	"strix/backend/domain"

	gocache "github.com/patrickmn/go-cache"
)

const (
	batteryCacheKey = "battery"
	ramCacheKey     = "ram"

	batteryCacheTTL = 5 * time.Second
	ramCacheTTL     = time.Second
)

// Service 遥测服务
type Service struct {
	prober  BatteryProber
	sampler *Sampler
	cache   *gocache.Cache
}

// NewService 创建遥测服务。prober/sampler 为 nil 时使用平台默认实现。
func NewService(prober BatteryProber, sampler *Sampler) *Service {
	if prober == nil {
		prober = NewBatteryProber()
	}
	if sampler == nil {
		sampler = NewSampler(nil)
	}
	return &Service{
		prober:  prober,
		sampler: sampler,
		cache:   gocache.New(batteryCacheTTL, time.Minute),
	}
}

// Sampler 暴露网速采样器给后台任务调度
func (s *Service) Sampler() *Sampler {
	return s.sampler
}

// Battery 电池状态。探测结果短暂缓存，失败时返回哨兵值。
func (s *Service) Battery(ctx context.Context) domain.BatteryStatus {
	if cached, ok := s.cache.Get(batteryCacheKey); ok {
		return cached.(domain.BatteryStatus)
	}

	probeCtx, cancel := context.WithTimeout(ctx, batteryProbeTimeout)
	defer cancel()

	status, err := s.prober.Probe(probeCtx)
	if err != nil {
		log.Printf("[Telemetry] battery probe failed: %v", err)
		status = domain.UnknownBattery()
	}
	s.cache.Set(batteryCacheKey, status, batteryCacheTTL)
	return status
}

// RAM 进程内存占用（MB）
func (s *Service) RAM() domain.RAMUsage {
	if cached, ok := s.cache.Get(ramCacheKey); ok {
		return cached.(domain.RAMUsage)
	}
	usage := probeRAM()
	s.cache.Set(ramCacheKey, usage, ramCacheTTL)
	return usage
}

// NetworkSpeed 最近一次网速采样（Mbps）。采样由后台任务驱动，
// 未采样或断网时为零值。
func (s *Service) NetworkSpeed() domain.NetworkSpeed {
	return s.sampler.Last()
}
