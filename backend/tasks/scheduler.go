package tasks

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"strix/backend/service/history"
	"strix/backend/service/telemetry"
)

// HistoryMax 历史记录裁剪上限
const HistoryMax = 5000

type Scheduler struct {
	telemetry *telemetry.Service
	history   *history.Service

	cron *cron.Cron
}

func NewScheduler(telemetrySvc *telemetry.Service, historySvc *history.Service) *Scheduler {
	return &Scheduler{
		telemetry: telemetrySvc,
		history:   historySvc,
		cron:      cron.New(cron.WithSeconds()),
	}
}

// Start 注册并启动后台任务，ctx 取消时停止。
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}

	if s.telemetry != nil {
		// 网速靠计数器差值，需要稳定节拍的采样
		if _, err := s.cron.AddFunc("@every 5s", func() {
			safeRun("network sample", s.telemetry.Sampler().Sample)
		}); err != nil {
			return err
		}
		// 启动即采一次基线，第一轮查询就有分母
		safeRun("network sample", s.telemetry.Sampler().Sample)
	}

	if s.history != nil {
		if _, err := s.cron.AddFunc("@every 1h", func() {
			safeRun("history prune", func() {
				removed, err := s.history.Prune(context.Background(), HistoryMax)
				if err != nil {
					log.Printf("[tasks] history prune failed: %v", err)
					return
				}
				if removed > 0 {
					log.Printf("[tasks] history pruned %d entries", removed)
				}
			})
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
	return nil
}

func safeRun(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[tasks] %s panicked: %v", name, r)
		}
	}()
	fn()
}
