package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"strix/backend/api"
	"strix/backend/domain"
	"strix/backend/persist"
	"strix/backend/repository"
	"strix/backend/repository/events"
	"strix/backend/repository/memory"
	"strix/backend/service"
	"strix/backend/service/downloads"
	"strix/backend/service/history"
	"strix/backend/service/sessionproxy"
	settingssvc "strix/backend/service/settings"
	"strix/backend/service/shared"
	"strix/backend/service/telemetry"
	"strix/backend/service/vpn"
	"strix/backend/tasks"

	"github.com/gin-gonic/gin"
)

func main() {
	os.Exit(run())
}

func run() int {
	addr := flag.String("addr", "127.0.0.1:19320", "HTTP listen address")
	statePath := flag.String("state", shared.DefaultStatePath(), "path to settings snapshot")
	dev := flag.Bool("dev", false, "enable development mode with verbose logging")
	flag.Parse()

	// 配置日志级别
	if *dev {
		gin.SetMode(gin.DebugMode)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.Println("运行在开发模式 - 显示所有日志")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.SetFlags(log.LstdFlags)
	}

	appLogPath, appLogStartedAt, closeAppLog := setupAppLogging()
	if closeAppLog != nil {
		defer closeAppLog()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 1. 事件总线与内存存储
	eventBus := events.NewBus()
	memStore := memory.NewStore(eventBus)

	// 2. 加载状态。损坏的快照不阻止启动：备份后以默认设置继续，
	//    避免一个坏文件让浏览器打不开。
	state, err := persist.Load(*statePath)
	if err != nil {
		log.Printf("load snapshot failed: %v", err)
		if backupErr := persist.BackupCorrupt(*statePath); backupErr != nil {
			log.Printf("backup corrupt snapshot failed: %v", backupErr)
		} else {
			log.Printf("corrupt snapshot moved aside, starting with defaults: %s", *statePath)
		}
		state = domain.ShellState{}
	}
	memStore.LoadState(state)

	// 3. 仓储层
	settingsRepo := memory.NewSettingsRepo(memStore)
	historyRepo := memory.NewHistoryRepo(memStore)
	vpnStateRepo := memory.NewVPNStateRepo(memStore)
	repos := repository.NewRepositories(settingsRepo, historyRepo, vpnStateRepo)

	// 4. 服务层
	launchFlags := shared.NewLaunchFlagsFile(shared.DefaultLaunchFlagsPath())

	sessionProxySvc := sessionproxy.NewService(eventBus)
	vpnSvc := vpn.NewService(vpn.NewLaunchFlagsApplier(launchFlags), sessionProxySvc, vpnStateRepo, eventBus)
	settingsSvc := settingssvc.NewService(settingsRepo, eventBus, launchFlags)
	telemetrySvc := telemetry.NewService(nil, nil)
	historySvc := history.NewService(historyRepo)
	downloadsSvc := downloads.NewService(eventBus, "")
	settingsSvc.SetDownloadDirBinder(downloadsSvc)

	// 5. Facade（门面服务）
	facade := service.NewFacade(settingsSvc, vpnSvc, sessionProxySvc, telemetrySvc, historySvc, downloadsSvc, repos)
	facade.SetStateSource(memStore)
	facade.SetAppLog(appLogPath, appLogStartedAt)

	// 6. 持久化（事件驱动）
	snapshotter := persist.NewSnapshotter(*statePath, memStore)
	snapshotter.SubscribeEvents(eventBus)

	// 6.1 对齐运行态与已保存设置（权限策略、下载目录），不触发事件
	if err := settingsSvc.Bootstrap(ctx); err != nil {
		log.Printf("settings bootstrap failed: %v", err)
	}

	// 6.2 按设置自动重连上次的 VPN 位置
	settings, err := settingsSvc.Get(ctx)
	if err == nil && settings.Bool(domain.SettingVPNAutoConnect, false) {
		go vpnSvc.AutoConnect(ctx)
	}

	// 6.3 后台任务（网速采样、历史裁剪）
	if err := tasks.NewScheduler(telemetrySvc, historySvc).Start(ctx); err != nil {
		log.Printf("start scheduler failed: %v", err)
	}

	// 7. 路由
	router := api.NewRouter(facade, eventBus)

	srv := &http.Server{
		Addr:    *addr,
		Handler: router,
	}

	cleanupDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		log.Println("收到退出信号，正在清理...")

		// 断开 VPN、等待在途下载、按设置清理历史
		facade.Shutdown(context.Background())

		// 保存最终状态
		if err := snapshotter.SaveNow(); err != nil {
			log.Printf("保存状态失败: %v", err)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
		}
		close(cleanupDone)
	}()

	log.Printf("server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("listen: %v", err)
		cancel()
		<-cleanupDone
		return 1
	}
	<-cleanupDone
	return 0
}

func setupAppLogging() (path string, startedAt time.Time, closeFn func()) {
	startedAt = time.Now()
	path = filepath.Join(shared.UserDataRoot(), "runtime", "app.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("[AppLog] create log dir failed: %v", err)
		return "", time.Time{}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		log.Printf("[AppLog] open log file failed (%s): %v", path, err)
		return "", time.Time{}, nil
	}

	_, _ = fmt.Fprintf(f, "----- app start %s pid=%d -----\n", startedAt.Format(time.RFC3339Nano), os.Getpid())
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	log.Printf("[AppLog] writing to %s", path)
	return path, startedAt, func() { _ = f.Close() }
}
