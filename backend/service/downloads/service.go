// Package downloads 实现下载任务的落盘与生命周期事件。
//
// download-request 是 fire-and-forget：Start 解析保存路径、登记任务并发出
// started 事件后立即返回，传输在独立 goroutine 里进行；每个任务独立，
// 不做队列也不限并发。
package downloads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"strix/backend/domain"
	"strix/backend/repository/events"
	"strix/backend/service/shared"

	"github.com/google/uuid"
)

// ErrInvalidURL 下载 URL 非法（仅接受 http/https）
var ErrInvalidURL = errors.New("invalid download url")

// Service 下载服务
type Service struct {
	bus    *events.Bus
	client *http.Client

	mu    sync.Mutex
	dir   string
	items map[string]domain.DownloadItem
	wg    sync.WaitGroup
}

// NewService 创建下载服务。dir 为空时使用平台默认下载目录。
func NewService(bus *events.Bus, dir string) *Service {
	if strings.TrimSpace(dir) == "" {
		dir = shared.DefaultDownloadsDir()
	}
	return &Service{
		bus:   bus,
		dir:   dir,
		items: make(map[string]domain.DownloadItem),
		client: &http.Client{
			// 不设总超时：大文件下载时长不可预估；连接阶段由 Transport 默认值兜底。
		},
	}
}

// SetDirectory 重绑默认下载目录（downloadLocation 设置变更时调用）
func (s *Service) SetDirectory(dir string) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return
	}
	s.mu.Lock()
	s.dir = dir
	s.mu.Unlock()
}

// Directory 当前默认下载目录
func (s *Service) Directory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// Start 登记并启动一个下载任务，返回初始任务信息。
func (s *Service) Start(ctx context.Context, rawURL string) (domain.DownloadItem, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return domain.DownloadItem{}, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	filename := filenameFromURL(parsed)

	s.mu.Lock()
	dir := s.dir
	s.mu.Unlock()

	savePath, err := resolveSavePath(dir, filename)
	if err != nil {
		return domain.DownloadItem{}, err
	}

	item := domain.DownloadItem{
		ID:        uuid.NewString(),
		URL:       parsed.String(),
		Filename:  filepath.Base(savePath),
		SavePath:  savePath,
		State:     domain.DownloadPending,
		StartedAt: time.Now(),
	}

	s.mu.Lock()
	s.items[item.ID] = item
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(item)

	return item, nil
}

// List 返回全部任务（按开始时间倒序）
func (s *Service) List() []domain.DownloadItem {
	s.mu.Lock()
	items := make([]domain.DownloadItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].StartedAt.Equal(items[j].StartedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].StartedAt.After(items[j].StartedAt)
	})
	return items
}

// Wait 等待所有在途下载结束（测试与优雅退出用）
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) run(item domain.DownloadItem) {
	defer s.wg.Done()

	s.update(item.ID, func(item *domain.DownloadItem) {
		item.State = domain.DownloadRunning
	})
	s.publish(events.EventDownloadStarted, item.ID)

	err := s.fetch(&item)

	now := time.Now()
	if err != nil {
		log.Printf("[Downloads] %s failed: %v", item.Filename, err)
		s.update(item.ID, func(item *domain.DownloadItem) {
			item.State = domain.DownloadFailed
			item.Error = err.Error()
			item.EndedAt = now
		})
		s.publish(events.EventDownloadFailed, item.ID)
		return
	}

	s.update(item.ID, func(item *domain.DownloadItem) {
		item.State = domain.DownloadCompleted
		item.EndedAt = now
	})
	s.publish(events.EventDownloadCompleted, item.ID)
}

func (s *Service) fetch(item *domain.DownloadItem) error {
	resp, err := s.client.Get(item.URL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if resp.ContentLength > 0 {
		total := resp.ContentLength
		s.update(item.ID, func(item *domain.DownloadItem) {
			item.Total = total
		})
	}

	if err := os.MkdirAll(filepath.Dir(item.SavePath), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(item.SavePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	buf := make([]byte, 128*1024)
	var received int64
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				out.Close()
				return writeErr
			}
			received += int64(n)
			got := received
			s.update(item.ID, func(item *domain.DownloadItem) {
				item.Received = got
			})
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Close()
			return readErr
		}
	}
	return out.Close()
}

func (s *Service) update(id string, mutate func(item *domain.DownloadItem)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return
	}
	mutate(&item)
	s.items[id] = item
}

func (s *Service) publish(eventType events.EventType, id string) {
	if s.bus == nil {
		return
	}
	s.mu.Lock()
	item, ok := s.items[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	s.bus.Publish(events.DownloadEvent{EventType: eventType, Item: item})
}

// filenameFromURL 从 URL 路径取文件名；取不到时退回固定名。
func filenameFromURL(parsed *url.URL) string {
	name := path.Base(parsed.Path)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return "download"
	}
	return name
}

// resolveSavePath 在下载目录内解析不冲突的保存路径（report.pdf → report (1).pdf）。
func resolveSavePath(dir, filename string) (string, error) {
	base, err := shared.SafeJoin(dir, filename)
	if err != nil {
		return "", err
	}

	candidate := base
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if i > 1000 {
			return "", fmt.Errorf("unable to find free filename for %s", filename)
		}
	}
}
