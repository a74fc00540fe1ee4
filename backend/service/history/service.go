// Package history 提供历史记录写入与地址栏建议查询。
package history

import (
	"context"
	"errors"
	"strings"

	"strix/backend/domain"
	"strix/backend/repository"

	"github.com/samber/lo"
)

// MaxSuggestions 建议条数上限
const MaxSuggestions = 10

// ErrEmptyURL 访问记录缺少 URL
var ErrEmptyURL = errors.New("visit url must not be empty")

// Service 历史记录服务
type Service struct {
	repo repository.HistoryRepository
}

// NewService 创建历史记录服务
func NewService(repo repository.HistoryRepository) *Service {
	return &Service{repo: repo}
}

// RecordVisit 记录一次访问（按 URL 去重累计）
func (s *Service) RecordVisit(ctx context.Context, url, title string) (domain.HistoryEntry, error) {
	if strings.TrimSpace(url) == "" {
		return domain.HistoryEntry{}, ErrEmptyURL
	}
	return s.repo.Upsert(ctx, url, title)
}

// Suggestions 返回最多 10 条匹配建议：标题或 URL 子串匹配（不区分大小写），
// 按最近访问倒序。空查询返回空列表。
func (s *Service) Suggestions(ctx context.Context, query string) ([]domain.Suggestion, error) {
	entries, err := s.repo.Search(ctx, query, MaxSuggestions)
	if err != nil {
		return nil, err
	}
	return lo.Map(entries, func(entry domain.HistoryEntry, _ int) domain.Suggestion {
		return domain.Suggestion{Title: entry.Title, URL: entry.URL}
	}), nil
}

// Clear 清空全部历史（clearHistoryOnExit 与 DELETE /history 共用）
func (s *Service) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

// Prune 裁剪到保留上限，返回删除数量
func (s *Service) Prune(ctx context.Context, max int) (int, error) {
	return s.repo.Prune(ctx, max)
}
