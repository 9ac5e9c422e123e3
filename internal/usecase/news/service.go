package news

import (
	"context"
	"log/slog"

	"github.com/BthnIsler/finoria/internal/domain"
)

// maxArticles caps how many items one query returns
const maxArticles = 8

// Service serves market news for the dashboard's news widget. A feed
// failure degrades to an empty list; the widget shows its empty state.
type Service struct {
	Provider domain.NewsProvider

	logger *slog.Logger
}

// NewService creates a new news service
func NewService(provider domain.NewsProvider, logger *slog.Logger) *Service {
	return &Service{Provider: provider, logger: logger}
}

// Top returns up to eight articles for the query, newest first as the
// feed orders them
func (s *Service) Top(ctx context.Context, query string) []domain.Article {
	if query == "" {
		return []domain.Article{}
	}

	articles, err := s.Provider.Search(ctx, query)
	if err != nil {
		s.logger.Warn("news fetch failed", "query", query, "error", err)
		return []domain.Article{}
	}
	if len(articles) > maxArticles {
		articles = articles[:maxArticles]
	}
	return articles
}
