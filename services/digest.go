package services

import (
	"context"

	"go.uber.org/zap"

	"speed-review/models"
	"speed-review/storage"
)

// DigestService erinnert Moderatoren und Analysten an offene Queues.
type DigestService struct {
	Articles storage.ArticleStore
	Notifier *Notifier
	Logger   *zap.Logger
}

func NewDigestService(articles storage.ArticleStore, notifier *Notifier, logger *zap.Logger) *DigestService {
	return &DigestService{Articles: articles, Notifier: notifier, Logger: logger}
}

// Run zählt beide Queues und stößt für nicht leere Queues eine Digest-Mail an.
func (s *DigestService) Run(ctx context.Context) error {
	queues := []struct {
		status models.Status
		role   models.RoleName
	}{
		{models.StatusPending, models.RoleModerator},
		{models.StatusApprovedByModerator, models.RoleAnalyst},
	}
	for _, q := range queues {
		count, err := s.Articles.CountArticles(ctx, q.status)
		if err != nil {
			return err
		}
		s.Logger.Debug("Queue gezählt", zap.String("status", string(q.status)), zap.Int64("count", count))
		if count > 0 {
			s.Notifier.QueueDigest(q.role, count)
		}
	}
	return nil
}
