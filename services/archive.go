package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"speed-review/models"
	"speed-review/storage"
)

// ObjectStore ist das Ziel der Archiv-Snapshots (in Produktion ein S3-Bucket).
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Rotate(ctx context.Context, prefix string, keep int) ([]string, error)
}

// Snapshot ist das exportierte JSON-Dokument.
type Snapshot struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Count       int              `json:"count"`
	Articles    []models.Article `json:"articles"`
}

// ArchiveService exportiert regelmäßig alle veröffentlichten Artikel als JSON-Snapshot.
type ArchiveService struct {
	Articles storage.ArticleStore
	Objects  ObjectStore
	Logger   *zap.Logger
	Prefix   string
	Keep     int
	Now      func() time.Time
}

// NewArchiveService erstellt einen ArchiveService, der die letzten keep Snapshots behält.
func NewArchiveService(articles storage.ArticleStore, objects ObjectStore, keep int, logger *zap.Logger) *ArchiveService {
	if keep <= 0 {
		keep = 30
	}
	return &ArchiveService{
		Articles: articles,
		Objects:  objects,
		Logger:   logger,
		Prefix:   "archive/published-",
		Keep:     keep,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Export lädt einen Snapshot hoch und rotiert alte Snapshots. Liefert den Link des neuen Objekts.
func (s *ArchiveService) Export(ctx context.Context) (string, error) {
	link, err := s.export(ctx)
	if err != nil {
		archiveRuns.WithLabelValues("error").Inc()
		return "", err
	}
	archiveRuns.WithLabelValues("ok").Inc()
	return link, nil
}

func (s *ArchiveService) export(ctx context.Context) (string, error) {
	articles, err := s.Articles.ListArticles(ctx, storage.ArticleFilter{Status: models.StatusPublished})
	if err != nil {
		return "", fmt.Errorf("list published: %w", err)
	}
	now := s.Now()
	data, err := json.MarshalIndent(Snapshot{GeneratedAt: now, Count: len(articles), Articles: articles}, "", "  ")
	if err != nil {
		return "", err
	}

	key := s.Prefix + now.Format("2006-01-02T15-04-05Z") + ".json"
	link, err := s.Objects.Upload(ctx, key, data, "application/json")
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	s.Logger.Info("Archiv-Snapshot hochgeladen", zap.String("key", key), zap.Int("articles", len(articles)))

	deleted, err := s.Objects.Rotate(ctx, s.Prefix, s.Keep)
	if err != nil {
		s.Logger.Warn("Rotation alter Snapshots unvollständig", zap.Error(err))
	}
	if len(deleted) > 0 {
		s.Logger.Info("Alte Snapshots gelöscht", zap.Strings("keys", deleted))
	}
	return link, nil
}
