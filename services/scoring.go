package services

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"speed-review/models"
	"speed-review/storage"
)

// ScoreService verwaltet die Leserbewertungen.
type ScoreService struct {
	Scores   storage.ScoreStore
	Articles storage.ArticleStore
	Logger   *zap.Logger
}

// NewScoreService erstellt einen neuen ScoreService.
func NewScoreService(scores storage.ScoreStore, articles storage.ArticleStore, logger *zap.Logger) *ScoreService {
	return &ScoreService{Scores: scores, Articles: articles, Logger: logger}
}

// SubmitScore speichert eine Bewertung zwischen 1 und 5 für einen existierenden Artikel.
func (s *ScoreService) SubmitScore(ctx context.Context, docID string, value float64) (*models.Score, error) {
	docID = strings.TrimSpace(docID)
	if docID == "" {
		return nil, validationError("doc_id is required")
	}
	if math.IsNaN(value) || value < models.MinScore || value > models.MaxScore {
		return nil, validationError("score must be between %d and %d", models.MinScore, models.MaxScore)
	}
	if _, err := s.Articles.GetArticle(ctx, docID); err != nil {
		return nil, mapStoreError(err)
	}

	score := &models.Score{DocID: docID, Value: value}
	if err := s.Scores.CreateScore(ctx, score); err != nil {
		return nil, err
	}
	scoresSubmitted.Inc()
	s.Logger.Debug("Bewertung gespeichert", zap.String("doc_id", docID), zap.Float64("value", value))
	return score, nil
}

// ListScores liefert alle Bewertungen eines Artikels.
func (s *ScoreService) ListScores(ctx context.Context, docID string) ([]models.Score, error) {
	return s.Scores.ListScores(ctx, strings.TrimSpace(docID))
}

// AverageScore liefert den Mittelwert auf drei signifikante Stellen gerundet, 0 ohne Bewertungen.
func (s *ScoreService) AverageScore(ctx context.Context, docID string) (float64, error) {
	scores, err := s.ListScores(ctx, docID)
	if err != nil {
		return 0, err
	}
	if len(scores) == 0 {
		return 0, nil
	}
	var sum float64
	for _, sc := range scores {
		sum += sc.Value
	}
	return RoundSignificant(sum/float64(len(scores)), 3), nil
}

// RoundSignificant rundet v auf digits signifikante Stellen (kaufmännisch, .5 nach oben).
func RoundSignificant(v float64, digits int) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	exp := math.Floor(math.Log10(math.Abs(v)))
	scale := math.Pow(10, float64(digits-1)-exp)
	return math.Round(v*scale) / scale
}
