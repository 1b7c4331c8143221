package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"speed-review/models"
	"speed-review/storage"
)

// Get liefert einen Artikel unabhängig vom Status.
func (s *ReviewService) Get(ctx context.Context, id string) (*models.Article, error) {
	return s.load(ctx, id)
}

// ListByStatus liefert alle Artikel im Zustand status (Moderations- bzw. Analyse-Queue).
func (s *ReviewService) ListByStatus(ctx context.Context, status models.Status) ([]models.Article, error) {
	return s.Store.ListArticles(ctx, storage.ArticleFilter{Status: status})
}

// ListAll liefert alle Artikel (Admin-Ansicht).
func (s *ReviewService) ListAll(ctx context.Context) ([]models.Article, error) {
	return s.Store.ListArticles(ctx, storage.ArticleFilter{})
}

// ListPublished liefert alle veröffentlichten Artikel, wenn möglich aus dem Cache.
func (s *ReviewService) ListPublished(ctx context.Context) ([]models.Article, error) {
	raw, ok, err := s.Cache.Get(ctx, publishedCacheKey)
	if err != nil {
		s.Logger.Warn("Cache-Lesefehler", zap.String("key", publishedCacheKey), zap.Error(err))
	}
	if ok {
		var cached []models.Article
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		s.Logger.Warn("Cache-Eintrag nicht lesbar, lade aus DB", zap.String("key", publishedCacheKey))
	}

	articles, err := s.ListByStatus(ctx, models.StatusPublished)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(articles); err == nil {
		if err := s.Cache.Set(ctx, publishedCacheKey, data, s.CacheTTL); err != nil {
			s.Logger.Warn("Cache-Schreibfehler", zap.String("key", publishedCacheKey), zap.Error(err))
		}
	}
	return articles, nil
}

// Track liefert die Einreichungen eines Einreichers per E-Mail oder genau eine per Submission-ID.
func (s *ReviewService) Track(ctx context.Context, email, submissionID string) ([]models.Article, error) {
	email = strings.TrimSpace(email)
	submissionID = strings.TrimSpace(submissionID)
	switch {
	case email != "":
		articles, err := s.Store.ListArticles(ctx, storage.ArticleFilter{SubmitterEmail: email})
		if err != nil {
			return nil, err
		}
		if len(articles) == 0 {
			return nil, ErrNotFound
		}
		return articles, nil
	case submissionID != "":
		article, err := s.load(ctx, submissionID)
		if err != nil {
			return nil, err
		}
		return []models.Article{*article}, nil
	}
	return nil, validationError("email or submission_id is required")
}

// Search durchsucht veröffentlichte Artikel nach Titel, Autor oder Erscheinungsjahr.
// Die Anfrage wird NFC-normalisiert, damit zerlegte Umlaute gespeicherte Titel treffen.
func (s *ReviewService) Search(ctx context.Context, query string) ([]models.Article, error) {
	query = norm.NFC.String(strings.TrimSpace(query))
	if query == "" {
		return nil, validationError("search query is required")
	}
	return s.Store.SearchPublished(ctx, query)
}

// UpdateField ändert genau ein Feld ohne Zustandsübergang.
// status wird gegen die bekannten Zustände geprüft, evidence_summary gegen die Evidenzstufen.
func (s *ReviewService) UpdateField(ctx context.Context, id, field, value string) (*models.Article, error) {
	column, ok := models.EditableFields[field]
	if !ok {
		return nil, validationError("field %q cannot be edited", field)
	}

	var v any = value
	switch field {
	case "status":
		status, err := models.ParseStatus(value)
		if err != nil {
			return nil, validationError("%v", err)
		}
		v = status
	case "evidence_summary":
		if strings.TrimSpace(value) == "" {
			v = nil
			break
		}
		strength, err := models.ParseEvidenceStrength(value)
		if err != nil {
			return nil, validationError("%v", err)
		}
		v = string(strength)
	case "evidence":
		if value == "" {
			v = nil
		}
	}

	updated, err := s.Store.UpdateArticle(ctx, id, map[string]any{column: v})
	if err != nil {
		return nil, mapStoreError(err)
	}
	s.invalidatePublished(ctx)
	s.Logger.Info("Artikelfeld geändert", zap.String("id", id), zap.String("field", field))
	return updated, nil
}

// Delete entfernt einen Artikel endgültig. Bewertungen bleiben erhalten.
func (s *ReviewService) Delete(ctx context.Context, id string) error {
	if err := s.Store.DeleteArticle(ctx, id); err != nil {
		return mapStoreError(err)
	}
	s.invalidatePublished(ctx)
	s.Logger.Info("Artikel gelöscht", zap.String("id", id))
	return nil
}

// Citation liefert die formatierte Literaturangabe eines veröffentlichten Artikels.
// Nicht veröffentlichte Artikel gelten hier als nicht gefunden.
func (s *ReviewService) Citation(ctx context.Context, id string) (string, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if article.Status != models.StatusPublished {
		return "", ErrNotFound
	}
	return FormatCitation(*article), nil
}
