package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"speed-review/models"
	"speed-review/providers"
	"speed-review/storage"
)

const publishedCacheKey = "articles:published"

// SubmitInput sind die Angaben eines Einreichers. Status, Flags und Zeitstempel setzt der Service.
type SubmitInput struct {
	Title            string   `json:"title"`
	Authors          []string `json:"authors"`
	Source           string   `json:"source"`
	Journal          string   `json:"journal"`
	SEPractice       string   `json:"se_practice"`
	ResearchType     string   `json:"research_type"`
	PublicationYear  *int     `json:"publication_year"`
	Volume           string   `json:"volume"`
	Number           string   `json:"number"`
	Pages            string   `json:"pages"`
	DOI              string   `json:"doi"`
	Summary          string   `json:"summary"`
	Claim            string   `json:"claim"`
	LinkedDiscussion string   `json:"linked_discussion"`
	UserName         string   `json:"user_name"`
	UserEmail        string   `json:"user_email"`
}

// AnalysisInput ist die Eingabe der Analysten-Freigabe. Nil-Felder bleiben unverändert.
type AnalysisInput struct {
	Evidence        *string `json:"evidence"`
	AnalysisNotes   *string `json:"analysis_notes"`
	EvidenceSummary string  `json:"evidence_summary"`
}

// ReviewService implementiert Einreichung, Moderation, Analyse und Pflege von Artikeln.
type ReviewService struct {
	Store      storage.ArticleStore
	Cache      storage.Cache
	CacheTTL   time.Duration
	Notifier   *Notifier
	Dispatcher *Dispatcher
	// Resolver ist optional; ohne Resolver entfällt der Open-Access-Lookup nach Veröffentlichung.
	Resolver providers.OpenAccessResolver
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewReviewService erstellt einen ReviewService ohne Cache und ohne Open-Access-Lookup.
func NewReviewService(store storage.ArticleStore, notifier *Notifier, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		Store:      store,
		Cache:      storage.NopCache{},
		CacheTTL:   10 * time.Minute,
		Notifier:   notifier,
		Dispatcher: notifier.Dispatcher,
		Logger:     logger,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// Submit legt einen neuen Artikel im Zustand pending an. Der Duplikat-Check läuft blockierend
// vor dem Insert, damit repeat_flag bereits im gespeicherten Datensatz steht.
func (s *ReviewService) Submit(ctx context.Context, in SubmitInput) (*models.Article, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationError("title is required")
	}
	doi := strings.TrimSpace(in.DOI)

	repeat, err := IsDuplicate(ctx, s.Store, title, doi)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}

	authors := make([]string, 0, len(in.Authors))
	for _, a := range in.Authors {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}

	article := &models.Article{
		SubmitterName:    strings.TrimSpace(in.UserName),
		SubmitterEmail:   strings.TrimSpace(in.UserEmail),
		Title:            title,
		Authors:          datatypes.JSONSlice[string](authors),
		Source:           in.Source,
		Journal:          in.Journal,
		SEPractice:       in.SEPractice,
		ResearchType:     in.ResearchType,
		PublicationYear:  in.PublicationYear,
		Volume:           in.Volume,
		Number:           in.Number,
		Pages:            in.Pages,
		DOI:              doi,
		Summary:          in.Summary,
		Claim:            in.Claim,
		LinkedDiscussion: in.LinkedDiscussion,
		RepeatFlag:       repeat,
		Status:           models.StatusPending,
		SubmittedAt:      s.Now(),
	}
	if err := s.Store.CreateArticle(ctx, article); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	articlesSubmitted.WithLabelValues(fmt.Sprint(repeat)).Inc()
	s.Logger.Info("Artikel eingereicht",
		zap.String("id", article.ID),
		zap.String("title", article.Title),
		zap.Bool("repeat_flag", repeat))

	s.Notifier.ArticleSubmitted(*article)
	return article, nil
}

// ModeratorApprove: pending -> approved_by_moderator, benachrichtigt die Analysten.
func (s *ReviewService) ModeratorApprove(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.apply(ctx, article, models.ActionModeratorApprove, map[string]any{
		"moderated_at": s.Now(),
	})
	if err != nil {
		return nil, err
	}
	s.Notifier.ArticleApprovedByModerator(*updated)
	return updated, nil
}

// ModeratorReject: pending -> rejected. Bei gesetztem repeat_flag ist eine Begründung Pflicht.
func (s *ReviewService) ModeratorReject(ctx context.Context, id, reason string) (*models.Article, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := models.Transition(article.Status, models.ActionModeratorReject); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if article.RepeatFlag && reason == "" {
		return nil, validationError("a rejection reason is required for possible duplicates")
	}

	updates := map[string]any{"moderated_at": s.Now()}
	if reason != "" {
		updates["rejection_reason"] = reason
	}
	updated, err := s.apply(ctx, article, models.ActionModeratorReject, updates)
	if err != nil {
		return nil, err
	}
	s.Notifier.ArticleRejected(*updated, reason)
	return updated, nil
}

// AnalystApprove: approved_by_moderator -> published. evidence_summary ist Pflicht.
func (s *ReviewService) AnalystApprove(ctx context.Context, id string, in AnalysisInput) (*models.Article, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	strength, err := models.ParseEvidenceStrength(in.EvidenceSummary)
	if err != nil {
		return nil, validationError("evidence_summary: %v", err)
	}

	updates := map[string]any{
		"evidence_summary": string(strength),
		"analyzed_at":      s.Now(),
	}
	if in.Evidence != nil {
		updates["evidence"] = *in.Evidence
	}
	if in.AnalysisNotes != nil {
		updates["analysis_notes"] = *in.AnalysisNotes
	}
	updated, err := s.apply(ctx, article, models.ActionAnalystApprove, updates)
	if err != nil {
		return nil, err
	}

	s.invalidatePublished(ctx)
	s.Notifier.ArticlePublished(*updated)
	s.resolveOpenAccess(*updated)
	return updated, nil
}

// AnalystReject: approved_by_moderator -> rejected.
func (s *ReviewService) AnalystReject(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.apply(ctx, article, models.ActionAnalystReject, nil)
	if err != nil {
		return nil, err
	}
	s.Notifier.ArticleRejected(*updated, "")
	return updated, nil
}

func (s *ReviewService) load(ctx context.Context, id string) (*models.Article, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	article, err := s.Store.GetArticle(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return article, nil
}

// apply führt einen Zustandsübergang als bedingtes Update aus.
func (s *ReviewService) apply(ctx context.Context, article *models.Article, action models.Action, updates map[string]any) (*models.Article, error) {
	next, err := models.Transition(article.Status, action)
	if err != nil {
		return nil, err
	}
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = next

	updated, err := s.Store.TransitionArticle(ctx, article.ID, article.Status, updates)
	switch {
	case errors.Is(err, storage.ErrStatusMismatch):
		return nil, fmt.Errorf("%w: article %s is no longer %s", models.ErrInvalidTransition, article.ID, article.Status)
	case err != nil:
		return nil, mapStoreError(err)
	}

	articleTransitions.WithLabelValues(string(action)).Inc()
	s.Logger.Info("Artikelstatus geändert",
		zap.String("id", article.ID),
		zap.String("action", string(action)),
		zap.String("from", string(article.Status)),
		zap.String("to", string(next)))
	return updated, nil
}

// resolveOpenAccess sucht nach der Veröffentlichung asynchron einen freien Volltext-Link.
func (s *ReviewService) resolveOpenAccess(article models.Article) {
	if s.Resolver == nil || article.DOI == "" {
		return
	}
	s.Dispatcher.Go("open_access_lookup", func(ctx context.Context) error {
		link, err := s.Resolver.GetPDFLink(ctx, article.DOI)
		if err != nil {
			return fmt.Errorf("open access lookup for %s: %w", article.DOI, err)
		}
		if link == "" {
			return nil
		}
		if _, err := s.Store.UpdateArticle(ctx, article.ID, map[string]any{"open_access_url": link}); err != nil {
			return fmt.Errorf("store open access link: %w", err)
		}
		s.invalidatePublished(ctx)
		s.Logger.Info("Open-Access-Link gespeichert", zap.String("id", article.ID), zap.String("url", link))
		return nil
	})
}

func (s *ReviewService) invalidatePublished(ctx context.Context) {
	if err := s.Cache.Delete(ctx, publishedCacheKey); err != nil {
		s.Logger.Warn("Cache konnte nicht invalidiert werden", zap.Error(err))
	}
}
