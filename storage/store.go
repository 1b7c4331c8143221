package storage

import (
	"context"
	"errors"

	"speed-review/models"
)

var (
	// ErrNotFound wird geliefert, wenn der referenzierte Datensatz nicht existiert.
	ErrNotFound = errors.New("record not found")
	// ErrStatusMismatch wird geliefert, wenn ein bedingtes Status-Update nicht gegriffen hat,
	// weil der Artikel nicht (mehr) im erwarteten Zustand ist.
	ErrStatusMismatch = errors.New("article status changed concurrently")
	// ErrDuplicateKey wird bei Verletzung eines Unique-Index geliefert.
	ErrDuplicateKey = errors.New("duplicate key")
)

// ArticleFilter schränkt ListArticles ein. Leere Felder filtern nicht.
type ArticleFilter struct {
	Status         models.Status
	SubmitterEmail string
}

// ArticleStore ist die Persistenz für Artikel.
type ArticleStore interface {
	CreateArticle(ctx context.Context, article *models.Article) error
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	ListArticles(ctx context.Context, filter ArticleFilter) ([]models.Article, error)
	CountArticles(ctx context.Context, status models.Status) (int64, error)
	// MatchTitleOrDOI liefert Artikel mit exakt gleichem Titel oder gleicher (nicht leerer) DOI.
	MatchTitleOrDOI(ctx context.Context, title, doi string) ([]models.Article, error)
	SearchPublished(ctx context.Context, term string) ([]models.Article, error)
	// TransitionArticle schreibt updates nur, wenn der Artikel noch im Zustand from ist.
	TransitionArticle(ctx context.Context, id string, from models.Status, updates map[string]any) (*models.Article, error)
	UpdateArticle(ctx context.Context, id string, updates map[string]any) (*models.Article, error)
	DeleteArticle(ctx context.Context, id string) error
}

// ScoreStore ist die Persistenz für Bewertungen.
type ScoreStore interface {
	CreateScore(ctx context.Context, score *models.Score) error
	ListScores(ctx context.Context, docID string) ([]models.Score, error)
}

// RoleStore ist die Persistenz für Reviewer-Rollen.
type RoleStore interface {
	ListRoles(ctx context.Context) ([]models.Role, error)
	RoleEmails(ctx context.Context, role models.RoleName) ([]string, error)
	GetRole(ctx context.Context, email string) (*models.Role, error)
	CreateRole(ctx context.Context, role *models.Role) error
	UpdateRole(ctx context.Context, email string, role models.Role) (*models.Role, error)
	DeleteRole(ctx context.Context, email string) error
	CountRoles(ctx context.Context) (int64, error)
}

// Store bündelt alle Collections.
type Store interface {
	ArticleStore
	ScoreStore
	RoleStore
}
