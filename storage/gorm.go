package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"speed-review/config"
	"speed-review/models"
)

// GormStore implementiert Store auf Basis von GORM (PostgreSQL im Betrieb, SQLite lokal und in Tests).
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore kapselt eine bestehende GORM-Verbindung.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Open stellt die Datenbankverbindung gemäß DB_DRIVER her.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	switch cfg.DBDriver {
	case "", "postgres":
		db, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
		if err != nil {
			return nil, err
		}
		log.Info("Successfully connected to postgres database.", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))
		return db, nil
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// OpenSQLite öffnet eine SQLite-Datenbank. SQLite serialisiert Schreibzugriffe ohnehin,
// daher genau eine Verbindung.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate legt die Tabellen an bzw. aktualisiert sie.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Article{}, &models.Score{}, &models.Role{})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	}
	return err
}

// CreateArticle legt einen neuen Artikel an.
func (s *GormStore) CreateArticle(ctx context.Context, article *models.Article) error {
	return translate(s.db.WithContext(ctx).Create(article).Error)
}

// GetArticle lädt einen Artikel per ID.
func (s *GormStore) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&article).Error; err != nil {
		return nil, translate(err)
	}
	return &article, nil
}

// ListArticles liefert Artikel, neueste Einreichung zuerst.
func (s *GormStore) ListArticles(ctx context.Context, filter ArticleFilter) ([]models.Article, error) {
	query := s.db.WithContext(ctx).Model(&models.Article{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SubmitterEmail != "" {
		query = query.Where("user_email = ?", filter.SubmitterEmail)
	}
	articles := []models.Article{}
	if err := query.Order("submitted_at desc").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// CountArticles zählt Artikel in einem Zustand.
func (s *GormStore) CountArticles(ctx context.Context, status models.Status) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Article{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// MatchTitleOrDOI sucht exakte Treffer auf Titel oder DOI, ohne Normalisierung.
func (s *GormStore) MatchTitleOrDOI(ctx context.Context, title, doi string) ([]models.Article, error) {
	query := s.db.WithContext(ctx).Where("title = ?", title)
	if doi != "" {
		query = query.Or("doi = ?", doi)
	}
	var matches []models.Article
	if err := query.Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

// likeEscaper maskiert die LIKE-Metazeichen, damit der Suchbegriff wörtlich gilt.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// authorMatchSQL prüft jedes Element des JSON-Arrays authors einzeln statt des serialisierten Arrays.
func (s *GormStore) authorMatchSQL() string {
	if s.db.Dialector.Name() == "postgres" {
		return `EXISTS (SELECT 1 FROM jsonb_array_elements_text(CASE WHEN jsonb_typeof(articles.authors) = 'array' THEN articles.authors ELSE '[]'::jsonb END) AS a(name) WHERE LOWER(a.name) LIKE ? ESCAPE '\')`
	}
	return `EXISTS (SELECT 1 FROM json_each(CAST(articles.authors AS TEXT)) WHERE json_each.type = 'text' AND LOWER(json_each.value) LIKE ? ESCAPE '\')`
}

// SearchPublished durchsucht veröffentlichte Artikel: Titel und einzelne Autoren case-insensitive
// als wörtlicher Teilstring, das Erscheinungsjahr nur bei numerischem Suchbegriff und exakt.
func (s *GormStore) SearchPublished(ctx context.Context, term string) ([]models.Article, error) {
	like := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	match := s.db.Where(`LOWER(title) LIKE ? ESCAPE '\'`, like).
		Or(s.authorMatchSQL(), like)
	if year, err := strconv.Atoi(strings.TrimSpace(term)); err == nil {
		match = match.Or("publication_year = ?", year)
	}

	results := []models.Article{}
	err := s.db.WithContext(ctx).
		Where("status = ?", models.StatusPublished).
		Where(match).
		Order("submitted_at desc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// TransitionArticle führt ein statusbedingtes Update aus (UPDATE ... WHERE id = ? AND status = ?).
// Zwei konkurrierende Reviewer-Aktionen können so nicht beide greifen.
func (s *GormStore) TransitionArticle(ctx context.Context, id string, from models.Status, updates map[string]any) (*models.Article, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetArticle(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStatusMismatch
	}
	return s.GetArticle(ctx, id)
}

// UpdateArticle ändert einzelne Spalten ohne Zustandsprüfung.
func (s *GormStore) UpdateArticle(ctx context.Context, id string, updates map[string]any) (*models.Article, error) {
	article, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(article).Updates(updates).Error; err != nil {
		return nil, translate(err)
	}
	return s.GetArticle(ctx, id)
}

// DeleteArticle löscht einen Artikel endgültig. Bewertungen bleiben erhalten.
func (s *GormStore) DeleteArticle(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Article{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateScore speichert eine Bewertung.
func (s *GormStore) CreateScore(ctx context.Context, score *models.Score) error {
	return translate(s.db.WithContext(ctx).Create(score).Error)
}

// ListScores liefert alle Bewertungen eines Artikels.
func (s *GormStore) ListScores(ctx context.Context, docID string) ([]models.Score, error) {
	scores := []models.Score{}
	if err := s.db.WithContext(ctx).Where("doc_id = ?", docID).Order("create_time asc").Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

// ListRoles liefert alle Rollen.
func (s *GormStore) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles := []models.Role{}
	if err := s.db.WithContext(ctx).Order("email asc").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// RoleEmails liefert alle Adressen mit der gegebenen Rolle.
func (s *GormStore) RoleEmails(ctx context.Context, role models.RoleName) ([]string, error) {
	var emails []string
	err := s.db.WithContext(ctx).Model(&models.Role{}).Where("role = ?", role).Order("email asc").Pluck("email", &emails).Error
	return emails, err
}

// GetRole lädt eine Rolle per E-Mail.
func (s *GormStore) GetRole(ctx context.Context, email string) (*models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

// CreateRole legt eine Rolle an.
func (s *GormStore) CreateRole(ctx context.Context, role *models.Role) error {
	return translate(s.db.WithContext(ctx).Create(role).Error)
}

// UpdateRole ändert E-Mail und Rolle eines bestehenden Eintrags.
func (s *GormStore) UpdateRole(ctx context.Context, email string, role models.Role) (*models.Role, error) {
	existing, err := s.GetRole(ctx, email)
	if err != nil {
		return nil, err
	}
	existing.Email = role.Email
	existing.Role = role.Role
	if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, translate(err)
	}
	return existing, nil
}

// DeleteRole entfernt eine Rolle.
func (s *GormStore) DeleteRole(ctx context.Context, email string) error {
	res := s.db.WithContext(ctx).Where("email = ?", email).Delete(&models.Role{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountRoles zählt alle Rollen (für das Seeding).
func (s *GormStore) CountRoles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Role{}).Count(&count).Error
	return count, err
}
