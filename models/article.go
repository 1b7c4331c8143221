package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Article ist ein eingereichter Fachartikel samt Review-Zustand.
type Article struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Einreicher
	SubmitterName  string `json:"user_name,omitempty" gorm:"column:user_name"`
	SubmitterEmail string `json:"user_email,omitempty" gorm:"column:user_email;index"`

	// Bibliografische Angaben
	Title            string                      `json:"title" gorm:"not null;index"`
	Authors          datatypes.JSONSlice[string] `json:"authors"`
	Source           string                      `json:"source,omitempty"`
	Journal          string                      `json:"journal,omitempty"`
	SEPractice       string                      `json:"se_practice,omitempty" gorm:"column:se_practice"`
	ResearchType     string                      `json:"research_type,omitempty"`
	PublicationYear  *int                        `json:"publication_year,omitempty"`
	Volume           string                      `json:"volume,omitempty"`
	Number           string                      `json:"number,omitempty"`
	Pages            string                      `json:"pages,omitempty"`
	DOI              string                      `json:"doi,omitempty" gorm:"column:doi;index"`
	Summary          string                      `json:"summary,omitempty" gorm:"type:text"`
	Claim            string                      `json:"claim,omitempty" gorm:"type:text"`
	LinkedDiscussion string                      `json:"linked_discussion,omitempty"`

	// Analyse (bis zur Analyse leer)
	Evidence        *string `json:"evidence" gorm:"type:text"`
	EvidenceSummary *string `json:"evidence_summary"`
	AnalysisNotes   string  `json:"analysis_notes,omitempty" gorm:"type:text"`
	OpenAccessURL   *string `json:"open_access_url,omitempty"`

	// Moderation
	ModerationNotes string  `json:"moderation_notes,omitempty" gorm:"type:text"`
	RejectionReason *string `json:"rejection_reason,omitempty" gorm:"type:text"`
	// Wird nur bei der Einreichung gesetzt
	RepeatFlag bool `json:"repeat_flag" gorm:"default:false"`

	Status      Status     `json:"status" gorm:"index;size:32;not null;default:'pending'"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ModeratedAt *time.Time `json:"moderated_at,omitempty"`
	AnalyzedAt  *time.Time `json:"analyzed_at,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Article) TableName() string {
	return "articles"
}

// BeforeCreate vergibt die Submission-ID und setzt Defaults.
func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	if a.SubmittedAt.IsZero() {
		a.SubmittedAt = time.Now().UTC()
	}
	return nil
}

// EditableFields sind die Felder, die über die Edit-Endpunkte ohne Zustandsübergang geändert werden dürfen.
// Der Wert ist die Datenbankspalte.
var EditableFields = map[string]string{
	"claim":            "claim",
	"evidence":         "evidence",
	"analysis_notes":   "analysis_notes",
	"evidence_summary": "evidence_summary",
	"moderation_notes": "moderation_notes",
	"status":           "status",
}
