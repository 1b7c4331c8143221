package models

import "time"

// Score ist eine einzelne Leserbewertung (1-5 Sterne) eines Artikels.
// Die Bewertung gehört nicht zum Artikel, DocID ist nur eine Referenz.
type Score struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	DocID      string    `json:"doc_id" gorm:"index;not null;size:36"`
	Value      float64   `json:"average_score" gorm:"column:average_score;not null"`
	CreateTime time.Time `json:"create_time" gorm:"autoCreateTime"`
}

// TableName gibt explizit den Tabellennamen an.
func (Score) TableName() string {
	return "scores"
}

const (
	MinScore = 1
	MaxScore = 5
)
