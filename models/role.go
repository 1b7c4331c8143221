package models

import (
	"fmt"
	"strings"
)

// RoleName ist die Reviewer-Fähigkeit einer E-Mail-Adresse.
type RoleName string

const (
	RoleModerator RoleName = "moderator"
	RoleAnalyst   RoleName = "analyst"
)

// ParseRoleName validiert einen Rollennamen.
func ParseRoleName(v string) (RoleName, error) {
	r := RoleName(strings.ToLower(strings.TrimSpace(v)))
	if r != RoleModerator && r != RoleAnalyst {
		return "", fmt.Errorf("unknown role %q", v)
	}
	return r, nil
}

// Role ordnet eine E-Mail-Adresse einer Reviewer-Rolle zu. Wird für die Empfängerauswahl der Benachrichtigungen genutzt.
type Role struct {
	ID    uint     `json:"id" gorm:"primaryKey"`
	Email string   `json:"email" gorm:"uniqueIndex;not null"`
	Role  RoleName `json:"role" gorm:"index;size:16;not null"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Role) TableName() string {
	return "roles"
}
