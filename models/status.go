package models

import (
	"errors"
	"fmt"
	"strings"
)

// Status ist der Review-Zustand eines Artikels.
type Status string

const (
	StatusPending             Status = "pending"
	StatusApprovedByModerator Status = "approved_by_moderator"
	StatusPublished           Status = "published"
	StatusRejected            Status = "rejected"
)

// Valid meldet, ob s einer der definierten Zustände ist.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApprovedByModerator, StatusPublished, StatusRejected:
		return true
	}
	return false
}

// Terminal meldet, ob aus s kein Übergang mehr möglich ist.
func (s Status) Terminal() bool {
	return s == StatusPublished || s == StatusRejected
}

// ParseStatus liest einen Status aus Benutzereingaben.
func ParseStatus(v string) (Status, error) {
	s := Status(strings.TrimSpace(v))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", v)
	}
	return s, nil
}

// Action ist eine Reviewer-Aktion, die einen Zustandsübergang auslöst.
type Action string

const (
	ActionModeratorApprove Action = "moderator_approve"
	ActionModeratorReject  Action = "moderator_reject"
	ActionAnalystApprove   Action = "analyst_approve"
	ActionAnalystReject    Action = "analyst_reject"
)

// ErrInvalidTransition wird geliefert, wenn eine Aktion im aktuellen Zustand nicht erlaubt ist.
var ErrInvalidTransition = errors.New("invalid status transition")

var transitions = map[Action]struct {
	from Status
	to   Status
}{
	ActionModeratorApprove: {StatusPending, StatusApprovedByModerator},
	ActionModeratorReject:  {StatusPending, StatusRejected},
	ActionAnalystApprove:   {StatusApprovedByModerator, StatusPublished},
	ActionAnalystReject:    {StatusApprovedByModerator, StatusRejected},
}

// Transition berechnet den Folgezustand für (current, action).
// Jede Statusänderung durch Reviewer muss vorher hierüber laufen.
func Transition(current Status, action Action) (Status, error) {
	t, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	if current != t.from {
		return "", fmt.Errorf("%w: %s not allowed from %s", ErrInvalidTransition, action, current)
	}
	return t.to, nil
}

// EvidenceStrength ist die Bewertung der Evidenz durch den Analysten.
type EvidenceStrength string

const (
	EvidenceWeak     EvidenceStrength = "weak"
	EvidenceModerate EvidenceStrength = "moderate"
	EvidenceStrong   EvidenceStrength = "strong"
)

// ParseEvidenceStrength akzeptiert "Weak", "weak", " STRONG " usw.
func ParseEvidenceStrength(v string) (EvidenceStrength, error) {
	e := EvidenceStrength(strings.ToLower(strings.TrimSpace(v)))
	switch e {
	case EvidenceWeak, EvidenceModerate, EvidenceStrong:
		return e, nil
	case "":
		return "", errors.New("evidence summary is empty")
	}
	return "", fmt.Errorf("unknown evidence strength %q", v)
}
