package models

import (
	"errors"
	"testing"
)

func TestTransitionTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from    Status
		action  Action
		want    Status
		allowed bool
	}{
		{StatusPending, ActionModeratorApprove, StatusApprovedByModerator, true},
		{StatusPending, ActionModeratorReject, StatusRejected, true},
		{StatusApprovedByModerator, ActionAnalystApprove, StatusPublished, true},
		{StatusApprovedByModerator, ActionAnalystReject, StatusRejected, true},

		{StatusPending, ActionAnalystApprove, "", false},
		{StatusPending, ActionAnalystReject, "", false},
		{StatusApprovedByModerator, ActionModeratorApprove, "", false},
		{StatusApprovedByModerator, ActionModeratorReject, "", false},
		{StatusRejected, ActionModeratorApprove, "", false},
		{StatusRejected, ActionAnalystApprove, "", false},
		{StatusPublished, ActionModeratorReject, "", false},
		{StatusPublished, ActionAnalystReject, "", false},
	}

	for _, tc := range cases {
		got, err := Transition(tc.from, tc.action)
		if tc.allowed {
			if err != nil {
				t.Fatalf("%s from %s: unexpected error %v", tc.action, tc.from, err)
			}
			if got != tc.want {
				t.Fatalf("%s from %s: expected %s, got %s", tc.action, tc.from, tc.want, got)
			}
			if !got.Valid() {
				t.Fatalf("transition produced invalid status %q", got)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s from %s: expected ErrInvalidTransition, got %v", tc.action, tc.from, err)
		}
	}
}

func TestTransitionUnknownAction(t *testing.T) {
	t.Parallel()

	if _, err := Transition(StatusPending, Action("publish_now")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTerminalStates(t *testing.T) {
	t.Parallel()

	if StatusPending.Terminal() || StatusApprovedByModerator.Terminal() {
		t.Fatalf("non-terminal state reported terminal")
	}
	if !StatusPublished.Terminal() || !StatusRejected.Terminal() {
		t.Fatalf("terminal state reported non-terminal")
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	if s, err := ParseStatus(" published "); err != nil || s != StatusPublished {
		t.Fatalf("expected published, got %q (%v)", s, err)
	}
	if _, err := ParseStatus("archived"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestParseEvidenceStrength(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]EvidenceStrength{"Weak": EvidenceWeak, "moderate": EvidenceModerate, " STRONG ": EvidenceStrong} {
		got, err := ParseEvidenceStrength(in)
		if err != nil || got != want {
			t.Fatalf("ParseEvidenceStrength(%q) = %q, %v", in, got, err)
		}
	}
	for _, in := range []string{"", "   ", "very strong"} {
		if _, err := ParseEvidenceStrength(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestParseRoleName(t *testing.T) {
	t.Parallel()

	if r, err := ParseRoleName("Moderator"); err != nil || r != RoleModerator {
		t.Fatalf("expected moderator, got %q (%v)", r, err)
	}
	if _, err := ParseRoleName("admin"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}
