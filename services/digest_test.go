package services

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestDigestNotifiesNonEmptyQueues(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, SubmitInput{Title: "Waiting 1"})
	env.submit(t, SubmitInput{Title: "Waiting 2"})
	env.dispatcher.Wait()
	before := len(env.mailer.to(moderatorEmail))

	digest := NewDigestService(env.store, env.review.Notifier, zap.NewNop())
	if err := digest.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	env.dispatcher.Wait()

	mod := env.mailer.to(moderatorEmail)
	if len(mod) != before+1 || !strings.Contains(mod[len(mod)-1].TextBody, "2 article(s)") {
		t.Fatalf("expected moderator digest for 2 articles, got %+v", mod)
	}
	if got := env.mailer.to(analystEmail); len(got) != 0 {
		t.Fatalf("analyst queue is empty, expected no digest, got %d", len(got))
	}
}
