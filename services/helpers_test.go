package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"speed-review/models"
	"speed-review/providers"
	"speed-review/storage"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []providers.Message
	fail bool
}

func (m *recordingMailer) Name() string { return "recording" }

func (m *recordingMailer) Send(_ context.Context, msg providers.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("mail server unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) to(addr string) []providers.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []providers.Message
	for _, msg := range m.sent {
		if msg.To == addr {
			out = append(out, msg)
		}
	}
	return out
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakeResolver struct {
	link string
	err  error
}

func (f fakeResolver) GetPDFLink(context.Context, string) (string, error) { return f.link, f.err }

type testEnv struct {
	store      *storage.GormStore
	mailer     *recordingMailer
	dispatcher *Dispatcher
	review     *ReviewService
	scores     *ScoreService
	roles      *RoleService
}

const (
	moderatorEmail = "mod@example.org"
	analystEmail   = "analyst@example.org"
	submitterEmail = "author@example.org"
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := storage.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := storage.NewGormStore(db)
	logger := zap.NewNop()
	mailer := &recordingMailer{}
	dispatcher := NewDispatcher(logger, 5*time.Second)
	t.Cleanup(dispatcher.Wait)

	notifier := NewNotifier(store, mailer, dispatcher, "https://speed.example.org/", logger)
	env := &testEnv{
		store:      store,
		mailer:     mailer,
		dispatcher: dispatcher,
		review:     NewReviewService(store, notifier, logger),
		scores:     NewScoreService(store, store, logger),
		roles:      NewRoleService(store, logger),
	}
	err = env.roles.SeedDefaults(context.Background(), []models.Role{
		{Email: moderatorEmail, Role: models.RoleModerator},
		{Email: analystEmail, Role: models.RoleAnalyst},
	})
	if err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	return env
}

func (e *testEnv) submit(t *testing.T, in SubmitInput) *models.Article {
	t.Helper()
	if in.UserEmail == "" {
		in.UserEmail = submitterEmail
	}
	a, err := e.review.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("submit %q: %v", in.Title, err)
	}
	return a
}

func strPtr(s string) *string { return &s }
