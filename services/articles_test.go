package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"speed-review/models"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func publish(t *testing.T, env *testEnv, in SubmitInput) *models.Article {
	t.Helper()
	ctx := context.Background()
	a := env.submit(t, in)
	if _, err := env.review.ModeratorApprove(ctx, a.ID); err != nil {
		t.Fatalf("moderator approve: %v", err)
	}
	published, err := env.review.AnalystApprove(ctx, a.ID, AnalysisInput{EvidenceSummary: "moderate"})
	if err != nil {
		t.Fatalf("analyst approve: %v", err)
	}
	return published
}

func TestListPublishedUsesCacheAndInvalidates(t *testing.T) {
	env := newTestEnv(t)
	cache := &memoryCache{entries: map[string][]byte{}}
	env.review.Cache = cache
	ctx := context.Background()

	first := publish(t, env, SubmitInput{Title: "Cached One"})
	env.submit(t, SubmitInput{Title: "Still Pending"})

	list, err := env.review.ListPublished(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListPublished = %d, %v", len(list), err)
	}
	if _, err := env.review.ListPublished(ctx); err != nil {
		t.Fatalf("second ListPublished: %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("expected one cache hit, got %d", cache.hits)
	}

	publish(t, env, SubmitInput{Title: "Cached Two"})
	list, _ = env.review.ListPublished(ctx)
	if len(list) != 2 {
		t.Fatalf("cache not invalidated on publish, got %d articles", len(list))
	}

	if err := env.review.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ = env.review.ListPublished(ctx)
	if len(list) != 1 {
		t.Fatalf("cache not invalidated on delete, got %d articles", len(list))
	}
}

func TestTrack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a1 := env.submit(t, SubmitInput{Title: "One", UserEmail: "x@example.org"})
	env.submit(t, SubmitInput{Title: "Two", UserEmail: "x@example.org"})
	env.submit(t, SubmitInput{Title: "Three", UserEmail: "y@example.org"})

	byEmail, err := env.review.Track(ctx, "x@example.org", "")
	if err != nil || len(byEmail) != 2 {
		t.Fatalf("Track by email = %d, %v", len(byEmail), err)
	}
	for _, a := range byEmail {
		if a.SubmitterEmail != "x@example.org" {
			t.Fatalf("foreign article in result: %+v", a)
		}
	}

	byID, err := env.review.Track(ctx, "", a1.ID)
	if err != nil || len(byID) != 1 || byID[0].ID != a1.ID {
		t.Fatalf("Track by id = %+v, %v", byID, err)
	}

	if _, err := env.review.Track(ctx, "nobody@example.org", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := env.review.Track(ctx, "", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSearchOnlyPublished(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	y2020, y2019 := 2020, 2019
	publish(t, env, SubmitInput{Title: "JavaScript Basics", PublicationYear: &y2020})
	publish(t, env, SubmitInput{Title: "Go Concurrency", PublicationYear: &y2019, Authors: []string{"Pike"}})
	env.submit(t, SubmitInput{Title: "JavaScript Pending", PublicationYear: &y2020})

	got, err := env.review.Search(ctx, "javascript")
	if err != nil || len(got) != 1 || got[0].Title != "JavaScript Basics" {
		t.Fatalf("search javascript = %+v, %v", got, err)
	}
	got, _ = env.review.Search(ctx, "2020")
	if len(got) != 1 || got[0].Title != "JavaScript Basics" {
		t.Fatalf("search 2020 = %+v", got)
	}
	got, _ = env.review.Search(ctx, "pike")
	if len(got) != 1 || got[0].Title != "Go Concurrency" {
		t.Fatalf("search by author = %+v", got)
	}
	if _, err := env.review.Search(ctx, " "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty query, got %v", err)
	}
}

func TestUpdateField(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.submit(t, SubmitInput{Title: "Editable", Claim: "old"})

	got, err := env.review.UpdateField(ctx, a.ID, "claim", "new claim")
	if err != nil || got.Claim != "new claim" {
		t.Fatalf("update claim = %+v, %v", got, err)
	}
	if got.Status != models.StatusPending {
		t.Fatalf("field edit must not change status, got %s", got.Status)
	}

	got, err = env.review.UpdateField(ctx, a.ID, "evidence_summary", "WEAK")
	if err != nil || got.EvidenceSummary == nil || *got.EvidenceSummary != "weak" {
		t.Fatalf("update evidence_summary = %+v, %v", got, err)
	}
	if _, err := env.review.UpdateField(ctx, a.ID, "evidence_summary", "maybe"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad strength, got %v", err)
	}

	got, err = env.review.UpdateField(ctx, a.ID, "status", "published")
	if err != nil || got.Status != models.StatusPublished {
		t.Fatalf("admin status edit = %+v, %v", got, err)
	}
	if _, err := env.review.UpdateField(ctx, a.ID, "status", "archived"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
	if _, err := env.review.UpdateField(ctx, a.ID, "title", "x"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for non-editable field, got %v", err)
	}
	if _, err := env.review.UpdateField(ctx, "missing", "claim", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.submit(t, SubmitInput{Title: "Short Lived"})

	if err := env.review.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := env.review.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.review.Get(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListByStatusQueues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.submit(t, SubmitInput{Title: "Queue A"})
	env.submit(t, SubmitInput{Title: "Queue B"})
	if _, err := env.review.ModeratorApprove(ctx, a.ID); err != nil {
		t.Fatalf("moderator approve: %v", err)
	}

	pending, _ := env.review.ListByStatus(ctx, models.StatusPending)
	analysis, _ := env.review.ListByStatus(ctx, models.StatusApprovedByModerator)
	all, _ := env.review.ListAll(ctx)
	if len(pending) != 1 || len(analysis) != 1 || len(all) != 2 {
		t.Fatalf("queues: pending=%d analysis=%d all=%d", len(pending), len(analysis), len(all))
	}
}

func TestSearchNormalizesQuery(t *testing.T) {
	env := newTestEnv(t)
	publish(t, env, SubmitInput{Title: "Die Müller-Studie"})

	got, err := env.review.Search(context.Background(), "mu\u0308ller")
	if err != nil || len(got) != 1 {
		t.Fatalf("search with decomposed umlaut = %+v, %v", got, err)
	}
}
