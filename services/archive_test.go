package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeObjects struct {
	uploads   map[string][]byte
	rotated   []string
	uploadErr error
}

func (f *fakeObjects) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if contentType != "application/json" {
		return "", errors.New("unexpected content type " + contentType)
	}
	f.uploads[key] = data
	return "s3://bucket/" + key, nil
}

func (f *fakeObjects) Rotate(_ context.Context, prefix string, keep int) ([]string, error) {
	f.rotated = append(f.rotated, prefix)
	return nil, nil
}

func TestArchiveExport(t *testing.T) {
	env := newTestEnv(t)
	publish(t, env, SubmitInput{Title: "Archived"})
	env.submit(t, SubmitInput{Title: "Not Archived"})

	objects := &fakeObjects{uploads: map[string][]byte{}}
	archive := NewArchiveService(env.store, objects, 7, zap.NewNop())
	archive.Now = func() time.Time { return time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC) }

	link, err := archive.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	key := "archive/published-2024-05-01T03-00-00Z.json"
	if !strings.HasSuffix(link, key) {
		t.Fatalf("unexpected link %q", link)
	}

	var snap Snapshot
	if err := json.Unmarshal(objects.uploads[key], &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Count != 1 || len(snap.Articles) != 1 || snap.Articles[0].Title != "Archived" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if len(objects.rotated) != 1 || objects.rotated[0] != "archive/published-" {
		t.Fatalf("expected rotation of snapshot prefix, got %v", objects.rotated)
	}
}

func TestArchiveExportUploadFailure(t *testing.T) {
	env := newTestEnv(t)
	objects := &fakeObjects{uploads: map[string][]byte{}, uploadErr: errors.New("bucket gone")}
	if _, err := NewArchiveService(env.store, objects, 0, zap.NewNop()).Export(context.Background()); err == nil {
		t.Fatalf("expected upload error")
	}
	if len(objects.rotated) != 0 {
		t.Fatalf("must not rotate after failed upload")
	}
}
