package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// pagedObjects liefert Listings seitenweise wie S3 (pageSize Objekte pro Seite).
type pagedObjects struct {
	mu       sync.Mutex
	objects  []types.Object
	pageSize int
	calls    int
	deleted  []string
	failKeys map[string]bool
	putKey   string
	putBody  string
	putCType string
}

func (f *pagedObjects) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	start := 0
	if token := aws.ToString(in.ContinuationToken); token != "" {
		if _, err := fmt.Sscanf(token, "page-%d", &start); err != nil {
			return nil, err
		}
	}
	var matching []types.Object
	for _, o := range f.objects {
		if strings.HasPrefix(aws.ToString(o.Key), aws.ToString(in.Prefix)) {
			matching = append(matching, o)
		}
	}
	end := start + f.pageSize
	if end > len(matching) {
		end = len(matching)
	}
	out := &s3.ListObjectsV2Output{Contents: matching[start:end], IsTruncated: aws.Bool(end < len(matching))}
	if end < len(matching) {
		out.NextContinuationToken = aws.String(fmt.Sprintf("page-%d", end))
	}
	return out, nil
}

func (f *pagedObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putKey = aws.ToString(in.Key)
	f.putBody = string(body)
	f.putCType = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *pagedObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Key)
	if f.failKeys[key] {
		return nil, errors.New("access denied")
	}
	f.deleted = append(f.deleted, key)
	return &s3.DeleteObjectOutput{}, nil
}

func backupObjects(prefix string, n int) []types.Object {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	objects := make([]types.Object, 0, n)
	for i := 0; i < n; i++ {
		objects = append(objects, types.Object{
			Key:          aws.String(fmt.Sprintf("%s%02d.sql.gz", prefix, i)),
			LastModified: aws.Time(base.Add(time.Duration(i) * time.Hour)),
		})
	}
	return objects
}

func TestRotateFollowsPagination(t *testing.T) {
	fake := &pagedObjects{objects: backupObjects("backup-", 5), pageSize: 2}
	fake.objects = append(fake.objects, backupObjects("archive/", 3)...)
	b := &Bucket{client: fake, opts: S3Options{Bucket: "speed"}}

	deleted, err := b.Rotate(context.Background(), "backup-", 2)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if fake.calls != 3 {
		t.Fatalf("expected 3 list calls for 5 objects with page size 2, got %d", fake.calls)
	}
	sort.Strings(deleted)
	want := []string{"backup-00.sql.gz", "backup-01.sql.gz", "backup-02.sql.gz"}
	if strings.Join(deleted, ",") != strings.Join(want, ",") {
		t.Fatalf("deleted = %v, want %v", deleted, want)
	}
}

func TestRotateKeepsEverythingBelowLimit(t *testing.T) {
	fake := &pagedObjects{objects: backupObjects("backup-", 3), pageSize: 1000}
	b := &Bucket{client: fake, opts: S3Options{Bucket: "speed"}}

	deleted, err := b.Rotate(context.Background(), "backup-", 4)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if len(deleted) != 0 || len(fake.deleted) != 0 {
		t.Fatalf("expected nothing deleted, got %v", fake.deleted)
	}
}

func TestRotateReportsFailedDeletes(t *testing.T) {
	fake := &pagedObjects{
		objects:  backupObjects("backup-", 4),
		pageSize: 3,
		failKeys: map[string]bool{"backup-00.sql.gz": true},
	}
	b := &Bucket{client: fake, opts: S3Options{Bucket: "speed"}}

	deleted, err := b.Rotate(context.Background(), "backup-", 2)
	if err == nil || !strings.Contains(err.Error(), "backup-00.sql.gz") {
		t.Fatalf("expected error naming the failed key, got %v", err)
	}
	if len(deleted) != 1 || deleted[0] != "backup-01.sql.gz" {
		t.Fatalf("deleted = %v", deleted)
	}
}

func TestUploadReturnsLink(t *testing.T) {
	fake := &pagedObjects{}
	b := &Bucket{client: fake, opts: S3Options{URL: "https://s3.example.org/", Bucket: "speed"}}

	link, err := b.Upload(context.Background(), "archive/a.json", []byte("{}"), "application/json")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if link != "https://s3.example.org/speed/archive/a.json" {
		t.Fatalf("link = %q", link)
	}
	if fake.putKey != "archive/a.json" || fake.putBody != "{}" || fake.putCType != "application/json" {
		t.Fatalf("unexpected put: key=%q body=%q type=%q", fake.putKey, fake.putBody, fake.putCType)
	}
}
