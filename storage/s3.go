package storage

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"speed-review/config"
)

// S3Options beschreibt einen S3-kompatiblen Bucket (AWS, Strato HiDrive, MinIO).
type S3Options struct {
	URL    string
	Region string
	Key    string
	Secret string
	Bucket string
}

// S3OptionsFromConfig übernimmt die S3_* Variablen.
func S3OptionsFromConfig(cfg *config.Config) S3Options {
	return S3Options{
		URL:    cfg.S3URL,
		Region: cfg.S3Region,
		Key:    cfg.S3Key,
		Secret: cfg.S3Secret,
		Bucket: cfg.S3Bucket,
	}
}

// objectAPI ist der Teil des S3-Clients, den Bucket benutzt.
type objectAPI interface {
	s3.ListObjectsV2APIClient
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Bucket kapselt einen S3-Client für genau einen Bucket.
type Bucket struct {
	client objectAPI
	opts   S3Options
}

// NewBucket erstellt einen S3-Client mit statischen Credentials und Path-Style-Adressierung.
func NewBucket(ctx context.Context, opts S3Options) (*Bucket, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.Key, opts.Secret, "")),
	)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.URL != "" {
			o.BaseEndpoint = aws.String(opts.URL)
		}
		o.UsePathStyle = true
	})
	return &Bucket{client: client, opts: opts}, nil
}

// Name liefert den Bucket-Namen.
func (b *Bucket) Name() string {
	return b.opts.Bucket
}

// Upload lädt data unter key hoch und gibt den Link zurück.
func (b *Bucket) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.opts.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := b.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(b.opts.URL, "/"), b.opts.Bucket, key), nil
}

// Rotate behält die keep neuesten Objekte unter prefix und löscht den Rest.
// Gibt die gelöschten Keys zurück; Fehler beim Löschen einzelner Objekte brechen nicht ab.
func (b *Bucket) Rotate(ctx context.Context, prefix string, keep int) ([]string, error) {
	var objects []types.Object
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.opts.Bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		objects = append(objects, page.Contents...)
	}
	if keep < 0 {
		keep = 0
	}
	if len(objects) <= keep {
		return nil, nil
	}

	sort.Slice(objects, func(i, j int) bool {
		return aws.ToTime(objects[i].LastModified).After(aws.ToTime(objects[j].LastModified))
	})

	var deleted []string
	var failed []string
	for _, obj := range objects[keep:] {
		_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(b.opts.Bucket),
			Key:    obj.Key,
		})
		if err != nil {
			failed = append(failed, aws.ToString(obj.Key))
			continue
		}
		deleted = append(deleted, aws.ToString(obj.Key))
	}
	if len(failed) > 0 {
		return deleted, fmt.Errorf("failed to delete %d objects: %s", len(failed), strings.Join(failed, ", "))
	}
	return deleted, nil
}
